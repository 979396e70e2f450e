package console

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/leonardcser/adminkit/internal/form"
	"github.com/leonardcser/adminkit/internal/upload"
)

// ErrUnknownField is returned by SetField for names a record does not have.
type ErrUnknownField struct{ Field string }

func (e ErrUnknownField) Error() string { return fmt.Sprintf("console: unknown field %q", e.Field) }

type Branch struct {
	ID   int64  `json:"id,omitempty"`
	Name string `json:"name"`
}

func (b *Branch) SetField(field, value string) error {
	switch field {
	case "name":
		b.Name = value
	default:
		return ErrUnknownField{Field: field}
	}
	return nil
}

type Duty struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func (d *Duty) SetField(field, value string) error {
	switch field {
	case "name":
		d.Name = value
	default:
		return ErrUnknownField{Field: field}
	}
	return nil
}

// Member is a console member. Roles holds the multi-select choices in the
// comma-joined form the backend stores.
type Member struct {
	ID          int64         `json:"id,omitempty"`
	Name        string        `json:"name"`
	Email       string        `json:"email"`
	Phone       string        `json:"phone,omitempty"`
	Roles       string        `json:"roles"`
	Attachments []upload.File `json:"attachments,omitempty"`
}

func (m *Member) SetField(field, value string) error {
	switch field {
	case "name":
		m.Name = value
	case "email":
		m.Email = strings.TrimSpace(value)
	case "phone":
		m.Phone = strings.TrimSpace(value)
	case "roles":
		m.Roles = form.JoinMulti(strings.Split(value, ","))
	default:
		return ErrUnknownField{Field: field}
	}
	return nil
}

// RoleList returns the selected roles.
func (m Member) RoleList() []string { return form.SplitMulti(m.Roles) }

func (m Member) formFields() map[string]string {
	fields := map[string]string{
		"name":  m.Name,
		"email": m.Email,
		"roles": m.Roles,
	}
	if m.Phone != "" {
		fields["phone"] = m.Phone
	}
	if m.ID != 0 {
		fields["id"] = strconv.FormatInt(m.ID, 10)
	}
	return fields
}
