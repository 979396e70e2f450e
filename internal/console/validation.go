package console

import (
	"net/mail"
	"strings"

	"github.com/leonardcser/adminkit/internal/form"
	"github.com/leonardcser/adminkit/internal/upload"
)

// BranchNameMin is the shortest branch name the backend accepts.
const BranchNameMin = 5

func branchValidator() form.Validator[Branch] {
	name := func(b Branch) string { return b.Name }
	return form.Rules(
		form.Required("name", name),
		form.MinLength("name", BranchNameMin, name),
		form.MaxLength("name", 100, name),
	)
}

func dutyValidator() form.Validator[Duty] {
	name := func(d Duty) string { return d.Name }
	return form.Rules(
		form.Required("name", name),
		form.MaxLength("name", 100, name),
	)
}

func memberValidator(limits upload.Limits) form.Validator[Member] {
	name := func(m Member) string { return m.Name }
	email := func(m Member) string { return m.Email }
	return form.Rules(
		form.Required("name", name),
		form.Required("email", email),
		form.Check("email", "invalid email address", func(m Member) bool {
			if strings.TrimSpace(m.Email) == "" {
				return true
			}
			_, err := mail.ParseAddress(m.Email)
			return err == nil
		}),
		form.Check("roles", "select at least one role", func(m Member) bool {
			return len(m.RoleList()) > 0
		}),
		func(m Member) form.FieldErrors {
			if err := upload.ValidateAll(m.Attachments, limits); err != nil {
				return form.FieldErrors{"attachments": err.Error()}
			}
			return nil
		},
	)
}
