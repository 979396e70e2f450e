// Package console wires the domain dialogs to their backend services and
// tables. The Console owns every dialog and decides which one is open;
// dialogs never reach back into their owner except through the saved
// callback.
package console

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/leonardcser/adminkit/internal/api"
	"github.com/leonardcser/adminkit/internal/form"
	"github.com/leonardcser/adminkit/internal/logger"
	"github.com/leonardcser/adminkit/internal/upload"
)

var (
	ErrNoDialog     = errors.New("console: no dialog is open")
	ErrDialogOpen   = errors.New("console: another dialog is open")
	ErrDutyNotFound = errors.New("console: duty not found")
)

type Console struct {
	Branches *List[Branch]
	Duties   *List[Duty]
	Members  *List[Member]

	BranchDialog *form.Dialog[Branch]
	DutyDialog   *form.Dialog[Duty]
	MemberDialog *form.Dialog[Member]

	controllers map[string]Controller
	limits      upload.Limits

	mu     sync.Mutex
	active Controller
}

// New builds the console against c. limits bounds member attachments.
func New(c *api.Client, limits upload.Limits) *Console {
	ref := &api.Refetcher{}
	branches := &BranchService{c: c}
	duties := &DutyService{c: c}
	members := &MemberService{c: c}

	con := &Console{
		Branches: newList("branches", ref, branches.List),
		Duties:   newList("duties", ref, duties.List),
		Members:  newList("members", ref, members.List),
		limits:   limits,
	}
	con.BranchDialog = form.New(Branch{},
		form.WithValidator(branchValidator()),
		form.WithSaver[Branch](branches.Create),
		form.WithSuccessMessage[Branch]("Branch added"),
		form.WithOnSaved[Branch](refetchOnSave(con.Branches)),
	)
	con.DutyDialog = form.New(Duty{},
		form.WithValidator(dutyValidator()),
		form.WithSaver[Duty](duties.Update),
		form.WithSuccessMessage[Duty]("Duty updated"),
		form.WithOnSaved[Duty](refetchOnSave(con.Duties)),
	)
	con.MemberDialog = form.New(Member{},
		form.WithValidator(memberValidator(limits)),
		form.WithSaver[Member](members.Save),
		form.WithSuccessMessage[Member]("Member saved"),
		form.WithOnSaved[Member](refetchOnSave(con.Members)),
	)
	con.controllers = map[string]Controller{
		"branch": newController[Branch]("branch", con.BranchDialog),
		"duty":   newController[Duty]("duty", con.DutyDialog),
		"member": newController[Member]("member", con.MemberDialog),
	}
	return con
}

func refetchOnSave[T any](l *List[T]) func(context.Context) {
	return func(ctx context.Context) {
		if err := l.Refresh(ctx); err != nil {
			logger.Warnf("console: refetch %s: %v", l.name, err)
		}
	}
}

// Active returns the open dialog.
func (c *Console) Active() (Controller, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil || c.active.State() == form.Closed {
		c.active = nil
		return nil, ErrNoDialog
	}
	return c.active, nil
}

// OpenBranchAdd opens the "add branch" dialog.
func (c *Console) OpenBranchAdd() (Controller, error) {
	return c.open("branch", c.BranchDialog.OpenAdd)
}

// OpenDutyEdit opens the "edit duty" dialog on the row with id, refreshing
// the table first when the row is not loaded.
func (c *Console) OpenDutyEdit(ctx context.Context, id int64) (Controller, error) {
	match := func(d Duty) bool { return d.ID == id }
	duty, ok := c.Duties.Find(match)
	if !ok {
		if err := c.Duties.Refresh(ctx); err != nil {
			return nil, err
		}
		if duty, ok = c.Duties.Find(match); !ok {
			return nil, fmt.Errorf("%w: %d", ErrDutyNotFound, id)
		}
	}
	return c.open("duty", func() error { return c.DutyDialog.OpenEdit(duty) })
}

// OpenMemberAdd opens an empty member dialog.
func (c *Console) OpenMemberAdd() (Controller, error) {
	return c.open("member", c.MemberDialog.OpenAdd)
}

// OpenMemberEdit opens the member dialog on m.
func (c *Console) OpenMemberEdit(m Member) (Controller, error) {
	return c.open("member", func() error { return c.MemberDialog.OpenEdit(m) })
}

// Limits returns the attachment limits the member dialog enforces.
func (c *Console) Limits() upload.Limits { return c.limits }

// AttachToMember adds a pending attachment to the open member dialog.
// Oversize payloads are refused here; type checks happen with the rest of
// the form.
func (c *Console) AttachToMember(path string, data []byte) error {
	ctl, err := c.Active()
	if err != nil {
		return err
	}
	if ctl.Name() != "member" {
		return fmt.Errorf("console: attachments belong to the member dialog, %s is open", ctl.Name())
	}
	f := upload.File{Name: filepath.Base(path), Data: data}
	if err := upload.CheckSize(f, c.limits); err != nil {
		return err
	}
	return c.MemberDialog.Edit(func(m *Member) {
		m.Attachments = append(m.Attachments, f)
	})
}

func (c *Console) open(name string, openFn func() error) (Controller, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active != nil && c.active.State() != form.Closed {
		return nil, fmt.Errorf("%w: %s", ErrDialogOpen, c.active.Name())
	}
	if err := openFn(); err != nil {
		return nil, err
	}
	c.active = c.controllers[name]
	return c.active, nil
}
