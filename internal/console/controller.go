package console

import (
	"context"

	"github.com/leonardcser/adminkit/internal/api"
	"github.com/leonardcser/adminkit/internal/form"
)

// Controller is the type-erased view of a dialog that text front ends drive.
type Controller interface {
	Name() string
	State() form.State
	IsDirty() bool
	CanSubmit() bool
	FieldErrors() form.FieldErrors
	Values() any
	SetField(field, value string) error
	RequestClose() (bool, error)
	ResolveConfirm(discard bool) error
	Submit(ctx context.Context) (api.Notice, error)
}

type fieldSetter[T any] interface {
	*T
	SetField(field, value string) error
}

type controller[T any, PT fieldSetter[T]] struct {
	name string
	*form.Dialog[T]
}

func newController[T any, PT fieldSetter[T]](name string, d *form.Dialog[T]) Controller {
	return controller[T, PT]{name: name, Dialog: d}
}

func (c controller[T, PT]) Name() string { return c.name }

func (c controller[T, PT]) Values() any { return c.Dialog.Values() }

func (c controller[T, PT]) SetField(field, value string) error {
	var setErr error
	if err := c.Edit(func(v *T) { setErr = PT(v).SetField(field, value) }); err != nil {
		return err
	}
	return setErr
}
