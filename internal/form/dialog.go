package form

import (
	"context"
	"errors"
	"sync"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/leonardcser/adminkit/internal/api"
)

var (
	ErrClosed    = errors.New("form: dialog is closed")
	ErrBusy      = errors.New("form: dialog is busy")
	ErrNotDirty  = errors.New("form: nothing to save")
	ErrNoConfirm = errors.New("form: no confirmation pending")
	ErrNoSaver   = errors.New("form: dialog has no saver")
)

// State is the observable state of a Dialog.
type State int

const (
	Closed State = iota
	Clean
	Dirty
	ConfirmPending
	Submitting
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Clean:
		return "clean"
	case Dirty:
		return "dirty"
	case ConfirmPending:
		return "confirm-pending"
	case Submitting:
		return "submitting"
	default:
		return "unknown"
	}
}

// Mode tells add flows from edit flows.
type Mode int

const (
	ModeAdd Mode = iota
	ModeEdit
)

// Saver persists the submitted values.
type Saver[T any] func(ctx context.Context, values T) api.Result[bool]

// Dialog owns the values of one add/edit dialog. It is safe for concurrent
// use; the Saver runs without the lock held so State reports Submitting
// while the call is in flight.
type Dialog[T any] struct {
	defaults T
	validate Validator[T]
	save     Saver[T]
	onSaved  func(context.Context)
	success  string
	cmpOpts  []cmp.Option

	mu         sync.Mutex
	mode       Mode
	open       bool
	confirming bool
	submitting bool
	initial    T
	current    T
}

type Option[T any] func(*Dialog[T])

// WithValidator sets the per-field validation run on the live values.
func WithValidator[T any](v Validator[T]) Option[T] {
	return func(d *Dialog[T]) { d.validate = v }
}

// WithSaver sets the call Submit makes.
func WithSaver[T any](s Saver[T]) Option[T] {
	return func(d *Dialog[T]) { d.save = s }
}

// WithOnSaved registers the callback that tells the owner to refetch after
// a successful save. It receives the context passed to Submit.
func WithOnSaved[T any](fn func(context.Context)) Option[T] {
	return func(d *Dialog[T]) { d.onSaved = fn }
}

// WithSuccessMessage sets the message of the success notice.
func WithSuccessMessage[T any](msg string) Option[T] {
	return func(d *Dialog[T]) { d.success = msg }
}

// WithCompare adds go-cmp options to the dirty comparison, e.g. to ignore
// server-managed fields.
func WithCompare[T any](opts ...cmp.Option) Option[T] {
	return func(d *Dialog[T]) { d.cmpOpts = append(d.cmpOpts, opts...) }
}

// New returns a closed dialog whose add flow starts from defaults. defaults
// must survive a JSON round trip, and T must be comparable by go-cmp with
// the configured options (unexported fields need cmpopts via WithCompare).
// New panics otherwise, so misuse surfaces at construction rather than
// mid-edit.
func New[T any](defaults T, opts ...Option[T]) *Dialog[T] {
	d := &Dialog[T]{
		defaults: defaults,
		success:  "Saved successfully",
		cmpOpts:  []cmp.Option{cmpopts.EquateEmpty()},
	}
	for _, opt := range opts {
		opt(d)
	}
	d.initial = mustClone(defaults)
	d.current = mustClone(defaults)
	_ = cmp.Equal(d.initial, d.current, d.cmpOpts...)
	return d
}

// OpenAdd opens the dialog on its default values.
func (d *Dialog[T]) OpenAdd() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.submitting {
		return ErrBusy
	}
	d.mode = ModeAdd
	d.current = mustClone(d.defaults)
	d.initial = mustClone(d.defaults)
	d.open, d.confirming = true, false
	return nil
}

// OpenEdit opens the dialog populated from record and snapshots that state.
// The dialog keeps its own copy; later changes to record are not seen.
func (d *Dialog[T]) OpenEdit(record T) error {
	current, err := Clone(record)
	if err != nil {
		return err
	}
	initial, err := Clone(current)
	if err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.submitting {
		return ErrBusy
	}
	d.mode = ModeEdit
	d.current, d.initial = current, initial
	d.open, d.confirming = true, false
	return nil
}

// Mode reports whether the dialog was opened for add or edit.
func (d *Dialog[T]) Mode() Mode {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.mode
}

// Edit applies fn to a copy of the live values and keeps the result only
// when it survives a JSON round trip, so the live values stay clonable.
func (d *Dialog[T]) Edit(fn func(*T)) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.open {
		return ErrClosed
	}
	if d.submitting || d.confirming {
		return ErrBusy
	}
	next := mustClone(d.current)
	fn(&next)
	kept, err := Clone(next)
	if err != nil {
		return err
	}
	d.current = kept
	return nil
}

// Values returns a copy of the live values.
func (d *Dialog[T]) Values() T {
	d.mu.Lock()
	defer d.mu.Unlock()
	return mustClone(d.current)
}

// Initial returns a copy of the snapshot taken at open.
func (d *Dialog[T]) Initial() T {
	d.mu.Lock()
	defer d.mu.Unlock()
	return mustClone(d.initial)
}

// IsDirty reports whether the live values differ from the snapshot.
func (d *Dialog[T]) IsDirty() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dirtyLocked()
}

// Diff describes how the live values differ from the snapshot, or "".
func (d *Dialog[T]) Diff() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return cmp.Diff(d.initial, d.current, d.cmpOpts...)
}

// FieldErrors runs the validator on the live values.
func (d *Dialog[T]) FieldErrors() FieldErrors {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.fieldErrorsLocked()
}

// State reports where the dialog is in its lifecycle.
func (d *Dialog[T]) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	switch {
	case !d.open:
		return Closed
	case d.submitting:
		return Submitting
	case d.confirming:
		return ConfirmPending
	case d.dirtyLocked():
		return Dirty
	default:
		return Clean
	}
}

// CanSubmit is the enabled state of the primary action: the dialog is open,
// dirty, valid, and not already submitting.
func (d *Dialog[T]) CanSubmit() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.open && !d.confirming && !d.submitting &&
		d.dirtyLocked() && len(d.fieldErrorsLocked()) == 0
}

// RequestClose handles cancel, overlay click and escape. A clean dialog
// closes and resets at once and true is returned. A dirty dialog moves to
// ConfirmPending and false is returned; resolve it with ResolveConfirm.
func (d *Dialog[T]) RequestClose() (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	switch {
	case !d.open:
		return true, nil
	case d.submitting:
		return false, ErrBusy
	case d.confirming:
		return false, nil
	case d.dirtyLocked():
		d.confirming = true
		return false, nil
	}
	d.resetLocked()
	return true, nil
}

// ResolveConfirm answers the discard prompt. discard closes and resets the
// dialog; otherwise only the prompt closes and the values stay as they are.
func (d *Dialog[T]) ResolveConfirm(discard bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.confirming {
		return ErrNoConfirm
	}
	d.confirming = false
	if discard {
		d.resetLocked()
	}
	return nil
}

// Submit validates and saves the live values. Gating failures are returned
// as errors (ErrClosed, ErrBusy, ErrNotDirty, *ValidationError, ErrNoSaver)
// and leave the dialog untouched. Otherwise the returned Notice reports the
// outcome: on success the dialog resets, closes and the OnSaved callback
// runs; on rejection or failure the dialog stays open with its values.
func (d *Dialog[T]) Submit(ctx context.Context) (api.Notice, error) {
	d.mu.Lock()
	switch {
	case d.save == nil:
		d.mu.Unlock()
		return api.Notice{}, ErrNoSaver
	case !d.open:
		d.mu.Unlock()
		return api.Notice{}, ErrClosed
	case d.submitting || d.confirming:
		d.mu.Unlock()
		return api.Notice{}, ErrBusy
	case !d.dirtyLocked():
		d.mu.Unlock()
		return api.Notice{}, ErrNotDirty
	}
	if errs := d.fieldErrorsLocked(); len(errs) > 0 {
		d.mu.Unlock()
		return api.Notice{}, &ValidationError{Fields: errs}
	}
	values := mustClone(d.current)
	d.submitting = true
	d.mu.Unlock()

	res := d.save(ctx, values)

	d.mu.Lock()
	d.submitting = false
	if res.OK {
		d.resetLocked()
	}
	d.mu.Unlock()

	if res.OK && d.onSaved != nil {
		d.onSaved(ctx)
	}
	return res.Notice(d.success), nil
}

func (d *Dialog[T]) dirtyLocked() bool {
	return !cmp.Equal(d.initial, d.current, d.cmpOpts...)
}

func (d *Dialog[T]) fieldErrorsLocked() FieldErrors {
	if d.validate == nil {
		return nil
	}
	return d.validate(d.current)
}

func (d *Dialog[T]) resetLocked() {
	d.open, d.confirming = false, false
	d.current = mustClone(d.defaults)
	d.initial = mustClone(d.defaults)
}
