package console

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/leonardcser/adminkit/internal/api"
)

// List is the table behind a dialog. Saves signal it to refetch; concurrent
// refetches of the same list share one backend call.
type List[T any] struct {
	name    string
	fetch   func(context.Context) api.Result[[]T]
	refetch *api.Refetcher

	mu     sync.RWMutex
	items  []T
	loaded bool
}

func newList[T any](name string, ref *api.Refetcher, fetch func(context.Context) api.Result[[]T]) *List[T] {
	return &List[T]{name: name, fetch: fetch, refetch: ref}
}

// Refresh reloads the list. On failure the previous rows stay visible and
// the notice message is returned as the error.
func (l *List[T]) Refresh(ctx context.Context) error {
	return l.refetch.Do(ctx, l.name, func(ctx context.Context) error {
		res := l.fetch(ctx)
		if !res.OK {
			return errors.New(res.Notice("").Message)
		}
		l.mu.Lock()
		l.items = res.Data
		l.loaded = true
		l.mu.Unlock()
		return nil
	})
}

// Items returns a copy of the current rows.
func (l *List[T]) Items() []T {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.items)
}

// Loaded reports whether at least one refresh succeeded.
func (l *List[T]) Loaded() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.loaded
}

// Find returns the first row matching pred.
func (l *List[T]) Find(pred func(T) bool) (T, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, it := range l.items {
		if pred(it) {
			return it, true
		}
	}
	var zero T
	return zero, false
}
