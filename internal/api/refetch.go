package api

import (
	"context"

	"golang.org/x/sync/singleflight"
)

// Refetcher coalesces concurrent reload requests for the same list so a
// burst of saves triggers one fetch per list.
type Refetcher struct {
	g singleflight.Group
}

// Do runs fetch for key unless a fetch for key is already in flight, in
// which case it waits for and shares that result.
func (r *Refetcher) Do(ctx context.Context, key string, fetch func(context.Context) error) error {
	_, err, _ := r.g.Do(key, func() (any, error) {
		return nil, fetch(ctx)
	})
	return err
}
