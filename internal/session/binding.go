package session

import (
	"context"
	"sync"
	"time"
)

// DefaultSweepInterval is how often Watch re-validates a stored entry.
const DefaultSweepInterval = time.Minute

// Binding is one consumer's live view of a cached key. In-memory state is
// authoritative for reads; storage is written through on a best-effort
// basis and consulted on Bind and on every sweep.
type Binding[T any] struct {
	cache *Cache
	key   string
	ttl   time.Duration

	// wmu orders storage writes; a write only lands while its generation
	// is still current.
	wmu sync.Mutex

	mu        sync.Mutex
	initial   T
	value     T
	present   bool
	expiresAt time.Time
	gen       uint64
}

// Bind loads key from c, keeping initial when nothing usable is stored.
// ttl is the lifetime used by Set.
func Bind[T any](c *Cache, key string, initial T, ttl time.Duration) *Binding[T] {
	if c == nil {
		c = NewCache(nil)
	}
	b := &Binding[T]{cache: c, key: key, ttl: ttl, initial: initial, value: initial}
	var stored T
	if c.Get(key, &stored) {
		b.value = stored
		b.present = true
	}
	return b
}

// Key returns the storage key this binding observes.
func (b *Binding[T]) Key() string { return b.key }

// Value returns the current value and whether one has been set or loaded.
// A value whose lifetime has lapsed is cleared before returning.
func (b *Binding[T]) Value() (T, bool) {
	b.mu.Lock()
	lapsed := b.present && b.lapsedLocked()
	if lapsed {
		b.resetLocked()
	}
	v, ok, gen := b.value, b.present, b.gen
	b.mu.Unlock()
	if lapsed {
		b.persist(gen, func() { b.cache.Remove(b.key) })
	}
	return v, ok
}

// Set replaces the value using the binding's default TTL.
func (b *Binding[T]) Set(v T) { b.Store(v, b.ttl) }

// Store replaces the value with an explicit TTL; ttl <= 0 means no expiry.
func (b *Binding[T]) Store(v T, ttl time.Duration) {
	b.mu.Lock()
	b.value = v
	b.present = true
	b.gen++
	b.expiresAt = time.Time{}
	if ttl > 0 {
		b.expiresAt = b.cache.now().Add(ttl)
	}
	gen := b.gen
	b.mu.Unlock()
	b.persist(gen, func() { b.cache.Set(b.key, v, ttl) })
}

// Clear drops the value and removes the stored entry.
func (b *Binding[T]) Clear() {
	b.mu.Lock()
	b.resetLocked()
	gen := b.gen
	b.mu.Unlock()
	b.persist(gen, func() { b.cache.Remove(b.key) })
}

// expireAt bounds a loaded value's lifetime. Bind cannot know it because
// storage hands back the value without its expiry.
func (b *Binding[T]) expireAt(t time.Time) {
	b.mu.Lock()
	if b.present {
		b.expiresAt = t
	}
	b.mu.Unlock()
}

// Check re-validates the binding against storage and its own lifetime. It
// reports true when a present value was dropped because the stored entry is
// gone or the lifetime lapsed. Storage failures leave the value alone.
func (b *Binding[T]) Check() bool {
	b.mu.Lock()
	present, gen := b.present, b.gen
	lapsed := present && b.lapsedLocked()
	b.mu.Unlock()
	if !present {
		return false
	}

	gone := lapsed
	if !gone && b.cache.Available() {
		var stored T
		found, err := b.cache.lookup(b.key, &stored)
		gone = err == nil && !found
	}
	if !gone {
		return false
	}

	b.mu.Lock()
	if b.gen != gen {
		// Set or Clear ran while storage was consulted; theirs is newer.
		b.mu.Unlock()
		return false
	}
	b.resetLocked()
	gen = b.gen
	b.mu.Unlock()
	if lapsed {
		b.persist(gen, func() { b.cache.Remove(b.key) })
	}
	return true
}

// Watch runs Check every interval until ctx is done, calling onExpire each
// time a value is dropped. interval <= 0 selects DefaultSweepInterval.
func (b *Binding[T]) Watch(ctx context.Context, interval time.Duration, onExpire func()) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if b.Check() && onExpire != nil {
				onExpire()
			}
		case <-ctx.Done():
			return
		}
	}
}

// persist runs write unless a later Store or Clear has superseded gen.
func (b *Binding[T]) persist(gen uint64, write func()) {
	b.wmu.Lock()
	defer b.wmu.Unlock()
	b.mu.Lock()
	current := b.gen == gen
	b.mu.Unlock()
	if current {
		write()
	}
}

func (b *Binding[T]) lapsedLocked() bool {
	return !b.expiresAt.IsZero() && b.cache.now().After(b.expiresAt)
}

func (b *Binding[T]) resetLocked() {
	b.value = b.initial
	b.present = false
	b.gen++
	b.expiresAt = time.Time{}
}
