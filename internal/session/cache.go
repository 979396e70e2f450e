package session

import (
	"encoding/json"
	"errors"
	"reflect"
	"time"

	"github.com/leonardcser/adminkit/internal/cache"
	"github.com/leonardcser/adminkit/internal/logger"
)

var errBadTarget = errors.New("session cache: decode target must be a non-nil pointer")

// Cache stores JSON values with a TTL in a cache.KV. A nil KV means storage
// is unavailable and every call becomes a miss or a no-op.
type Cache struct {
	kv  cache.KV
	now func() time.Time
}

type CacheOption func(*Cache)

// WithClock overrides the clock used for in-memory expiry bookkeeping.
func WithClock(now func() time.Time) CacheOption {
	return func(c *Cache) { c.now = now }
}

func NewCache(kv cache.KV, opts ...CacheOption) *Cache {
	c := &Cache{kv: kv, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Available reports whether a storage backend is attached.
func (c *Cache) Available() bool { return c != nil && c.kv != nil }

// Set stores value under key for ttl; ttl <= 0 stores without expiry.
func (c *Cache) Set(key string, value any, ttl time.Duration) {
	if !c.Available() {
		return
	}
	b, err := json.Marshal(value)
	if err != nil {
		logger.Warnf("session cache: encode %q: %v", key, err)
		return
	}
	if ttl < 0 {
		ttl = 0
	}
	if err := c.kv.Put(key, b, ttl); err != nil {
		logger.Warnf("session cache: write %q: %v", key, err)
	}
}

// Get decodes the live value under key into out. It returns false when the
// key is missing, expired, malformed or when storage fails; out is left
// untouched in those cases.
func (c *Cache) Get(key string, out any) bool {
	found, err := c.lookup(key, out)
	if err != nil {
		logger.Warnf("session cache: read %q: %v", key, err)
	}
	return found
}

// Remove deletes key. Missing keys are fine.
func (c *Cache) Remove(key string) {
	if !c.Available() {
		return
	}
	if err := c.kv.Delete(key); err != nil {
		logger.Warnf("session cache: remove %q: %v", key, err)
	}
}

// lookup separates "the entry is gone" (false, nil) from "storage could not
// answer" (false, err).
func (c *Cache) lookup(key string, out any) (bool, error) {
	if err := checkTarget(out); err != nil {
		return false, err
	}
	if !c.Available() {
		return false, nil
	}
	raw, err := c.kv.Get(key)
	switch {
	case err == nil:
	case errors.Is(err, cache.ErrNotFound), errors.Is(err, cache.ErrExpired):
		return false, nil
	case errors.Is(err, cache.ErrMalformed):
		logger.Infof("session cache: dropped malformed entry %q", key)
		return false, nil
	default:
		return false, err
	}
	if string(raw) == "null" {
		c.Remove(key)
		return false, nil
	}
	if err := decodeInto(raw, out); err != nil {
		// The entry parsed but its value does not fit the consumer's type.
		logger.Infof("session cache: dropped undecodable value %q: %v", key, err)
		c.Remove(key)
		return false, nil
	}
	return true, nil
}

// decodeInto unmarshals into a fresh value first so a failed decode never
// leaves out half written.
func decodeInto(raw []byte, out any) error {
	if out == nil {
		return nil
	}
	rv := reflect.ValueOf(out)
	tmp := reflect.New(rv.Elem().Type())
	if err := json.Unmarshal(raw, tmp.Interface()); err != nil {
		return err
	}
	rv.Elem().Set(tmp.Elem())
	return nil
}

func checkTarget(out any) error {
	if out == nil {
		return nil
	}
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return errBadTarget
	}
	return nil
}
