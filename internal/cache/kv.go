package cache

import (
	"errors"
	"strings"
	"time"
)

// MaxKeyLength is the maximum allowed length for a key.
const MaxKeyLength = 512

var (
	ErrNotFound   = errors.New("cache: not found")
	ErrExpired    = errors.New("cache: expired")
	ErrMalformed  = errors.New("cache: malformed entry")
	ErrInvalidKey = errors.New("cache: invalid key")
)

// KV defines the minimal key-value contract with TTL semantics.
// Implementations must be safe for concurrent use by multiple goroutines.
//
// Get must never return an expired entry. Expired and malformed entries are
// removed as a side effect of being read.
type KV interface {
	Get(key string) ([]byte, error)
	Put(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
}

// ValidateKey rejects empty keys, keys with line breaks and oversized keys.
func ValidateKey(key string) error {
	if strings.TrimSpace(key) == "" || strings.ContainsAny(key, "\r\n") || len(key) > MaxKeyLength {
		return ErrInvalidKey
	}
	return nil
}
