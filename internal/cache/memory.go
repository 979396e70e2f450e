package cache

import (
	"sync"
	"time"
)

// Memory is an in-process KV with the same entry format and expiry rules as
// Store. It stands in when no persistent storage is available.
type Memory struct {
	mu         sync.Mutex
	entries    map[string][]byte
	defaultTTL time.Duration
	now        func() time.Time
}

// NewMemory returns an empty Memory. Only DefaultTTL and Now are used from opts.
func NewMemory(opts Options) *Memory {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Memory{entries: make(map[string][]byte), defaultTTL: opts.DefaultTTL, now: now}
}

func (m *Memory) Put(key string, value []byte, ttl time.Duration) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if ttl <= 0 {
		ttl = m.defaultTTL
	}
	buf, err := encodeEntry(value, expiryFor(m.now(), ttl))
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.entries[key] = buf
	m.mu.Unlock()
	return nil
}

func (m *Memory) Get(key string) ([]byte, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.entries[key]
	if !ok {
		return nil, ErrNotFound
	}
	e, err := decodeEntry(raw)
	if err == nil && e.expired(m.now()) {
		err = ErrExpired
	}
	if err != nil {
		delete(m.entries, key)
		return nil, err
	}
	return append([]byte(nil), e.Value...), nil
}

func (m *Memory) Delete(key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}

// Has reports whether key is physically present, without expiry checks.
func (m *Memory) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.entries[key]
	return ok
}

var _ KV = (*Memory)(nil)
