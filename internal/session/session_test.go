package session

import (
	"bytes"
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leonardcser/adminkit/internal/cache"
	"github.com/leonardcser/adminkit/internal/logger"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func setup(t *testing.T) (*fakeClock, *cache.Memory, *Cache) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2026, 5, 4, 8, 0, 0, 0, time.UTC)}
	mem := cache.NewMemory(cache.Options{Now: clock.Now})
	return clock, mem, NewCache(mem, WithClock(clock.Now))
}

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	t.Cleanup(func() { _ = logger.Close() })
	return &buf
}

// failingKV simulates storage that is present but refuses every operation.
type failingKV struct{ err error }

func (f failingKV) Get(string) ([]byte, error)              { return nil, f.err }
func (f failingKV) Put(string, []byte, time.Duration) error { return f.err }
func (f failingKV) Delete(string) error                     { return f.err }

type malformedKV struct{ reads []string }

func (m *malformedKV) Get(key string) ([]byte, error) {
	m.reads = append(m.reads, key)
	return nil, cache.ErrMalformed
}
func (m *malformedKV) Put(string, []byte, time.Duration) error { return nil }
func (m *malformedKV) Delete(string) error                     { return nil }

func TestCache_SetGetWithinTTL(t *testing.T) {
	for _, ttl := range []time.Duration{time.Millisecond, time.Second, time.Hour} {
		clock, mem, c := setup(t)
		c.Set("user", User{ID: 1, Name: "Ada"}, ttl)

		var got User
		require.True(t, c.Get("user", &got))
		assert.Equal(t, "Ada", got.Name)

		clock.Advance(ttl + time.Millisecond)
		got = User{}
		assert.False(t, c.Get("user", &got))
		assert.Zero(t, got)
		assert.False(t, mem.Has("user"))
	}
}

func TestCache_ZeroTTLNeverExpires(t *testing.T) {
	clock, _, c := setup(t)
	c.Set("user", User{ID: 2}, 0)
	clock.Advance(10 * 365 * 24 * time.Hour)

	var got User
	require.True(t, c.Get("user", &got))
	assert.Equal(t, int64(2), got.ID)
}

func TestCache_MalformedEntryIsDropped(t *testing.T) {
	captureLogs(t)
	kv := &malformedKV{}
	c := NewCache(kv)
	var got User
	assert.False(t, c.Get("user", &got))
	assert.False(t, c.Get("user", &got))
	assert.Len(t, kv.reads, 2)
}

func TestCache_ValueOfWrongShapeIsRemoved(t *testing.T) {
	captureLogs(t)
	_, mem, c := setup(t)
	require.NoError(t, mem.Put("user", []byte(`"not a user"`), 0))

	got := User{Name: "keep"}
	assert.False(t, c.Get("user", &got))
	assert.Equal(t, "keep", got.Name)
	assert.False(t, mem.Has("user"))
}

func TestCache_NullValueIsMiss(t *testing.T) {
	_, mem, c := setup(t)
	require.NoError(t, mem.Put("user", []byte(`null`), 0))
	var got User
	assert.False(t, c.Get("user", &got))
	assert.False(t, mem.Has("user"))
}

func TestCache_StorageFailuresAreLogged(t *testing.T) {
	logs := captureLogs(t)
	c := NewCache(failingKV{err: errors.New("quota exceeded")})

	assert.NotPanics(t, func() {
		c.Set("user", User{ID: 1}, time.Minute)
		c.Remove("user")
	})
	var got User
	assert.False(t, c.Get("user", &got))
	assert.Contains(t, logs.String(), "quota exceeded")
	assert.Contains(t, logs.String(), "[WARN]")
}

func TestCache_EncodeFailureIsLogged(t *testing.T) {
	logs := captureLogs(t)
	_, mem, c := setup(t)
	c.Set("bad", make(chan int), 0)
	assert.False(t, mem.Has("bad"))
	assert.Contains(t, logs.String(), "encode")
}

func TestCache_Unavailable(t *testing.T) {
	c := NewCache(nil)
	assert.False(t, c.Available())
	c.Set("k", 1, 0)
	var n int
	assert.False(t, c.Get("k", &n))
	c.Remove("k")
}

func TestCache_NonPointerTarget(t *testing.T) {
	logs := captureLogs(t)
	_, mem, c := setup(t)
	c.Set("k", 1, 0)
	assert.False(t, c.Get("k", User{}))
	assert.True(t, mem.Has("k"))
	assert.Contains(t, logs.String(), "non-nil pointer")
}

func TestCache_RemoveIsIdempotent(t *testing.T) {
	_, mem, c := setup(t)
	c.Set("k", 1, 0)
	c.Remove("k")
	c.Remove("k")
	assert.False(t, mem.Has("k"))
}

func TestBinding_LoadsStoredValue(t *testing.T) {
	_, _, c := setup(t)
	c.Set("theme", "dark", 0)

	b := Bind(c, "theme", "light", 0)
	v, ok := b.Value()
	assert.True(t, ok)
	assert.Equal(t, "dark", v)
}

func TestBinding_UnavailableStorageKeepsMemoryState(t *testing.T) {
	b := Bind(NewCache(nil), "theme", "light", time.Minute)
	v, ok := b.Value()
	assert.False(t, ok)
	assert.Equal(t, "light", v)

	b.Set("dark")
	v, ok = b.Value()
	assert.True(t, ok)
	assert.Equal(t, "dark", v)
	assert.False(t, b.Check())

	b.Clear()
	v, ok = b.Value()
	assert.False(t, ok)
	assert.Equal(t, "light", v)
}

func TestBinding_StorageFailureKeepsMemoryState(t *testing.T) {
	captureLogs(t)
	b := Bind(NewCache(failingKV{err: errors.New("disk full")}), "k", 0, 0)
	b.Set(42)
	assert.False(t, b.Check())
	v, ok := b.Value()
	assert.True(t, ok)
	assert.Equal(t, 42, v)
}

func TestBinding_CheckNoticesExpiredEntry(t *testing.T) {
	clock, mem, c := setup(t)
	b := Bind(c, "k", "none", 0)
	b.Store("v", time.Minute)

	assert.False(t, b.Check())
	clock.Advance(2 * time.Minute)
	assert.True(t, b.Check())
	assert.False(t, mem.Has("k"))

	v, ok := b.Value()
	assert.False(t, ok)
	assert.Equal(t, "none", v)
	assert.False(t, b.Check())
}

func TestBinding_CheckNoticesExternalRemoval(t *testing.T) {
	_, mem, c := setup(t)
	b := Bind(c, "k", 0, 0)
	b.Set(5)
	require.NoError(t, mem.Delete("k"))
	assert.True(t, b.Check())
}

func TestBinding_ValueHonoursLifetime(t *testing.T) {
	clock, mem, c := setup(t)
	b := Bind(c, "k", "", 0)
	b.Store("v", time.Second)
	clock.Advance(2 * time.Second)

	_, ok := b.Value()
	assert.False(t, ok)
	assert.False(t, mem.Has("k"))
}

// slowDeleteKV holds the first Delete until release is closed.
type slowDeleteKV struct {
	*cache.Memory
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (k *slowDeleteKV) Delete(key string) error {
	k.once.Do(func() {
		close(k.entered)
		<-k.release
	})
	return k.Memory.Delete(key)
}

func TestBinding_LapseDoesNotRemoveNewerValue(t *testing.T) {
	clock, mem, _ := setup(t)
	kv := &slowDeleteKV{Memory: mem, entered: make(chan struct{}), release: make(chan struct{})}
	c := NewCache(kv, WithClock(clock.Now))
	b := Bind(c, "k", "", 0)
	b.Store("old", time.Second)
	clock.Advance(2 * time.Second)

	read := make(chan struct{})
	go func() {
		defer close(read)
		_, ok := b.Value()
		assert.False(t, ok)
	}()
	<-kv.entered

	stored := make(chan struct{})
	go func() {
		defer close(stored)
		b.Set("new")
	}()
	require.Eventually(t, func() bool {
		v, ok := b.Value()
		return ok && v == "new"
	}, time.Second, time.Millisecond)

	close(kv.release)
	<-read
	<-stored

	var got string
	require.True(t, c.Get("k", &got))
	assert.Equal(t, "new", got)
}

func TestBinding_WatchFiresOnExpire(t *testing.T) {
	clock, _, c := setup(t)
	b := Bind(c, "k", "", 0)
	b.Store("v", time.Minute)
	clock.Advance(time.Hour)

	fired := make(chan struct{}, 4)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		b.Watch(ctx, 5*time.Millisecond, func() { fired <- struct{}{} })
		close(done)
	}()

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not report expiry")
	}
	time.Sleep(30 * time.Millisecond)
	cancel()
	<-done
	assert.Empty(t, fired, "expiry must be reported once")
}

func signed(t *testing.T, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "7",
		"exp": exp.Unix(),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return tok
}

func TestSession_LoginLogout(t *testing.T) {
	_, mem, c := setup(t)
	s := New(c, Options{TTL: time.Hour})

	var events []bool
	s.OnChange(func(_ User, ok bool) { events = append(events, ok) })

	require.NoError(t, s.Login(User{ID: 7, Name: "Ada", Role: "admin", Token: "opaque"}))
	u, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, "admin", u.Role)
	assert.Equal(t, "opaque", s.Token())
	assert.True(t, mem.Has(DefaultKey))

	s.Logout()
	_, ok = s.Current()
	assert.False(t, ok)
	assert.Equal(t, "", s.Token())
	assert.False(t, mem.Has(DefaultKey))

	s.Logout()
	assert.Equal(t, []bool{true, false}, events)
}

func TestSession_RestoresAcrossInstances(t *testing.T) {
	_, _, c := setup(t)
	require.NoError(t, New(c, Options{TTL: time.Hour}).Login(User{ID: 3, Token: "t"}))

	u, ok := New(c, Options{}).Current()
	require.True(t, ok)
	assert.Equal(t, int64(3), u.ID)
}

func TestSession_RestoredUserExpires(t *testing.T) {
	clock, mem, c := setup(t)
	first := New(c, Options{TTL: time.Hour})
	require.NoError(t, first.Login(User{ID: 7, Name: "Ada", Token: "opaque"}))

	restored := New(c, Options{TTL: time.Hour})
	u, ok := restored.Current()
	require.True(t, ok)
	assert.True(t, clock.Now().Add(time.Hour).Equal(u.ExpiresAt), "expires %s", u.ExpiresAt)

	clock.Advance(2 * time.Hour)
	_, ok = restored.Current()
	assert.False(t, ok)
	assert.Equal(t, "", restored.Token())
	assert.False(t, mem.Has(DefaultKey))
}

func TestSession_RestoreOfLapsedUser(t *testing.T) {
	clock, mem, c := setup(t)
	// stored without a storage TTL, but stamped as already expired
	c.Set(DefaultKey, User{ID: 7, Token: "opaque", ExpiresAt: clock.Now().Add(-time.Minute)}, 0)

	s := New(c, Options{})
	_, ok := s.Current()
	assert.False(t, ok)
	assert.False(t, mem.Has(DefaultKey))
}

// serveDaemon exposes kv through the store daemon protocol.
func serveDaemon(t *testing.T, kv cache.KV) *cache.Client {
	t.Helper()
	dir, err := os.MkdirTemp("", "aks")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.RemoveAll(dir) })
	sock := filepath.Join(dir, "s.sock")

	l, err := net.Listen("unix", sock)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- cache.Serve(ctx, l, kv) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return cache.NewClient(sock)
}

func TestCache_ShortTTLThroughDaemon(t *testing.T) {
	clock, mem, _ := setup(t)
	c := NewCache(serveDaemon(t, mem), WithClock(clock.Now))

	for _, ttl := range []time.Duration{500 * time.Microsecond, time.Millisecond, time.Second} {
		c.Set("user", User{ID: 1}, ttl)
		var got User
		require.True(t, c.Get("user", &got), "ttl %s", ttl)

		// expiry is kept in whole milliseconds
		clock.Advance(ttl + 2*time.Millisecond)
		assert.False(t, c.Get("user", &got), "ttl %s", ttl)
		assert.False(t, mem.Has("user"))
	}
}

func TestSession_RestoreThroughDaemonExpires(t *testing.T) {
	clock, mem, _ := setup(t)
	kv := serveDaemon(t, mem)
	require.NoError(t, New(NewCache(kv, WithClock(clock.Now)), Options{TTL: time.Hour}).
		Login(User{ID: 7, Token: "opaque"}))

	restored := New(NewCache(kv, WithClock(clock.Now)), Options{TTL: time.Hour})
	_, ok := restored.Current()
	require.True(t, ok)

	clock.Advance(61 * time.Minute)
	_, ok = restored.Current()
	assert.False(t, ok)
}

func TestSession_JWTExpiryBoundsTTL(t *testing.T) {
	clock, mem, c := setup(t)
	s := New(c, Options{TTL: 8 * time.Hour})

	require.NoError(t, s.Login(User{ID: 7, Token: signed(t, clock.Now().Add(30*time.Minute))}))
	u, _ := s.Current()
	assert.Equal(t, clock.Now().Add(30*time.Minute), u.ExpiresAt)

	clock.Advance(31 * time.Minute)
	_, ok := s.Current()
	assert.False(t, ok)
	assert.False(t, mem.Has(DefaultKey))
}

func TestSession_JWTLongerThanTTL(t *testing.T) {
	clock, _, c := setup(t)
	s := New(c, Options{TTL: time.Hour})
	require.NoError(t, s.Login(User{Token: signed(t, clock.Now().Add(48*time.Hour))}))
	u, _ := s.Current()
	assert.Equal(t, clock.Now().Add(time.Hour), u.ExpiresAt)
}

func TestSession_RejectsBadLogins(t *testing.T) {
	clock, _, c := setup(t)
	s := New(c, Options{})
	assert.ErrorIs(t, s.Login(User{ID: 1}), ErrNoToken)
	assert.ErrorIs(t, s.Login(User{Token: signed(t, clock.Now().Add(-time.Minute))}), ErrTokenExpired)
	_, ok := s.Current()
	assert.False(t, ok)
}

func TestSession_RunNotifiesOnExpiry(t *testing.T) {
	clock, _, c := setup(t)
	s := New(c, Options{TTL: time.Minute, SweepInterval: 5 * time.Millisecond})
	require.NoError(t, s.Login(User{ID: 1, Token: "t"}))

	expired := make(chan struct{}, 1)
	s.OnChange(func(_ User, ok bool) {
		if !ok {
			expired <- struct{}{}
		}
	})
	clock.Advance(2 * time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	select {
	case <-expired:
	case <-time.After(2 * time.Second):
		t.Fatal("session expiry not observed")
	}
}
