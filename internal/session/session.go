package session

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultKey is the storage key used for the signed-in user.
const DefaultKey = "currentUser"

var (
	ErrNoToken      = errors.New("session: user has no token")
	ErrTokenExpired = errors.New("session: token already expired")
)

// User is the signed-in account as returned by the backend's login call.
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt,omitzero"`
}

type Options struct {
	// Key is the storage key. Default: DefaultKey.
	Key string
	// TTL bounds how long a login is remembered. Zero keeps it until the
	// token expires, or forever for opaque tokens.
	TTL time.Duration
	// SweepInterval is passed to Binding.Watch by Run.
	SweepInterval time.Duration
}

// Session is the current-user context. Construct one per process and pass it
// to whatever needs the signed-in user.
type Session struct {
	binding *Binding[User]
	cache   *Cache
	opts    Options

	mu        sync.Mutex
	listeners []func(User, bool)
}

// New restores any stored user from c. A restored user keeps the expiry
// stamped at login.
func New(c *Cache, opts Options) *Session {
	if opts.Key == "" {
		opts.Key = DefaultKey
	}
	if c == nil {
		c = NewCache(nil)
	}
	b := Bind(c, opts.Key, User{}, opts.TTL)
	if u, ok := b.Value(); ok && !u.ExpiresAt.IsZero() {
		b.expireAt(u.ExpiresAt)
	}
	return &Session{binding: b, cache: c, opts: opts}
}

// OnChange registers fn to run after login, logout and expiry. The bool is
// false when nobody is signed in.
func (s *Session) OnChange(fn func(User, bool)) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// Login stores u. The remembered lifetime is Options.TTL, shortened to the
// token's exp claim when the token is a JWT carrying one.
func (s *Session) Login(u User) error {
	if strings.TrimSpace(u.Token) == "" {
		return ErrNoToken
	}
	now := s.cache.now()
	ttl := s.opts.TTL
	if exp, ok := tokenExpiry(u.Token); ok {
		left := exp.Sub(now)
		if left <= 0 {
			return ErrTokenExpired
		}
		if ttl <= 0 || left < ttl {
			ttl = left
		}
	}
	u.ExpiresAt = time.Time{}
	if ttl > 0 {
		u.ExpiresAt = now.Add(ttl)
	}
	s.binding.Store(u, ttl)
	s.notify(u, true)
	return nil
}

// Logout forgets the user. Calling it while signed out is harmless.
func (s *Session) Logout() {
	_, was := s.binding.Value()
	s.binding.Clear()
	if was {
		s.notify(User{}, false)
	}
}

// Current returns the signed-in user.
func (s *Session) Current() (User, bool) {
	return s.binding.Value()
}

// Token returns the bearer token of the signed-in user, or "".
func (s *Session) Token() string {
	u, ok := s.Current()
	if !ok {
		return ""
	}
	return u.Token
}

// Run sweeps the stored session until ctx is done.
func (s *Session) Run(ctx context.Context) {
	s.binding.Watch(ctx, s.opts.SweepInterval, func() { s.notify(User{}, false) })
}

func (s *Session) notify(u User, ok bool) {
	s.mu.Lock()
	fns := slices.Clone(s.listeners)
	s.mu.Unlock()
	for _, fn := range fns {
		fn(u, ok)
	}
}

// tokenExpiry reads the exp claim without verifying the signature; the
// backend remains the authority on whether the token is valid.
func tokenExpiry(token string) (time.Time, bool) {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, false
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
