package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/leonardcser/adminkit/internal/logger"
)

const (
	DefaultTimeout  = 30 * time.Second
	MaxResponseSize = 4 * 1024 * 1024 // 4MB
	userAgent       = "adminkit/0.1"
)

// TokenSource yields the bearer token for the signed-in user, or "".
type TokenSource func() string

// Client issues calls against the backend base URL. It never retries;
// recovery is left to the user.
type Client struct {
	base  *url.URL
	http  *http.Client
	token TokenSource
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.http = hc } }

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

func WithToken(ts TokenSource) Option { return func(c *Client) { c.token = ts } }

func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("api: base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, errors.New("api: base url must start with http:// or https://")
	}
	c := &Client{base: u, http: &http.Client{Timeout: DefaultTimeout}}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Get fetches path and decodes its envelope.
func Get[T any](ctx context.Context, c *Client, path string) Result[T] {
	return JSON[T](ctx, c, http.MethodGet, path, nil)
}

// Post sends body as JSON.
func Post[T any](ctx context.Context, c *Client, path string, body any) Result[T] {
	return JSON[T](ctx, c, http.MethodPost, path, body)
}

// Put sends body as JSON.
func Put[T any](ctx context.Context, c *Client, path string, body any) Result[T] {
	return JSON[T](ctx, c, http.MethodPut, path, body)
}

// JSON sends body (nil for none) encoded as JSON.
func JSON[T any](ctx context.Context, c *Client, method, path string, body any) Result[T] {
	if body == nil {
		return Send[T](ctx, c, method, path, "", nil)
	}
	b, err := json.Marshal(body)
	if err != nil {
		return Fail[T](fmt.Sprintf("encode request: %v", err))
	}
	return Send[T](ctx, c, method, path, "application/json", bytes.NewReader(b))
}

// Send performs one request with a prepared body, e.g. multipart form data.
func Send[T any](ctx context.Context, c *Client, method, path, contentType string, body io.Reader) Result[T] {
	status, ct, payload, err := c.do(ctx, method, path, contentType, body)
	if err != nil {
		logger.Warnf("api: %s %s: %v", method, path, err)
		return Fail[T](err.Error())
	}
	res := Decode[T](status, ct, payload)
	if !res.OK && !res.Rejected() {
		logger.Warnf("api: %s %s failed: %s", method, path, res.Detail)
	}
	return res
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader) (int, string, []byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	req, err := http.NewRequestWithContext(ctx, method, c.resolve(path), body)
	if err != nil {
		return 0, "", nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Request-ID", uuid.NewString())
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != nil {
		if tok := c.token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, "", nil, err
	}
	defer resp.Body.Close()
	payload, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return 0, "", nil, err
	}
	if len(payload) > MaxResponseSize {
		return 0, "", nil, fmt.Errorf("response exceeds %d bytes", MaxResponseSize)
	}
	return resp.StatusCode, resp.Header.Get("Content-Type"), payload, nil
}

func (c *Client) resolve(path string) string {
	u := *c.base
	p, q, _ := strings.Cut(path, "?")
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.TrimLeft(p, "/")
	u.RawQuery = q
	return u.String()
}
