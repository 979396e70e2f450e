package cache

import (
	"encoding/json"
	"errors"
	"net"
	"time"
)

// Client implements KV over a Unix socket served by Serve.
type Client struct {
	socketPath  string
	dialTimeout time.Duration
}

func NewClient(socketPath string) *Client {
	return &Client{socketPath: socketPath, dialTimeout: 500 * time.Millisecond}
}

// Ping checks that the daemon accepts connections.
func (c *Client) Ping() error {
	conn, err := net.DialTimeout("unix", c.socketPath, c.dialTimeout)
	if err != nil {
		return err
	}
	return conn.Close()
}

func (c *Client) roundTrip(req Request) (Response, error) {
	var resp Response
	conn, err := net.DialTimeout("unix", c.socketPath, c.dialTimeout)
	if err != nil {
		return resp, err
	}
	defer conn.Close()
	if err := json.NewEncoder(conn).Encode(&req); err != nil {
		return resp, err
	}
	if err := json.NewDecoder(conn).Decode(&resp); err != nil {
		return resp, err
	}
	if !resp.OK {
		if known, ok := wireErrors[resp.Error]; ok {
			return resp, known
		}
		return resp, errors.New(resp.Error)
	}
	return resp, nil
}

func (c *Client) Get(key string) ([]byte, error) {
	resp, err := c.roundTrip(Request{Op: OpGet, Key: key})
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), resp.Value...), nil
}

func (c *Client) Put(key string, value []byte, ttl time.Duration) error {
	_, err := c.roundTrip(Request{Op: OpPut, Key: key, Value: value, TTLMs: wireTTL(ttl)})
	return err
}

// wireTTL rounds ttl up to whole milliseconds. A positive ttl never becomes
// 0, which the server reads as "no expiry".
func wireTTL(ttl time.Duration) int64 {
	if ttl <= 0 {
		return 0
	}
	return int64((ttl + time.Millisecond - 1) / time.Millisecond)
}

func (c *Client) Delete(key string) error {
	_, err := c.roundTrip(Request{Op: OpDelete, Key: key})
	return err
}

var _ KV = (*Client)(nil)
