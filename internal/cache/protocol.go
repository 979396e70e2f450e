package cache

// JSON protocol for the storage daemon over a Unix domain socket.
// Each request gets exactly one response; a connection may carry many.

const (
	OpGet    = "get"
	OpPut    = "put"
	OpDelete = "delete"
)

type Request struct {
	Op    string `json:"op"` // "get" | "put" | "delete"
	Key   string `json:"key"`
	Value []byte `json:"value,omitempty"`
	TTLMs int64  `json:"ttl_ms,omitempty"`
}

type Response struct {
	OK    bool   `json:"ok"`
	Value []byte `json:"value,omitempty"`
	Error string `json:"error,omitempty"`
}

// wireErrors maps sentinel messages back to their values on the client side.
var wireErrors = map[string]error{
	ErrNotFound.Error():   ErrNotFound,
	ErrExpired.Error():    ErrExpired,
	ErrMalformed.Error():  ErrMalformed,
	ErrInvalidKey.Error(): ErrInvalidKey,
}
