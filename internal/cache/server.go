package cache

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"time"
)

// Serve accepts connections on l and answers requests against kv until ctx
// is cancelled or the listener fails.
func Serve(ctx context.Context, l net.Listener, kv KV) error {
	go func() {
		<-ctx.Done()
		_ = l.Close()
	}()
	for {
		conn, err := l.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				continue
			}
			return err
		}
		go handleConn(conn, kv)
	}
}

func handleConn(conn net.Conn, kv KV) {
	defer conn.Close()
	dec := json.NewDecoder(conn)
	enc := json.NewEncoder(conn)
	for {
		var req Request
		if err := dec.Decode(&req); err != nil {
			return
		}
		_ = enc.Encode(dispatch(kv, req))
	}
}

func dispatch(kv KV, req Request) Response {
	switch req.Op {
	case OpGet:
		v, err := kv.Get(req.Key)
		if err != nil {
			return Response{Error: err.Error()}
		}
		return Response{OK: true, Value: v}
	case OpPut:
		ttl := time.Duration(req.TTLMs) * time.Millisecond
		if err := kv.Put(req.Key, req.Value, ttl); err != nil {
			return Response{Error: err.Error()}
		}
		return Response{OK: true}
	case OpDelete:
		if err := kv.Delete(req.Key); err != nil {
			return Response{Error: err.Error()}
		}
		return Response{OK: true}
	default:
		return Response{Error: "unknown op"}
	}
}
