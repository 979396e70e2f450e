package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime"
	"strings"
)

type envelope struct {
	Data   json.RawMessage `json:"data"`
	Errors []string        `json:"errors"`
}

// Decode normalizes a backend response. status and contentType come from
// the HTTP response; body is the raw payload.
//
//   - truthy data on a 2xx response is success;
//   - data === false with at least one error is a rejection, whatever the status;
//   - everything else is a failure.
func Decode[T any](status int, contentType string, body []byte) Result[T] {
	if isHTML(contentType, body) {
		return Fail[T](fmt.Sprintf("status %d: %s", status, htmlDetail(body)))
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return Fail[T](fmt.Sprintf("status %d: undecodable body: %v", status, err))
	}
	data := bytes.TrimSpace(env.Data)
	errs := nonEmpty(env.Errors)

	if string(data) == "false" {
		if len(errs) > 0 {
			return Reject[T](errs...)
		}
		return Fail[T](fmt.Sprintf("status %d: rejected without errors", status))
	}
	if status < 200 || status > 299 {
		return Fail[T](fmt.Sprintf("status %d", status))
	}
	if !truthy(data) {
		return Fail[T](fmt.Sprintf("status %d: empty data %s", status, orNothing(data)))
	}

	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		// A bool result only asks "did it work"; any truthy payload says yes.
		if b, ok := any(&out).(*bool); ok {
			*b = true
			return Ok(out)
		}
		return Fail[T](fmt.Sprintf("status %d: unexpected data: %v", status, err))
	}
	return Ok(out)
}

// truthy follows the backend client's notion of a truthy JSON value.
func truthy(raw []byte) bool {
	s := string(raw)
	switch s {
	case "", "null", "false", "0", `""`:
		return false
	}
	if raw[0] == '-' || (raw[0] >= '0' && raw[0] <= '9') {
		var f float64
		if json.Unmarshal(raw, &f) == nil {
			return f != 0
		}
	}
	return true
}

func nonEmpty(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func isHTML(contentType string, body []byte) bool {
	if mt, _, err := mime.ParseMediaType(contentType); err == nil && mt == "text/html" {
		return true
	}
	head := bytes.ToLower(bytes.TrimSpace(body[:min(len(body), 64)]))
	return bytes.HasPrefix(head, []byte("<!doctype html")) || bytes.HasPrefix(head, []byte("<html"))
}

func orNothing(b []byte) string {
	if len(b) == 0 {
		return "(missing)"
	}
	return string(b)
}
