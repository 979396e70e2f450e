package cache

import (
	"encoding/json"
	"time"
)

// entry is the stored shape: {"value": <any>, "expiry": <epoch millis or 0>}.
type entry struct {
	Value  json.RawMessage `json:"value"`
	Expiry int64           `json:"expiry"`
}

func expiryFor(now time.Time, ttl time.Duration) int64 {
	if ttl <= 0 {
		return 0
	}
	return now.Add(ttl).UnixMilli()
}

func encodeEntry(value []byte, expiry int64) ([]byte, error) {
	if len(value) == 0 {
		value = []byte("null")
	}
	if !json.Valid(value) {
		return nil, ErrMalformed
	}
	return json.Marshal(entry{Value: value, Expiry: expiry})
}

// decodeEntry validates the stored bytes. The entry must be a JSON object
// carrying an integer expiry property; a missing value decodes as null.
func decodeEntry(raw []byte) (entry, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return entry{}, ErrMalformed
	}
	exp, ok := fields["expiry"]
	if !ok {
		return entry{}, ErrMalformed
	}
	var e entry
	if string(exp) != "null" {
		if err := json.Unmarshal(exp, &e.Expiry); err != nil {
			return entry{}, ErrMalformed
		}
	}
	e.Value = fields["value"]
	if len(e.Value) == 0 {
		e.Value = json.RawMessage("null")
	}
	return e, nil
}

func (e entry) expired(now time.Time) bool {
	return e.Expiry > 0 && now.UnixMilli() > e.Expiry
}
