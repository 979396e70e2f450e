package form

import (
	"encoding/json"
	"fmt"
)

// Clone returns a deep copy of v by round-tripping it through JSON. Dialog
// values come from and go to JSON endpoints, so every field that matters
// survives the trip, and nested slices and maps never alias the original.
func Clone[T any](v T) (T, error) {
	var out T
	b, err := json.Marshal(v)
	if err != nil {
		return out, fmt.Errorf("form: clone: %w", err)
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return out, fmt.Errorf("form: clone: %w", err)
	}
	return out, nil
}

// mustClone is for values that already went through Clone once: defaults
// checked by New, records cloned by OpenEdit and results kept by Edit.
func mustClone[T any](v T) T {
	out, err := Clone(v)
	if err != nil {
		panic(err)
	}
	return out
}
