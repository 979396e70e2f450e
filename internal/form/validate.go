package form

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

// FieldErrors maps a field name to the message shown next to it.
type FieldErrors map[string]string

// ValidationError blocks a submission with the fields at fault.
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+e.Fields[name])
	}
	return "form: invalid fields: " + strings.Join(parts, "; ")
}

// Validator checks the live values of a dialog. A nil or empty result means
// the values are valid.
type Validator[T any] func(T) FieldErrors

// Rules combines validators. When several report the same field the first
// message wins, so list the most basic rule (Required) first.
func Rules[T any](vs ...Validator[T]) Validator[T] {
	return func(v T) FieldErrors {
		var out FieldErrors
		for _, check := range vs {
			for field, msg := range check(v) {
				if out == nil {
					out = FieldErrors{}
				}
				if _, seen := out[field]; !seen {
					out[field] = msg
				}
			}
		}
		return out
	}
}

// Required rejects blank strings.
func Required[T any](field string, get func(T) string) Validator[T] {
	return func(v T) FieldErrors {
		if strings.TrimSpace(get(v)) == "" {
			return FieldErrors{field: "required"}
		}
		return nil
	}
}

// MinLength rejects strings shorter than n characters, counted as runes
// after trimming.
func MinLength[T any](field string, n int, get func(T) string) Validator[T] {
	return func(v T) FieldErrors {
		if utf8.RuneCountInString(strings.TrimSpace(get(v))) < n {
			return FieldErrors{field: fmt.Sprintf("at least %d characters", n)}
		}
		return nil
	}
}

// MaxLength rejects strings longer than n characters.
func MaxLength[T any](field string, n int, get func(T) string) Validator[T] {
	return func(v T) FieldErrors {
		if utf8.RuneCountInString(get(v)) > n {
			return FieldErrors{field: fmt.Sprintf("at most %d characters", n)}
		}
		return nil
	}
}

// Check wraps an arbitrary predicate: msg is reported for field when ok
// returns false.
func Check[T any](field, msg string, ok func(T) bool) Validator[T] {
	return func(v T) FieldErrors {
		if !ok(v) {
			return FieldErrors{field: msg}
		}
		return nil
	}
}
