// Package dates holds the optional timestamp type carried by documents and the
// locale-aware formatter used at the rendering boundary.
package dates

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// OptionalTime is a timestamp that may be absent.
// Absence is a distinct state from the zero time and only collapses to an empty
// string when formatted.
type OptionalTime struct {
	t     time.Time
	valid bool
}

// Some wraps a present timestamp.
func Some(t time.Time) OptionalTime {
	return OptionalTime{t: t, valid: true}
}

// None returns an absent timestamp.
func None() OptionalTime {
	return OptionalTime{}
}

// Get returns the timestamp and whether it is present.
func (o OptionalTime) Get() (time.Time, bool) {
	return o.t, o.valid
}

// Valid reports whether the timestamp is present.
func (o OptionalTime) Valid() bool {
	return o.valid
}

// Before orders absent timestamps after present ones.
func (o OptionalTime) Before(other OptionalTime) bool {
	switch {
	case !o.valid:
		return false
	case !other.valid:
		return true
	default:
		return o.t.Before(other.t)
	}
}

// Parse accepts the timestamp layouts the content API emits.
// An empty string yields None.
func Parse(s string) (OptionalTime, error) {
	if s == "" {
		return None(), nil
	}
	layouts := []string{time.RFC3339Nano, "2006-01-02T15:04:05-0700", "2006-01-02 15:04:05", "2006-01-02"}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Some(t), nil
		}
	}
	return None(), fmt.Errorf("invalid timestamp %q", s)
}

// MarshalJSON encodes absence as null.
func (o OptionalTime) MarshalJSON() ([]byte, error) {
	if !o.valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.t.Format(time.RFC3339))
}

// UnmarshalJSON decodes null or a timestamp string.
func (o *OptionalTime) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = None()
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}
