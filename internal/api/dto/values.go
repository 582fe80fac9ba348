package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ID is an identifier sent either as a JSON string or a JSON number.
// It is echoed back in the form it was received.
type ID struct {
	raw json.RawMessage
}

// NumericID builds an ID that encodes as a bare JSON number.
func NumericID(n int) ID {
	return ID{raw: json.RawMessage(strconv.Itoa(n))}
}

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*id = ID{}
		return nil
	}

	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("id: %w", err)
		}
	} else {
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("id must be a string or a number, got %s", b)
		}
	}

	id.raw = append(json.RawMessage(nil), b...)
	return nil
}

func (id ID) MarshalJSON() ([]byte, error) {
	if len(id.raw) == 0 {
		return []byte("null"), nil
	}
	return id.raw, nil
}

// String returns the identifier text without JSON quoting.
func (id ID) String() string {
	if len(id.raw) == 0 {
		return ""
	}
	if id.raw[0] == '"' {
		var s string
		_ = json.Unmarshal(id.raw, &s)
		return s
	}
	return string(id.raw)
}

func (id ID) IsZero() bool { return strings.TrimSpace(id.String()) == "" }

// Float accepts a JSON number, a numeric string or null.
// Anything else leaves Invalid set instead of failing the whole document.
type Float struct {
	Value   float64
	Set     bool
	Invalid bool
}

func (f *Float) UnmarshalJSON(b []byte) error {
	*f = Float{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}

	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			f.Invalid = true
			return nil
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			f.Invalid = true
			return nil
		}
		f.Value, f.Set = v, true
		return nil
	}

	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		f.Invalid = true
		return nil
	}
	f.Value, f.Set = v, true
	return nil
}

// Or returns the value, or fallback when the field was absent or invalid.
func (f Float) Or(fallback float64) float64 {
	if !f.Set || f.Invalid {
		return fallback
	}
	return f.Value
}
