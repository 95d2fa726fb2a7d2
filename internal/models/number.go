package models

import (
	"bytes"
	"strconv"
)

// Int is an integer that decodes leniently from JSON. Missing, null, quoted
// or malformed values decode to zero; fractional numbers are truncated.
type Int int64

// UnmarshalJSON implements json.Unmarshaler.
func (i *Int) UnmarshalJSON(data []byte) error {
	s := trimJSONScalar(data)
	if s == "" {
		*i = 0
		return nil
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		*i = Int(v)
		return nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		*i = Int(int64(f))
		return nil
	}
	*i = 0
	return nil
}

// Int64 returns the value as an int64.
func (i Int) Int64() int64 { return int64(i) }

// Float is a float64 that decodes leniently from JSON, following the same
// rules as Int.
type Float float64

// UnmarshalJSON implements json.Unmarshaler.
func (f *Float) UnmarshalJSON(data []byte) error {
	s := trimJSONScalar(data)
	if s == "" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*f = 0
		return nil
	}
	*f = Float(v)
	return nil
}

// Float64 returns the value as a float64.
func (f Float) Float64() float64 { return float64(f) }

// trimJSONScalar strips whitespace and quotes from a raw JSON scalar. It
// returns "" for null, booleans, objects and arrays.
func trimJSONScalar(data []byte) string {
	b := bytes.TrimSpace(data)
	if len(b) == 0 || b[0] == '{' || b[0] == '[' {
		return ""
	}
	s := string(bytes.Trim(b, `"`))
	switch s {
	case "null", "true", "false":
		return ""
	}
	return s
}
