package sheet

import (
	"bytes"
	"encoding/json"

	"github.com/JonMunkholm/sheetload/internal/field"
)

// Record is one accepted row: attribute names mapped to cleaned values,
// kept in insertion order.
type Record struct {
	keys   []string
	values map[string]any
}

// NewRecord builds a record from alternating key/value pairs.
func NewRecord(pairs ...any) Record {
	var r Record
	for i := 0; i+1 < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			continue
		}
		r.set(key, pairs[i+1])
	}
	return r
}

func (r *Record) set(key string, v any) {
	if r.values == nil {
		r.values = make(map[string]any)
	}
	if _, exists := r.values[key]; !exists {
		r.keys = append(r.keys, key)
	}
	r.values[key] = v
}

// Get returns the value stored under key.
func (r Record) Get(key string) (any, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Value returns the value stored under key, or nil.
func (r Record) Value(key string) any {
	return r.values[key]
}

// Keys returns the attribute names in order.
func (r Record) Keys() []string {
	return append([]string(nil), r.keys...)
}

// Len returns the number of attributes.
func (r Record) Len() int { return len(r.keys) }

// Map returns a copy of the record as a plain map.
func (r Record) Map() map[string]any {
	m := make(map[string]any, len(r.keys))
	for _, k := range r.keys {
		m[k] = r.values[k]
	}
	return m
}

// Without returns a copy of r lacking the given keys.
func (r Record) Without(keys ...string) Record {
	drop := make(map[string]bool, len(keys))
	for _, k := range keys {
		drop[k] = true
	}

	var out Record
	for _, k := range r.keys {
		if !drop[k] {
			out.set(k, r.values[k])
		}
	}
	return out
}

// Empty reports whether every value is falsy. A record without attributes
// is empty.
func (r Record) Empty() bool {
	for _, k := range r.keys {
		if !field.IsEmpty(r.values[k]) {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the record as an object with keys in order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(r.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
