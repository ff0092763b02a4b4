package domain

import "fmt"

// Metadata is the schemaless property bag attached to a stored record.
// Keys the gateway does not recognize pass through untouched.
type Metadata map[string]any

// Has reports whether key is present.
func (m Metadata) Has(key string) bool {
	_, ok := m[key]
	return ok
}

// String renders the value under key as a string. Missing keys and nil
// values yield ""; non-string scalars are formatted the way encoding/json
// decoded them.
func (m Metadata) String(key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// Clone returns a shallow copy. A nil bag clones to an empty, writable one.
func (m Metadata) Clone() Metadata {
	out := make(Metadata, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	return out
}
