// Package plugins holds the extension points an enterprise layer can fill in
// at runtime without the base workflow knowing about it.
package plugins

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"sync/atomic"
)

// FieldType is the value type tag of an optional form field.
type FieldType string

const (
	FieldInteger FieldType = "integer"
	FieldString  FieldType = "string"
	FieldBoolean FieldType = "boolean"
)

// FormField describes one optional entity field contributed by a plugin.
type FormField struct {
	Name string    `json:"name"`
	Type FieldType `json:"type"`
}

// Normalize coerces v to the canonical Go type for the field: int64 for
// integers, string, or bool. JSON numbers arrive as float64 and are accepted
// when integral. A nil value stays nil.
func (f FormField) Normalize(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch f.Type {
	case FieldInteger:
		switch n := v.(type) {
		case int:
			return int64(n), nil
		case int32:
			return int64(n), nil
		case int64:
			return n, nil
		case float64:
			if n != math.Trunc(n) {
				return nil, fmt.Errorf("%s must be a whole number", f.Name)
			}
			return int64(n), nil
		case string:
			parsed, err := strconv.ParseInt(n, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%s must be an integer", f.Name)
			}
			return parsed, nil
		}
	case FieldString:
		if s, ok := v.(string); ok {
			return s, nil
		}
	case FieldBoolean:
		if b, ok := v.(bool); ok {
			return b, nil
		}
	default:
		return v, nil
	}
	return nil, fmt.Errorf("%s must be of type %s", f.Name, f.Type)
}

// Registry is the process-wide slot holding the optional field set. Readers
// see whole-value snapshots; Install and Clear replace the set atomically.
type Registry struct {
	fields atomic.Pointer[[]FormField]
}

// NewRegistry returns an empty registry, the open-source baseline.
func NewRegistry() *Registry {
	return &Registry{}
}

// Install replaces the registered set with fields.
func (r *Registry) Install(fields ...FormField) {
	set := slices.Clone(fields)
	r.fields.Store(&set)
}

// Clear removes every registered field.
func (r *Registry) Clear() {
	r.fields.Store(nil)
}

// Fields returns a copy of the registered set; nil when empty.
func (r *Registry) Fields() []FormField {
	if r == nil {
		return nil
	}
	set := r.fields.Load()
	if set == nil || len(*set) == 0 {
		return nil
	}
	return slices.Clone(*set)
}

// Lookup returns the registered field with the given name.
func (r *Registry) Lookup(name string) (FormField, bool) {
	for _, f := range r.Fields() {
		if f.Name == name {
			return f, true
		}
	}
	return FormField{}, false
}
