package opsy

import (
	"maps"
	"slices"
)

// Values is the validated argument record of one call. It is produced only by
// Validate, holds one entry per schema field, and is never shared between calls.
//
// Accessors return the zero value for unknown names or a different declared type;
// handlers read fields declared by their own schema.
type Values struct {
	schema *Schema
	vals   map[string]any
}

// Schema returns the schema the values were validated against.
func (v Values) Schema() *Schema { return v.schema }

// Names returns the field names in schema order.
func (v Values) Names() []string {
	if v.schema == nil {
		return nil
	}
	names := make([]string, len(v.schema.fields))
	for i, f := range v.schema.fields {
		names[i] = f.Name
	}
	return names
}

// Get returns the bound value and whether it is non-nil.
func (v Values) Get(name string) (any, bool) {
	val, ok := v.vals[name]
	return val, ok && val != nil
}

// Map returns a shallow copy of the bound values keyed by field name.
// List values are shared; callers must not mutate them.
func (v Values) Map() map[string]any { return maps.Clone(v.vals) }

func (v Values) Int(name string) int {
	n, _ := v.vals[name].(int)
	return n
}

func (v Values) String(name string) string {
	s, _ := v.vals[name].(string)
	return s
}

func (v Values) Bool(name string) bool {
	b, _ := v.vals[name].(bool)
	return b
}

// Ints returns a copy of a list[int] field.
func (v Values) Ints(name string) []int {
	s, _ := v.vals[name].([]int)
	return slices.Clone(s)
}

// Strings returns a copy of a list[str] field.
func (v Values) Strings(name string) []string {
	s, _ := v.vals[name].([]string)
	return slices.Clone(s)
}

// OptionalInt returns nil when an optional int field was not supplied.
func (v Values) OptionalInt(name string) *int {
	n, ok := v.vals[name].(int)
	if !ok {
		return nil
	}
	return &n
}

// OptionalString returns nil when an optional str field was not supplied.
func (v Values) OptionalString(name string) *string {
	s, ok := v.vals[name].(string)
	if !ok {
		return nil
	}
	return &s
}

// OptionalBool returns nil when an optional bool field was not supplied.
func (v Values) OptionalBool(name string) *bool {
	b, ok := v.vals[name].(bool)
	if !ok {
		return nil
	}
	return &b
}

// EnumValue returns the member bound to an enumeration field.
func EnumValue[E ~string](v Values, name string) E {
	e, _ := v.vals[name].(E)
	return e
}

// OptionalEnum returns nil when an optional enumeration field was not supplied.
func OptionalEnum[E ~string](v Values, name string) *E {
	e, ok := v.vals[name].(E)
	if !ok {
		return nil
	}
	return &e
}
