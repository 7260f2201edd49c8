package opsy

import (
	"fmt"
	"slices"
)

// Field describes one named argument of an operation.
type Field struct {
	Name        string
	Type        Type
	Required    bool
	Default     any
	Description string
}

// Required declares a field that must be present in the argument bag.
func Required(name string, t Type) Field {
	return Field{Name: name, Type: t, Required: true}
}

// Optional declares a field that binds nil when absent.
func Optional(name string, t Type) Field {
	return Field{Name: name, Type: t}
}

// WithDefault declares an optional field that binds def when absent.
// def must be a valid value of t; NewSchema checks it.
func WithDefault(name string, t Type, def any) Field {
	return Field{Name: name, Type: t, Default: def}
}

// Describe returns a copy of f with a description for the exported JSON Schema.
func (f Field) Describe(description string) Field {
	f.Description = description
	return f
}

// Schema is the immutable, ordered argument declaration of one operation. It is the
// single source of truth for validation, help text, and JSON Schema export.
type Schema struct {
	operation string
	fields    []Field
	index     map[string]int
}

// NewSchema checks the field declarations and returns the schema for operation.
// Unsupported shapes (duplicate or empty names, unions of more than one non-null
// type, nested lists, defaults of the wrong type, required fields with defaults)
// are reported as *ConfigError.
func NewSchema(operation string, fields ...Field) (*Schema, error) {
	if operation == "" {
		return nil, &ConfigError{Reason: "operation name must not be empty"}
	}
	if operation == HelpOperation {
		return nil, &ConfigError{Operation: operation, Reason: "operation name is reserved"}
	}
	s := &Schema{
		operation: operation,
		fields:    make([]Field, 0, len(fields)),
		index:     make(map[string]int, len(fields)),
	}
	for _, f := range fields {
		nf, err := normalizeField(operation, f)
		if err != nil {
			return nil, err
		}
		if _, dup := s.index[nf.Name]; dup {
			return nil, &ConfigError{Operation: operation, Field: nf.Name, Reason: "duplicate field name"}
		}
		s.index[nf.Name] = len(s.fields)
		s.fields = append(s.fields, nf)
	}
	return s, nil
}

// MustSchema is like NewSchema but panics on a configuration error.
// Use it for schemas declared in package-level variables.
func MustSchema(operation string, fields ...Field) *Schema {
	s, err := NewSchema(operation, fields...)
	if err != nil {
		panic(err)
	}
	return s
}

// Operation returns the name of the operation the schema belongs to.
func (s *Schema) Operation() string { return s.operation }

// Fields returns the field descriptors in declaration order.
func (s *Schema) Fields() []Field { return slices.Clone(s.fields) }

// Field returns the descriptor for name.
func (s *Schema) Field(name string) (Field, bool) {
	i, ok := s.index[name]
	if !ok {
		return Field{}, false
	}
	return s.fields[i], true
}

// Len returns the number of fields.
func (s *Schema) Len() int { return len(s.fields) }

func normalizeField(operation string, f Field) (Field, error) {
	cfgErr := func(format string, args ...any) error {
		return &ConfigError{Operation: operation, Field: f.Name, Reason: fmt.Sprintf(format, args...)}
	}
	if f.Name == "" {
		return Field{}, cfgErr("field name must not be empty")
	}
	if f.Type.kind == KindUnion {
		var nonNull []Type
		hasNull := false
		for _, m := range f.Type.members {
			if m.kind == KindNull {
				hasNull = true
				continue
			}
			nonNull = append(nonNull, m)
		}
		if len(nonNull) != 1 {
			return Field{}, cfgErr("union %s has %d non-null types; only optional-of-one is supported", f.Type.Name(), len(nonNull))
		}
		f.Type = nonNull[0]
		if hasNull {
			f.Required = false
		}
	}
	switch f.Type.kind {
	case KindInt, KindString, KindBool:
	case KindEnum:
		if f.Type.enum == nil {
			return Field{}, cfgErr("enum type has no members")
		}
	case KindList:
		elem, ok := f.Type.Elem()
		if !ok || !elem.isPrimitive() {
			return Field{}, cfgErr("list element must be int, str or bool, got %s", f.Type.Name())
		}
	case KindNull:
		return Field{}, cfgErr("field cannot be only null")
	default:
		return Field{}, cfgErr("invalid type")
	}
	if f.Default != nil {
		if f.Required {
			return Field{}, cfgErr("required field cannot have a default")
		}
		def, err := bindValue(f, f.Default)
		if err != nil {
			return Field{}, cfgErr("default %v is not a valid %s", f.Default, f.Type.Name())
		}
		f.Default = def
	}
	return f, nil
}
