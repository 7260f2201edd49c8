package opsy

import (
	"fmt"
	"slices"
)

// enumSet is the type-erased view of an Enum used by Type.
type enumSet interface {
	Name() string
	Strings() []string
	// member returns the enumeration member for a raw value.
	member(v any) (any, bool)
}

// Enum is a closed set of string values with a total mapping to and from its
// external representation. Create enums once at startup with NewEnum.
type Enum[E ~string] struct {
	name   string
	values []E
	index  map[string]E
}

// NewEnum creates an enumeration named name with the given members in order.
// It panics on an empty name, no members, or a duplicate member: enums are
// declared by the program, not by its input.
func NewEnum[E ~string](name string, values ...E) *Enum[E] {
	if name == "" {
		panic("opsy: NewEnum name must not be empty")
	}
	if len(values) == 0 {
		panic(fmt.Sprintf("opsy: enum %s has no members", name))
	}
	index := make(map[string]E, len(values))
	for _, v := range values {
		if _, dup := index[string(v)]; dup {
			panic(fmt.Sprintf("opsy: enum %s has duplicate member %q", name, v))
		}
		index[string(v)] = v
	}
	return &Enum[E]{name: name, values: slices.Clone(values), index: index}
}

// Name returns the enumeration's type name (used in help text).
func (e *Enum[E]) Name() string { return e.name }

// Values returns the members in declaration order.
func (e *Enum[E]) Values() []E { return slices.Clone(e.values) }

// Strings returns the members' string forms in declaration order.
func (e *Enum[E]) Strings() []string {
	out := make([]string, len(e.values))
	for i, v := range e.values {
		out[i] = string(v)
	}
	return out
}

// Contains reports whether v is a member.
func (e *Enum[E]) Contains(v E) bool {
	_, ok := e.index[string(v)]
	return ok
}

// Parse maps an external string to its member. The error wraps ErrInvalidEnumValue.
func (e *Enum[E]) Parse(s string) (E, error) {
	v, ok := e.index[s]
	if !ok {
		var zero E
		return zero, fmt.Errorf("%w: %q is not a %s", ErrInvalidEnumValue, s, e.name)
	}
	return v, nil
}

// Type returns the field type for this enumeration.
func (e *Enum[E]) Type() Type { return Type{kind: KindEnum, enum: e} }

func (e *Enum[E]) member(v any) (any, bool) {
	switch s := v.(type) {
	case E:
		m, ok := e.index[string(s)]
		return m, ok
	case string:
		m, ok := e.index[s]
		return m, ok
	}
	return nil, false
}
