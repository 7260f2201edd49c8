package opsy

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// Kind classifies a Type.
type Kind int

// Kinds of field types. KindNull and KindUnion only appear while a schema is being
// declared; NewSchema reduces them to an optional field or rejects them.
const (
	KindInvalid Kind = iota
	KindInt
	KindString
	KindBool
	KindList
	KindEnum
	KindNull
	KindUnion
)

// Type is the declared type of a schema field.
type Type struct {
	kind    Kind
	elem    *Type
	enum    enumSet
	members []Type
}

// Primitive field types.
var (
	Int    = Type{kind: KindInt}
	String = Type{kind: KindString}
	Bool   = Type{kind: KindBool}
	// Null is only meaningful as a member of AnyOf.
	Null = Type{kind: KindNull}
)

// ListOf returns a list type of the given primitive element type.
func ListOf(elem Type) Type {
	e := elem
	return Type{kind: KindList, elem: &e}
}

// AnyOf declares a union type. A union of exactly one non-null member and Null is
// the same as an optional field of that member; every other union is rejected by
// NewSchema with a ConfigError.
func AnyOf(members ...Type) Type {
	return Type{kind: KindUnion, members: append([]Type(nil), members...)}
}

// Kind returns the type's kind.
func (t Type) Kind() Kind { return t.kind }

// Elem returns the element type of a list.
func (t Type) Elem() (Type, bool) {
	if t.kind != KindList || t.elem == nil {
		return Type{}, false
	}
	return *t.elem, true
}

// EnumValues returns the permitted strings of an enumeration type, nil otherwise.
func (t Type) EnumValues() []string {
	if t.kind != KindEnum || t.enum == nil {
		return nil
	}
	return t.enum.Strings()
}

// Name returns the type name shown in help text and validation errors.
func (t Type) Name() string {
	switch t.kind {
	case KindInt:
		return "int"
	case KindString:
		return "str"
	case KindBool:
		return "bool"
	case KindNull:
		return "null"
	case KindList:
		if t.elem == nil {
			return "list"
		}
		return "list[" + t.elem.Name() + "]"
	case KindEnum:
		if t.enum == nil {
			return "enum"
		}
		return t.enum.Name()
	case KindUnion:
		names := make([]string, len(t.members))
		for i, m := range t.members {
			names[i] = m.Name()
		}
		return strings.Join(names, " | ")
	default:
		return "invalid"
	}
}

func (t Type) String() string { return t.Name() }

func (t Type) isPrimitive() bool {
	switch t.kind {
	case KindInt, KindString, KindBool:
		return true
	}
	return false
}

// coerce checks v against a primitive or list type and returns the bound Go value
// (int, string, bool, []int, []string, []bool). The second result is the runtime
// type name of the offending value when the check fails.
func (t Type) coerce(v any) (any, string, bool) {
	switch t.kind {
	case KindInt:
		n, ok := asInt(v)
		if !ok {
			return nil, runtimeTypeName(v), false
		}
		return n, "", true
	case KindString:
		s, ok := v.(string)
		if !ok {
			return nil, runtimeTypeName(v), false
		}
		return s, "", true
	case KindBool:
		b, ok := v.(bool)
		if !ok {
			return nil, runtimeTypeName(v), false
		}
		return b, "", true
	case KindList:
		return t.coerceList(v)
	}
	return nil, runtimeTypeName(v), false
}

func (t Type) coerceList(v any) (any, string, bool) {
	items, ok := listItems(v)
	if !ok {
		return nil, runtimeTypeName(v), false
	}
	elem := *t.elem
	switch elem.kind {
	case KindInt:
		out := make([]int, 0, len(items))
		for _, item := range items {
			n, ok := asInt(item)
			if !ok {
				return nil, "list[" + runtimeTypeName(item) + "]", false
			}
			out = append(out, n)
		}
		return out, "", true
	case KindString:
		out := make([]string, 0, len(items))
		for _, item := range items {
			s, ok := item.(string)
			if !ok {
				return nil, "list[" + runtimeTypeName(item) + "]", false
			}
			out = append(out, s)
		}
		return out, "", true
	case KindBool:
		out := make([]bool, 0, len(items))
		for _, item := range items {
			b, ok := item.(bool)
			if !ok {
				return nil, "list[" + runtimeTypeName(item) + "]", false
			}
			out = append(out, b)
		}
		return out, "", true
	}
	return nil, runtimeTypeName(v), false
}

func listItems(v any) ([]any, bool) {
	switch s := v.(type) {
	case []any:
		return s, true
	case []int:
		out := make([]any, len(s))
		for i, n := range s {
			out[i] = n
		}
		return out, true
	case []string:
		out := make([]any, len(s))
		for i, str := range s {
			out[i] = str
		}
		return out, true
	case []bool:
		out := make([]any, len(s))
		for i, b := range s {
			out[i] = b
		}
		return out, true
	}
	return nil, false
}

// asInt accepts Go integer kinds and integral JSON numbers. Strings and booleans
// are never integers.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int8:
		return int(n), true
	case int16:
		return int(n), true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case uint8:
		return int(n), true
	case uint16:
		return int(n), true
	case uint32:
		return int(n), true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int(n), true
	case uint:
		if uint64(n) > math.MaxInt64 {
			return 0, false
		}
		return int(n), true
	case float64:
		return integralFloat(n)
	case float32:
		return integralFloat(float64(n))
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i), true
		}
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return integralFloat(f)
	}
	return 0, false
}

func integralFloat(f float64) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	// float64(math.MaxInt64) rounds up to 2^63, which does not fit.
	if f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, false
	}
	return int(f), true
}

// runtimeTypeName names the type of a raw argument value the way help text names
// declared types.
func runtimeTypeName(v any) string {
	switch n := v.(type) {
	case nil:
		return "null"
	case bool:
		return "bool"
	case string:
		return "str"
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return "int"
	case float32, float64, json.Number:
		if _, ok := asInt(n); ok {
			return "int"
		}
		return "float"
	case []any, []int, []string, []bool:
		return "list"
	case map[string]any:
		return "dict"
	}
	return fmt.Sprintf("%T", v)
}
