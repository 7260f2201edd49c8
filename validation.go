package opsy

// Args is the untyped argument bag supplied by the caller. A nil bag is empty.
type Args map[string]any

// Validate checks bag against schema field by field, in declaration order, and
// returns the validated values. The first failure is returned as a *ClientError
// wrapping an *ArgumentError (MissingArgument, TypeMismatch or InvalidEnumValue),
// so the caller can hand the message back to the agent for self-correction.
//
// An optional field that is absent or null binds its default (nil when none).
// No coercion across primitive types is performed.
func Validate(schema *Schema, bag Args) (Values, error) {
	vals := make(map[string]any, len(schema.fields))
	for _, f := range schema.fields {
		raw, present := bag[f.Name]
		if !present || (raw == nil && !f.Required) {
			if f.Required {
				return Values{}, clientErr(&ArgumentError{
					Kind:     ErrMissingArgument,
					Field:    f.Name,
					Expected: f.Type.Name(),
				})
			}
			vals[f.Name] = f.Default
			continue
		}
		v, err := bindValue(f, raw)
		if err != nil {
			return Values{}, clientErr(err)
		}
		vals[f.Name] = v
	}
	return Values{schema: schema, vals: vals}, nil
}

// bindValue type-checks one present raw value against its field.
func bindValue(f Field, raw any) (any, *ArgumentError) {
	if f.Type.kind == KindEnum {
		m, ok := f.Type.enum.member(raw)
		if !ok {
			return nil, &ArgumentError{
				Kind:     ErrInvalidEnumValue,
				Field:    f.Name,
				Expected: f.Type.Name(),
				Value:    raw,
			}
		}
		return m, nil
	}
	v, actual, ok := f.Type.coerce(raw)
	if !ok {
		return nil, &ArgumentError{
			Kind:     ErrTypeMismatch,
			Field:    f.Name,
			Expected: f.Type.Name(),
			Actual:   actual,
			Value:    raw,
		}
	}
	return v, nil
}

func clientErr(ae *ArgumentError) error {
	return &ClientError{Reason: ae.Error(), Err: ae}
}
