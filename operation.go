package opsy

import (
	"context"
	"time"
)

// Handler executes one validated call with the collaborator (e.g. an API client).
// Handler errors are returned to the caller of Execute unchanged.
type Handler[C any] func(ctx context.Context, client C, args Values) (any, error)

// Operation binds a schema to its handler. Build one with NewOperation or
// NewDynamicOperation and add it to a Registry.
type Operation[C any] struct {
	schema      *Schema
	description string
	handler     Handler[C]
	opts        operationOptions
}

// NewOperation builds an Operation whose handler receives a typed record. bind is the
// record constructor: it runs only after validation succeeded and reads the
// validated values into T.
func NewOperation[C, T any](
	schema *Schema,
	description string,
	bind func(Values) T,
	fn func(ctx context.Context, client C, args T) (any, error),
	opts ...OperationOption,
) (*Operation[C], error) {
	if bind == nil {
		return nil, &ConfigError{Operation: schemaName(schema), Reason: "record constructor must not be nil"}
	}
	if fn == nil {
		return nil, &ConfigError{Operation: schemaName(schema), Reason: "handler must not be nil"}
	}
	return NewDynamicOperation(schema, description, func(ctx context.Context, client C, args Values) (any, error) {
		return fn(ctx, client, bind(args))
	}, opts...)
}

// NewDynamicOperation builds an Operation whose handler reads Values directly.
// Useful for operations without arguments or with schemas assembled at runtime.
func NewDynamicOperation[C any](
	schema *Schema,
	description string,
	fn Handler[C],
	opts ...OperationOption,
) (*Operation[C], error) {
	if schema == nil {
		return nil, &ConfigError{Reason: "schema must not be nil"}
	}
	if fn == nil {
		return nil, &ConfigError{Operation: schema.operation, Reason: "handler must not be nil"}
	}
	var o operationOptions
	for _, opt := range opts {
		opt(&o)
	}
	return &Operation[C]{
		schema:      schema,
		description: description,
		handler:     fn,
		opts:        o,
	}, nil
}

func (o *Operation[C]) Name() string        { return o.schema.operation }
func (o *Operation[C]) Description() string { return o.description }
func (o *Operation[C]) Schema() *Schema     { return o.schema }

// Help returns the formatted help text for the operation's schema.
func (o *Operation[C]) Help() string { return FormatHelp(o.schema) }

func (o *Operation[C]) Timeout() time.Duration { return o.opts.timeout }
func (o *Operation[C]) Tags() []string         { return append([]string(nil), o.opts.tags...) }
func (o *Operation[C]) IsDangerous() bool      { return o.opts.dangerous }

// OperationInfo is the read-only view of an operation passed to middleware.
type OperationInfo interface {
	Name() string
	Description() string
	Schema() *Schema
	Timeout() time.Duration
	Tags() []string
	IsDangerous() bool
}

func schemaName(s *Schema) string {
	if s == nil {
		return ""
	}
	return s.operation
}

var _ OperationInfo = (*Operation[any])(nil)
