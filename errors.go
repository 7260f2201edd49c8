package opsy

import (
	"errors"
	"fmt"
)

// Sentinel errors for opsy. Use errors.Is to check.
var (
	ErrUnknownOperation = errors.New("unknown operation")
	ErrValidation       = errors.New("validation failed")
	ErrMissingArgument  = errors.New("missing argument")
	ErrTypeMismatch     = errors.New("argument type mismatch")
	ErrInvalidEnumValue = errors.New("invalid enum value")
	ErrConfiguration    = errors.New("invalid operation configuration")
	ErrTimeout          = errors.New("operation execution timeout")
)

// ArgumentError describes why one argument was rejected. Kind is one of
// ErrMissingArgument, ErrTypeMismatch or ErrInvalidEnumValue; every ArgumentError
// also matches ErrValidation.
type ArgumentError struct {
	Kind     error
	Field    string
	Expected string // declared type name
	Actual   string // runtime type name, TypeMismatch only
	Value    any    // offending raw value, nil for MissingArgument
}

func (e *ArgumentError) Error() string {
	switch e.Kind {
	case ErrMissingArgument:
		return fmt.Sprintf("Missing argument: '%s' with type '%s'", e.Field, e.Expected)
	case ErrTypeMismatch:
		return fmt.Sprintf("Argument '%s' must be of type '%s', got '%s'", e.Field, e.Expected, e.Actual)
	default:
		return fmt.Sprintf("Invalid value for argument '%s': '%v'", e.Field, e.Value)
	}
}

func (e *ArgumentError) Unwrap() []error { return []error{e.Kind, ErrValidation} }

// ClientError is an error that should be sent back to the agent for self-correction
// (missing argument, wrong type, bad enum value).
// Do not expose stack traces or internal details to the agent.
// Err optionally wraps the cause (e.g. *ArgumentError) for errors.Is/errors.As.
type ClientError struct {
	Reason string
	// Retryable is set by the application (not by opsy). When true, the caller
	// may retry the same call without changing arguments (e.g. transient rate limit).
	Retryable bool
	Err       error
}

func (e *ClientError) Error() string {
	return fmt.Sprintf("invalid operation input: %s", e.Reason)
}

// Unwrap supports errors.Is/errors.As on wrapped chains (e.g. errors.Is(err, ErrValidation)).
func (e *ClientError) Unwrap() error { return e.Err }

// SystemError represents an internal failure recovered by WithRecovery.
// The agent should not see the underlying error message or stack.
type SystemError struct {
	Err error
}

func (e *SystemError) Error() string {
	return "internal system error during operation execution"
}

func (e *SystemError) Unwrap() error { return e.Err }

// ConfigError reports an operation or schema declared with an unsupported shape.
// It is a programmer error surfaced at registration time, never per call.
type ConfigError struct {
	Operation string
	Field     string
	Reason    string
}

func (e *ConfigError) Error() string {
	switch {
	case e.Operation == "":
		return "opsy: " + e.Reason
	case e.Field == "":
		return fmt.Sprintf("opsy: operation %q: %s", e.Operation, e.Reason)
	default:
		return fmt.Sprintf("opsy: operation %q field %q: %s", e.Operation, e.Field, e.Reason)
	}
}

func (e *ConfigError) Unwrap() error { return ErrConfiguration }

// IsClientError returns true if err is or wraps a ClientError.
func IsClientError(err error) bool {
	var ce *ClientError
	return errors.As(err, &ce)
}

// IsSystemError returns true if err is or wraps a SystemError.
func IsSystemError(err error) bool {
	var se *SystemError
	return errors.As(err, &se)
}

// AsArgumentError returns the ArgumentError in err's chain, if any.
func AsArgumentError(err error) (*ArgumentError, bool) {
	var ae *ArgumentError
	ok := errors.As(err, &ae)
	return ae, ok
}

// panicError wraps a recovered panic value for SystemError.
type panicError struct{ p any }

func (e *panicError) Error() string {
	return "panic: " + fmt.Sprint(e.p)
}
