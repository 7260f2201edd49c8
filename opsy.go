package opsy

import "context"

// HelpOperation is the sentinel operation name that describes another operation
// instead of executing it. Callers must use it to discover an operation's
// arguments before calling it.
const HelpOperation = "__help__"

// HelpTargetKey is the argument naming the operation to describe in a __help__ call.
const HelpTargetKey = "operation"

// Call is a single execution request.
type Call struct {
	ID        string
	Operation string
	Args      Args
}

// Result is the outcome of one call. Value is the handler's result, passed through
// unchanged, or the help / unknown-operation text.
type Result struct {
	CallID    string
	Operation string
	Value     any
	Error     error
}

// Dispatcher is the single generic entry point over a set of operations with the
// collaborator already bound (see Registry.Bind).
type Dispatcher interface {
	// Names returns the registered operation names, sorted.
	Names() []string
	// Describe returns the help text for operation, or an unknown-operation message.
	Describe(operation string) string
	// Execute describes (__help__), rejects (unknown, invalid) or runs one operation.
	Execute(ctx context.Context, operation string, args Args) (any, error)
}
