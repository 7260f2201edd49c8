package opsy

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"
)

// Registry maps operation names to their schema and handler and routes calls.
// It is built once at startup; after that it is a stateless router and safe for
// concurrent use.
type Registry[C any] struct {
	ops         map[string]*Operation[C]
	handlers    map[string]Handler[C] // wrapped with middlewares, used by Execute
	opts        registryOptions
	mu          sync.RWMutex
	middlewares []Middleware[C]
}

// NewRegistry creates an empty Registry with the given options.
func NewRegistry[C any](opts ...RegistryOption) *Registry[C] {
	var o registryOptions
	for _, opt := range opts {
		opt(&o)
	}
	return &Registry[C]{
		ops:      make(map[string]*Operation[C]),
		handlers: make(map[string]Handler[C]),
		opts:     o,
	}
}

// Register adds operations. Stored middlewares (see Use) are applied to each.
// A nil operation or a name that is already registered is a *ConfigError and
// nothing from the call is registered.
func (r *Registry[C]) Register(ops ...*Operation[C]) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[string]struct{}, len(ops))
	for _, op := range ops {
		if op == nil {
			return &ConfigError{Reason: "operation must not be nil"}
		}
		name := op.Name()
		if _, dup := r.ops[name]; dup {
			return &ConfigError{Operation: name, Reason: "operation already registered"}
		}
		if _, dup := seen[name]; dup {
			return &ConfigError{Operation: name, Reason: "operation already registered"}
		}
		seen[name] = struct{}{}
	}
	for _, op := range ops {
		r.ops[op.Name()] = op
		r.handlers[op.Name()] = r.wrap(op)
	}
	return nil
}

// Lookup returns the operation registered under name. The error wraps
// ErrUnknownOperation.
func (r *Registry[C]) Lookup(name string) (*Operation[C], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	op, ok := r.ops[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownOperation, name)
	}
	return op, nil
}

// Operations returns all registered operations sorted by name.
func (r *Registry[C]) Operations() []*Operation[C] {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Operation[C], 0, len(r.ops))
	for _, name := range r.sortedNames() {
		out = append(out, r.ops[name])
	}
	return out
}

// Names returns the registered operation names, sorted.
func (r *Registry[C]) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sortedNames()
}

func (r *Registry[C]) sortedNames() []string {
	names := make([]string, 0, len(r.ops))
	for name := range r.ops {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Describe returns the help text for operation. An unknown name yields a message
// naming it rather than an error, since agents probe operation names.
// Describing HelpOperation lists all operations.
func (r *Registry[C]) Describe(operation string) string {
	if operation == HelpOperation {
		return formatIndex(r.Names())
	}
	r.mu.RLock()
	op, ok := r.ops[operation]
	r.mu.RUnlock()
	if !ok {
		return UnknownOperationMessage(operation)
	}
	return FormatHelp(op.schema)
}

// Execute runs one call:
//
//   - HelpOperation: describes the operation named by args["operation"] (or lists
//     all operations when absent); no handler runs.
//   - unknown name: returns UnknownOperationMessage as the result, not an error.
//   - known name: validates args against the schema; on failure returns the
//     *ClientError without calling the handler, otherwise returns the handler's
//     result and error unchanged.
//
// Execute keeps no state between calls and adds no timeout or retry.
func (r *Registry[C]) Execute(ctx context.Context, operation string, args Args, client C) (any, error) {
	res := r.execute(ctx, Call{Operation: operation, Args: args}, client)
	return res.Value, res.Error
}

func (r *Registry[C]) execute(ctx context.Context, call Call, client C) Result {
	result := Result{CallID: call.ID, Operation: call.Operation}
	if call.Operation == HelpOperation {
		result.Value = r.help(call.Args)
		return result
	}
	r.mu.RLock()
	op, ok := r.ops[call.Operation]
	h := r.handlers[call.Operation]
	r.mu.RUnlock()
	if !ok {
		result.Value = UnknownOperationMessage(call.Operation)
		return result
	}

	if r.opts.onBefore != nil {
		r.opts.onBefore(ctx, call)
	}
	start := time.Now()
	defer func() {
		if r.opts.onAfter != nil {
			r.opts.onAfter(ctx, call, result, time.Since(start))
		}
	}()

	values, err := Validate(op.schema, call.Args)
	if err != nil {
		result.Error = err
		return result
	}
	result.Value, result.Error = h(ctx, client, values)
	return result
}

func (r *Registry[C]) help(args Args) string {
	target, ok := args[HelpTargetKey]
	if !ok {
		return formatIndex(r.Names())
	}
	name, ok := target.(string)
	if !ok {
		return UnknownOperationMessage(fmt.Sprint(target))
	}
	return r.Describe(name)
}

// ExecuteBatch runs all calls concurrently and returns their results in call order.
// One failure does not cancel the others (partial success). Concurrency is bounded
// by WithMaxConcurrency.
func (r *Registry[C]) ExecuteBatch(ctx context.Context, calls []Call, client C) []Result {
	results := make([]Result, len(calls))
	if len(calls) == 0 {
		return results
	}
	var sem chan struct{}
	if r.opts.maxConcurrency > 0 {
		sem = make(chan struct{}, r.opts.maxConcurrency)
	}
	var wg sync.WaitGroup
	for i, call := range calls {
		wg.Go(func() {
			if sem != nil {
				select {
				case sem <- struct{}{}:
					defer func() { <-sem }()
				case <-ctx.Done():
					results[i] = Result{CallID: call.ID, Operation: call.Operation, Error: ctx.Err()}
					return
				}
			}
			results[i] = r.execute(ctx, call, client)
		})
	}
	wg.Wait()
	return results
}

// Bind returns a Dispatcher that executes against client.
func (r *Registry[C]) Bind(client C) Dispatcher {
	return &boundRegistry[C]{reg: r, client: client}
}

type boundRegistry[C any] struct {
	reg    *Registry[C]
	client C
}

func (b *boundRegistry[C]) Names() []string           { return b.reg.Names() }
func (b *boundRegistry[C]) Describe(op string) string { return b.reg.Describe(op) }

func (b *boundRegistry[C]) Execute(ctx context.Context, operation string, args Args) (any, error) {
	return b.reg.Execute(ctx, operation, args, b.client)
}
