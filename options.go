package opsy

import (
	"context"
	"time"
)

// operationOptions hold optional operation settings (timeout, tags, dangerous).
type operationOptions struct {
	timeout   time.Duration
	tags      []string
	dangerous bool
}

// OperationOption configures an operation (e.g. WithDangerous, WithTags).
type OperationOption func(*operationOptions)

// WithOperationTimeout sets a per-operation timeout. It is metadata only: the
// registry never enforces it; the WithTimeout middleware does when installed.
func WithOperationTimeout(d time.Duration) OperationOption {
	return func(o *operationOptions) {
		o.timeout = d
	}
}

// WithTags sets operation tags (metadata for discovery).
func WithTags(tags ...string) OperationOption {
	return func(o *operationOptions) {
		o.tags = tags
	}
}

// WithDangerous marks the operation as destructive (the agent must confirm with
// the user before calling it).
func WithDangerous() OperationOption {
	return func(o *operationOptions) {
		o.dangerous = true
	}
}

// RegistryOption configures a Registry.
type RegistryOption func(*registryOptions)

type registryOptions struct {
	maxConcurrency int
	onBefore       func(context.Context, Call)
	onAfter        func(context.Context, Call, Result, time.Duration)
}

// WithMaxConcurrency limits concurrent executions in ExecuteBatch.
// Pass 0 or negative for unlimited concurrency.
func WithMaxConcurrency(n int) RegistryOption {
	return func(o *registryOptions) {
		o.maxConcurrency = n
	}
}

// WithOnBeforeExecute sets a hook called before each execution of a registered
// operation (after lookup, before validation).
func WithOnBeforeExecute(fn func(context.Context, Call)) RegistryOption {
	return func(o *registryOptions) {
		o.onBefore = fn
	}
}

// WithOnAfterExecute sets a hook called after each execution of a registered
// operation, including calls rejected by validation.
func WithOnAfterExecute(fn func(context.Context, Call, Result, time.Duration)) RegistryOption {
	return func(o *registryOptions) {
		o.onAfter = fn
	}
}
