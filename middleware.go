package opsy

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Middleware wraps an operation's handler with cross-cutting behavior (logging,
// recovery, timeout). It runs only for calls that passed validation.
type Middleware[C any] func(op OperationInfo, next Handler[C]) Handler[C]

// WithLogging returns a middleware that logs start, end, duration, and errors.
func WithLogging[C any](logger *slog.Logger) Middleware[C] {
	if logger == nil {
		logger = slog.Default()
	}
	return func(op OperationInfo, next Handler[C]) Handler[C] {
		return func(ctx context.Context, client C, args Values) (any, error) {
			logger.InfoContext(ctx, "operation start", "operation", op.Name(), "dangerous", op.IsDangerous())
			start := time.Now()
			res, err := next(ctx, client, args)
			dur := time.Since(start)
			if err != nil {
				logger.ErrorContext(ctx, "operation error", "operation", op.Name(), "duration", dur, "error", err)
				return res, err
			}
			logger.InfoContext(ctx, "operation end", "operation", op.Name(), "duration", dur)
			return res, nil
		}
	}
}

// WithRecovery returns a middleware that recovers handler panics as SystemError.
func WithRecovery[C any]() Middleware[C] {
	return func(_ OperationInfo, next Handler[C]) Handler[C] {
		return func(ctx context.Context, client C, args Values) (res any, err error) {
			defer func() {
				if p := recover(); p != nil {
					res = nil
					err = &SystemError{Err: &panicError{p: p}}
				}
			}()
			return next(ctx, client, args)
		}
	}
}

// WithTimeout returns a middleware that bounds handler execution. The operation's
// own timeout (WithOperationTimeout) takes precedence over d; zero disables it.
// A deadline hit inside the handler is reported as ErrTimeout; the handler's
// result is passed through either way.
func WithTimeout[C any](d time.Duration) Middleware[C] {
	return func(op OperationInfo, next Handler[C]) Handler[C] {
		timeout := d
		if op.Timeout() > 0 {
			timeout = op.Timeout()
		}
		if timeout <= 0 {
			return next
		}
		return func(ctx context.Context, client C, args Values) (any, error) {
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			res, err := next(ctx, client, args)
			if err != nil && errors.Is(err, context.DeadlineExceeded) {
				return res, errors.Join(ErrTimeout, err)
			}
			return res, err
		}
	}
}

// Use stores the given middlewares and reapplies them from scratch to all registered
// operations (onion order: first middleware is outermost). Operations registered
// after Use also get them. Calling Use again replaces the chain without double-wrapping.
func (r *Registry[C]) Use(middlewares ...Middleware[C]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.middlewares = middlewares
	for name, op := range r.ops {
		r.handlers[name] = r.wrap(op)
	}
}

// wrap applies the stored middlewares to op's handler. Caller holds r.mu.
func (r *Registry[C]) wrap(op *Operation[C]) Handler[C] {
	h := op.handler
	for i := len(r.middlewares) - 1; i >= 0; i-- {
		h = r.middlewares[i](op, h)
	}
	return h
}
