package mcp

import (
	"context"
	"log/slog"
	"time"
)

// LoggingMiddleware logs every request and the RPC errors it produced.
func LoggingMiddleware(logger *slog.Logger) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *Request) *Response {
			start := time.Now()
			resp := next(ctx, req)
			attrs := []any{"method", req.Method, "duration", time.Since(start)}
			if len(req.ID) > 0 {
				attrs = append(attrs, "id", string(req.ID))
			}
			if resp != nil && resp.Error != nil {
				logger.ErrorContext(ctx, "mcp error", append(attrs, "code", resp.Error.Code, "message", resp.Error.Message)...)
				return resp
			}
			if r, ok := resultOf(resp).(*ToolCallResult); ok && r.IsError {
				logger.WarnContext(ctx, "mcp tool error", append(attrs, "error", r.Text())...)
				return resp
			}
			logger.InfoContext(ctx, "mcp request", attrs...)
			return resp
		}
	}
}

// RecoveryMiddleware turns a panic in the handler chain into an internal error.
func RecoveryMiddleware(logger *slog.Logger) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *Request) (resp *Response) {
			defer func() {
				if p := recover(); p != nil {
					logger.ErrorContext(ctx, "panic in MCP handler", "method", req.Method, "panic", p)
					if req.IsNotification() {
						resp = nil
						return
					}
					resp = errorResponse(req.ID, CodeInternalError, "Internal error")
				}
			}()
			return next(ctx, req)
		}
	}
}

func resultOf(resp *Response) any {
	if resp == nil {
		return nil
	}
	return resp.Result
}
