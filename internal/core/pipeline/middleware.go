package pipeline

import (
	"context"
	"log/slog"
	"runtime/debug"
	"time"
)

// Stage is one step of request processing: the dispatcher at the
// center, middlewares around it.
type Stage func(ctx context.Context, req Request) Result

// Middleware wraps a stage with a cross-cutting concern. Each takes the
// next stage explicitly; there is no hidden registration.
type Middleware func(next Stage) Stage

// Chain composes middlewares around a final stage. The first middleware
// is outermost: Chain(s, a, b) runs a → b → s and unwinds in reverse.
func Chain(final Stage, mws ...Middleware) Stage {
	s := final
	for i := len(mws) - 1; i >= 0; i-- {
		s = mws[i](s)
	}
	return s
}

// =============================================================================
// Correlation
// =============================================================================

// WithCorrelation attaches a correlation id at pipeline entry (reusing
// one already on the context, e.g. from the transport layer) and stamps
// it on the Result and its error on the way out.
func WithCorrelation() Middleware {
	return func(next Stage) Stage {
		return func(ctx context.Context, req Request) Result {
			id := CorrelationID(ctx)
			if id == "" {
				id = NewCorrelationID()
				ctx = WithCorrelationID(ctx, id)
			}
			res := next(ctx, req)
			res.CorrelationID = id
			if res.Err != nil {
				res.Err.CorrelationID = id
			}
			return res
		}
	}
}

// =============================================================================
// Logging
// =============================================================================

// WithLogging logs request start and completion. It sits outside the
// translation stage, so the outcome it logs is exactly the outcome the
// caller receives, never a raw fault of a different kind.
func WithLogging(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next Stage) Stage {
		return func(ctx context.Context, req Request) Result {
			start := time.Now()
			l := logger.With(
				"request", req.RequestName(),
				"kind", req.RequestKind().String(),
				"correlation_id", CorrelationID(ctx),
			)
			l.Debug("request started")

			res := next(ctx, req)

			elapsed := time.Since(start)
			if res.OK() {
				l.Info("request completed", "duration", elapsed)
				return res
			}
			if res.Err.Kind == UnexpectedError {
				l.Error("request failed",
					"error_kind", res.Err.Kind.String(),
					"error", res.Err.Error(),
					"duration", elapsed,
				)
			} else {
				l.Warn("request failed",
					"error_kind", res.Err.Kind.String(),
					"error", res.Err.Error(),
					"duration", elapsed,
				)
			}
			return res
		}
	}
}

// =============================================================================
// Panic Translation
// =============================================================================

// WithRecovery translates panics from handlers or inner stages into an
// UnexpectedError Result, exactly once. The panic detail is logged with
// the correlation id; the caller sees only a generic message, and
// nothing re-raises past the pipeline boundary.
func WithRecovery(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next Stage) Stage {
		return func(ctx context.Context, req Request) (res Result) {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("panic in request pipeline",
						"request", req.RequestName(),
						"correlation_id", CorrelationID(ctx),
						"panic", r,
						"stack", string(debug.Stack()),
					)
					res = Failed(Unexpectedf("internal error"))
				}
			}()
			return next(ctx, req)
		}
	}
}

// =============================================================================
// Validation
// =============================================================================

// WithValidation runs the request's declared rules before dispatch. All
// rules run; a non-empty failure set short-circuits with a
// ValidationError, and the handler is never invoked, so no unit of
// work is ever opened for an invalid request.
func WithValidation() Middleware {
	return func(next Stage) Stage {
		return func(ctx context.Context, req Request) Result {
			if failures := ValidateRequest(req); len(failures) > 0 {
				return Failed(Invalid(failures))
			}
			return next(ctx, req)
		}
	}
}
