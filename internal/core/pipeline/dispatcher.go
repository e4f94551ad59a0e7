package pipeline

import (
	"context"
	"errors"
	"log/slog"
)

// Dispatcher resolves the handler for a request and invokes it inside
// a unit-of-work boundary. It never retries; resilience for outbound
// calls belongs to the collaborators handlers talk to.
type Dispatcher struct {
	registry *Registry
	factory  UnitOfWorkFactory
	logger   *slog.Logger
}

// NewDispatcher creates a dispatcher over an already-built registry.
func NewDispatcher(registry *Registry, factory UnitOfWorkFactory, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{registry: registry, factory: factory, logger: logger}
}

// Dispatch looks up the handler, opens a unit of work, invokes the
// handler, and commits iff it returned success. Any error, panic, or
// cancellation rolls the unit back. Panics are not swallowed here; they
// unwind (after rollback) to the translation middleware.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) Result {
	reg, ok := d.registry.Lookup(req.RequestName())
	if !ok {
		// Route bindings are verified against the registry at startup,
		// so this only fires when a caller bypasses the hosting layer.
		return Failed(Unexpectedf("no handler registered for %q", req.RequestName()))
	}

	uow, err := d.factory.Begin(ctx)
	if err != nil {
		return Failed(Dependency(err, "begin unit of work"))
	}

	// Whatever path leaves this function, an Active unit must not
	// survive it. This also covers panics unwinding through here.
	defer func() {
		if uow.State() == StateActive {
			d.rollback(ctx, uow, req)
		}
	}()

	value, err := reg.Handler.Handle(ctx, req, uow)
	if err != nil {
		d.rollback(ctx, uow, req)
		return Failed(d.toError(err, req))
	}

	// Cancellation is a rollback trigger, never a commit trigger, even
	// when the handler returned success after the deadline passed.
	if cerr := ctx.Err(); cerr != nil {
		d.rollback(ctx, uow, req)
		return Failed(cancellationError(cerr))
	}

	if err := uow.Commit(ctx); err != nil {
		d.rollback(ctx, uow, req)
		return Failed(d.toError(err, req))
	}

	return Success(value)
}

func (d *Dispatcher) rollback(ctx context.Context, uow UnitOfWork, req Request) {
	if err := uow.Rollback(ctx); err != nil {
		d.logger.Error("unit of work rollback failed",
			"request", req.RequestName(),
			"correlation_id", CorrelationID(ctx),
			"error", err,
		)
	}
}

// toError maps a handler error onto the ErrorKind taxonomy. Typed
// errors pass through untouched; context errors become dependency
// failures; anything else is an unanticipated fault.
func (d *Dispatcher) toError(err error, req Request) *Error {
	if e, ok := AsError(err); ok {
		return e
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return cancellationError(err)
	}
	d.logger.Error("handler returned untyped error",
		"request", req.RequestName(),
		"error", err,
	)
	return Unexpected(err)
}

func cancellationError(err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return Dependency(err, "request deadline exceeded")
	}
	return Dependency(err, "request cancelled")
}
