package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Config assembles a pipeline. Registry and UnitOfWork are required;
// everything else has sensible defaults.
type Config struct {
	Registry   *Registry
	UnitOfWork UnitOfWorkFactory
	Logger     *slog.Logger

	// Metrics enables the metrics stage when non-nil.
	Metrics *Metrics

	// Timeout bounds each Execute call. Zero means no pipeline-imposed
	// deadline; the caller's context still applies.
	Timeout time.Duration

	// Middlewares are application stages inserted between panic
	// translation and validation, innermost-last.
	Middlewares []Middleware
}

// Pipeline is the fixed middleware chain around dispatch. The stage
// order is identical for every request:
//
//	correlation → logging → metrics → panic translation →
//	(app middlewares) → validation → dispatch
//
// Logging and metrics wrap the translation stage from the outside, so
// they always observe the post-translation outcome.
type Pipeline struct {
	stage   Stage
	timeout time.Duration
}

// New builds the pipeline. Configuration errors (empty registry,
// missing unit-of-work factory) are reported here, at startup.
func New(cfg Config) (*Pipeline, error) {
	if cfg.Registry == nil || cfg.Registry.Len() == 0 {
		return nil, errors.New("pipeline: registry has no registrations")
	}
	if cfg.UnitOfWork == nil {
		return nil, errors.New("pipeline: unit-of-work factory is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	dispatcher := NewDispatcher(cfg.Registry, cfg.UnitOfWork, logger)

	mws := []Middleware{
		WithCorrelation(),
		WithLogging(logger),
	}
	if cfg.Metrics != nil {
		mws = append(mws, WithMetrics(cfg.Metrics))
	}
	mws = append(mws, WithRecovery(logger))
	mws = append(mws, cfg.Middlewares...)
	mws = append(mws, WithValidation())

	return &Pipeline{
		stage:   Chain(dispatcher.Dispatch, mws...),
		timeout: cfg.Timeout,
	}, nil
}

// Execute runs one request through the chain. Every exit path yields a
// Result; no error or panic escapes. When a timeout is configured the
// request's context is bounded by it, and expiry surfaces as a
// DependencyError after the unit of work rolls back.
func (p *Pipeline) Execute(ctx context.Context, req Request) Result {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	return p.stage(ctx, req)
}
