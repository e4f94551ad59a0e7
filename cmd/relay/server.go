package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/artpar/relay/internal/core/orders"
	"github.com/artpar/relay/internal/core/pipeline"
	"github.com/artpar/relay/internal/shell/api"
	"github.com/artpar/relay/internal/shell/notify"
	"github.com/artpar/relay/internal/shell/store"
)

// =============================================================================
// Exit Codes
// =============================================================================

const (
	ExitSuccess         = 0
	ExitConfigError     = 1
	ExitDatabaseError   = 2
	ExitPipelineError   = 3
	ExitHTTPServerError = 4
)

// =============================================================================
// Server
// =============================================================================

// Server wires the store, pipeline, and HTTP surface together.
type Server struct {
	config     *Config
	httpServer *http.Server
	store      *store.Store
	logger     *slog.Logger
}

// NewServer creates a new server with the given config. Configuration
// mistakes (duplicate registrations, routes naming unknown requests)
// fail here, before the server accepts traffic.
func NewServer(cfg *Config, logger *slog.Logger) (*Server, error) {
	// Open database and run migrations
	st, err := store.Open(cfg.Database.DSN, logger)
	if err != nil {
		return nil, &ServerError{
			Op:       "NewServer",
			Err:      err,
			ExitCode: ExitDatabaseError,
		}
	}

	// Pick the event notifier: webhook when configured, log otherwise
	var notifier orders.Notifier
	if cfg.Notify.WebhookURL != "" {
		notifier = notify.NewWebhook(notify.Config{
			WebhookURL:       cfg.Notify.WebhookURL,
			RetryMax:         cfg.Notify.RetryMax,
			RetryWaitMin:     cfg.Notify.RetryWaitMin,
			RetryWaitMax:     cfg.Notify.RetryWaitMax,
			BreakerThreshold: cfg.Notify.BreakerThreshold,
			BreakerCooldown:  cfg.Notify.BreakerCooldown,
		}, logger)
		logger.Info("webhook notifier enabled", "url", cfg.Notify.WebhookURL)
	} else {
		notifier = notify.NewLog(logger)
	}

	// Register request handlers
	registry := pipeline.NewRegistry()
	handlers := orders.NewHandlers(notifier, logger)
	if err := handlers.Register(registry); err != nil {
		st.Close()
		return nil, &ServerError{
			Op:       "NewServer",
			Err:      err,
			ExitCode: ExitPipelineError,
		}
	}

	// Assemble the pipeline
	metrics := pipeline.NewMetrics(prometheus.DefaultRegisterer)
	pipe, err := pipeline.New(pipeline.Config{
		Registry:   registry,
		UnitOfWork: st,
		Logger:     logger,
		Metrics:    metrics,
		Timeout:    cfg.Pipeline.RequestTimeout,
	})
	if err != nil {
		st.Close()
		return nil, &ServerError{
			Op:       "NewServer",
			Err:      err,
			ExitCode: ExitPipelineError,
		}
	}

	// Build the HTTP router
	handler, err := api.NewRouter(api.Config{
		Pipeline: pipe,
		Registry: registry,
		Logger:   logger,
		Metrics:  promhttp.Handler(),
		Version:  Version,
	}, api.OrderRoutes())
	if err != nil {
		st.Close()
		return nil, &ServerError{
			Op:       "NewServer",
			Err:      err,
			ExitCode: ExitPipelineError,
		}
	}

	httpServer := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return &Server{
		config:     cfg,
		httpServer: httpServer,
		store:      st,
		logger:     logger,
	}, nil
}

// Start starts the server and blocks until shutdown.
func (s *Server) Start(ctx context.Context) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server",
			"address", s.config.Server.Address())
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case sig := <-sigCh:
		s.logger.Info("received shutdown signal", "signal", sig)
	case err := <-errCh:
		return &ServerError{
			Op:       "Start",
			Err:      err,
			ExitCode: ExitHTTPServerError,
		}
	case <-ctx.Done():
		s.logger.Info("context cancelled")
	}

	return s.Shutdown(context.Background())
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("initiating graceful shutdown")

	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.Server.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
	}

	if err := s.store.Close(); err != nil {
		s.logger.Error("database close error", "error", err)
	}

	s.logger.Info("shutdown complete")
	return nil
}

// =============================================================================
// Server Error
// =============================================================================

// ServerError represents an error during server operation.
type ServerError struct {
	Op       string
	Err      error
	ExitCode int
}

func (e *ServerError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *ServerError) Unwrap() error {
	return e.Err
}
