// Package notify delivers order events to the outside world. The
// webhook notifier wraps its outbound calls in the configured
// resilience policy (retries with backoff, circuit breaker) so the
// pipeline and handlers never retry anything themselves.
package notify

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	jsoniter "github.com/json-iterator/go"

	"github.com/artpar/relay/internal/core/orders"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Config holds the webhook notifier settings. All values come from
// configuration; nothing is hardcoded in the delivery path.
type Config struct {
	WebhookURL       string
	RetryMax         int
	RetryWaitMin     time.Duration
	RetryWaitMax     time.Duration
	BreakerThreshold int
	BreakerCooldown  time.Duration
}

// =============================================================================
// Webhook Notifier
// =============================================================================

// Webhook posts order events to a configured URL. Transient failures
// are retried with backoff by the underlying client; sustained failure
// opens the circuit breaker so a dead endpoint cannot stall requests
// for the whole cooldown worth of retries each.
type Webhook struct {
	url     string
	client  *retryablehttp.Client
	breaker *Breaker
	logger  *slog.Logger
}

// NewWebhook creates a webhook notifier from config.
func NewWebhook(cfg Config, logger *slog.Logger) *Webhook {
	if logger == nil {
		logger = slog.Default()
	}

	client := retryablehttp.NewClient()
	client.RetryMax = cfg.RetryMax
	if cfg.RetryWaitMin > 0 {
		client.RetryWaitMin = cfg.RetryWaitMin
	}
	if cfg.RetryWaitMax > 0 {
		client.RetryWaitMax = cfg.RetryWaitMax
	}
	// Failures surface to the caller; the default retry logger is noise.
	client.Logger = nil

	return &Webhook{
		url:     cfg.WebhookURL,
		client:  client,
		breaker: NewBreaker(cfg.BreakerThreshold, cfg.BreakerCooldown),
		logger:  logger.With("component", "notifier"),
	}
}

// Publish delivers one event, honoring the caller's context deadline.
func (w *Webhook) Publish(ctx context.Context, ev orders.Event) error {
	if err := w.breaker.Allow(); err != nil {
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, w.url, body)
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		w.breaker.Record(err)
		return fmt.Errorf("post %s: %w", ev.Name, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusMultipleChoices {
		err := fmt.Errorf("post %s: unexpected status %d", ev.Name, resp.StatusCode)
		w.breaker.Record(err)
		return err
	}

	w.breaker.Record(nil)
	w.logger.Debug("event delivered",
		"event", ev.Name,
		"order_id", ev.OrderID,
		"correlation_id", ev.CorrelationID,
	)
	return nil
}

// =============================================================================
// Log Notifier
// =============================================================================

// Log records events to the structured log instead of delivering them.
// Used when no webhook URL is configured.
type Log struct {
	logger *slog.Logger
}

// NewLog creates a log-only notifier.
func NewLog(logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{logger: logger.With("component", "notifier")}
}

// Publish logs the event and always succeeds.
func (n *Log) Publish(_ context.Context, ev orders.Event) error {
	n.logger.Info("event published",
		"event", ev.Name,
		"order_id", ev.OrderID,
		"correlation_id", ev.CorrelationID,
	)
	return nil
}
