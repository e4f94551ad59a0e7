package notify

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artpar/relay/internal/core/orders"
)

var _ orders.Notifier = (*Webhook)(nil)
var _ orders.Notifier = (*Log)(nil)

func testEvent() orders.Event {
	return orders.Event{
		Name:          orders.EventOrderCreated,
		OrderID:       "o-1",
		CorrelationID: "corr-1",
		OccurredAt:    time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC),
	}
}

func webhookFor(url string) *Webhook {
	return NewWebhook(Config{
		WebhookURL:   url,
		RetryMax:     2,
		RetryWaitMin: time.Millisecond,
		RetryWaitMax: 5 * time.Millisecond,
	}, nil)
}

// =============================================================================
// Webhook Tests
// =============================================================================

func TestWebhook_DeliversEvent(t *testing.T) {
	var got orders.Event
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	err := webhookFor(srv.URL).Publish(context.Background(), testEvent())
	require.NoError(t, err)
	assert.Equal(t, orders.EventOrderCreated, got.Name)
	assert.Equal(t, "o-1", got.OrderID)
	assert.Equal(t, "corr-1", got.CorrelationID)
}

func TestWebhook_RetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	err := webhookFor(srv.URL).Publish(context.Background(), testEvent())
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestWebhook_NonSuccessStatusIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	err := webhookFor(srv.URL).Publish(context.Background(), testEvent())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}

func TestWebhook_BreakerShortCircuitsAfterSustainedFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	w := NewWebhook(Config{
		WebhookURL:       srv.URL,
		RetryMax:         0,
		RetryWaitMin:     time.Millisecond,
		RetryWaitMax:     time.Millisecond,
		BreakerThreshold: 1,
		BreakerCooldown:  time.Hour,
	}, nil)

	require.Error(t, w.Publish(context.Background(), testEvent()))

	err := w.Publish(context.Background(), testEvent())
	assert.ErrorIs(t, err, ErrCircuitOpen)
}

func TestWebhook_HonorsContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The server only watches for client disconnect once the body is
		// consumed, so drain it before waiting for cancellation.
		io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := webhookFor(srv.URL).Publish(ctx, testEvent())
	assert.Error(t, err)
}

// =============================================================================
// Log Notifier Tests
// =============================================================================

func TestLog_AlwaysSucceeds(t *testing.T) {
	assert.NoError(t, NewLog(nil).Publish(context.Background(), testEvent()))
}
