package pipeline

import (
	"context"

	"github.com/google/uuid"
)

type correlationKey struct{}

// NewCorrelationID generates a fresh correlation identifier.
func NewCorrelationID() string {
	return uuid.New().String()
}

// WithCorrelationID attaches a correlation id to the context. The id is
// threaded unchanged through every middleware, the handler, and every
// log record and error emitted for the request.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationKey{}, id)
}

// CorrelationID returns the correlation id attached to the context, or
// "" when none has been attached yet.
func CorrelationID(ctx context.Context) string {
	id, _ := ctx.Value(correlationKey{}).(string)
	return id
}
