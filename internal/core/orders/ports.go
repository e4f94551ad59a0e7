package orders

import (
	"context"
	"time"
)

// =============================================================================
// Persistence
// =============================================================================

// Repository is the persistence capability order handlers consume. An
// implementation is scoped to the active unit of work, so its writes
// commit or roll back with the request.
type Repository interface {
	Insert(ctx context.Context, o *Order) error
	Get(ctx context.Context, id string) (*Order, error)
	UpdateStatus(ctx context.Context, id string, status Status, updatedAt time.Time) error
	ListByCustomer(ctx context.Context, customerID string, limit, offset int) ([]Order, error)
}

// Tx is the slice of the unit of work the order handlers need. The
// store's concrete unit of work implements it alongside commit and
// rollback.
type Tx interface {
	Orders() Repository
}

// =============================================================================
// Outbound Notification
// =============================================================================

// Event names published by the order handlers.
const (
	EventOrderCreated   = "order.created"
	EventOrderConfirmed = "order.confirmed"
	EventOrderCancelled = "order.cancelled"
)

// Event is one outbound notification about an order.
type Event struct {
	Name          string    `json:"name"`
	OrderID       string    `json:"order_id"`
	CorrelationID string    `json:"correlation_id,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// Notifier publishes order events to the outside world. Retry and
// circuit-breaker policy live behind this interface, not in handlers.
type Notifier interface {
	Publish(ctx context.Context, ev Event) error
}
