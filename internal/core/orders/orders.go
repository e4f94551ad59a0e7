// Package orders is the order-management application built on the
// request pipeline: its commands and queries, their handlers, and the
// capability interfaces (repository, notifier) the handlers consume.
package orders

import "time"

// Status is the order lifecycle state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusShipped   Status = "shipped"
	StatusCancelled Status = "cancelled"
)

// Order is the aggregate managed by this package.
type Order struct {
	ID         string    `json:"id"`
	CustomerID string    `json:"customer_id"`
	SKU        string    `json:"sku"`
	Quantity   int       `json:"quantity"`
	PriceCents int64     `json:"price_cents"`
	Status     Status    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// CanConfirm reports whether the order may move to confirmed.
func (o *Order) CanConfirm() bool {
	return o.Status == StatusPending
}

// CanCancel reports whether the order may move to cancelled. Shipped
// orders can no longer be cancelled.
func (o *Order) CanCancel() bool {
	return o.Status == StatusPending || o.Status == StatusConfirmed
}
