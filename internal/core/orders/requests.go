package orders

import "github.com/artpar/relay/internal/core/pipeline"

// Request names, as registered and as referenced by route bindings.
const (
	NameCreateOrder  = "orders.create"
	NameConfirmOrder = "orders.confirm"
	NameCancelOrder  = "orders.cancel"
	NameGetOrder     = "orders.get"
	NameListOrders   = "orders.list"
)

// =============================================================================
// Commands
// =============================================================================

// CreateOrder places a new order in the pending state.
type CreateOrder struct {
	CustomerID string `json:"customer_id"`
	SKU        string `json:"sku"`
	Quantity   int    `json:"quantity"`
	PriceCents int64  `json:"price_cents"`
}

func (CreateOrder) RequestName() string        { return NameCreateOrder }
func (CreateOrder) RequestKind() pipeline.Kind { return pipeline.Command }

func (c CreateOrder) Validate() []pipeline.Failure {
	return pipeline.Collect(
		pipeline.Required("CustomerID", c.CustomerID),
		pipeline.Required("SKU", c.SKU),
		pipeline.MaxLen("SKU", c.SKU, 64),
		pipeline.Positive("Quantity", c.Quantity),
		pipeline.NonNegative("PriceCents", c.PriceCents),
	)
}

// ConfirmOrder moves a pending order to confirmed.
type ConfirmOrder struct {
	OrderID string `json:"order_id"`
}

func (ConfirmOrder) RequestName() string        { return NameConfirmOrder }
func (ConfirmOrder) RequestKind() pipeline.Kind { return pipeline.Command }

func (c ConfirmOrder) Validate() []pipeline.Failure {
	return pipeline.Collect(
		pipeline.Required("OrderID", c.OrderID),
	)
}

// CancelOrder cancels a pending or confirmed order.
type CancelOrder struct {
	OrderID string `json:"order_id"`
}

func (CancelOrder) RequestName() string        { return NameCancelOrder }
func (CancelOrder) RequestKind() pipeline.Kind { return pipeline.Command }

func (c CancelOrder) Validate() []pipeline.Failure {
	return pipeline.Collect(
		pipeline.Required("OrderID", c.OrderID),
	)
}

// =============================================================================
// Queries
// =============================================================================

// GetOrder fetches one order by id.
type GetOrder struct {
	OrderID string `json:"order_id"`
}

func (GetOrder) RequestName() string        { return NameGetOrder }
func (GetOrder) RequestKind() pipeline.Kind { return pipeline.Query }

func (q GetOrder) Validate() []pipeline.Failure {
	return pipeline.Collect(
		pipeline.Required("OrderID", q.OrderID),
	)
}

// ListOrders pages through a customer's orders, newest first.
type ListOrders struct {
	CustomerID string `json:"customer_id"`
	Limit      int    `json:"limit"`
	Offset     int    `json:"offset"`
}

func (ListOrders) RequestName() string        { return NameListOrders }
func (ListOrders) RequestKind() pipeline.Kind { return pipeline.Query }

func (q ListOrders) Validate() []pipeline.Failure {
	return pipeline.Collect(
		pipeline.Required("CustomerID", q.CustomerID),
		pipeline.NonNegative("Offset", int64(q.Offset)),
	)
}

// =============================================================================
// Results
// =============================================================================

// CreateOrderResult carries the identifier of the newly created order.
type CreateOrderResult struct {
	OrderID string `json:"order_id"`
}

// OrderStatusResult reports an order's status after a transition.
type OrderStatusResult struct {
	OrderID string `json:"order_id"`
	Status  Status `json:"status"`
}

// OrderPage is one page of a customer's orders.
type OrderPage struct {
	Orders []Order `json:"orders"`
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
}
