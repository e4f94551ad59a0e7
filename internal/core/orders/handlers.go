package orders

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/artpar/relay/internal/core/pipeline"
)

// List page bounds, applied after validation.
const (
	defaultPageLimit = 50
	maxPageLimit     = 500
)

// Handlers bundles the order use cases. The repository is reached
// through the per-request unit of work; the notifier is shared and
// carries its own resilience policy.
type Handlers struct {
	notifier Notifier
	logger   *slog.Logger

	// Injected for determinism in tests.
	now   func() time.Time
	newID func() string
}

// NewHandlers creates the order handlers. A nil notifier disables
// event publication.
func NewHandlers(notifier Notifier, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{
		notifier: notifier,
		logger:   logger.With("component", "orders"),
		now:      time.Now,
		newID:    func() string { return uuid.New().String() },
	}
}

// Register binds every order request type to its handler. Duplicate or
// incomplete registrations surface here, at startup.
func (h *Handlers) Register(reg *pipeline.Registry) error {
	registrations := []pipeline.Registration{
		{
			Name:    NameCreateOrder,
			Kind:    pipeline.Command,
			New:     func() pipeline.Request { return &CreateOrder{} },
			Handler: pipeline.HandlerFunc(h.createOrder),
		},
		{
			Name:    NameConfirmOrder,
			Kind:    pipeline.Command,
			New:     func() pipeline.Request { return &ConfirmOrder{} },
			Handler: pipeline.HandlerFunc(h.confirmOrder),
		},
		{
			Name:    NameCancelOrder,
			Kind:    pipeline.Command,
			New:     func() pipeline.Request { return &CancelOrder{} },
			Handler: pipeline.HandlerFunc(h.cancelOrder),
		},
		{
			Name:    NameGetOrder,
			Kind:    pipeline.Query,
			New:     func() pipeline.Request { return &GetOrder{} },
			Handler: pipeline.HandlerFunc(h.getOrder),
		},
		{
			Name:    NameListOrders,
			Kind:    pipeline.Query,
			New:     func() pipeline.Request { return &ListOrders{} },
			Handler: pipeline.HandlerFunc(h.listOrders),
		},
	}
	for _, r := range registrations {
		if err := reg.Add(r); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Command Handlers
// =============================================================================

func (h *Handlers) createOrder(ctx context.Context, req pipeline.Request, uow pipeline.UnitOfWork) (any, error) {
	cmd, ok := req.(*CreateOrder)
	if !ok {
		return nil, pipeline.Unexpectedf("unexpected request type %T", req)
	}
	tx, err := orderTx(uow)
	if err != nil {
		return nil, err
	}

	now := h.now().UTC()
	order := &Order{
		ID:         h.newID(),
		CustomerID: cmd.CustomerID,
		SKU:        cmd.SKU,
		Quantity:   cmd.Quantity,
		PriceCents: cmd.PriceCents,
		Status:     StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := tx.Orders().Insert(ctx, order); err != nil {
		return nil, err
	}
	if err := h.publish(ctx, EventOrderCreated, order.ID); err != nil {
		return nil, err
	}

	h.logger.Debug("order created",
		"order_id", order.ID,
		"customer_id", order.CustomerID,
		"correlation_id", pipeline.CorrelationID(ctx),
	)
	return &CreateOrderResult{OrderID: order.ID}, nil
}

func (h *Handlers) confirmOrder(ctx context.Context, req pipeline.Request, uow pipeline.UnitOfWork) (any, error) {
	cmd, ok := req.(*ConfirmOrder)
	if !ok {
		return nil, pipeline.Unexpectedf("unexpected request type %T", req)
	}
	tx, err := orderTx(uow)
	if err != nil {
		return nil, err
	}

	order, err := tx.Orders().Get(ctx, cmd.OrderID)
	if err != nil {
		return nil, err
	}
	if !order.CanConfirm() {
		return nil, pipeline.Conflictf("order %s is %s, only pending orders can be confirmed", order.ID, order.Status)
	}
	if err := tx.Orders().UpdateStatus(ctx, order.ID, StatusConfirmed, h.now().UTC()); err != nil {
		return nil, err
	}
	if err := h.publish(ctx, EventOrderConfirmed, order.ID); err != nil {
		return nil, err
	}
	return &OrderStatusResult{OrderID: order.ID, Status: StatusConfirmed}, nil
}

func (h *Handlers) cancelOrder(ctx context.Context, req pipeline.Request, uow pipeline.UnitOfWork) (any, error) {
	cmd, ok := req.(*CancelOrder)
	if !ok {
		return nil, pipeline.Unexpectedf("unexpected request type %T", req)
	}
	tx, err := orderTx(uow)
	if err != nil {
		return nil, err
	}

	order, err := tx.Orders().Get(ctx, cmd.OrderID)
	if err != nil {
		return nil, err
	}
	if !order.CanCancel() {
		return nil, pipeline.Conflictf("order %s is already %s", order.ID, order.Status)
	}
	if err := tx.Orders().UpdateStatus(ctx, order.ID, StatusCancelled, h.now().UTC()); err != nil {
		return nil, err
	}
	if err := h.publish(ctx, EventOrderCancelled, order.ID); err != nil {
		return nil, err
	}
	return &OrderStatusResult{OrderID: order.ID, Status: StatusCancelled}, nil
}

// =============================================================================
// Query Handlers
// =============================================================================

func (h *Handlers) getOrder(ctx context.Context, req pipeline.Request, uow pipeline.UnitOfWork) (any, error) {
	q, ok := req.(*GetOrder)
	if !ok {
		return nil, pipeline.Unexpectedf("unexpected request type %T", req)
	}
	tx, err := orderTx(uow)
	if err != nil {
		return nil, err
	}
	return tx.Orders().Get(ctx, q.OrderID)
}

func (h *Handlers) listOrders(ctx context.Context, req pipeline.Request, uow pipeline.UnitOfWork) (any, error) {
	q, ok := req.(*ListOrders)
	if !ok {
		return nil, pipeline.Unexpectedf("unexpected request type %T", req)
	}
	tx, err := orderTx(uow)
	if err != nil {
		return nil, err
	}

	limit := q.Limit
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	list, err := tx.Orders().ListByCustomer(ctx, q.CustomerID, limit, q.Offset)
	if err != nil {
		return nil, err
	}
	return &OrderPage{Orders: list, Limit: limit, Offset: q.Offset}, nil
}

// =============================================================================
// Helpers
// =============================================================================

func orderTx(uow pipeline.UnitOfWork) (Tx, error) {
	tx, ok := uow.(Tx)
	if !ok {
		return nil, pipeline.Unexpectedf("unit of work does not provide order storage")
	}
	return tx, nil
}

func (h *Handlers) publish(ctx context.Context, name, orderID string) error {
	if h.notifier == nil {
		return nil
	}
	ev := Event{
		Name:          name,
		OrderID:       orderID,
		CorrelationID: pipeline.CorrelationID(ctx),
		OccurredAt:    h.now().UTC(),
	}
	if err := h.notifier.Publish(ctx, ev); err != nil {
		return pipeline.Dependency(err, "publish "+name)
	}
	return nil
}
