package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/artpar/relay/internal/core/orders"
	"github.com/artpar/relay/internal/core/pipeline"
)

// orderRepo implements orders.Repository on a single transaction.
// Infrastructure failures surface as DependencyError and missing rows
// as NotFoundError, so handlers pass repository errors straight up.
type orderRepo struct {
	tx *sqlx.Tx
}

// orderRow mirrors the orders table. Timestamps are stored as RFC3339
// strings.
type orderRow struct {
	ID         string `db:"id"`
	CustomerID string `db:"customer_id"`
	SKU        string `db:"sku"`
	Quantity   int    `db:"quantity"`
	PriceCents int64  `db:"price_cents"`
	Status     string `db:"status"`
	CreatedAt  string `db:"created_at"`
	UpdatedAt  string `db:"updated_at"`
}

func (r *orderRepo) Insert(ctx context.Context, o *orders.Order) error {
	row := fromDomain(o)
	_, err := r.tx.NamedExecContext(ctx, `
		INSERT INTO orders (id, customer_id, sku, quantity, price_cents, status, created_at, updated_at)
		VALUES (:id, :customer_id, :sku, :quantity, :price_cents, :status, :created_at, :updated_at)
	`, row)
	if err != nil {
		return pipeline.Dependency(err, "insert order")
	}
	return nil
}

func (r *orderRepo) Get(ctx context.Context, id string) (*orders.Order, error) {
	var row orderRow
	err := r.tx.GetContext(ctx, &row,
		`SELECT id, customer_id, sku, quantity, price_cents, status, created_at, updated_at
		 FROM orders WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, pipeline.NotFoundf("order %s not found", id)
		}
		return nil, pipeline.Dependency(err, "get order")
	}
	o := row.toDomain()
	return &o, nil
}

func (r *orderRepo) UpdateStatus(ctx context.Context, id string, status orders.Status, updatedAt time.Time) error {
	res, err := r.tx.ExecContext(ctx,
		`UPDATE orders SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), updatedAt.UTC().Format(time.RFC3339), id)
	if err != nil {
		return pipeline.Dependency(err, "update order status")
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return pipeline.NotFoundf("order %s not found", id)
	}
	return nil
}

func (r *orderRepo) ListByCustomer(ctx context.Context, customerID string, limit, offset int) ([]orders.Order, error) {
	var rows []orderRow
	err := r.tx.SelectContext(ctx, &rows,
		`SELECT id, customer_id, sku, quantity, price_cents, status, created_at, updated_at
		 FROM orders WHERE customer_id = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT ? OFFSET ?`, customerID, limit, offset)
	if err != nil {
		return nil, pipeline.Dependency(err, "list orders")
	}
	out := make([]orders.Order, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

// =============================================================================
// Row Mapping
// =============================================================================

func fromDomain(o *orders.Order) orderRow {
	return orderRow{
		ID:         o.ID,
		CustomerID: o.CustomerID,
		SKU:        o.SKU,
		Quantity:   o.Quantity,
		PriceCents: o.PriceCents,
		Status:     string(o.Status),
		CreatedAt:  o.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:  o.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func (r orderRow) toDomain() orders.Order {
	createdAt, _ := time.Parse(time.RFC3339, r.CreatedAt)
	updatedAt, _ := time.Parse(time.RFC3339, r.UpdatedAt)
	return orders.Order{
		ID:         r.ID,
		CustomerID: r.CustomerID,
		SKU:        r.SKU,
		Quantity:   r.Quantity,
		PriceCents: r.PriceCents,
		Status:     orders.Status(r.Status),
		CreatedAt:  createdAt,
		UpdatedAt:  updatedAt,
	}
}
