package store

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/artpar/relay/internal/core/orders"
	"github.com/artpar/relay/internal/core/pipeline"
)

// UnitOfWork is one database transaction driven through the pipeline's
// Idle→Active→{Committed|RolledBack} state machine. It also implements
// orders.Tx so handlers can reach the transaction-scoped repository.
type UnitOfWork struct {
	tx      *sqlx.Tx
	tracker pipeline.TxTracker
	logger  *slog.Logger
}

// State returns the unit's lifecycle state.
func (u *UnitOfWork) State() pipeline.TxState {
	return u.tracker.State()
}

// Commit durably applies the unit's writes. A failed database commit
// moves the unit to RolledBack, since its writes did not survive.
func (u *UnitOfWork) Commit(ctx context.Context) error {
	if state := u.tracker.State(); state != pipeline.StateActive {
		return pipeline.ErrInvalidTransition
	}
	if err := u.tx.Commit(); err != nil {
		u.tracker.Rollback()
		return pipeline.Dependency(err, "commit transaction")
	}
	return u.tracker.Commit()
}

// Rollback discards the unit's writes. Rolling back twice is a no-op;
// rolling back a committed unit is an error.
func (u *UnitOfWork) Rollback(ctx context.Context) error {
	switch u.tracker.State() {
	case pipeline.StateRolledBack:
		return nil
	case pipeline.StateActive:
	default:
		return pipeline.ErrInvalidTransition
	}

	err := u.tx.Rollback()
	u.tracker.Rollback()
	if err != nil && !errors.Is(err, sql.ErrTxDone) {
		u.logger.Error("transaction rollback failed", "error", err)
		return pipeline.Dependency(err, "rollback transaction")
	}
	return nil
}

// Orders returns the repository bound to this transaction.
func (u *UnitOfWork) Orders() orders.Repository {
	return &orderRepo{tx: u.tx}
}
