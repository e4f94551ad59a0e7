package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrInvalidTransition is returned when a unit of work is driven
// through an illegal state change.
var ErrInvalidTransition = errors.New("invalid unit-of-work transition")

// =============================================================================
// Unit-of-Work State Machine
// =============================================================================

// TxState is the lifecycle of one unit of work. The only legal paths
// are Idle→Active→Committed and Idle→Active→RolledBack; the terminal
// states are absorbing.
type TxState int

const (
	StateIdle TxState = iota
	StateActive
	StateCommitted
	StateRolledBack
)

func (s TxState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateActive:
		return "active"
	case StateCommitted:
		return "committed"
	case StateRolledBack:
		return "rolled_back"
	default:
		return "unknown"
	}
}

// TxTracker enforces the unit-of-work lifecycle. Storage adapters embed
// one and drive it alongside their real transaction so that commit is
// attempted at most once and no terminal state is ever left.
//
// The zero value is an idle tracker, ready for use.
type TxTracker struct {
	mu    sync.Mutex
	state TxState
}

// State returns the current lifecycle state.
func (t *TxTracker) State() TxState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Begin moves Idle→Active.
func (t *TxTracker) Begin() error {
	return t.transition(StateIdle, StateActive)
}

// Commit moves Active→Committed. A second commit attempt is an error.
func (t *TxTracker) Commit() error {
	return t.transition(StateActive, StateCommitted)
}

// Rollback moves Active→RolledBack. Rolling back an already
// rolled-back unit is a no-op so cleanup paths can be unconditional;
// rolling back a committed unit is an error.
func (t *TxTracker) Rollback() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch t.state {
	case StateActive:
		t.state = StateRolledBack
		return nil
	case StateRolledBack:
		return nil
	default:
		return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, t.state, StateRolledBack)
	}
}

func (t *TxTracker) transition(from, to TxState) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != from {
		return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, t.state, to)
	}
	t.state = to
	return nil
}

// =============================================================================
// Unit-of-Work Contracts
// =============================================================================

// UnitOfWork is the transactional boundary around one handler
// invocation. The dispatcher commits it when the handler succeeds and
// rolls it back on any error, panic, or cancellation. A unit spans
// exactly one request and is owned exclusively by that request's task.
type UnitOfWork interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
	State() TxState
}

// UnitOfWorkFactory opens a fresh unit of work per dispatch. The
// storage layer implements it; concrete units additionally expose the
// repositories handlers need.
type UnitOfWorkFactory interface {
	Begin(ctx context.Context) (UnitOfWork, error)
}
