/*
engine.go - Operation entry points, guards, and transfer ordering

PURPOSE:
  The Engine binds the collaborators together and hosts every mutating
  operation. Each operation is atomic:

    guard -> read state -> compute -> persist mutation -> transfer -> event

EXECUTION MODEL:
  Strictly sequential. The only concurrency primitive is the reentrancy
  guard: a TryLock that rejects any nested mutating call while one is in
  progress on the same engine. Read-only queries do not take the guard.

TRANSFER ORDERING:
  State is persisted BEFORE the external transfer is invoked
  (checks-effects-interactions), so a reentrant callback can never
  observe pre-mutation state. A failed transfer rolls the persisted
  mutation back, making the whole operation all-or-nothing.

SEE ALSO:
  - registry.go, withdraw.go, advance.go, settle.go, funds.go: Operations
  - query.go: Read-only surface
*/
package payroll

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/warp/payroll-engine/treasury"
)

// DefaultPeriodLength is the accrual denominator used when Config leaves
// PeriodLength unset: one 30-day pay period.
const DefaultPeriodLength = 30 * 24 * time.Hour

// Config assembles an Engine. Store, Treasury, and Admin are required.
type Config struct {
	Store    Store
	Treasury treasury.Transfer
	Admin    AdminPolicy

	// PeriodLength is the accrual denominator shared by all payees.
	// Defaults to DefaultPeriodLength.
	PeriodLength time.Duration

	// Clock defaults to SystemClock.
	Clock Clock

	// Gate defaults to a fresh unpaused Gate.
	Gate PauseGate
}

// Engine is the payroll accounting engine. One instance owns one pool.
type Engine struct {
	store  Store
	bank   treasury.Transfer
	admin  AdminPolicy
	clock  Clock
	gate   PauseGate
	period time.Duration

	// Reentrancy guard. Held for the full duration of every mutating
	// operation, including its transfer call.
	guard sync.Mutex
}

// New validates the config and returns an Engine.
func New(cfg Config) (*Engine, error) {
	if cfg.Store == nil {
		return nil, errors.New("payroll: Config.Store is required")
	}
	if cfg.Treasury == nil {
		return nil, errors.New("payroll: Config.Treasury is required")
	}
	if cfg.Admin == nil {
		return nil, errors.New("payroll: Config.Admin is required")
	}
	if cfg.PeriodLength < 0 {
		return nil, errors.New("payroll: Config.PeriodLength must not be negative")
	}
	if cfg.PeriodLength == 0 {
		cfg.PeriodLength = DefaultPeriodLength
	}
	if cfg.Clock == nil {
		cfg.Clock = SystemClock()
	}
	if cfg.Gate == nil {
		cfg.Gate = NewGate()
	}
	return &Engine{
		store:  cfg.Store,
		bank:   cfg.Treasury,
		admin:  cfg.Admin,
		clock:  cfg.Clock,
		gate:   cfg.Gate,
		period: cfg.PeriodLength,
	}, nil
}

// PeriodLength returns the shared accrual denominator.
func (e *Engine) PeriodLength() time.Duration { return e.period }

// =============================================================================
// GUARDS
// =============================================================================

// enter acquires the reentrancy guard and checks the pause gate.
// Every mutating operation except Pause/Unpause starts here.
// The caller must defer e.guard.Unlock() on success.
func (e *Engine) enter() error {
	if !e.guard.TryLock() {
		return ErrReentrantCall
	}
	if e.gate.IsPaused() {
		e.guard.Unlock()
		return ErrSystemPaused
	}
	return nil
}

func (e *Engine) requireAdmin(actor string) error {
	if !e.admin.IsAdmin(actor) {
		return ErrNotAdmin
	}
	return nil
}

// =============================================================================
// PAUSE / UNPAUSE - Admin-only, exempt from the pause check
// =============================================================================

func (e *Engine) Pause(ctx context.Context, actor string) error {
	if !e.guard.TryLock() {
		return ErrReentrantCall
	}
	defer e.guard.Unlock()
	if err := e.requireAdmin(actor); err != nil {
		return err
	}
	e.gate.Pause()
	e.emit(ctx, Event{Kind: EventPaused, Actor: actor, At: e.clock.Now()})
	return nil
}

func (e *Engine) Unpause(ctx context.Context, actor string) error {
	if !e.guard.TryLock() {
		return ErrReentrantCall
	}
	defer e.guard.Unlock()
	if err := e.requireAdmin(actor); err != nil {
		return err
	}
	e.gate.Unpause()
	e.emit(ctx, Event{Kind: EventUnpaused, Actor: actor, At: e.clock.Now()})
	return nil
}

// =============================================================================
// TRANSFER HELPERS - Persist-then-transfer with rollback
// =============================================================================

// transferOut invokes the collaborator after the operation's mutation has
// been persisted. On failure it restores the pre-operation state so the
// aborted operation leaves no effect.
func (e *Engine) transferOut(ctx context.Context, to treasury.Account, amount int64, prevRec *PayeeRecord, prevTotals *PoolTotals) error {
	if err := e.bank.TransferOut(ctx, to, amount); err != nil {
		e.restore(ctx, prevRec, prevTotals)
		return fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}
	return nil
}

func (e *Engine) transferIn(ctx context.Context, from treasury.Account, amount int64, prevRec *PayeeRecord, prevTotals *PoolTotals) error {
	if err := e.bank.TransferIn(ctx, from, amount); err != nil {
		e.restore(ctx, prevRec, prevTotals)
		return fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}
	return nil
}

// =============================================================================
// EVENTS
// =============================================================================

// emit appends the operation's notification to the event log. By the time
// emit runs the mutation is committed and any transfer has cleared, so a
// failed append is logged and dropped rather than failing an operation
// whose funds have already moved.
func (e *Engine) emit(ctx context.Context, ev Event) {
	if err := e.store.AppendEvent(ctx, ev); err != nil {
		log.Printf("payroll: dropping %s event for %q: %v", ev.Kind, ev.Payee, err)
	}
}

// restore is best-effort: the store is the same one that just accepted a
// write, so a failure here means the host storage itself is gone.
func (e *Engine) restore(ctx context.Context, rec *PayeeRecord, totals *PoolTotals) {
	if rec != nil {
		_ = e.store.PutPayee(ctx, rec.Clone())
	}
	if totals != nil {
		_ = e.store.PutTotals(ctx, *totals)
	}
}
