/*
funds.go - Locked-funds calculation and the fund controller

LOCKED FUNDS:
  lockedAmount = sum over ACTIVE payees of
      max(0, accrued - withdrawnInPeriod) + outstandingAdvance

  Inactive payees contribute nothing: deactivation forfeits the
  unpaid-accrual claim from the locked-funds perspective, though the
  record itself is untouched.

  This is an O(n) scan over the full registry, deliberately scoped to
  the fund-control operations (refund, emergency withdrawal) and the
  query surface. The hot paths (withdraw, advance) never run it.
*/
package payroll

import (
	"context"
	"time"

	"github.com/warp/payroll-engine/treasury"
)

// lockedAmount sums the obligations the pool must be able to cover.
func (e *Engine) lockedAmount(ctx context.Context, now time.Time) (int64, error) {
	ids, err := e.store.PayeeIDs(ctx)
	if err != nil {
		return 0, err
	}
	var locked int64
	for _, id := range ids {
		rec, ok, err := e.store.GetPayee(ctx, id)
		if err != nil {
			return 0, err
		}
		if !ok || !rec.Active {
			continue
		}
		unpaid := Accrued(rec, now, e.period) - rec.WithdrawnInPeriod
		if unpaid < 0 {
			unpaid = 0
		}
		locked += unpaid + rec.OutstandingAdvance
	}
	return locked, nil
}

// Fund transfers amount from the actor's account into the pool.
// Admin-only.
func (e *Engine) Fund(ctx context.Context, actor string, amount int64) error {
	if err := e.enter(); err != nil {
		return err
	}
	defer e.guard.Unlock()
	if err := e.requireAdmin(actor); err != nil {
		return err
	}
	if amount <= 0 {
		return ErrInvalidAmount
	}

	totals, err := e.store.Totals(ctx)
	if err != nil {
		return err
	}
	prevTotals := totals
	totals.Funded += amount

	if err := e.store.PutTotals(ctx, totals); err != nil {
		return err
	}
	if err := e.transferIn(ctx, treasury.Account(actor), amount, nil, &prevTotals); err != nil {
		return err
	}
	e.emit(ctx, Event{
		Kind:   EventFunded,
		Actor:  actor,
		Amount: amount,
		At:     e.clock.Now(),
	})
	return nil
}

// Refund returns free (un-locked) funds to the admin's own account.
func (e *Engine) Refund(ctx context.Context, actor string, amount int64) error {
	return e.withdrawFree(ctx, actor, treasury.Account(actor), amount)
}

// EmergencyWithdraw sends free funds to an arbitrary destination.
// Same locked-funds guard as Refund; only the destination differs.
func (e *Engine) EmergencyWithdraw(ctx context.Context, actor string, to treasury.Account, amount int64) error {
	return e.withdrawFree(ctx, actor, to, amount)
}

// withdrawFree is the shared refund path: admin-only, positive amount,
// and never more than poolBalance - lockedAmount.
func (e *Engine) withdrawFree(ctx context.Context, actor string, to treasury.Account, amount int64) error {
	if err := e.enter(); err != nil {
		return err
	}
	defer e.guard.Unlock()
	if err := e.requireAdmin(actor); err != nil {
		return err
	}
	if amount <= 0 {
		return ErrInvalidAmount
	}

	totals, err := e.store.Totals(ctx)
	if err != nil {
		return err
	}
	locked, err := e.lockedAmount(ctx, e.clock.Now())
	if err != nil {
		return err
	}
	free := totals.Balance() - locked
	if amount > free {
		return &FreeFundsError{Requested: amount, Free: free, Locked: locked}
	}

	prevTotals := totals
	totals.Refunded += amount

	if err := e.store.PutTotals(ctx, totals); err != nil {
		return err
	}
	if err := e.transferOut(ctx, to, amount, nil, &prevTotals); err != nil {
		return err
	}
	e.emit(ctx, Event{
		Kind:   EventRefunded,
		Actor:  actor,
		Amount: amount,
		At:     e.clock.Now(),
	})
	return nil
}
