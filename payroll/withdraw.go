/*
withdraw.go - Ad-hoc payout of free entitlement

UNDERFUNDING POLICY:
  The payout clamps to the pool balance. A payee can silently receive
  less than their computed entitlement when the pool is short; the
  counters record the clamped amount, never the requested one. Solvency
  wins over payee expectation.
*/
package payroll

import (
	"context"

	"github.com/warp/payroll-engine/treasury"
)

// Withdraw pays out the payee's currently free entitlement, clamped to
// the pool balance. Returns the amount actually paid.
func (e *Engine) Withdraw(ctx context.Context, payee PayeeID) (int64, error) {
	if err := e.enter(); err != nil {
		return 0, err
	}
	defer e.guard.Unlock()

	rec, ok, err := e.store.GetPayee(ctx, payee)
	if err != nil {
		return 0, err
	}
	if !ok || !rec.Active {
		return 0, ErrNotActivePayee
	}

	now := e.clock.Now()
	available := AvailableToWithdraw(rec, now, e.period)
	if available == 0 {
		return 0, ErrNothingAvailable
	}

	totals, err := e.store.Totals(ctx)
	if err != nil {
		return 0, err
	}
	paid := available
	if pool := totals.Balance(); paid > pool {
		paid = pool
	}
	if paid == 0 {
		return 0, ErrNothingAvailable
	}

	prevRec := rec.Clone()
	prevTotals := totals

	rec.WithdrawnInPeriod += paid
	totals.Withdrawn += paid

	if err := e.store.PutPayee(ctx, rec); err != nil {
		return 0, err
	}
	if err := e.store.PutTotals(ctx, totals); err != nil {
		e.restore(ctx, &prevRec, nil)
		return 0, err
	}
	if err := e.transferOut(ctx, treasury.Account(payee), paid, &prevRec, &prevTotals); err != nil {
		return 0, err
	}
	e.emit(ctx, Event{
		Kind:   EventWithdrawn,
		Actor:  string(payee),
		Payee:  payee,
		Amount: paid,
		At:     now,
	})
	return paid, nil
}
