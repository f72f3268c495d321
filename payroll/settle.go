/*
settle.go - Period close-out

PROTOCOL:
  1. Repay: outstanding advance is repaid from newly-accrued entitlement
     first (min of the two), and a repayment notification reports both
     the amount repaid and the balance still owed.
  2. Pay: whatever remains is paid out, clamped to the pool balance.
  3. Reset: period state restarts unconditionally, even when nothing was
     paid. A new period begins at the settlement instant, re-enabling
     one future advance.

  Every settlement emits a settled notification carrying the payout
  amount, so a zero-payout reset still leaves an audit trail.

  Settlement never fails on underfunding: it degrades to paying whatever
  the pool holds. It can be invoked at any time, early or many periods
  late; the period length is an accrual denominator, not an externally
  synchronized boundary.
*/
package payroll

import (
	"context"

	"github.com/warp/payroll-engine/treasury"
)

// Settlement reports what a settlement did.
type Settlement struct {
	Payee PayeeID

	// Accrued entitlement at the settlement instant.
	Accrued int64

	// Advance repaid out of the accrued remainder, and what is still
	// owed afterwards.
	Repaid           int64
	AdvanceRemaining int64

	// Amount actually paid out (after the pool clamp).
	Paid int64
}

// Settle closes out a payee's current period. Admin-only, callable at
// any time.
func (e *Engine) Settle(ctx context.Context, actor string, payee PayeeID) (Settlement, error) {
	if err := e.enter(); err != nil {
		return Settlement{}, err
	}
	defer e.guard.Unlock()
	if err := e.requireAdmin(actor); err != nil {
		return Settlement{}, err
	}

	rec, ok, err := e.store.GetPayee(ctx, payee)
	if err != nil {
		return Settlement{}, err
	}
	if !ok || !rec.Registered() {
		return Settlement{}, ErrNotRegistered
	}

	now := e.clock.Now()
	accrued := Accrued(rec, now, e.period)
	remaining := accrued - rec.WithdrawnInPeriod
	if remaining < 0 {
		remaining = 0
	}

	totals, err := e.store.Totals(ctx)
	if err != nil {
		return Settlement{}, err
	}

	prevRec := rec.Clone()
	prevTotals := totals

	res := Settlement{Payee: payee, Accrued: accrued}
	hadAdvance := rec.OutstandingAdvance > 0

	if hadAdvance {
		res.Repaid = remaining
		if rec.OutstandingAdvance < res.Repaid {
			res.Repaid = rec.OutstandingAdvance
		}
		remaining -= res.Repaid
		rec.OutstandingAdvance -= res.Repaid
	}
	res.AdvanceRemaining = rec.OutstandingAdvance

	if pool := totals.Balance(); remaining > pool {
		remaining = pool
	}
	res.Paid = remaining
	if res.Paid > 0 {
		totals.Withdrawn += res.Paid
	}

	// Reset is unconditional: a new period begins now.
	rec.PeriodStart = now
	rec.WithdrawnInPeriod = 0
	rec.LastAdvancePeriod = nil

	if err := e.store.PutPayee(ctx, rec); err != nil {
		return Settlement{}, err
	}
	if err := e.store.PutTotals(ctx, totals); err != nil {
		e.restore(ctx, &prevRec, nil)
		return Settlement{}, err
	}
	if res.Paid > 0 {
		if err := e.transferOut(ctx, treasury.Account(payee), res.Paid, &prevRec, &prevTotals); err != nil {
			return Settlement{}, err
		}
	}

	if hadAdvance {
		e.emit(ctx, Event{
			Kind:      EventAdvanceRepaid,
			Actor:     actor,
			Payee:     payee,
			Amount:    res.Repaid,
			Remaining: res.AdvanceRemaining,
			At:        now,
		})
	}
	// Every settlement leaves a trace, even a zero-payout one: the
	// period reset alone is an observable state change.
	e.emit(ctx, Event{
		Kind:   EventSettled,
		Actor:  actor,
		Payee:  payee,
		Amount: res.Paid,
		At:     now,
	})
	return res, nil
}
