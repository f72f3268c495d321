/*
advance.go - Short-term draw against future entitlement

RULES:
  - At most half the currently free entitlement may be drawn.
  - At most one advance per derived period index; settlement starts a
    new period and re-enables one advance.
  - All-or-nothing against the pool: an advance is an explicit request,
    so it is rejected rather than clamped when the pool is short.
  - Repayment happens only at settlement, never through withdrawal.
*/
package payroll

import (
	"context"

	"github.com/warp/payroll-engine/treasury"
)

// RequestAdvance draws amount against the payee's future entitlement.
func (e *Engine) RequestAdvance(ctx context.Context, payee PayeeID, amount int64) error {
	if err := e.enter(); err != nil {
		return err
	}
	defer e.guard.Unlock()

	if amount <= 0 {
		return ErrInvalidAmount
	}

	rec, ok, err := e.store.GetPayee(ctx, payee)
	if err != nil {
		return err
	}
	if !ok || !rec.Active {
		return ErrNotActivePayee
	}

	now := e.clock.Now()
	available := AvailableToWithdraw(rec, now, e.period)
	if available == 0 {
		return ErrNoAccruedBalance
	}
	maxAdvance := available / 2
	if amount > maxAdvance {
		return &AdvanceLimitError{Payee: payee, Requested: amount, Max: maxAdvance}
	}

	idx := PeriodIndex(rec, now, e.period)
	if rec.LastAdvancePeriod != nil && *rec.LastAdvancePeriod == idx {
		return ErrAdvanceAlreadyTaken
	}

	totals, err := e.store.Totals(ctx)
	if err != nil {
		return err
	}
	if amount > totals.Balance() {
		return ErrInsufficientPoolFunds
	}

	prevRec := rec.Clone()
	prevTotals := totals

	rec.OutstandingAdvance += amount
	rec.LastAdvancePeriod = &idx
	totals.Withdrawn += amount

	if err := e.store.PutPayee(ctx, rec); err != nil {
		return err
	}
	if err := e.store.PutTotals(ctx, totals); err != nil {
		e.restore(ctx, &prevRec, nil)
		return err
	}
	if err := e.transferOut(ctx, treasury.Account(payee), amount, &prevRec, &prevTotals); err != nil {
		return err
	}
	e.emit(ctx, Event{
		Kind:   EventAdvanceRequested,
		Actor:  string(payee),
		Payee:  payee,
		Amount: amount,
		At:     now,
	})
	return nil
}
