/*
query.go - Read-only surface

  Queries have no side effects and do not take the reentrancy guard, so
  a transfer callback may observe state mid-operation; by the ordering
  policy it observes post-mutation state, never stale guards.
*/
package payroll

import "context"

// PayeeInfo returns the stored record plus derived accrual figures.
// Fails with ErrNotRegistered for an unknown identity.
func (e *Engine) PayeeInfo(ctx context.Context, id PayeeID) (PayeeInfo, error) {
	rec, ok, err := e.store.GetPayee(ctx, id)
	if err != nil {
		return PayeeInfo{}, err
	}
	if !ok || !rec.Registered() {
		return PayeeInfo{}, ErrNotRegistered
	}
	now := e.clock.Now()
	return PayeeInfo{
		ID:                  rec.ID,
		PeriodEntitlement:   rec.PeriodEntitlement,
		Active:              rec.Active,
		PeriodStart:         rec.PeriodStart,
		Accrued:             Accrued(rec, now, e.period),
		WithdrawnInPeriod:   rec.WithdrawnInPeriod,
		OutstandingAdvance:  rec.OutstandingAdvance,
		LastAdvancePeriod:   rec.Clone().LastAdvancePeriod,
		AvailableToWithdraw: AvailableToWithdraw(rec, now, e.period),
	}, nil
}

// Payees returns info for every identity ever registered, in
// registration order.
func (e *Engine) Payees(ctx context.Context) ([]PayeeInfo, error) {
	ids, err := e.store.PayeeIDs(ctx)
	if err != nil {
		return nil, err
	}
	infos := make([]PayeeInfo, 0, len(ids))
	for _, id := range ids {
		info, err := e.PayeeInfo(ctx, id)
		if err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// PayeeCount returns the number of identities ever registered.
func (e *Engine) PayeeCount(ctx context.Context) (int, error) {
	return e.store.PayeeCount(ctx)
}

// Totals returns the pool-wide audit counters.
func (e *Engine) Totals(ctx context.Context) (PoolTotals, error) {
	return e.store.Totals(ctx)
}

// PoolBalance returns the undistributed value held by the pool.
func (e *Engine) PoolBalance(ctx context.Context) (int64, error) {
	totals, err := e.store.Totals(ctx)
	if err != nil {
		return 0, err
	}
	return totals.Balance(), nil
}

// LockedAmount returns the sum of active payees' unpaid obligations.
func (e *Engine) LockedAmount(ctx context.Context) (int64, error) {
	return e.lockedAmount(ctx, e.clock.Now())
}

// FreeFunds returns poolBalance - lockedAmount. Negative when the pool
// is under-collateralized, which normal underfunded operation permits.
func (e *Engine) FreeFunds(ctx context.Context) (int64, error) {
	totals, err := e.store.Totals(ctx)
	if err != nil {
		return 0, err
	}
	locked, err := e.lockedAmount(ctx, e.clock.Now())
	if err != nil {
		return 0, err
	}
	return totals.Balance() - locked, nil
}

// Events returns the notification log in append order.
func (e *Engine) Events(ctx context.Context) ([]Event, error) {
	return e.store.Events(ctx)
}

// Paused reports the pause gate's current state.
func (e *Engine) Paused() bool { return e.gate.IsPaused() }
