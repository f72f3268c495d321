/*
registry.go - Payee registration and admin updates

LIFECYCLE:
  First registration creates the record: the period starts now, nothing
  withdrawn, no advance taken. Re-registration updates the entitlement
  and reactivates, but leaves the running period, withdrawals, and any
  outstanding advance untouched. Records are never deleted.
*/
package payroll

import "context"

// Register creates or re-registers a payee with the given per-period
// entitlement. Admin-only.
func (e *Engine) Register(ctx context.Context, actor string, id PayeeID, periodEntitlement int64) error {
	if err := e.enter(); err != nil {
		return err
	}
	defer e.guard.Unlock()
	if err := e.requireAdmin(actor); err != nil {
		return err
	}
	if id == "" {
		return ErrInvalidIdentity
	}
	if periodEntitlement <= 0 {
		return ErrInvalidAmount
	}

	rec, ok, err := e.store.GetPayee(ctx, id)
	if err != nil {
		return err
	}
	now := e.clock.Now()

	if !ok || !rec.Registered() {
		rec = PayeeRecord{
			ID:                id,
			PeriodEntitlement: periodEntitlement,
			PeriodStart:       now,
			Active:            true,
		}
	} else {
		// Re-registration: the running period is not disturbed.
		rec.PeriodEntitlement = periodEntitlement
		rec.Active = true
	}

	if err := e.store.PutPayee(ctx, rec); err != nil {
		return err
	}
	e.emit(ctx, Event{
		Kind:   EventRegistered,
		Actor:  actor,
		Payee:  id,
		Amount: periodEntitlement,
		At:     now,
	})
	return nil
}

// Update changes a payee's entitlement and active flag. Admin-only.
// Fails with ErrNotRegistered if the identity was never registered;
// a registered-but-inactive payee can be updated.
func (e *Engine) Update(ctx context.Context, actor string, id PayeeID, periodEntitlement int64, active bool) error {
	if err := e.enter(); err != nil {
		return err
	}
	defer e.guard.Unlock()
	if err := e.requireAdmin(actor); err != nil {
		return err
	}
	if periodEntitlement <= 0 {
		return ErrInvalidAmount
	}

	rec, ok, err := e.store.GetPayee(ctx, id)
	if err != nil {
		return err
	}
	if !ok || !rec.Registered() {
		return ErrNotRegistered
	}

	rec.PeriodEntitlement = periodEntitlement
	rec.Active = active

	if err := e.store.PutPayee(ctx, rec); err != nil {
		return err
	}
	e.emit(ctx, Event{
		Kind:   EventUpdated,
		Actor:  actor,
		Payee:  id,
		Amount: periodEntitlement,
		At:     e.clock.Now(),
	})
	return nil
}
