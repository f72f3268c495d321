/*
Package payroll implements a streaming payroll ledger.

PURPOSE:
  Registered payees earn a continuously accruing entitlement, denominated in
  an integer unit of value, against a shared finite pool of funds. The engine
  arbitrates three competing claims on that pool:

  1. Withdrawal:  ad-hoc payout of currently free entitlement
  2. Advance:     short-term draw against future entitlement
  3. Settlement:  admin-triggered period close-out (repay advance, pay the
                  remainder, reset period state)

KEY CONCEPTS IN THIS FILE (types.go):
  - PayeeRecord: Per-payee accrual and advance state
  - PoolTotals:  Monotone pool-wide counters; pool balance is derived
  - Event:       Notification emitted by every successful mutating operation

DESIGN PRINCIPLES:
  1. Integer units: All amounts are non-negative int64; accrual floors.
  2. Derived balance: Pool balance = funded - withdrawn - refunded, so the
     accounting identity cannot drift out of sync with the counters.
  3. One mutation at a time: A per-engine guard rejects reentrant calls.
  4. Solvency over expectation: Payouts clamp to what the pool holds.

SEE ALSO:
  - accrual.go: The entitlement formula
  - engine.go:  Operation entry points, guards, transfer ordering
  - store.go:   Persistence interface (memory, sqlite, bolt implementations)
*/
package payroll

import "time"

// =============================================================================
// IDENTIFIERS
// =============================================================================

// PayeeID identifies a registered payee. Also used as the destination
// account for payouts.
type PayeeID string

// =============================================================================
// PAYEE RECORD - Per-payee accrual and advance state
// =============================================================================

// PayeeRecord is the canonical state for one registered identity.
// Records are never deleted; deactivation only flips Active.
type PayeeRecord struct {
	ID PayeeID

	// Full entitlement for one complete period. Admin-mutable.
	PeriodEntitlement int64

	// Start of the current accrual period. Set on first registration,
	// reset only by settlement. Zero value = never registered.
	PeriodStart time.Time

	// Active governs withdrawal/advance eligibility and whether the
	// payee's unpaid claim counts toward locked funds.
	Active bool

	// Cumulative amount withdrawn since PeriodStart. Reset by settlement.
	WithdrawnInPeriod int64

	// Unrepaid advance balance. Increased by advances, decreased only
	// by settlement (never by withdrawal).
	OutstandingAdvance int64

	// Period index of the last advance, nil if none has been taken since
	// the last settlement. Enforces the once-per-period rule.
	LastAdvancePeriod *uint64
}

// Registered reports whether this identity has ever been registered.
// Distinguishes "never registered" from "registered but inactive".
func (r PayeeRecord) Registered() bool { return !r.PeriodStart.IsZero() }

// Clone returns a deep copy. Stores must not alias LastAdvancePeriod
// between the caller and their own state.
func (r PayeeRecord) Clone() PayeeRecord {
	out := r
	if r.LastAdvancePeriod != nil {
		idx := *r.LastAdvancePeriod
		out.LastAdvancePeriod = &idx
	}
	return out
}

// =============================================================================
// POOL TOTALS - Monotone counters and the derived pool balance
// =============================================================================

// PoolTotals are the pool-wide audit counters. Each is monotonically
// non-decreasing; Withdrawn includes advances and settlement payouts.
type PoolTotals struct {
	Funded    int64
	Withdrawn int64
	Refunded  int64
}

// Balance is the undistributed value currently held by the pool.
// Funded = Balance + Withdrawn + Refunded holds by construction.
func (t PoolTotals) Balance() int64 { return t.Funded - t.Withdrawn - t.Refunded }

// =============================================================================
// EVENTS - One notification per successful mutating operation
// =============================================================================

type EventKind string

const (
	EventRegistered       EventKind = "registered"
	EventUpdated          EventKind = "updated"
	EventFunded           EventKind = "funded"
	EventWithdrawn        EventKind = "withdrawn"
	EventAdvanceRequested EventKind = "advance_requested"
	EventAdvanceRepaid    EventKind = "advance_repaid"
	EventSettled          EventKind = "settled"
	EventRefunded         EventKind = "refunded"
	EventPaused           EventKind = "paused"
	EventUnpaused         EventKind = "unpaused"
)

// Event records an observable side effect. Appended to the store's
// event log after the operation's transfer (if any) has succeeded.
type Event struct {
	Kind   EventKind
	Actor  string
	Payee  PayeeID // empty for pool-level events
	Amount int64

	// Remaining advance balance after repayment. Only meaningful for
	// EventAdvanceRepaid.
	Remaining int64

	At time.Time
}

// =============================================================================
// PAYEE INFO - Read-only query projection
// =============================================================================

// PayeeInfo is the query-surface view of a payee: stored fields plus the
// derived accrual figures at query time.
type PayeeInfo struct {
	ID                  PayeeID
	PeriodEntitlement   int64
	Active              bool
	PeriodStart         time.Time
	Accrued             int64
	WithdrawnInPeriod   int64
	OutstandingAdvance  int64
	LastAdvancePeriod   *uint64
	AvailableToWithdraw int64
}
