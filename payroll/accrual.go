/*
accrual.go - The entitlement formula

PURPOSE:
  Pure functions answering "how much has this payee earned?" and "how much
  of it is still free?". Everything else in the engine is state transitions
  around these two numbers.

THE FORMULA:
  accrued = floor(periodEntitlement * elapsed / periodLength)

  Linear, deterministic, monotone in time, and deliberately uncapped:
  accrual continues across arbitrarily many un-settled periods because
  settlement timing is an admin decision, not an automatic boundary.

PRECISION:
  periodEntitlement * elapsed(ns) overflows int64 for realistic inputs
  (an entitlement of 10^7 over a 30-day period already passes 2^63), so
  the proration runs through decimal integer division. QuoRem with zero
  precision gives the exact floor for non-negative operands.
*/
package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// Accrued returns the total entitlement earned since the record's period
// began. Returns 0 for unregistered records and non-positive elapsed time.
func Accrued(rec PayeeRecord, now time.Time, periodLength time.Duration) int64 {
	if !rec.Registered() || periodLength <= 0 {
		return 0
	}
	elapsed := now.Sub(rec.PeriodStart)
	if elapsed <= 0 {
		return 0
	}
	q, _ := decimal.NewFromInt(rec.PeriodEntitlement).
		Mul(decimal.NewFromInt(int64(elapsed))).
		QuoRem(decimal.NewFromInt(int64(periodLength)), 0)
	return q.IntPart()
}

// AvailableToWithdraw is the authoritative free-entitlement figure: what
// has accrued minus what was already withdrawn or drawn as an advance.
// Both the withdrawal and advance paths, and the query surface, use this
// single formula.
func AvailableToWithdraw(rec PayeeRecord, now time.Time, periodLength time.Duration) int64 {
	free := Accrued(rec, now, periodLength) - rec.WithdrawnInPeriod - rec.OutstandingAdvance
	if free < 0 {
		return 0
	}
	return free
}

// PeriodIndex derives the payee's current period number from elapsed time.
// Index 0 is the period started at PeriodStart.
func PeriodIndex(rec PayeeRecord, now time.Time, periodLength time.Duration) uint64 {
	if !rec.Registered() || periodLength <= 0 {
		return 0
	}
	elapsed := now.Sub(rec.PeriodStart)
	if elapsed < 0 {
		return 0
	}
	return uint64(elapsed / periodLength)
}
