package payroll

import "time"

// =============================================================================
// TIME SOURCE - Injected so accrual is testable and deterministic
// =============================================================================

// Clock supplies the current time. Assumed monotonically non-decreasing
// across operations.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns the wall-clock time source.
func SystemClock() Clock { return systemClock{} }
