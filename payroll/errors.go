/*
errors.go - Centralized error taxonomy for the payroll engine

PURPOSE:
  All operation-aborting errors in one place. Every failure leaves no
  partial state: guard checks precede mutation, and a failed transfer
  rolls the operation's mutation back before the error is returned.

USAGE:
  Callers classify with errors.Is, or errors.As for the structured
  variants that carry amounts:

    var limitErr *AdvanceLimitError
    if errors.As(err, &limitErr) {
        // limitErr.Requested, limitErr.Max
    }
*/
package payroll

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidIdentity is returned for an empty payee identity.
	ErrInvalidIdentity = errors.New("invalid payee identity")

	// ErrInvalidAmount is returned where a positive amount is required.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrNotRegistered is returned when the identity has never been
	// registered. A registered-but-inactive payee is NOT this error.
	ErrNotRegistered = errors.New("payee not registered")

	// ErrNotActivePayee is returned when withdrawal or advance is
	// attempted by a missing or deactivated payee.
	ErrNotActivePayee = errors.New("payee not active")

	// ErrNotAdmin is returned when an admin-only operation is invoked
	// by a non-admin actor.
	ErrNotAdmin = errors.New("actor is not an admin")

	// ErrSystemPaused is returned by every mutating operation (except
	// pause/unpause themselves) while the pause gate is closed.
	ErrSystemPaused = errors.New("system is paused")

	// ErrNothingAvailable is returned when a withdrawal finds zero free
	// entitlement.
	ErrNothingAvailable = errors.New("nothing available to withdraw")

	// ErrNoAccruedBalance is returned when an advance is requested with
	// zero free entitlement.
	ErrNoAccruedBalance = errors.New("no accrued balance to advance against")

	// ErrExceedsAdvanceLimit is returned when the requested advance
	// exceeds half the free entitlement.
	ErrExceedsAdvanceLimit = errors.New("advance exceeds limit")

	// ErrAdvanceAlreadyTaken is returned for a second advance in the
	// same derived period index.
	ErrAdvanceAlreadyTaken = errors.New("advance already taken this period")

	// ErrInsufficientPoolFunds is returned when an advance request
	// exceeds the pool balance. Advances are all-or-nothing, never
	// clamped.
	ErrInsufficientPoolFunds = errors.New("insufficient pool funds")

	// ErrExceedsFreeFunds is returned when a refund or emergency
	// withdrawal would dip into locked funds.
	ErrExceedsFreeFunds = errors.New("amount exceeds free funds")

	// ErrTransferFailed wraps a failure from the value-transfer
	// collaborator. The operation's state mutation has been rolled back.
	ErrTransferFailed = errors.New("transfer failed")

	// ErrReentrantCall is returned when a mutating operation is invoked
	// while another one is still in progress on the same engine.
	ErrReentrantCall = errors.New("reentrant call rejected")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// AdvanceLimitError reports how far a request overshot the advance cap.
type AdvanceLimitError struct {
	Payee     PayeeID
	Requested int64
	Max       int64
}

func (e *AdvanceLimitError) Error() string {
	return fmt.Sprintf("advance of %d exceeds limit %d for payee %s", e.Requested, e.Max, e.Payee)
}

func (e *AdvanceLimitError) Unwrap() error { return ErrExceedsAdvanceLimit }

// FreeFundsError reports the locked-funds guard that blocked an outflow.
type FreeFundsError struct {
	Requested int64
	Free      int64
	Locked    int64
}

func (e *FreeFundsError) Error() string {
	return fmt.Sprintf("requested %d exceeds free funds %d (locked %d)", e.Requested, e.Free, e.Locked)
}

func (e *FreeFundsError) Unwrap() error { return ErrExceedsFreeFunds }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid or
// unsatisfiable caller input rather than a system failure.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidIdentity) ||
		errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrNothingAvailable) ||
		errors.Is(err, ErrNoAccruedBalance) ||
		errors.Is(err, ErrExceedsAdvanceLimit) ||
		errors.Is(err, ErrAdvanceAlreadyTaken) ||
		errors.Is(err, ErrInsufficientPoolFunds) ||
		errors.Is(err, ErrExceedsFreeFunds)
}

// IsAuthError returns true if the failure is an authorization or gating
// rejection.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrNotAdmin) || errors.Is(err, ErrSystemPaused)
}

// IsNotFound returns true if the error indicates a missing payee.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotRegistered) || errors.Is(err, ErrNotActivePayee)
}
