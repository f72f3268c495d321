package payroll_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/payroll-engine/payroll"
)

func TestFund_MovesValueIntoPool(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.engine.Fund(ctx, "admin", 5000))

	totals, err := f.engine.Totals(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), totals.Funded)
	assert.Equal(t, int64(5000), totals.Balance())
	assert.Equal(t, int64(5000), f.bank.PoolBalance())
	f.checkIdentity(t)

	assert.ErrorIs(t, f.engine.Fund(ctx, "mallory", 100), payroll.ErrNotAdmin)
	assert.ErrorIs(t, f.engine.Fund(ctx, "admin", 0), payroll.ErrInvalidAmount)
}

func TestFund_TransferFailureRollsBackCounter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// The admin's treasury account holds 1_000_000; more than that
	// cannot be pulled in, and the counter must not move.
	err := f.engine.Fund(ctx, "admin", 2_000_000)
	assert.ErrorIs(t, err, payroll.ErrTransferFailed)

	totals, err := f.engine.Totals(ctx)
	require.NoError(t, err)
	assert.Zero(t, totals.Funded)
}

func TestRefund_FreeFundsOnly(t *testing.T) {
	// GIVEN: Pool funded with 1000 and no payees registered
	// WHEN: The admin refunds 1000
	// THEN: It succeeds (locked = 0); refunding 1 more fails
	f := newFixture(t)
	f.fund(t, 1000)
	ctx := context.Background()

	require.NoError(t, f.engine.Refund(ctx, "admin", 1000))
	assert.Equal(t, int64(1_000_000), f.bank.Balance("admin"), "refund returns to the admin's account")

	err := f.engine.Refund(ctx, "admin", 1)
	assert.ErrorIs(t, err, payroll.ErrExceedsFreeFunds)
	f.checkIdentity(t)
}

func TestRefund_LockedFundsGuard(t *testing.T) {
	f := newFixture(t)
	f.fund(t, 10_000)
	f.register(t, "alice", 1000)
	ctx := context.Background()

	f.clock.advance(15 * day) // accrued 500 -> locked 500

	locked, err := f.engine.LockedAmount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(500), locked)

	err = f.engine.Refund(ctx, "admin", 9_501)
	assert.ErrorIs(t, err, payroll.ErrExceedsFreeFunds)

	var freeErr *payroll.FreeFundsError
	require.ErrorAs(t, err, &freeErr)
	assert.Equal(t, int64(9_500), freeErr.Free)
	assert.Equal(t, int64(500), freeErr.Locked)

	require.NoError(t, f.engine.Refund(ctx, "admin", 9_500))
	f.checkIdentity(t)
}

func TestLockedAmount_CountsAdvancesAndSkipsInactive(t *testing.T) {
	f := newFixture(t)
	f.fund(t, 10_000)
	f.register(t, "alice", 1000)
	f.register(t, "bob", 1000)
	ctx := context.Background()

	f.clock.advance(15 * day) // each accrued 500
	require.NoError(t, f.engine.RequestAdvance(ctx, "alice", 200))

	// alice: unpaid 500 + advance 200; bob: unpaid 500
	locked, err := f.engine.LockedAmount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1200), locked)

	// Deactivation forfeits bob's claim from the locked-funds view.
	require.NoError(t, f.engine.Update(ctx, "admin", "bob", 1000, false))
	locked, err = f.engine.LockedAmount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(700), locked)
}

func TestEmergencyWithdraw_ArbitraryDestination(t *testing.T) {
	f := newFixture(t)
	f.fund(t, 1000)
	ctx := context.Background()

	require.NoError(t, f.engine.EmergencyWithdraw(ctx, "admin", "cold-storage", 600))
	assert.Equal(t, int64(600), f.bank.Balance("cold-storage"))

	// Same guard as refund.
	err := f.engine.EmergencyWithdraw(ctx, "admin", "cold-storage", 500)
	assert.ErrorIs(t, err, payroll.ErrExceedsFreeFunds)
	assert.ErrorIs(t, f.engine.EmergencyWithdraw(ctx, "mallory", "cold-storage", 1), payroll.ErrNotAdmin)
	f.checkIdentity(t)
}

func TestAccountingIdentity_AcrossOperationSequence(t *testing.T) {
	// totalFunded == poolBalance + totalWithdrawn + totalRefunded after
	// every operation in a mixed sequence, including rejected ones.
	f := newFixture(t)
	ctx := context.Background()

	f.fund(t, 20_000)
	f.checkIdentity(t)

	f.register(t, "alice", 1000)
	f.register(t, "bob", 3000)
	f.checkIdentity(t)

	f.clock.advance(10 * day)
	_, err := f.engine.Withdraw(ctx, "alice")
	require.NoError(t, err)
	f.checkIdentity(t)

	require.NoError(t, f.engine.RequestAdvance(ctx, "bob", 400))
	f.checkIdentity(t)

	// A rejected operation leaves the identity untouched.
	assert.Error(t, f.engine.RequestAdvance(ctx, "bob", 1))
	f.checkIdentity(t)

	f.clock.advance(20 * day)
	_, err = f.engine.Settle(ctx, "admin", "alice")
	require.NoError(t, err)
	_, err = f.engine.Settle(ctx, "admin", "bob")
	require.NoError(t, err)
	f.checkIdentity(t)

	require.NoError(t, f.engine.Refund(ctx, "admin", 100))
	f.checkIdentity(t)
}

func TestFreeFunds_NegativeWhenUnderCollateralized(t *testing.T) {
	f := newFixture(t)
	f.fund(t, 100)
	f.register(t, "alice", 1000)

	f.clock.advance(30 * day) // locked 1000, pool 100

	free, err := f.engine.FreeFunds(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(-900), free)
}
