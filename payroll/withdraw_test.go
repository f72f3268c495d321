package payroll_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/payroll-engine/payroll"
)

func TestWithdraw_PaysFreeEntitlement(t *testing.T) {
	f := newFixture(t)
	f.fund(t, 10_000)
	f.register(t, "alice", 1000)
	ctx := context.Background()

	f.clock.advance(15 * day) // accrued 500

	paid, err := f.engine.Withdraw(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(500), paid)
	assert.Equal(t, int64(500), f.bank.Balance("alice"))

	info := f.info(t, "alice")
	assert.Equal(t, int64(500), info.WithdrawnInPeriod)
	assert.Zero(t, info.AvailableToWithdraw)
	f.checkIdentity(t)

	// Nothing left until more accrues.
	_, err = f.engine.Withdraw(ctx, "alice")
	assert.ErrorIs(t, err, payroll.ErrNothingAvailable)

	// Another 3 days accrue another 100.
	f.clock.advance(3 * day)
	paid, err = f.engine.Withdraw(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(100), paid)
	f.checkIdentity(t)
}

func TestWithdraw_RequiresActivePayee(t *testing.T) {
	f := newFixture(t)
	f.fund(t, 10_000)
	ctx := context.Background()

	_, err := f.engine.Withdraw(ctx, "ghost")
	assert.ErrorIs(t, err, payroll.ErrNotActivePayee)

	f.register(t, "alice", 1000)
	f.clock.advance(10 * day)
	require.NoError(t, f.engine.Update(ctx, "admin", "alice", 1000, false))

	_, err = f.engine.Withdraw(ctx, "alice")
	assert.ErrorIs(t, err, payroll.ErrNotActivePayee)
}

func TestWithdraw_NothingAccruedYet(t *testing.T) {
	f := newFixture(t)
	f.fund(t, 10_000)
	f.register(t, "alice", 1000)

	_, err := f.engine.Withdraw(context.Background(), "alice")
	assert.ErrorIs(t, err, payroll.ErrNothingAvailable)
}

func TestWithdraw_UnderfundedPoolClamps(t *testing.T) {
	// GIVEN: Pool holds 50, payee has accrued a full 1000 entitlement
	// WHEN: The payee withdraws
	// THEN: They receive exactly 50, counters record 50, pool empties
	f := newFixture(t)
	f.fund(t, 50)
	f.register(t, "bob", 1000)
	ctx := context.Background()

	f.clock.advance(30 * day)

	paid, err := f.engine.Withdraw(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, int64(50), paid)
	assert.Equal(t, int64(50), f.bank.Balance("bob"))

	balance, err := f.engine.PoolBalance(ctx)
	require.NoError(t, err)
	assert.Zero(t, balance)

	info := f.info(t, "bob")
	assert.Equal(t, int64(50), info.WithdrawnInPeriod, "counters reflect the clamped amount")
	f.checkIdentity(t)

	// Pool is dry: further withdrawal cannot pay anything.
	_, err = f.engine.Withdraw(ctx, "bob")
	assert.ErrorIs(t, err, payroll.ErrNothingAvailable)
}

func TestWithdraw_NeverExceedsAccrued(t *testing.T) {
	// withdrawnInPeriod <= accrued must hold after any sequence of
	// withdrawals at different instants.
	f := newFixture(t)
	f.fund(t, 100_000)
	f.register(t, "alice", 1000)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		f.clock.advance(2 * day)
		paid, err := f.engine.Withdraw(ctx, "alice")
		require.NoError(t, err)
		require.Positive(t, paid)

		info := f.info(t, "alice")
		assert.LessOrEqual(t, info.WithdrawnInPeriod, info.Accrued)
		f.checkIdentity(t)
	}
}
