package bolt_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/store/bolt"
)

func newTestStore(t *testing.T) *bolt.Store {
	t.Helper()
	s, err := bolt.Open(filepath.Join(t.TempDir(), "payroll.bolt"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestBolt_PayeeRoundtrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, ok, err := s.GetPayee(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, ok)

	idx := uint64(1)
	rec := payroll.PayeeRecord{
		ID:                 "alice",
		PeriodEntitlement:  1000,
		PeriodStart:        time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC),
		Active:             true,
		WithdrawnInPeriod:  7,
		OutstandingAdvance: 3,
		LastAdvancePeriod:  &idx,
	}
	require.NoError(t, s.PutPayee(ctx, rec))

	got, ok, err := s.GetPayee(ctx, "alice")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(1000), got.PeriodEntitlement)
	assert.True(t, got.PeriodStart.Equal(rec.PeriodStart))
	assert.Equal(t, int64(7), got.WithdrawnInPeriod)
	require.NotNil(t, got.LastAdvancePeriod)
	assert.Equal(t, uint64(1), *got.LastAdvancePeriod)

	// nil round-trips as nil after an update.
	rec.LastAdvancePeriod = nil
	require.NoError(t, s.PutPayee(ctx, rec))
	got, _, err = s.GetPayee(ctx, "alice")
	require.NoError(t, err)
	assert.Nil(t, got.LastAdvancePeriod)
}

func TestBolt_RegistrationOrderSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "payroll.bolt")
	ctx := context.Background()
	start := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)

	s, err := bolt.Open(path)
	require.NoError(t, err)
	for _, id := range []payroll.PayeeID{"c", "a", "b"} {
		require.NoError(t, s.PutPayee(ctx, payroll.PayeeRecord{
			ID: id, PeriodEntitlement: 1, PeriodStart: start, Active: true,
		}))
	}
	require.NoError(t, s.PutPayee(ctx, payroll.PayeeRecord{
		ID: "a", PeriodEntitlement: 2, PeriodStart: start, Active: true,
	}))
	require.NoError(t, s.Close())

	s, err = bolt.Open(path)
	require.NoError(t, err)
	defer s.Close()

	ids, err := s.PayeeIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []payroll.PayeeID{"c", "a", "b"}, ids)

	n, err := s.PayeeCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestBolt_TotalsAndEvents(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	totals, err := s.Totals(ctx)
	require.NoError(t, err)
	assert.Zero(t, totals.Funded, "fresh database starts at zero")

	require.NoError(t, s.PutTotals(ctx, payroll.PoolTotals{Funded: 500, Withdrawn: 200}))
	totals, err = s.Totals(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(300), totals.Balance())

	at := time.Date(2025, time.March, 2, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.AppendEvent(ctx, payroll.Event{Kind: payroll.EventFunded, Actor: "admin", Amount: 500, At: at}))
	require.NoError(t, s.AppendEvent(ctx, payroll.Event{Kind: payroll.EventWithdrawn, Actor: "alice", Payee: "alice", Amount: 200, At: at}))

	events, err := s.Events(ctx)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, payroll.EventFunded, events[0].Kind)
	assert.Equal(t, payroll.EventWithdrawn, events[1].Kind)
	assert.True(t, events[0].At.Equal(at))
}
