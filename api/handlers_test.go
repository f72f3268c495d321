package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/payroll-engine/api"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/store/memory"
	"github.com/warp/payroll-engine/treasury"
)

// =============================================================================
// TEST SETUP
// =============================================================================

const day = 24 * time.Hour

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

type testAPI struct {
	router http.Handler
	clock  *fakeClock
	bank   *treasury.Bank
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	clock := &fakeClock{now: time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)}
	bank := treasury.NewBank("pool")
	bank.Mint("admin", 1_000_000)

	engine, err := payroll.New(payroll.Config{
		Store:        memory.New(),
		Treasury:     bank,
		Admin:        payroll.SingleAdmin("admin"),
		PeriodLength: 30 * day,
		Clock:        clock,
	})
	require.NoError(t, err)

	return &testAPI{
		router: api.NewRouter(api.NewHandler(engine)),
		clock:  clock,
		bank:   bank,
	}
}

func (a *testAPI) do(t *testing.T, method, path, actor string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if actor != "" {
		req.Header.Set("X-Actor", actor)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

// =============================================================================
// END-TO-END FLOW
// =============================================================================

func TestAPI_RegisterFundWithdrawFlow(t *testing.T) {
	a := newTestAPI(t)

	rec := a.do(t, http.MethodPost, "/api/pool/fund", "admin", api.AmountRequest{Amount: 10_000})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = a.do(t, http.MethodPost, "/api/payees", "admin",
		api.RegisterPayeeRequest{ID: "alice", PeriodEntitlement: 1000})
	require.Equal(t, http.StatusCreated, rec.Code)

	a.clock.now = a.clock.now.Add(10 * day)

	rec = a.do(t, http.MethodGet, "/api/payees/alice", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	payee := decode[api.PayeeDTO](t, rec)
	assert.Equal(t, int64(333), payee.Accrued)
	assert.Equal(t, int64(333), payee.AvailableToWithdraw)

	rec = a.do(t, http.MethodPost, "/api/payees/alice/withdraw", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	paid := decode[api.WithdrawResponse](t, rec)
	assert.Equal(t, int64(333), paid.Paid)
	assert.Equal(t, int64(333), a.bank.Balance("alice"))

	rec = a.do(t, http.MethodGet, "/api/pool", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	pool := decode[api.PoolDTO](t, rec)
	assert.Equal(t, int64(10_000), pool.Funded)
	assert.Equal(t, int64(333), pool.Withdrawn)
	assert.Equal(t, int64(9_667), pool.Balance)
	assert.Equal(t, 1, pool.PayeeCount)

	rec = a.do(t, http.MethodGet, "/api/events", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	events := decode[[]api.EventDTO](t, rec)
	require.Len(t, events, 3) // funded, registered, withdrawn
	assert.Equal(t, "funded", events[0].Kind)
	assert.Equal(t, "registered", events[1].Kind)
	assert.Equal(t, "withdrawn", events[2].Kind)
}

func TestAPI_AdvanceAndSettle(t *testing.T) {
	a := newTestAPI(t)
	a.do(t, http.MethodPost, "/api/pool/fund", "admin", api.AmountRequest{Amount: 10_000})
	a.do(t, http.MethodPost, "/api/payees", "admin",
		api.RegisterPayeeRequest{ID: "alice", PeriodEntitlement: 1000})

	a.clock.now = a.clock.now.Add(10 * day)

	rec := a.do(t, http.MethodPost, "/api/payees/alice/advance", "alice", api.AmountRequest{Amount: 166})
	require.Equal(t, http.StatusOK, rec.Code)

	// Second advance in the same period maps to 409.
	rec = a.do(t, http.MethodPost, "/api/payees/alice/advance", "alice", api.AmountRequest{Amount: 1})
	assert.Equal(t, http.StatusConflict, rec.Code)

	a.clock.now = a.clock.now.Add(20 * day)

	rec = a.do(t, http.MethodPost, "/api/payees/alice/settle", "admin", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	settlement := decode[api.SettlementDTO](t, rec)
	assert.Equal(t, int64(1000), settlement.Accrued)
	assert.Equal(t, int64(166), settlement.Repaid)
	assert.Equal(t, int64(834), settlement.Paid)
	assert.Zero(t, settlement.AdvanceRemaining)
}

// =============================================================================
// ERROR MAPPING
// =============================================================================

func TestAPI_ErrorStatuses(t *testing.T) {
	a := newTestAPI(t)

	// 403: non-admin registration
	rec := a.do(t, http.MethodPost, "/api/payees", "mallory",
		api.RegisterPayeeRequest{ID: "alice", PeriodEntitlement: 1000})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// 400: invalid entitlement
	rec = a.do(t, http.MethodPost, "/api/payees", "admin",
		api.RegisterPayeeRequest{ID: "alice", PeriodEntitlement: 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// 404: unknown payee
	rec = a.do(t, http.MethodGet, "/api/payees/ghost", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = a.do(t, http.MethodPost, "/api/payees/ghost/withdraw", "ghost", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// 409: refund beyond free funds
	rec = a.do(t, http.MethodPost, "/api/pool/refund", "admin", api.AmountRequest{Amount: 1})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAPI_PauseGate(t *testing.T) {
	a := newTestAPI(t)

	rec := a.do(t, http.MethodPost, "/api/admin/pause", "admin", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// 503 while paused.
	rec = a.do(t, http.MethodPost, "/api/pool/fund", "admin", api.AmountRequest{Amount: 100})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	// Queries still served.
	rec = a.do(t, http.MethodGet, "/api/pool", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[api.PoolDTO](t, rec).Paused)

	rec = a.do(t, http.MethodPost, "/api/admin/unpause", "admin", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = a.do(t, http.MethodPost, "/api/pool/fund", "admin", api.AmountRequest{Amount: 100})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAPI_EmergencyWithdraw(t *testing.T) {
	a := newTestAPI(t)
	a.do(t, http.MethodPost, "/api/pool/fund", "admin", api.AmountRequest{Amount: 1000})

	rec := a.do(t, http.MethodPost, "/api/pool/emergency-withdraw", "admin",
		api.EmergencyWithdrawRequest{To: "cold-storage", Amount: 400})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(400), a.bank.Balance("cold-storage"))

	rec = a.do(t, http.MethodPost, "/api/pool/emergency-withdraw", "admin",
		api.EmergencyWithdrawRequest{Amount: 400})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "destination is required")
}
