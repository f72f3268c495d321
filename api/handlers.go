/*
handlers.go - HTTP handlers for the payroll engine

ENDPOINTS:
  Payees:
    GET    /api/payees                 List all payees
    POST   /api/payees                 Register payee (admin)
    GET    /api/payees/{id}            Payee info with derived accruals
    PUT    /api/payees/{id}            Update entitlement/active (admin)
    POST   /api/payees/{id}/withdraw   Withdraw free entitlement
    POST   /api/payees/{id}/advance    Request an advance
    POST   /api/payees/{id}/settle     Settle the period (admin)

  Pool:
    GET    /api/pool                      Counters, balance, locked/free
    POST   /api/pool/fund                 Fund the pool (admin)
    POST   /api/pool/refund               Refund free funds (admin)
    POST   /api/pool/emergency-withdraw   Send free funds anywhere (admin)

  Admin:
    POST   /api/admin/pause    Close the pause gate
    POST   /api/admin/unpause  Open the pause gate

  Events:
    GET    /api/events         Notification log

ACTING IDENTITY:
  The X-Actor header names the caller. Admin checks run inside the
  engine; this layer only threads the identity through.

ERROR MAPPING:
  400 invalid input, 403 not admin, 404 never registered, 409 domain
  conflicts (limits, once-per-period, locked funds), 502 transfer
  collaborator failure, 503 paused.
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/treasury"
)

// Handler holds the engine behind the REST surface.
type Handler struct {
	Engine *payroll.Engine
}

func NewHandler(engine *payroll.Engine) *Handler {
	return &Handler{Engine: engine}
}

func actor(r *http.Request) string { return r.Header.Get("X-Actor") }

// =============================================================================
// PAYEE HANDLERS
// =============================================================================

func (h *Handler) ListPayees(w http.ResponseWriter, r *http.Request) {
	infos, err := h.Engine.Payees(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	dtos := make([]PayeeDTO, len(infos))
	for i, info := range infos {
		dtos[i] = toPayeeDTO(info)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) RegisterPayee(w http.ResponseWriter, r *http.Request) {
	var req RegisterPayeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if err := h.Engine.Register(r.Context(), actor(r), payroll.PayeeID(req.ID), req.PeriodEntitlement); err != nil {
		writeError(w, err)
		return
	}
	info, err := h.Engine.PayeeInfo(r.Context(), payroll.PayeeID(req.ID))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPayeeDTO(info))
}

func (h *Handler) GetPayee(w http.ResponseWriter, r *http.Request) {
	info, err := h.Engine.PayeeInfo(r.Context(), payroll.PayeeID(chi.URLParam(r, "id")))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPayeeDTO(info))
}

func (h *Handler) UpdatePayee(w http.ResponseWriter, r *http.Request) {
	var req UpdatePayeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	id := payroll.PayeeID(chi.URLParam(r, "id"))
	if err := h.Engine.Update(r.Context(), actor(r), id, req.PeriodEntitlement, req.Active); err != nil {
		writeError(w, err)
		return
	}
	info, err := h.Engine.PayeeInfo(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPayeeDTO(info))
}

func (h *Handler) Withdraw(w http.ResponseWriter, r *http.Request) {
	paid, err := h.Engine.Withdraw(r.Context(), payroll.PayeeID(chi.URLParam(r, "id")))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, WithdrawResponse{Paid: paid})
}

func (h *Handler) RequestAdvance(w http.ResponseWriter, r *http.Request) {
	var req AmountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if err := h.Engine.RequestAdvance(r.Context(), payroll.PayeeID(chi.URLParam(r, "id")), req.Amount); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, WithdrawResponse{Paid: req.Amount})
}

func (h *Handler) Settle(w http.ResponseWriter, r *http.Request) {
	res, err := h.Engine.Settle(r.Context(), actor(r), payroll.PayeeID(chi.URLParam(r, "id")))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SettlementDTO{
		Payee:            string(res.Payee),
		Accrued:          res.Accrued,
		Repaid:           res.Repaid,
		AdvanceRemaining: res.AdvanceRemaining,
		Paid:             res.Paid,
	})
}

// =============================================================================
// POOL HANDLERS
// =============================================================================

func (h *Handler) GetPool(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	totals, err := h.Engine.Totals(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	locked, err := h.Engine.LockedAmount(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	count, err := h.Engine.PayeeCount(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, PoolDTO{
		Funded:     totals.Funded,
		Withdrawn:  totals.Withdrawn,
		Refunded:   totals.Refunded,
		Balance:    totals.Balance(),
		Locked:     locked,
		Free:       totals.Balance() - locked,
		PayeeCount: count,
		Paused:     h.Engine.Paused(),
	})
}

func (h *Handler) Fund(w http.ResponseWriter, r *http.Request) {
	var req AmountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if err := h.Engine.Fund(r.Context(), actor(r), req.Amount); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, WithdrawResponse{Paid: req.Amount})
}

func (h *Handler) Refund(w http.ResponseWriter, r *http.Request) {
	var req AmountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if err := h.Engine.Refund(r.Context(), actor(r), req.Amount); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, WithdrawResponse{Paid: req.Amount})
}

func (h *Handler) EmergencyWithdraw(w http.ResponseWriter, r *http.Request) {
	var req EmergencyWithdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if req.To == "" {
		writeBadRequest(w, "destination account is required")
		return
	}
	if err := h.Engine.EmergencyWithdraw(r.Context(), actor(r), treasury.Account(req.To), req.Amount); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, WithdrawResponse{Paid: req.Amount})
}

// =============================================================================
// ADMIN HANDLERS
// =============================================================================

func (h *Handler) Pause(w http.ResponseWriter, r *http.Request) {
	if err := h.Engine.Pause(r.Context(), actor(r)); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"paused": true})
}

func (h *Handler) Unpause(w http.ResponseWriter, r *http.Request) {
	if err := h.Engine.Unpause(r.Context(), actor(r)); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"paused": false})
}

// =============================================================================
// EVENT HANDLERS
// =============================================================================

func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.Engine.Events(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	dtos := make([]EventDTO, len(events))
	for i, ev := range events {
		dtos[i] = EventDTO{
			Kind:      string(ev.Kind),
			Actor:     ev.Actor,
			Payee:     string(ev.Payee),
			Amount:    ev.Amount,
			Remaining: ev.Remaining,
			At:        ev.At.Format(timeFormat),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

const timeFormat = "2006-01-02T15:04:05Z07:00" // RFC3339

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeBadRequest(w http.ResponseWriter, detail string) {
	writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "bad_request", Detail: detail})
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, payroll.ErrInvalidIdentity),
		errors.Is(err, payroll.ErrInvalidAmount):
		status = http.StatusBadRequest
	case errors.Is(err, payroll.ErrNotAdmin):
		status = http.StatusForbidden
	case errors.Is(err, payroll.ErrNotRegistered),
		errors.Is(err, payroll.ErrNotActivePayee):
		status = http.StatusNotFound
	case errors.Is(err, payroll.ErrSystemPaused):
		status = http.StatusServiceUnavailable
	case errors.Is(err, payroll.ErrTransferFailed):
		status = http.StatusBadGateway
	case payroll.IsClientError(err), errors.Is(err, payroll.ErrReentrantCall):
		status = http.StatusConflict
	}
	writeJSON(w, status, ErrorResponse{Error: http.StatusText(status), Detail: err.Error()})
}
