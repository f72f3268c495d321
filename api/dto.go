/*
dto.go - Request/response data structures

  JSON shapes for the REST surface. Amounts are integer units; times are
  RFC3339. The DTOs exist so the wire format can evolve separately from
  the payroll package's types.
*/
package api

import (
	"time"

	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// REQUESTS
// =============================================================================

type RegisterPayeeRequest struct {
	ID                string `json:"id"`
	PeriodEntitlement int64  `json:"period_entitlement"`
}

type UpdatePayeeRequest struct {
	PeriodEntitlement int64 `json:"period_entitlement"`
	Active            bool  `json:"active"`
}

type AmountRequest struct {
	Amount int64 `json:"amount"`
}

type EmergencyWithdrawRequest struct {
	To     string `json:"to"`
	Amount int64  `json:"amount"`
}

// =============================================================================
// RESPONSES
// =============================================================================

type PayeeDTO struct {
	ID                  string  `json:"id"`
	PeriodEntitlement   int64   `json:"period_entitlement"`
	Active              bool    `json:"active"`
	PeriodStart         string  `json:"period_start"`
	Accrued             int64   `json:"accrued"`
	WithdrawnInPeriod   int64   `json:"withdrawn_in_period"`
	OutstandingAdvance  int64   `json:"outstanding_advance"`
	LastAdvancePeriod   *uint64 `json:"last_advance_period,omitempty"`
	AvailableToWithdraw int64   `json:"available_to_withdraw"`
}

func toPayeeDTO(info payroll.PayeeInfo) PayeeDTO {
	return PayeeDTO{
		ID:                  string(info.ID),
		PeriodEntitlement:   info.PeriodEntitlement,
		Active:              info.Active,
		PeriodStart:         info.PeriodStart.Format(time.RFC3339),
		Accrued:             info.Accrued,
		WithdrawnInPeriod:   info.WithdrawnInPeriod,
		OutstandingAdvance:  info.OutstandingAdvance,
		LastAdvancePeriod:   info.LastAdvancePeriod,
		AvailableToWithdraw: info.AvailableToWithdraw,
	}
}

type WithdrawResponse struct {
	Paid int64 `json:"paid"`
}

type SettlementDTO struct {
	Payee            string `json:"payee"`
	Accrued          int64  `json:"accrued"`
	Repaid           int64  `json:"repaid"`
	AdvanceRemaining int64  `json:"advance_remaining"`
	Paid             int64  `json:"paid"`
}

type PoolDTO struct {
	Funded     int64 `json:"funded"`
	Withdrawn  int64 `json:"withdrawn"`
	Refunded   int64 `json:"refunded"`
	Balance    int64 `json:"balance"`
	Locked     int64 `json:"locked"`
	Free       int64 `json:"free"`
	PayeeCount int   `json:"payee_count"`
	Paused     bool  `json:"paused"`
}

type EventDTO struct {
	Kind      string `json:"kind"`
	Actor     string `json:"actor"`
	Payee     string `json:"payee,omitempty"`
	Amount    int64  `json:"amount"`
	Remaining int64  `json:"remaining,omitempty"`
	At        string `json:"at"`
}

type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}
