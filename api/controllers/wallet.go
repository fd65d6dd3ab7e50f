package controllers

import (
	"net/http"
	"time"

	"github.com/ajeitai/marketplace-backend/api/responses"
	"github.com/ajeitai/marketplace-backend/internal/tenant"
	"github.com/ajeitai/marketplace-backend/internal/wallet"
	"github.com/ajeitai/marketplace-backend/internal/withdrawals"
	"github.com/ajeitai/marketplace-backend/pkg/logger"
)

// GetWalletAccount returns the authenticated provider's balance.
func GetWalletAccount(svc wallet.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, err := tenant.RequireScope(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		providerID, err := scope.RequireProvider()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		account, err := svc.GetAccount(r.Context(), providerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newWalletAccountView(account))
	}
}

// GetWalletStatement returns the provider's ledger, newest first.
func GetWalletStatement(svc wallet.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, err := tenant.RequireScope(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		providerID, err := scope.RequireProvider()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entries, err := svc.GetStatement(r.Context(), providerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newTransactionViews(entries))
	}
}

type withdrawalSummaryView struct {
	AvailableBalance string  `json:"availableBalance"`
	LastWithdrawalAt *string `json:"lastWithdrawalAt,omitempty"`
	NextEligibleAt   *string `json:"nextEligibleAt,omitempty"`
	CanWithdraw      bool    `json:"canWithdraw"`
	CooldownDays     int     `json:"cooldownDays"`
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	formatted := t.Format(dateLayout)
	return &formatted
}

// GetWithdrawalSummary reports the balance and cooldown window.
func GetWithdrawalSummary(svc withdrawals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, err := tenant.RequireScope(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		providerID, err := scope.RequireProvider()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary, err := svc.GetSummary(r.Context(), providerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, withdrawalSummaryView{
			AvailableBalance: summary.AvailableBalance.StringFixed(2),
			LastWithdrawalAt: formatDate(summary.LastWithdrawalAt),
			NextEligibleAt:   formatDate(summary.NextEligibleAt),
			CanWithdraw:      summary.CanWithdraw,
			CooldownDays:     summary.CooldownDays,
		})
	}
}

// RequestWithdrawal sweeps the provider's available balance.
func RequestWithdrawal(svc withdrawals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, err := tenant.RequireScope(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		providerID, err := scope.RequireProvider()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		withdrawal, err := svc.RequestWithdrawal(r.Context(), providerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newWithdrawalView(withdrawal))
	}
}

// ListWithdrawals returns the provider's withdrawal history, newest first.
func ListWithdrawals(svc withdrawals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, err := tenant.RequireScope(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		providerID, err := scope.RequireProvider()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListWithdrawals(r.Context(), providerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newWithdrawalViews(list))
	}
}
