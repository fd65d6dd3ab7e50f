package controllers

import (
	"net/http"

	"github.com/ajeitai/marketplace-backend/api/responses"
	"github.com/ajeitai/marketplace-backend/internal/subscriptions"
	"github.com/ajeitai/marketplace-backend/internal/tenant"
	"github.com/ajeitai/marketplace-backend/pkg/logger"
)

type subscriptionStatusView struct {
	Active       bool              `json:"active"`
	Subscription *subscriptionView `json:"subscription,omitempty"`
}

// GetSubscriptionStatus reports whether the provider currently holds an
// active billing period.
func GetSubscriptionStatus(svc subscriptions.Service, logg *logger.Logger) http.HandlerFunc {
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

		active, err := svc.ActiveSubscription(r.Context(), providerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view := subscriptionStatusView{Active: active != nil}
		if active != nil {
			sub := newSubscriptionView(active)
			view.Subscription = &sub
		}
		responses.WriteSuccess(w, view)
	}
}

type renewSubscriptionView struct {
	Subscription subscriptionView `json:"subscription"`
	PaymentURL   *string          `json:"paymentUrl,omitempty"`
}

// RenewSubscription opens the next billing period, returning the payment
// link when a charge was issued.
func RenewSubscription(svc subscriptions.Service, logg *logger.Logger) http.HandlerFunc {
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

		result, err := svc.StartOrRenew(r.Context(), providerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, renewSubscriptionView{
			Subscription: newSubscriptionView(result.Subscription),
			PaymentURL:   result.PaymentURL,
		})
	}
}

// ListSubscriptions returns the provider's billing period history.
func ListSubscriptions(svc subscriptions.Service, logg *logger.Logger) http.HandlerFunc {
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

		list, err := svc.ListForProvider(r.Context(), providerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newSubscriptionViews(list))
	}
}
