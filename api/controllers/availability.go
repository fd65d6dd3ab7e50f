package controllers

import (
	"net/http"

	"github.com/ajeitai/marketplace-backend/api/responses"
	"github.com/ajeitai/marketplace-backend/api/validators"
	"github.com/ajeitai/marketplace-backend/internal/availability"
	"github.com/ajeitai/marketplace-backend/internal/tenant"
	"github.com/ajeitai/marketplace-backend/pkg/logger"
)

type replaceAvailabilityRequest struct {
	Slots []availability.SlotInput `json:"slots" validate:"required,dive"`
}

// ReplaceAvailability swaps the authenticated provider's weekly slot set.
func ReplaceAvailability(svc availability.Service, logg *logger.Logger) http.HandlerFunc {
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

		var req replaceAvailabilityRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		slots, err := svc.ReplaceSlots(r.Context(), providerID, req.Slots)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newSlotViews(slots))
	}
}

// ListMyAvailability returns the authenticated provider's weekly slots.
func ListMyAvailability(svc availability.Service, logg *logger.Logger) http.HandlerFunc {
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

		slots, err := svc.ListSlots(r.Context(), providerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newSlotViews(slots))
	}
}

// ListProviderAvailability returns a given provider's weekly slots so
// clients can pick a time before booking.
func ListProviderAvailability(svc availability.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		providerID, err := validators.PathUUID(r, "providerID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		slots, err := svc.ListSlots(r.Context(), providerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newSlotViews(slots))
	}
}
