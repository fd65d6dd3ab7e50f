package controllers

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ajeitai/marketplace-backend/api/responses"
	"github.com/ajeitai/marketplace-backend/api/validators"
	"github.com/ajeitai/marketplace-backend/internal/clients"
	"github.com/ajeitai/marketplace-backend/internal/providers"
	"github.com/ajeitai/marketplace-backend/internal/tenant"
	pkgerrors "github.com/ajeitai/marketplace-backend/pkg/errors"
	"github.com/ajeitai/marketplace-backend/pkg/logger"
	"github.com/ajeitai/marketplace-backend/pkg/types"
)

type addressPayload struct {
	Street     string   `json:"street" validate:"required"`
	Number     string   `json:"number" validate:"required"`
	Complement *string  `json:"complement"`
	District   string   `json:"district" validate:"required"`
	PostalCode string   `json:"postalCode" validate:"required"`
	City       string   `json:"city" validate:"required"`
	State      string   `json:"state" validate:"required,len=2"`
	Latitude   *float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude  *float64 `json:"longitude" validate:"omitempty,longitude"`
}

func (p *addressPayload) toAddress() types.Address {
	return types.Address{
		Street:     p.Street,
		Number:     p.Number,
		Complement: p.Complement,
		District:   p.District,
		PostalCode: p.PostalCode,
		City:       p.City,
		State:      strings.ToUpper(p.State),
		Latitude:   p.Latitude,
		Longitude:  p.Longitude,
	}
}

type registerClientRequest struct {
	Name    string          `json:"name" validate:"required,min=2"`
	Email   string          `json:"email" validate:"omitempty,email"`
	Phone   string          `json:"phone"`
	TaxID   string          `json:"taxId"`
	Address *addressPayload `json:"address"`
}

// RegisterClient creates the client profile for the authenticated subject.
func RegisterClient(svc clients.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, err := tenant.RequireScope(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req registerClientRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := clients.RegisterInput{
			Subject: scope.Subject,
			Name:    req.Name,
			Email:   req.Email,
			Phone:   req.Phone,
			TaxID:   req.TaxID,
		}
		if req.Address != nil {
			input.Address = req.Address.toAddress()
		}

		client, err := svc.Register(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newClientView(client))
	}
}

// GetMyClientProfile returns the authenticated client's profile.
func GetMyClientProfile(svc clients.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, err := tenant.RequireScope(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		clientID, err := scope.RequireClient()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		client, err := svc.Get(r.Context(), clientID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newClientView(client))
	}
}

type updateClientRequest struct {
	Name    *string         `json:"name" validate:"omitempty,min=2"`
	Email   *string         `json:"email" validate:"omitempty,email"`
	Phone   *string         `json:"phone"`
	Address *addressPayload `json:"address"`
}

// UpdateMyClientProfile patches the authenticated client's profile.
func UpdateMyClientProfile(svc clients.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, err := tenant.RequireScope(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		clientID, err := scope.RequireClient()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req updateClientRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := clients.UpdateInput{
			Name:  req.Name,
			Email: req.Email,
			Phone: req.Phone,
		}
		if req.Address != nil {
			addr := req.Address.toAddress()
			input.Address = &addr
		}

		client, err := svc.Update(r.Context(), clientID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newClientView(client))
	}
}

type registerProviderRequest struct {
	TradeName    string          `json:"tradeName" validate:"required,min=2"`
	Email        string          `json:"email" validate:"omitempty,email"`
	Phone        string          `json:"phone"`
	ServicePrice string          `json:"servicePrice" validate:"required"`
	Address      *addressPayload `json:"address" validate:"required"`
}

// RegisterProvider creates the provider profile for the authenticated subject.
func RegisterProvider(svc providers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, err := tenant.RequireScope(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req registerProviderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		price, err := decimal.NewFromString(req.ServicePrice)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "servicePrice must be a decimal amount"))
			return
		}

		provider, err := svc.Register(r.Context(), providers.RegisterInput{
			Subject:      scope.Subject,
			TradeName:    req.TradeName,
			Email:        req.Email,
			Phone:        req.Phone,
			ServicePrice: price,
			Address:      req.Address.toAddress(),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newProviderView(provider))
	}
}

// GetMyProviderProfile returns the authenticated provider's profile.
func GetMyProviderProfile(svc providers.Service, logg *logger.Logger) http.HandlerFunc {
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

		provider, err := svc.Get(r.Context(), providerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newProviderView(provider))
	}
}

type updateProviderRequest struct {
	TradeName    *string         `json:"tradeName" validate:"omitempty,min=2"`
	Email        *string         `json:"email" validate:"omitempty,email"`
	Phone        *string         `json:"phone"`
	ServicePrice *string         `json:"servicePrice"`
	Address      *addressPayload `json:"address"`
}

// UpdateMyProviderProfile patches the authenticated provider's profile.
func UpdateMyProviderProfile(svc providers.Service, logg *logger.Logger) http.HandlerFunc {
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

		var req updateProviderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := providers.UpdateInput{
			TradeName: req.TradeName,
			Email:     req.Email,
			Phone:     req.Phone,
		}
		if req.ServicePrice != nil {
			price, err := decimal.NewFromString(*req.ServicePrice)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "servicePrice must be a decimal amount"))
				return
			}
			input.ServicePrice = &price
		}
		if req.Address != nil {
			addr := req.Address.toAddress()
			input.Address = &addr
		}

		provider, err := svc.Update(r.Context(), providerID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newProviderView(provider))
	}
}

// SearchProviders lists providers serving the requested city.
func SearchProviders(svc providers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		city := strings.TrimSpace(r.URL.Query().Get("city"))
		state := strings.TrimSpace(r.URL.Query().Get("state"))

		found, err := svc.SearchByCity(r.Context(), city, state)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newProviderViews(found))
	}
}
