package providers

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ajeitai/marketplace-backend/pkg/db/models"
	pkgerrors "github.com/ajeitai/marketplace-backend/pkg/errors"
	"github.com/ajeitai/marketplace-backend/pkg/types"
)

// RegisterInput carries the profile data tied to an external auth subject.
type RegisterInput struct {
	Subject      string
	TradeName    string
	Email        string
	Phone        string
	ServicePrice decimal.Decimal
	Address      types.Address
}

// UpdateInput holds optional profile fields; nil means leave unchanged.
type UpdateInput struct {
	TradeName    *string
	Email        *string
	Phone        *string
	ServicePrice *decimal.Decimal
	Address      *types.Address
}

// Service manages provider profiles and discovery.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*models.Provider, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Provider, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Provider, error)
	SearchByCity(ctx context.Context, city, state string) ([]models.Provider, error)
}

type service struct {
	repo Repository
}

// NewService builds the provider profile service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("providers repository required")
	}
	return &service{repo: repo}, nil
}

// Register creates the profile for a subject, or returns the existing one so
// repeated onboarding calls stay harmless.
func (s *service) Register(ctx context.Context, input RegisterInput) (*models.Provider, error) {
	if input.Subject == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "auth subject required")
	}
	if input.TradeName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "trade name required")
	}
	if input.ServicePrice.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "service price must not be negative")
	}
	if !input.Address.IsRegistered() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "service address required")
	}

	existing, err := s.repo.FindBySubject(ctx, input.Subject)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load provider")
	}

	provider := &models.Provider{
		Subject:      input.Subject,
		TradeName:    input.TradeName,
		Email:        input.Email,
		Phone:        input.Phone,
		ServicePrice: input.ServicePrice,
		Address:      input.Address,
	}
	created, err := s.repo.Create(ctx, provider)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create provider")
	}
	return created, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Provider, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "provider id required")
	}
	provider, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "provider not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load provider")
	}
	return provider, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Provider, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "provider id required")
	}

	updates := map[string]any{}
	if input.TradeName != nil {
		if *input.TradeName == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "trade name must not be empty")
		}
		updates["trade_name"] = *input.TradeName
	}
	if input.Email != nil {
		updates["email"] = *input.Email
	}
	if input.Phone != nil {
		updates["phone"] = *input.Phone
	}
	if input.ServicePrice != nil {
		if input.ServicePrice.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "service price must not be negative")
		}
		updates["service_price"] = *input.ServicePrice
	}
	if input.Address != nil {
		updates["addr_street"] = input.Address.Street
		updates["addr_district"] = input.Address.District
		updates["addr_postal_code"] = input.Address.PostalCode
		updates["addr_number"] = input.Address.Number
		updates["addr_complement"] = input.Address.Complement
		updates["addr_city"] = input.Address.City
		updates["addr_state"] = input.Address.State
		updates["addr_latitude"] = input.Address.Latitude
		updates["addr_longitude"] = input.Address.Longitude
	}
	if len(updates) == 0 {
		return s.Get(ctx, id)
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update provider")
	}
	return s.Get(ctx, id)
}

func (s *service) SearchByCity(ctx context.Context, city, state string) ([]models.Provider, error) {
	if city == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "city required")
	}
	providers, err := s.repo.ListByCity(ctx, city, state)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "search providers")
	}
	return providers, nil
}
