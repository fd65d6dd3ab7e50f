package clients

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ajeitai/marketplace-backend/pkg/db/models"
	pkgerrors "github.com/ajeitai/marketplace-backend/pkg/errors"
	"github.com/ajeitai/marketplace-backend/pkg/types"
)

// RegisterInput carries the profile data tied to an external auth subject.
type RegisterInput struct {
	Subject string
	Name    string
	Email   string
	Phone   string
	TaxID   string
	Address types.Address
}

// UpdateInput holds optional profile fields; nil means leave unchanged.
type UpdateInput struct {
	Name    *string
	Email   *string
	Phone   *string
	Address *types.Address
}

// Service manages client profiles.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*models.Client, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Client, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Client, error)
}

type service struct {
	repo Repository
}

// NewService builds the client profile service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("clients repository required")
	}
	return &service{repo: repo}, nil
}

// Register creates the profile for a subject, or returns the existing one so
// repeated onboarding calls stay harmless.
func (s *service) Register(ctx context.Context, input RegisterInput) (*models.Client, error) {
	if input.Subject == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "auth subject required")
	}
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name required")
	}

	existing, err := s.repo.FindBySubject(ctx, input.Subject)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load client")
	}

	client := &models.Client{
		Subject: input.Subject,
		Name:    input.Name,
		Email:   input.Email,
		Phone:   input.Phone,
		TaxID:   input.TaxID,
		Address: input.Address,
	}
	created, err := s.repo.Create(ctx, client)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create client")
	}
	return created, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "client id required")
	}
	client, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "client not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load client")
	}
	return client, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Client, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "client id required")
	}

	updates := map[string]any{}
	if input.Name != nil {
		if *input.Name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name must not be empty")
		}
		updates["name"] = *input.Name
	}
	if input.Email != nil {
		updates["email"] = *input.Email
	}
	if input.Phone != nil {
		updates["phone"] = *input.Phone
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
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update client")
	}
	return s.Get(ctx, id)
}
