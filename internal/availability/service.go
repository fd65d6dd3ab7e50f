package availability

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ajeitai/marketplace-backend/pkg/db/models"
	pkgerrors "github.com/ajeitai/marketplace-backend/pkg/errors"
)

const clockLayout = "15:04"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// SlotInput is one weekly window as submitted by a provider.
type SlotInput struct {
	Weekday int    `json:"weekday" validate:"required,min=1,max=7"`
	Start   string `json:"start" validate:"required"`
	End     string `json:"end" validate:"required"`
}

// Service manages the provider's weekly availability set.
type Service interface {
	ReplaceSlots(ctx context.Context, providerID uuid.UUID, inputs []SlotInput) ([]models.AvailabilitySlot, error)
	ListSlots(ctx context.Context, providerID uuid.UUID) ([]models.AvailabilitySlot, error)
}

type service struct {
	repo Repository
	tx   txRunner
}

// NewService builds the availability service.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("availability repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

// ReplaceSlots validates and atomically swaps the provider's slot set.
func (s *service) ReplaceSlots(ctx context.Context, providerID uuid.UUID, inputs []SlotInput) ([]models.AvailabilitySlot, error) {
	if providerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "provider id required")
	}

	slots := make([]models.AvailabilitySlot, 0, len(inputs))
	for _, input := range inputs {
		if err := validateSlot(input); err != nil {
			return nil, err
		}
		slots = append(slots, models.AvailabilitySlot{
			ProviderID: providerID,
			Weekday:    input.Weekday,
			Start:      normalizeClock(input.Start),
			End:        normalizeClock(input.End),
		})
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).ReplaceForProvider(ctx, providerID, slots)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace availability slots")
	}
	return slots, nil
}

func (s *service) ListSlots(ctx context.Context, providerID uuid.UUID) ([]models.AvailabilitySlot, error) {
	if providerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "provider id required")
	}
	slots, err := s.repo.ListByProvider(ctx, providerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list availability slots")
	}
	return slots, nil
}

func validateSlot(input SlotInput) error {
	if input.Weekday < 1 || input.Weekday > 7 {
		return pkgerrors.New(pkgerrors.CodeValidation, "weekday must be between 1 (Monday) and 7 (Sunday)")
	}
	start, err := time.Parse(clockLayout, input.Start)
	if err != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "start time must use HH:MM format")
	}
	end, err := time.Parse(clockLayout, input.End)
	if err != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "end time must use HH:MM format")
	}
	if !start.Before(end) {
		return pkgerrors.New(pkgerrors.CodeValidation, "start time must be before end time")
	}
	return nil
}

func normalizeClock(value string) string {
	parsed, err := time.Parse(clockLayout, value)
	if err != nil {
		return value
	}
	return parsed.Format(clockLayout)
}

// ISOWeekday maps a timestamp's weekday to ISO-8601 numbering (Monday=1).
func ISOWeekday(at time.Time) int {
	return (int(at.Weekday())+6)%7 + 1
}

// SlotCovers reports whether the timestamp's wall-clock time falls inside the
// slot. Containment is half-open: the start boundary is inside, the end is not.
func SlotCovers(slot models.AvailabilitySlot, at time.Time) bool {
	if slot.Weekday != ISOWeekday(at) {
		return false
	}
	clock := at.Format(clockLayout)
	return slot.Start <= clock && clock < slot.End
}

// AnySlotCovers reports whether any slot in the set covers the timestamp.
func AnySlotCovers(slots []models.AvailabilitySlot, at time.Time) bool {
	for _, slot := range slots {
		if SlotCovers(slot, at) {
			return true
		}
	}
	return false
}
