package availability

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ajeitai/marketplace-backend/pkg/db/models"
	pkgerrors "github.com/ajeitai/marketplace-backend/pkg/errors"
)

type stubRepo struct {
	Repository
	replaced []models.AvailabilitySlot
	listed   []models.AvailabilitySlot
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRepo) ReplaceForProvider(_ context.Context, _ uuid.UUID, slots []models.AvailabilitySlot) error {
	s.replaced = slots
	return nil
}

func (s *stubRepo) ListByProvider(_ context.Context, _ uuid.UUID) ([]models.AvailabilitySlot, error) {
	return s.listed, nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func TestReplaceSlots(t *testing.T) {
	repo := &stubRepo{}
	svc, err := NewService(repo, stubTxRunner{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	providerID := uuid.New()
	slots, err := svc.ReplaceSlots(context.Background(), providerID, []SlotInput{
		{Weekday: 1, Start: "08:00", End: "18:00"},
		{Weekday: 3, Start: "13:00", End: "17:30"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 2 || len(repo.replaced) != 2 {
		t.Fatalf("expected 2 slots persisted, got %d", len(repo.replaced))
	}
	if repo.replaced[0].ProviderID != providerID {
		t.Fatalf("slot not bound to provider")
	}
}

func TestReplaceSlotsClearsSet(t *testing.T) {
	repo := &stubRepo{replaced: []models.AvailabilitySlot{{Weekday: 1}}}
	svc, err := NewService(repo, stubTxRunner{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	slots, err := svc.ReplaceSlots(context.Background(), uuid.New(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 0 || len(repo.replaced) != 0 {
		t.Fatalf("expected empty slot set")
	}
}

func TestReplaceSlotsValidation(t *testing.T) {
	svc, err := NewService(&stubRepo{}, stubTxRunner{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cases := []struct {
		name  string
		input SlotInput
	}{
		{"weekday too low", SlotInput{Weekday: 0, Start: "08:00", End: "10:00"}},
		{"weekday too high", SlotInput{Weekday: 8, Start: "08:00", End: "10:00"}},
		{"bad start format", SlotInput{Weekday: 2, Start: "8am", End: "10:00"}},
		{"bad end format", SlotInput{Weekday: 2, Start: "08:00", End: "later"}},
		{"start not before end", SlotInput{Weekday: 2, Start: "10:00", End: "10:00"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.ReplaceSlots(context.Background(), uuid.New(), []SlotInput{tc.input})
			if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestSlotCoversHalfOpen(t *testing.T) {
	slot := models.AvailabilitySlot{Weekday: 1, Start: "08:00", End: "18:00"}

	// 2026-08-31 is a Monday.
	monday := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)

	if !SlotCovers(slot, monday.Add(8*time.Hour)) {
		t.Fatalf("start boundary should be inside")
	}
	if !SlotCovers(slot, monday.Add(10*time.Hour)) {
		t.Fatalf("mid-window time should be inside")
	}
	if SlotCovers(slot, monday.Add(18*time.Hour)) {
		t.Fatalf("end boundary should be outside")
	}
	if SlotCovers(slot, monday.Add(7*time.Hour+59*time.Minute)) {
		t.Fatalf("before window should be outside")
	}
	if SlotCovers(slot, monday.AddDate(0, 0, 1).Add(10*time.Hour)) {
		t.Fatalf("different weekday should be outside")
	}
}

func TestISOWeekday(t *testing.T) {
	// Sunday maps to 7, Monday to 1.
	sunday := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	if got := ISOWeekday(sunday); got != 7 {
		t.Fatalf("expected 7 for Sunday, got %d", got)
	}
	monday := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	if got := ISOWeekday(monday); got != 1 {
		t.Fatalf("expected 1 for Monday, got %d", got)
	}
}
