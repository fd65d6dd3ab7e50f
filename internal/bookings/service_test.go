package bookings

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ajeitai/marketplace-backend/internal/availability"
	"github.com/ajeitai/marketplace-backend/internal/clients"
	"github.com/ajeitai/marketplace-backend/internal/providers"
	"github.com/ajeitai/marketplace-backend/pkg/config"
	"github.com/ajeitai/marketplace-backend/pkg/db/models"
	"github.com/ajeitai/marketplace-backend/pkg/enums"
	pkgerrors "github.com/ajeitai/marketplace-backend/pkg/errors"
	"github.com/ajeitai/marketplace-backend/pkg/logger"
	"github.com/ajeitai/marketplace-backend/pkg/outbox"
	"github.com/ajeitai/marketplace-backend/pkg/types"
)

// 2026-09-01 is a Tuesday.
var (
	testNow       = time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	testRequested = time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
)

type stubBookingRepo struct {
	byID     map[uuid.UUID]*models.Booking
	conflict bool
}

func newStubBookingRepo() *stubBookingRepo {
	return &stubBookingRepo{byID: make(map[uuid.UUID]*models.Booking)}
}

func (s *stubBookingRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubBookingRepo) Create(_ context.Context, booking *models.Booking) (*models.Booking, error) {
	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}
	clone := *booking
	s.byID[booking.ID] = &clone
	return booking, nil
}

func (s *stubBookingRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Booking, error) {
	booking, ok := s.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *booking
	return &clone, nil
}

func (s *stubBookingRepo) ExistsActiveAt(_ context.Context, _ uuid.UUID, _ time.Time) (bool, error) {
	return s.conflict, nil
}

func (s *stubBookingRepo) Update(_ context.Context, id uuid.UUID, updates map[string]any) error {
	booking, ok := s.byID[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if status, ok := updates["status"].(enums.BookingStatus); ok {
		booking.Status = status
	}
	if at, ok := updates["accepted_at"].(time.Time); ok {
		booking.AcceptedAt = &at
	}
	if at, ok := updates["confirmed_at"].(time.Time); ok {
		booking.ConfirmedAt = &at
	}
	if at, ok := updates["checkin_at"].(time.Time); ok {
		booking.CheckinAt = &at
	}
	if lat, ok := updates["checkin_latitude"].(float64); ok {
		booking.CheckinLatitude = &lat
	}
	if lon, ok := updates["checkin_longitude"].(float64); ok {
		booking.CheckinLongitude = &lon
	}
	if at, ok := updates["checkout_at"].(time.Time); ok {
		booking.CheckoutAt = &at
	}
	if lat, ok := updates["checkout_latitude"].(float64); ok {
		booking.CheckoutLatitude = &lat
	}
	if lon, ok := updates["checkout_longitude"].(float64); ok {
		booking.CheckoutLongitude = &lon
	}
	if photo, ok := updates["completion_photo_path"].(string); ok {
		booking.CompletionPhotoPath = &photo
	}
	return nil
}

func (s *stubBookingRepo) ListByClient(_ context.Context, clientID uuid.UUID, _ *enums.BookingStatus) ([]models.Booking, error) {
	var out []models.Booking
	for _, booking := range s.byID {
		if booking.ClientID == clientID {
			out = append(out, *booking)
		}
	}
	return out, nil
}

func (s *stubBookingRepo) ListByProvider(_ context.Context, providerID uuid.UUID, _ *enums.BookingStatus) ([]models.Booking, error) {
	var out []models.Booking
	for _, booking := range s.byID {
		if booking.ProviderID == providerID {
			out = append(out, *booking)
		}
	}
	return out, nil
}

type stubSlotRepo struct {
	availability.Repository
	slots []models.AvailabilitySlot
}

func (s *stubSlotRepo) WithTx(tx *gorm.DB) availability.Repository { return s }

func (s *stubSlotRepo) ListByProviderAndWeekday(_ context.Context, _ uuid.UUID, weekday int) ([]models.AvailabilitySlot, error) {
	var out []models.AvailabilitySlot
	for _, slot := range s.slots {
		if slot.Weekday == weekday {
			out = append(out, slot)
		}
	}
	return out, nil
}

type stubClientRepo struct {
	clients.Repository
	client *models.Client
}

func (s *stubClientRepo) WithTx(tx *gorm.DB) clients.Repository { return s }

func (s *stubClientRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Client, error) {
	if s.client == nil || s.client.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.client, nil
}

type stubProviderRepo struct {
	providers.Repository
	provider *models.Provider
}

func (s *stubProviderRepo) WithTx(tx *gorm.DB) providers.Repository { return s }

func (s *stubProviderRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Provider, error) {
	if s.provider == nil || s.provider.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.provider, nil
}

type stubPayments struct {
	created   []*models.Payment
	confirmed []uuid.UUID
	canceled  []uuid.UUID
	link      *string
}

func (s *stubPayments) CreateForBooking(_ context.Context, _ *gorm.DB, booking *models.Booking, _ *models.Client, _ *models.Provider) (*models.Payment, error) {
	payment := &models.Payment{ID: uuid.New(), BookingID: booking.ID}
	if booking.PaymentMethod == enums.PaymentMethodDinheiro {
		payment.Status = enums.PaymentStatusNaoAplicavel
	} else {
		payment.Status = enums.PaymentStatusPendente
		payment.PaymentURL = s.link
	}
	s.created = append(s.created, payment)
	return payment, nil
}

func (s *stubPayments) ConfirmForBooking(_ context.Context, _ *gorm.DB, bookingID uuid.UUID) (*models.Payment, error) {
	s.confirmed = append(s.confirmed, bookingID)
	return &models.Payment{ID: uuid.New(), BookingID: bookingID, Status: enums.PaymentStatusConfirmado}, nil
}

func (s *stubPayments) CancelForBooking(_ context.Context, _ *gorm.DB, bookingID uuid.UUID) error {
	s.canceled = append(s.canceled, bookingID)
	return nil
}

type stubWallet struct {
	credited []uuid.UUID
}

func (s *stubWallet) CreditConfirmedPayment(_ context.Context, _ *gorm.DB, booking *models.Booking, _ *models.Payment) error {
	s.credited = append(s.credited, booking.ID)
	return nil
}

type stubOutbox struct {
	events []outbox.DomainEvent
}

func (s *stubOutbox) Emit(_ context.Context, _ *gorm.DB, event outbox.DomainEvent) error {
	s.events = append(s.events, event)
	return nil
}

func (s *stubOutbox) types() []enums.OutboxEventType {
	out := make([]enums.OutboxEventType, 0, len(s.events))
	for _, event := range s.events {
		out = append(out, event.EventType)
	}
	return out
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type fixture struct {
	svc      *service
	repo     *stubBookingRepo
	payments *stubPayments
	wallet   *stubWallet
	outbox   *stubOutbox
	client   *models.Client
	provider *models.Provider
}

func sameCityAddress(city string) types.Address {
	return types.Address{Street: "Rua A", Number: "10", City: city, State: "SP", PostalCode: "01000-000"}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	client := &models.Client{ID: uuid.New(), Name: "Maria", Address: sameCityAddress("Campinas")}
	provider := &models.Provider{
		ID:           uuid.New(),
		TradeName:    "Limpeza Total",
		ServicePrice: decimal.RequireFromString("150.00"),
		Address:      sameCityAddress("campinas"), // case differs on purpose
	}

	repo := newStubBookingRepo()
	paymentsStub := &stubPayments{}
	walletStub := &stubWallet{}
	outboxStub := &stubOutbox{}
	logg := logger.New(logger.Options{Level: zerolog.ErrorLevel, Output: io.Discard})

	svc, err := NewService(
		repo,
		stubTxRunner{},
		&stubSlotRepo{slots: []models.AvailabilitySlot{{Weekday: 2, Start: "08:00", End: "18:00"}}},
		&stubClientRepo{client: client},
		&stubProviderRepo{provider: provider},
		paymentsStub,
		walletStub,
		outboxStub,
		config.BookingConfig{MinAntecedence: 30 * time.Minute, ProviderLockTimeout: 3 * time.Second},
		logg,
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	impl := svc.(*service)
	impl.now = func() time.Time { return testNow }
	impl.lock = func(_ *gorm.DB, _ uuid.UUID, _ time.Duration) error { return nil }

	return &fixture{
		svc:      impl,
		repo:     repo,
		payments: paymentsStub,
		wallet:   walletStub,
		outbox:   outboxStub,
		client:   client,
		provider: provider,
	}
}

func (f *fixture) createInput() CreateInput {
	return CreateInput{
		ClientID:      f.client.ID,
		ProviderID:    f.provider.ID,
		ScheduledAt:   testRequested,
		PaymentMethod: enums.PaymentMethodOnline,
		Note:          "portao azul",
	}
}

func TestCreateBooking(t *testing.T) {
	f := newFixture(t)

	booking, err := f.svc.Create(context.Background(), f.createInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if booking.Status != enums.BookingStatusPendente {
		t.Fatalf("new booking should be PENDENTE, got %s", booking.Status)
	}
	if booking.Address.City != "Campinas" {
		t.Fatalf("client address should be snapshotted, got %+v", booking.Address)
	}
	if !booking.ServicePrice.Equal(f.provider.ServicePrice) {
		t.Fatalf("service price should come from the provider")
	}
	if got := f.outbox.types(); len(got) != 1 || got[0] != enums.EventBookingCreated {
		t.Fatalf("expected booking_created event, got %v", got)
	}
}

func TestCreateBookingTooSoon(t *testing.T) {
	f := newFixture(t)
	input := f.createInput()
	input.ScheduledAt = testNow.Add(10 * time.Minute)

	_, err := f.svc.Create(context.Background(), input)
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if got := pkgerrors.As(err).Message(); got != "booking must be created at least 30 minutes in advance" {
		t.Fatalf("error should mention the 30-minute rule, got %q", got)
	}
}

func TestCreateBookingCityMismatch(t *testing.T) {
	f := newFixture(t)
	f.provider.Address.City = "Sao Paulo"

	_, err := f.svc.Create(context.Background(), f.createInput())
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateBookingMissingAddress(t *testing.T) {
	f := newFixture(t)
	f.client.Address = types.Address{}

	_, err := f.svc.Create(context.Background(), f.createInput())
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateBookingOutsideAvailability(t *testing.T) {
	f := newFixture(t)
	input := f.createInput()
	// Tuesday 19:00, outside the 08:00-18:00 window.
	input.ScheduledAt = time.Date(2026, 9, 1, 19, 0, 0, 0, time.UTC)

	_, err := f.svc.Create(context.Background(), input)
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateBookingSlotEndBoundaryExcluded(t *testing.T) {
	f := newFixture(t)
	input := f.createInput()
	// Exactly at the end of the window: half-open interval excludes it.
	input.ScheduledAt = time.Date(2026, 9, 1, 18, 0, 0, 0, time.UTC)

	_, err := f.svc.Create(context.Background(), input)
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error at end boundary, got %v", err)
	}

	// Exactly at the start of the window is inside.
	input.ScheduledAt = time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)
	if _, err := f.svc.Create(context.Background(), input); err != nil {
		t.Fatalf("start boundary should be accepted: %v", err)
	}
}

func TestCreateBookingConflict(t *testing.T) {
	f := newFixture(t)
	f.repo.conflict = true

	_, err := f.svc.Create(context.Background(), f.createInput())
	if !pkgerrors.HasCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestCreateBookingLockTimeout(t *testing.T) {
	f := newFixture(t)
	f.svc.lock = func(_ *gorm.DB, _ uuid.UUID, _ time.Duration) error {
		return fmt.Errorf("ERROR: canceling statement due to lock timeout (SQLSTATE 55P03)")
	}

	_, err := f.svc.Create(context.Background(), f.createInput())
	if !pkgerrors.HasCode(err, pkgerrors.CodeSlotContention) {
		t.Fatalf("expected slot contention error, got %v", err)
	}
	if !pkgerrors.MetadataFor(pkgerrors.CodeSlotContention).Retryable {
		t.Fatalf("slot contention must be retryable")
	}
}

func TestAcceptOnlineBooking(t *testing.T) {
	f := newFixture(t)
	link := "https://pay.example/x"
	f.payments.link = &link

	booking, err := f.svc.Create(context.Background(), f.createInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	accepted, err := f.svc.Accept(context.Background(), booking.ID, f.provider.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if accepted.Status != enums.BookingStatusAceito {
		t.Fatalf("expected ACEITO, got %s", accepted.Status)
	}
	if accepted.AcceptedAt == nil {
		t.Fatalf("accepted_at not set")
	}
	if len(f.payments.created) != 1 {
		t.Fatalf("payment should be created on accept")
	}

	got := f.outbox.types()
	want := []enums.OutboxEventType{enums.EventBookingCreated, enums.EventBookingAccepted, enums.EventPaymentLinkAvailable}
	if len(got) != len(want) {
		t.Fatalf("expected events %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected events %v, got %v", want, got)
		}
	}
}

func TestAcceptCashBookingAutoConfirms(t *testing.T) {
	f := newFixture(t)

	input := f.createInput()
	input.PaymentMethod = enums.PaymentMethodDinheiro
	booking, err := f.svc.Create(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	accepted, err := f.svc.Accept(context.Background(), booking.ID, f.provider.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if accepted.Status != enums.BookingStatusConfirmado {
		t.Fatalf("cash booking should auto-confirm, got %s", accepted.Status)
	}
	if accepted.ConfirmedAt == nil {
		t.Fatalf("confirmed_at not set")
	}
	if len(f.wallet.credited) != 0 {
		t.Fatalf("cash bookings must not credit the wallet")
	}
	if len(f.payments.confirmed) != 0 {
		t.Fatalf("cash bookings must not invoke gateway confirmation")
	}
}

func TestAcceptWrongProvider(t *testing.T) {
	f := newFixture(t)
	booking, err := f.svc.Create(context.Background(), f.createInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = f.svc.Accept(context.Background(), booking.ID, uuid.New())
	if !pkgerrors.HasCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestAcceptNonPending(t *testing.T) {
	f := newFixture(t)
	booking, err := f.svc.Create(context.Background(), f.createInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.svc.Accept(context.Background(), booking.ID, f.provider.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = f.svc.Accept(context.Background(), booking.ID, f.provider.ID)
	if !pkgerrors.HasCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestRefuse(t *testing.T) {
	f := newFixture(t)
	booking, err := f.svc.Create(context.Background(), f.createInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	refused, err := f.svc.Refuse(context.Background(), booking.ID, f.provider.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if refused.Status != enums.BookingStatusRecusado {
		t.Fatalf("expected RECUSADO, got %s", refused.Status)
	}
}

func TestCancel(t *testing.T) {
	f := newFixture(t)
	booking, err := f.svc.Create(context.Background(), f.createInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	canceled, err := f.svc.Cancel(context.Background(), booking.ID, f.client.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if canceled.Status != enums.BookingStatusCancelado {
		t.Fatalf("expected CANCELADO, got %s", canceled.Status)
	}
	if len(f.payments.canceled) != 1 {
		t.Fatalf("payment cancel should be attempted")
	}

	// Canceling again is a no-op.
	if _, err := f.svc.Cancel(context.Background(), booking.ID, f.client.ID); err != nil {
		t.Fatalf("second cancel should be a no-op: %v", err)
	}
}

func TestCancelWrongClient(t *testing.T) {
	f := newFixture(t)
	booking, err := f.svc.Create(context.Background(), f.createInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = f.svc.Cancel(context.Background(), booking.ID, uuid.New())
	if !pkgerrors.HasCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestCancelCompletedBooking(t *testing.T) {
	f := newFixture(t)
	booking := f.completedBooking(t)

	_, err := f.svc.Cancel(context.Background(), booking.ID, f.client.ID)
	if !pkgerrors.HasCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestConfirmPaymentByClient(t *testing.T) {
	f := newFixture(t)
	booking := f.acceptedBooking(t)

	confirmed, err := f.svc.ConfirmPayment(context.Background(), booking.ID, f.client.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if confirmed.Status != enums.BookingStatusConfirmado {
		t.Fatalf("expected CONFIRMADO, got %s", confirmed.Status)
	}
	if len(f.payments.confirmed) != 1 {
		t.Fatalf("payment confirmation should be delegated")
	}
	if len(f.wallet.credited) != 1 {
		t.Fatalf("wallet should be credited on confirmation")
	}
}

func TestConfirmPaymentByBookingIDWebhook(t *testing.T) {
	f := newFixture(t)
	booking := f.acceptedBooking(t)

	if err := f.svc.ConfirmPaymentByBookingID(context.Background(), booking.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stored, _ := f.repo.FindByID(context.Background(), booking.ID)
	if stored.Status != enums.BookingStatusConfirmado {
		t.Fatalf("expected CONFIRMADO, got %s", stored.Status)
	}
	if len(f.wallet.credited) != 1 {
		t.Fatalf("wallet should be credited once")
	}

	// Redelivery: booking is no longer ACEITO, so nothing happens.
	if err := f.svc.ConfirmPaymentByBookingID(context.Background(), booking.ID); err != nil {
		t.Fatalf("redelivery should be ignored: %v", err)
	}
	if len(f.payments.confirmed) != 1 || len(f.wallet.credited) != 1 {
		t.Fatalf("redelivery must not confirm or credit again")
	}
}

func TestConfirmPaymentByBookingIDUnknownBooking(t *testing.T) {
	f := newFixture(t)
	if err := f.svc.ConfirmPaymentByBookingID(context.Background(), uuid.New()); err != nil {
		t.Fatalf("unknown booking should be ignored: %v", err)
	}
}

func TestCheckInAndCheckOut(t *testing.T) {
	f := newFixture(t)
	booking := f.confirmedBooking(t)

	// Check-out before check-in fails.
	_, err := f.svc.CheckOut(context.Background(), CheckpointInput{
		BookingID: booking.ID, ProviderID: f.provider.ID, Latitude: -22.9, Longitude: -47.0,
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	checked, err := f.svc.CheckIn(context.Background(), CheckpointInput{
		BookingID: booking.ID, ProviderID: f.provider.ID, Latitude: -22.9, Longitude: -47.06,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if checked.CheckinAt == nil || checked.CheckinLatitude == nil || checked.CheckinLongitude == nil {
		t.Fatalf("check-in fields not recorded: %+v", checked)
	}

	// Second check-in fails.
	_, err = f.svc.CheckIn(context.Background(), CheckpointInput{
		BookingID: booking.ID, ProviderID: f.provider.ID, Latitude: -22.9, Longitude: -47.06,
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error on duplicate check-in, got %v", err)
	}

	photo := "uploads/conclusao.jpg"
	done, err := f.svc.CheckOut(context.Background(), CheckpointInput{
		BookingID: booking.ID, ProviderID: f.provider.ID, Latitude: -22.91, Longitude: -47.07, PhotoPath: &photo,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if done.Status != enums.BookingStatusRealizado {
		t.Fatalf("expected REALIZADO, got %s", done.Status)
	}
	if done.CheckoutAt == nil || done.CheckoutLatitude == nil || done.CheckoutLongitude == nil {
		t.Fatalf("check-out fields not recorded: %+v", done)
	}
	if done.CompletionPhotoPath == nil || *done.CompletionPhotoPath != photo {
		t.Fatalf("completion photo not stored")
	}

	got := f.outbox.types()
	if got[len(got)-1] != enums.EventBookingCompleted {
		t.Fatalf("expected booking_completed event, got %v", got)
	}
}

func TestCheckInRequiresConfirmedStatus(t *testing.T) {
	f := newFixture(t)
	booking := f.acceptedBooking(t)

	_, err := f.svc.CheckIn(context.Background(), CheckpointInput{
		BookingID: booking.ID, ProviderID: f.provider.ID,
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestGetForClientOwnership(t *testing.T) {
	f := newFixture(t)
	booking, err := f.svc.Create(context.Background(), f.createInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := f.svc.GetForClient(context.Background(), booking.ID, f.client.ID); err != nil {
		t.Fatalf("owner read failed: %v", err)
	}
	if _, err := f.svc.GetForClient(context.Background(), booking.ID, uuid.New()); !pkgerrors.HasCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden for foreign client, got %v", err)
	}
	if _, err := f.svc.GetForProvider(context.Background(), booking.ID, uuid.New()); !pkgerrors.HasCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden for foreign provider, got %v", err)
	}
}

func (f *fixture) acceptedBooking(t *testing.T) *models.Booking {
	t.Helper()
	booking, err := f.svc.Create(context.Background(), f.createInput())
	if err != nil {
		t.Fatalf("creating booking: %v", err)
	}
	accepted, err := f.svc.Accept(context.Background(), booking.ID, f.provider.ID)
	if err != nil {
		t.Fatalf("accepting booking: %v", err)
	}
	return accepted
}

func (f *fixture) confirmedBooking(t *testing.T) *models.Booking {
	t.Helper()
	booking := f.acceptedBooking(t)
	confirmed, err := f.svc.ConfirmPayment(context.Background(), booking.ID, f.client.ID)
	if err != nil {
		t.Fatalf("confirming booking: %v", err)
	}
	return confirmed
}

func (f *fixture) completedBooking(t *testing.T) *models.Booking {
	t.Helper()
	booking := f.confirmedBooking(t)
	if _, err := f.svc.CheckIn(context.Background(), CheckpointInput{
		BookingID: booking.ID, ProviderID: f.provider.ID, Latitude: 1, Longitude: 1,
	}); err != nil {
		t.Fatalf("check-in: %v", err)
	}
	done, err := f.svc.CheckOut(context.Background(), CheckpointInput{
		BookingID: booking.ID, ProviderID: f.provider.ID, Latitude: 1, Longitude: 1,
	})
	if err != nil {
		t.Fatalf("check-out: %v", err)
	}
	return done
}
