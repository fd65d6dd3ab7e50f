package subscriptions

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ajeitai/marketplace-backend/internal/providers"
	"github.com/ajeitai/marketplace-backend/pkg/abacatepay"
	"github.com/ajeitai/marketplace-backend/pkg/config"
	"github.com/ajeitai/marketplace-backend/pkg/db/models"
	"github.com/ajeitai/marketplace-backend/pkg/enums"
	pkgerrors "github.com/ajeitai/marketplace-backend/pkg/errors"
	"github.com/ajeitai/marketplace-backend/pkg/logger"
	"github.com/ajeitai/marketplace-backend/pkg/outbox"
)

var subscriptionNow = time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)

type stubSubscriptionRepo struct {
	byID map[uuid.UUID]*models.Subscription
}

func newStubSubscriptionRepo() *stubSubscriptionRepo {
	return &stubSubscriptionRepo{byID: make(map[uuid.UUID]*models.Subscription)}
}

func (s *stubSubscriptionRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubSubscriptionRepo) Create(_ context.Context, subscription *models.Subscription) (*models.Subscription, error) {
	subscription.ID = uuid.New()
	subscription.CreatedAt = time.Now()
	clone := *subscription
	s.byID[subscription.ID] = &clone
	return subscription, nil
}

func (s *stubSubscriptionRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Subscription, error) {
	subscription, ok := s.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *subscription
	return &clone, nil
}

func (s *stubSubscriptionRepo) FindLatestByProviderAndStatus(_ context.Context, providerID uuid.UUID, status enums.SubscriptionStatus) (*models.Subscription, error) {
	var latest *models.Subscription
	for _, subscription := range s.byID {
		if subscription.ProviderID != providerID || subscription.Status != status {
			continue
		}
		if latest == nil || subscription.CreatedAt.After(latest.CreatedAt) {
			latest = subscription
		}
	}
	if latest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *latest
	return &clone, nil
}

func (s *stubSubscriptionRepo) ListByProvider(_ context.Context, providerID uuid.UUID) ([]models.Subscription, error) {
	var out []models.Subscription
	for _, subscription := range s.byID {
		if subscription.ProviderID == providerID {
			out = append(out, *subscription)
		}
	}
	return out, nil
}

func (s *stubSubscriptionRepo) Update(_ context.Context, id uuid.UUID, updates map[string]any) error {
	subscription, ok := s.byID[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if status, ok := updates["status"].(enums.SubscriptionStatus); ok {
		subscription.Status = status
	}
	if start, ok := updates["start_date"].(time.Time); ok {
		subscription.StartDate = &start
	}
	if end, ok := updates["end_date"].(time.Time); ok {
		subscription.EndDate = &end
	}
	if at, ok := updates["last_payment_at"].(time.Time); ok {
		subscription.LastPaymentAt = &at
	}
	if billingID, ok := updates["billing_id"].(string); ok {
		subscription.BillingID = &billingID
	}
	return nil
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

type stubWalletService struct {
	ensured []uuid.UUID
}

func (s *stubWalletService) EnsureAccount(_ context.Context, _ *gorm.DB, providerID uuid.UUID) (*models.WalletAccount, error) {
	s.ensured = append(s.ensured, providerID)
	return &models.WalletAccount{ID: uuid.New(), ProviderID: providerID}, nil
}

type stubGateway struct {
	calls []abacatepay.BillingParams
	fail  bool
}

func (s *stubGateway) CreateBilling(_ context.Context, params abacatepay.BillingParams) (*abacatepay.BillingResult, error) {
	s.calls = append(s.calls, params)
	if s.fail {
		return nil, fmt.Errorf("gateway unavailable")
	}
	return &abacatepay.BillingResult{BillingID: "bill_123", PaymentURL: "https://pay.abacatepay.com/bill_123"}, nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubOutbox struct {
	events []outbox.DomainEvent
}

func (s *stubOutbox) Emit(_ context.Context, _ *gorm.DB, event outbox.DomainEvent) error {
	s.events = append(s.events, event)
	return nil
}

type subscriptionFixture struct {
	svc      *service
	repo     *stubSubscriptionRepo
	wallet   *stubWalletService
	gateway  *stubGateway
	outbox   *stubOutbox
	provider *models.Provider
}

func newSubscriptionFixture(t *testing.T) *subscriptionFixture {
	t.Helper()

	provider := &models.Provider{
		ID:        uuid.New(),
		TradeName: "Eletrica Silva",
		Email:     "silva@example.com",
		Phone:     "(19) 99999-0000",
	}
	repo := newStubSubscriptionRepo()
	walletStub := &stubWalletService{}
	gatewayStub := &stubGateway{}
	outboxStub := &stubOutbox{}
	logg := logger.New(logger.Options{Level: zerolog.ErrorLevel, Output: io.Discard})

	svc, err := NewService(
		repo,
		&stubProviderRepo{provider: provider},
		walletStub,
		gatewayStub,
		stubTxRunner{},
		outboxStub,
		config.SubscriptionConfig{MonthlyFee: "15.00", PeriodDays: 30},
		config.AbacatePayConfig{FrontendBaseURL: "https://app.ajeitai.com"},
		logg,
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	impl := svc.(*service)
	impl.now = func() time.Time { return subscriptionNow }

	return &subscriptionFixture{
		svc:      impl,
		repo:     repo,
		wallet:   walletStub,
		gateway:  gatewayStub,
		outbox:   outboxStub,
		provider: provider,
	}
}

func TestStartOrRenewIssuesCharge(t *testing.T) {
	f := newSubscriptionFixture(t)

	result, err := f.svc.StartOrRenew(context.Background(), f.provider.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Subscription.Status != enums.SubscriptionStatusAtrasada {
		t.Fatalf("new record should be ATRASADA until paid, got %s", result.Subscription.Status)
	}
	if !result.Subscription.CurrentPrice.Equal(decimal.RequireFromString("15.00")) {
		t.Fatalf("unexpected price: %s", result.Subscription.CurrentPrice)
	}
	if result.PaymentURL == nil || *result.PaymentURL != "https://pay.abacatepay.com/bill_123" {
		t.Fatalf("payment link missing: %v", result.PaymentURL)
	}
	if result.Subscription.BillingID == nil || *result.Subscription.BillingID != "bill_123" {
		t.Fatalf("billing id not stored")
	}

	if len(f.gateway.calls) != 1 {
		t.Fatalf("expected one gateway call, got %d", len(f.gateway.calls))
	}
	params := f.gateway.calls[0]
	if want := "sub-" + result.Subscription.ID.String(); params.ExternalID != want {
		t.Fatalf("external id should be %q, got %q", want, params.ExternalID)
	}
	if params.PriceCents != 1500 {
		t.Fatalf("expected 1500 cents, got %d", params.PriceCents)
	}
	if params.CustomerName != "Eletrica Silva" {
		t.Fatalf("provider data should fill the customer, got %q", params.CustomerName)
	}

	if len(f.outbox.events) != 1 || f.outbox.events[0].EventType != enums.EventSubscriptionRenewalRequested {
		t.Fatalf("expected renewal event, got %v", f.outbox.events)
	}
}

func TestStartOrRenewGatewayDownFallsBack(t *testing.T) {
	f := newSubscriptionFixture(t)
	f.gateway.fail = true

	result, err := f.svc.StartOrRenew(context.Background(), f.provider.ID)
	if err != nil {
		t.Fatalf("gateway failure must not abort renewal: %v", err)
	}
	if result.PaymentURL == nil || !strings.HasPrefix(*result.PaymentURL, "https://pagamentos.ajeitai.com/checkout/") {
		t.Fatalf("expected placeholder link, got %v", result.PaymentURL)
	}
	if result.Subscription.BillingID != nil {
		t.Fatalf("no billing id should be stored on failure")
	}
}

func TestStartOrRenewActiveSubscriptionNoCharge(t *testing.T) {
	f := newSubscriptionFixture(t)

	end := subscriptionNow.AddDate(0, 0, 10)
	active := &models.Subscription{
		ID:         uuid.New(),
		ProviderID: f.provider.ID,
		Status:     enums.SubscriptionStatusAtiva,
		EndDate:    &end,
		CreatedAt:  subscriptionNow.AddDate(0, 0, -20),
	}
	f.repo.byID[active.ID] = active

	result, err := f.svc.StartOrRenew(context.Background(), f.provider.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Subscription.ID != active.ID {
		t.Fatalf("active subscription should be returned unchanged")
	}
	if result.PaymentURL != nil {
		t.Fatalf("no charge should be issued while active")
	}
	if len(f.gateway.calls) != 0 {
		t.Fatalf("gateway must not be called while active")
	}
}

func TestStartOrRenewExpiredSubscriptionCharges(t *testing.T) {
	f := newSubscriptionFixture(t)

	end := subscriptionNow.AddDate(0, 0, -1)
	expired := &models.Subscription{
		ID:         uuid.New(),
		ProviderID: f.provider.ID,
		Status:     enums.SubscriptionStatusAtiva,
		EndDate:    &end,
		CreatedAt:  subscriptionNow.AddDate(0, 0, -31),
	}
	f.repo.byID[expired.ID] = expired

	result, err := f.svc.StartOrRenew(context.Background(), f.provider.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Subscription.ID == expired.ID {
		t.Fatalf("expired subscription must not satisfy renewal")
	}
	if len(f.gateway.calls) != 1 {
		t.Fatalf("expected a new charge for the expired subscription")
	}
}

func TestActiveSubscriptionEndDateBoundary(t *testing.T) {
	f := newSubscriptionFixture(t)

	// Ends today: still active through the end of the day.
	end := dateOnly(subscriptionNow)
	active := &models.Subscription{
		ID:         uuid.New(),
		ProviderID: f.provider.ID,
		Status:     enums.SubscriptionStatusAtiva,
		EndDate:    &end,
	}
	f.repo.byID[active.ID] = active

	got, err := f.svc.ActiveSubscription(context.Background(), f.provider.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || got.ID != active.ID {
		t.Fatalf("subscription ending today should still be active")
	}
}

func TestConfirmSubscriptionPayment(t *testing.T) {
	f := newSubscriptionFixture(t)

	result, err := f.svc.StartOrRenew(context.Background(), f.provider.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := f.svc.ConfirmSubscriptionPayment(context.Background(), nil, result.Subscription.ID, "bill_webhook"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored, _ := f.repo.FindByID(context.Background(), result.Subscription.ID)
	if stored.Status != enums.SubscriptionStatusAtiva {
		t.Fatalf("expected ATIVA, got %s", stored.Status)
	}
	if stored.BillingID == nil || *stored.BillingID != "bill_webhook" {
		t.Fatalf("webhook billing id should be recorded, got %v", stored.BillingID)
	}
	if stored.StartDate == nil || !stored.StartDate.Equal(time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected start date: %v", stored.StartDate)
	}
	if stored.EndDate == nil || !stored.EndDate.Equal(time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected end date: %v", stored.EndDate)
	}
	if len(f.wallet.ensured) != 1 || f.wallet.ensured[0] != f.provider.ID {
		t.Fatalf("wallet account should be ensured on activation")
	}

	last := f.outbox.events[len(f.outbox.events)-1]
	if last.EventType != enums.EventSubscriptionActivated {
		t.Fatalf("expected activation event, got %s", last.EventType)
	}

	// Redelivery is a no-op.
	if err := f.svc.ConfirmSubscriptionPayment(context.Background(), nil, result.Subscription.ID, "bill_webhook"); err != nil {
		t.Fatalf("redelivery should be ignored: %v", err)
	}
	if len(f.wallet.ensured) != 1 {
		t.Fatalf("redelivery must not ensure the wallet again")
	}
}

func TestConfirmSubscriptionPaymentUnknownID(t *testing.T) {
	f := newSubscriptionFixture(t)
	if err := f.svc.ConfirmSubscriptionPayment(context.Background(), nil, uuid.New(), ""); err != nil {
		t.Fatalf("unknown subscription should be ignored: %v", err)
	}
}

func TestParseSubscriptionExternalID(t *testing.T) {
	id := uuid.New()
	parsed, ok := ParseSubscriptionExternalID("sub-" + id.String())
	if !ok || parsed != id {
		t.Fatalf("round-trip failed: %v %v", parsed, ok)
	}
	if _, ok := ParseSubscriptionExternalID("ag-" + id.String()); ok {
		t.Fatalf("booking prefix must not parse as subscription")
	}
	if _, ok := ParseSubscriptionExternalID("sub-not-a-uuid"); ok {
		t.Fatalf("malformed uuid must not parse")
	}
}

func TestActiveSubscriptionValidation(t *testing.T) {
	f := newSubscriptionFixture(t)
	_, err := f.svc.ActiveSubscription(context.Background(), uuid.Nil)
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
