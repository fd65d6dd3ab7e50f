package subscriptions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
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

// ExternalIDPrefix distinguishes subscription charges from booking charges
// in gateway callbacks.
const ExternalIDPrefix = "sub-"

const placeholderCheckoutBase = "https://pagamentos.ajeitai.com/checkout/"

var centsFactor = decimal.NewFromInt(100)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type billingGateway interface {
	CreateBilling(ctx context.Context, params abacatepay.BillingParams) (*abacatepay.BillingResult, error)
}

type accountEnsurer interface {
	EnsureAccount(ctx context.Context, tx *gorm.DB, providerID uuid.UUID) (*models.WalletAccount, error)
}

// RenewalResult pairs the subscription record with the payment link the
// provider must follow. PaymentURL is nil when the subscription is already
// active and no charge was issued.
type RenewalResult struct {
	Subscription *models.Subscription `json:"subscription"`
	PaymentURL   *string              `json:"payment_url,omitempty"`
}

// Service manages the provider subscription lifecycle.
type Service interface {
	ActiveSubscription(ctx context.Context, providerID uuid.UUID) (*models.Subscription, error)
	StartOrRenew(ctx context.Context, providerID uuid.UUID) (*RenewalResult, error)
	ConfirmSubscriptionPayment(ctx context.Context, tx *gorm.DB, subscriptionID uuid.UUID, billingID string) error
	ListForProvider(ctx context.Context, providerID uuid.UUID) ([]models.Subscription, error)
}

type service struct {
	repo       Repository
	providers  providers.Repository
	wallet     accountEnsurer
	gateway    billingGateway
	tx         txRunner
	outbox     outboxPublisher
	cfg        config.SubscriptionConfig
	gatewayCfg config.AbacatePayConfig
	logg       *logger.Logger

	now func() time.Time
}

// NewService builds the subscription service.
func NewService(
	repo Repository,
	providersRepo providers.Repository,
	walletSvc accountEnsurer,
	gateway billingGateway,
	tx txRunner,
	outboxSvc outboxPublisher,
	cfg config.SubscriptionConfig,
	gatewayCfg config.AbacatePayConfig,
	logg *logger.Logger,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("subscription repository required")
	}
	if providersRepo == nil {
		return nil, fmt.Errorf("providers repository required")
	}
	if walletSvc == nil {
		return nil, fmt.Errorf("wallet service required")
	}
	if gateway == nil {
		return nil, fmt.Errorf("billing gateway required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if cfg.PeriodDays <= 0 {
		return nil, fmt.Errorf("subscription period must be positive")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:       repo,
		providers:  providersRepo,
		wallet:     walletSvc,
		gateway:    gateway,
		tx:         tx,
		outbox:     outboxSvc,
		cfg:        cfg,
		gatewayCfg: gatewayCfg,
		logg:       logg,
		now:        time.Now,
	}, nil
}

// SubscriptionExternalID builds the gateway external id for a subscription
// charge.
func SubscriptionExternalID(subscriptionID uuid.UUID) string {
	return ExternalIDPrefix + subscriptionID.String()
}

// ParseSubscriptionExternalID extracts the subscription id from a gateway
// external id.
func ParseSubscriptionExternalID(externalID string) (uuid.UUID, bool) {
	raw, found := strings.CutPrefix(externalID, ExternalIDPrefix)
	if !found {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// ActiveSubscription returns the provider's current ATIVA record, or nil when
// there is none or the latest one already ended.
func (s *service) ActiveSubscription(ctx context.Context, providerID uuid.UUID) (*models.Subscription, error) {
	if providerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "provider id required")
	}
	return s.activeSubscription(ctx, s.repo, providerID)
}

func (s *service) activeSubscription(ctx context.Context, repo Repository, providerID uuid.UUID) (*models.Subscription, error) {
	subscription, err := repo.FindLatestByProviderAndStatus(ctx, providerID, enums.SubscriptionStatusAtiva)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load subscription")
	}
	today := dateOnly(s.now().UTC())
	if subscription.EndDate == nil || dateOnly(*subscription.EndDate).Before(today) {
		return nil, nil
	}
	return subscription, nil
}

// StartOrRenew issues a new billing period for the provider. An already
// active subscription is returned as-is without charging again; otherwise an
// ATRASADA record is created and a payment link issued for it.
func (s *service) StartOrRenew(ctx context.Context, providerID uuid.UUID) (*RenewalResult, error) {
	if providerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "provider id required")
	}

	var result *RenewalResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		active, err := s.activeSubscription(ctx, repo, providerID)
		if err != nil {
			return err
		}
		if active != nil {
			result = &RenewalResult{Subscription: active}
			return nil
		}

		provider, err := s.providers.WithTx(tx).FindByID(ctx, providerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "provider not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load provider")
		}

		subscription, err := repo.Create(ctx, &models.Subscription{
			ProviderID:   providerID,
			Status:       enums.SubscriptionStatusAtrasada,
			CurrentPrice: s.cfg.Fee(),
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create subscription record")
		}

		billingID, paymentURL := s.createBillingLink(ctx, subscription, provider)
		if billingID != nil {
			if err := repo.Update(ctx, subscription.ID, map[string]any{"billing_id": *billingID}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store billing id")
			}
			subscription.BillingID = billingID
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventSubscriptionRenewalRequested,
			AggregateType: enums.AggregateSubscription,
			AggregateID:   subscription.ID,
			Actor:         &outbox.ActorRef{Role: enums.ActorRoleProvider, ProviderID: &providerID},
			Data: map[string]any{
				"subscription_id": subscription.ID,
				"provider_id":     providerID,
				"price":           subscription.CurrentPrice.StringFixed(2),
				"payment_url":     paymentURL,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit subscription event")
		}

		result = &RenewalResult{Subscription: subscription, PaymentURL: &paymentURL}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) createBillingLink(ctx context.Context, subscription *models.Subscription, provider *models.Provider) (*string, string) {
	fallbackURL := placeholderCheckoutBase + subscription.ID.String()

	params := abacatepay.BillingParams{
		ExternalID:  SubscriptionExternalID(subscription.ID),
		ProductName: "Assinatura da plataforma",
		Description: fmt.Sprintf("Mensalidade de %d dias", s.cfg.PeriodDays),
		PriceCents:  int(subscription.CurrentPrice.Mul(centsFactor).IntPart()),
		ReturnURL:   strings.TrimRight(s.gatewayCfg.FrontendBaseURL, "/") + "/prestador/assinatura",
	}
	if provider != nil {
		params.CustomerName = provider.TradeName
		params.CustomerPhone = provider.Phone
		params.CustomerEmail = provider.Email
	}

	result, err := s.gateway.CreateBilling(ctx, params)
	if err != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{"subscription_id": subscription.ID.String()})
		s.logg.Error(logCtx, "subscription billing failed, using placeholder", err)
		return nil, fallbackURL
	}
	if result == nil {
		return nil, fallbackURL
	}
	return &result.BillingID, result.PaymentURL
}

// ConfirmSubscriptionPayment activates the record: the period starts today
// and runs for the configured number of days. The webhook's billing id is
// recorded so renewals that fell back to the placeholder link still end up
// linked to their charge. Called from the payment webhook inside its
// transaction; already-active records are left untouched so redeliveries
// stay harmless.
func (s *service) ConfirmSubscriptionPayment(ctx context.Context, tx *gorm.DB, subscriptionID uuid.UUID, billingID string) error {
	if subscriptionID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "subscription id required")
	}
	repo := s.repo.WithTx(tx)

	subscription, err := repo.FindByID(ctx, subscriptionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logCtx := s.logg.WithFields(ctx, map[string]any{"subscription_id": subscriptionID.String()})
			s.logg.Warn(logCtx, "payment confirmation for unknown subscription ignored")
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load subscription")
	}
	if subscription.Status == enums.SubscriptionStatusAtiva {
		return nil
	}

	now := s.now().UTC()
	start := dateOnly(now)
	end := start.AddDate(0, 0, s.cfg.PeriodDays)
	updates := map[string]any{
		"status":          enums.SubscriptionStatusAtiva,
		"start_date":      start,
		"end_date":        end,
		"last_payment_at": now,
	}
	if billingID != "" {
		updates["billing_id"] = billingID
	}
	if err := repo.Update(ctx, subscription.ID, updates); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "activate subscription")
	}

	// Make sure the provider has a wallet before their first booking settles.
	if _, err := s.wallet.EnsureAccount(ctx, tx, subscription.ProviderID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "ensure wallet account")
	}

	event := outbox.DomainEvent{
		EventType:     enums.EventSubscriptionActivated,
		AggregateType: enums.AggregateSubscription,
		AggregateID:   subscription.ID,
		Data: map[string]any{
			"subscription_id": subscription.ID,
			"provider_id":     subscription.ProviderID,
			"start_date":      start.Format("2006-01-02"),
			"end_date":        end.Format("2006-01-02"),
		},
	}
	if err := s.outbox.Emit(ctx, tx, event); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit subscription event")
	}
	return nil
}

func (s *service) ListForProvider(ctx context.Context, providerID uuid.UUID) ([]models.Subscription, error) {
	if providerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "provider id required")
	}
	subscriptions, err := s.repo.ListByProvider(ctx, providerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list subscriptions")
	}
	return subscriptions, nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
