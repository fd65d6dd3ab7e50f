package wallet

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ajeitai/marketplace-backend/pkg/config"
	"github.com/ajeitai/marketplace-backend/pkg/db/models"
	"github.com/ajeitai/marketplace-backend/pkg/enums"
	pkgerrors "github.com/ajeitai/marketplace-backend/pkg/errors"
	"github.com/ajeitai/marketplace-backend/pkg/outbox"
)

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// CreditedEvent is emitted when a provider's wallet receives booking earnings.
type CreditedEvent struct {
	ProviderID  uuid.UUID `json:"provider_id"`
	BookingID   uuid.UUID `json:"booking_id"`
	PaymentID   uuid.UUID `json:"payment_id"`
	GrossAmount string    `json:"gross_amount"`
	PlatformFee string    `json:"platform_fee"`
	NetAmount   string    `json:"net_amount"`
}

// Service mutates wallet balances. CreditConfirmedPayment participates in the
// caller's transaction; read operations run standalone.
type Service interface {
	CreditConfirmedPayment(ctx context.Context, tx *gorm.DB, booking *models.Booking, payment *models.Payment) error
	EnsureAccount(ctx context.Context, tx *gorm.DB, providerID uuid.UUID) (*models.WalletAccount, error)
	GetAccount(ctx context.Context, providerID uuid.UUID) (*models.WalletAccount, error)
	GetStatement(ctx context.Context, providerID uuid.UUID) ([]models.WalletTransaction, error)
}

type service struct {
	repo   Repository
	outbox outboxPublisher
	rate   decimal.Decimal
}

// NewService builds the wallet service with the configured platform fee rate.
func NewService(repo Repository, outboxSvc outboxPublisher, cfg config.WalletConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("wallet repository required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{
		repo:   repo,
		outbox: outboxSvc,
		rate:   cfg.Commission(),
	}, nil
}

// Split computes the platform fee and provider net for a gross amount. Both
// legs are rounded to two decimal places, fee half-up, and the net is derived
// by subtraction so fee + net always reconstructs the gross.
func Split(gross, rate decimal.Decimal) (fee, net decimal.Decimal) {
	gross = gross.Round(2)
	fee = gross.Mul(rate).Round(2)
	net = gross.Sub(fee)
	return fee, net
}

// CreditConfirmedPayment credits the provider's net earnings exactly once per
// payment. The ledger existence check is the idempotency anchor: a second
// call with the same payment is a silent no-op.
func (s *service) CreditConfirmedPayment(ctx context.Context, tx *gorm.DB, booking *models.Booking, payment *models.Payment) error {
	if booking == nil || payment == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "booking and payment required")
	}
	if payment.Status != enums.PaymentStatusConfirmado {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "only confirmed payments are credited")
	}

	repo := s.repo.WithTx(tx)

	exists, err := repo.CreditExistsForPayment(ctx, payment.ID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check ledger for payment")
	}
	if exists {
		return nil
	}

	gross := booking.ServicePrice.Round(2)
	if !gross.IsPositive() {
		return nil
	}

	account, err := s.ensureAccount(ctx, repo, booking.ProviderID)
	if err != nil {
		return err
	}
	fee, net := Split(gross, s.rate)

	entry := &models.WalletTransaction{
		ProviderID:  booking.ProviderID,
		Type:        enums.WalletTransactionCreditBooking,
		GrossAmount: gross,
		PlatformFee: fee,
		NetAmount:   net,
		BookingID:   &booking.ID,
		PaymentID:   &payment.ID,
	}
	if _, err := repo.InsertTransaction(ctx, entry); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert ledger entry")
	}

	newBalance := account.AvailableBalance.Add(net)
	if err := repo.UpdateAccount(ctx, account.ID, map[string]any{"available_balance": newBalance}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update wallet balance")
	}

	event := outbox.DomainEvent{
		EventType:     enums.EventWalletCredited,
		AggregateType: enums.AggregatePayment,
		AggregateID:   payment.ID,
		Data: CreditedEvent{
			ProviderID:  booking.ProviderID,
			BookingID:   booking.ID,
			PaymentID:   payment.ID,
			GrossAmount: gross.StringFixed(2),
			PlatformFee: fee.StringFixed(2),
			NetAmount:   net.StringFixed(2),
		},
	}
	return s.outbox.Emit(ctx, tx, event)
}

// EnsureAccount returns the provider's wallet, creating a zero-balance one if
// missing.
func (s *service) EnsureAccount(ctx context.Context, tx *gorm.DB, providerID uuid.UUID) (*models.WalletAccount, error) {
	if providerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "provider id required")
	}
	return s.ensureAccount(ctx, s.repo.WithTx(tx), providerID)
}

func (s *service) ensureAccount(ctx context.Context, repo Repository, providerID uuid.UUID) (*models.WalletAccount, error) {
	account, err := repo.FindAccountByProviderForUpdate(ctx, providerID)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load wallet account")
	}

	account = &models.WalletAccount{
		ProviderID:       providerID,
		AvailableBalance: decimal.Zero,
	}
	if _, err := repo.CreateAccount(ctx, account); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create wallet account")
	}
	return account, nil
}

func (s *service) GetAccount(ctx context.Context, providerID uuid.UUID) (*models.WalletAccount, error) {
	if providerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "provider id required")
	}
	account, err := s.repo.FindAccountByProvider(ctx, providerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "wallet account not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load wallet account")
	}
	return account, nil
}

func (s *service) GetStatement(ctx context.Context, providerID uuid.UUID) ([]models.WalletTransaction, error) {
	if providerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "provider id required")
	}
	entries, err := s.repo.ListTransactions(ctx, providerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list wallet transactions")
	}
	return entries, nil
}
