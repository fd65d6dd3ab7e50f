package withdrawals

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ajeitai/marketplace-backend/internal/wallet"
	"github.com/ajeitai/marketplace-backend/pkg/config"
	"github.com/ajeitai/marketplace-backend/pkg/db/models"
	"github.com/ajeitai/marketplace-backend/pkg/enums"
	pkgerrors "github.com/ajeitai/marketplace-backend/pkg/errors"
	"github.com/ajeitai/marketplace-backend/pkg/outbox"
)

const eligibleDateLayout = "2006-01-02"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Summary describes a provider's withdrawal position: current balance and
// whether the cooldown allows a new request.
type Summary struct {
	AvailableBalance decimal.Decimal `json:"available_balance"`
	LastWithdrawalAt *time.Time      `json:"last_withdrawal_at,omitempty"`
	NextEligibleAt   *time.Time      `json:"next_eligible_at,omitempty"`
	CanWithdraw      bool            `json:"can_withdraw"`
	CooldownDays     int             `json:"cooldown_days"`
}

// Service handles withdrawal requests and cooldown inspection.
type Service interface {
	GetSummary(ctx context.Context, providerID uuid.UUID) (*Summary, error)
	RequestWithdrawal(ctx context.Context, providerID uuid.UUID) (*models.Withdrawal, error)
	ListWithdrawals(ctx context.Context, providerID uuid.UUID) ([]models.Withdrawal, error)
}

type service struct {
	repo   Repository
	wallet wallet.Repository
	tx     txRunner
	outbox outboxPublisher
	cfg    config.WithdrawalConfig

	now func() time.Time
}

// NewService builds the withdrawal service.
func NewService(repo Repository, walletRepo wallet.Repository, tx txRunner, outboxSvc outboxPublisher, cfg config.WithdrawalConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("withdrawal repository required")
	}
	if walletRepo == nil {
		return nil, fmt.Errorf("wallet repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if cfg.CooldownDays < 0 {
		return nil, fmt.Errorf("cooldown days must not be negative")
	}
	return &service{
		repo:   repo,
		wallet: walletRepo,
		tx:     tx,
		outbox: outboxSvc,
		cfg:    cfg,
		now:    time.Now,
	}, nil
}

// GetSummary returns the provider's balance and cooldown position. Providers
// without a wallet yet see a zero balance that is immediately withdrawable
// once credited.
func (s *service) GetSummary(ctx context.Context, providerID uuid.UUID) (*Summary, error) {
	if providerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "provider id required")
	}

	account, err := s.wallet.FindAccountByProvider(ctx, providerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &Summary{
				AvailableBalance: decimal.Zero,
				NextEligibleAt:   s.nextEligibleDate(nil),
				CanWithdraw:      false,
				CooldownDays:     s.cfg.CooldownDays,
			}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load wallet account")
	}

	summary := &Summary{
		AvailableBalance: account.AvailableBalance,
		LastWithdrawalAt: account.LastWithdrawalAt,
		CooldownDays:     s.cfg.CooldownDays,
	}
	summary.NextEligibleAt = s.nextEligibleDate(account.LastWithdrawalAt)
	summary.CanWithdraw = account.AvailableBalance.IsPositive() && s.cooldownCleared(account.LastWithdrawalAt)
	return summary, nil
}

// RequestWithdrawal sweeps the full available balance into a pending
// withdrawal. The balance zeroing, the ledger debit and the cooldown stamp
// commit atomically with the request.
func (s *service) RequestWithdrawal(ctx context.Context, providerID uuid.UUID) (*models.Withdrawal, error) {
	if providerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "provider id required")
	}

	var withdrawal *models.Withdrawal
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		account, err := s.wallet.WithTx(tx).FindAccountByProviderForUpdate(ctx, providerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "wallet account not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock wallet account")
		}

		if !s.cooldownCleared(account.LastWithdrawalAt) {
			next := s.nextEligibleDate(account.LastWithdrawalAt)
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("withdrawal not allowed until %s", next.Format(eligibleDateLayout)))
		}
		if !account.AvailableBalance.IsPositive() {
			return pkgerrors.New(pkgerrors.CodeValidation, "no balance available to withdraw")
		}

		amount := account.AvailableBalance
		today := dateOnly(s.now().UTC())

		withdrawal, err = s.repo.WithTx(tx).Create(ctx, &models.Withdrawal{
			ProviderID:      providerID,
			RequestedAmount: amount,
			NetAmount:       amount,
			Status:          enums.WithdrawalStatusPendente,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create withdrawal")
		}

		entry := &models.WalletTransaction{
			ProviderID:   providerID,
			Type:         enums.WalletTransactionDebitWithdrawal,
			GrossAmount:  amount,
			PlatformFee:  decimal.Zero,
			NetAmount:    amount,
			WithdrawalID: &withdrawal.ID,
		}
		if _, err := s.wallet.WithTx(tx).InsertTransaction(ctx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record withdrawal debit")
		}

		updates := map[string]any{
			"available_balance":  decimal.Zero,
			"last_withdrawal_at": today,
		}
		if err := s.wallet.WithTx(tx).UpdateAccount(ctx, account.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sweep wallet balance")
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventWithdrawalRequested,
			AggregateType: enums.AggregateWithdrawal,
			AggregateID:   withdrawal.ID,
			Actor:         &outbox.ActorRef{Role: enums.ActorRoleProvider, ProviderID: &providerID},
			Data: map[string]any{
				"withdrawal_id": withdrawal.ID,
				"provider_id":   providerID,
				"amount":        amount.StringFixed(2),
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit withdrawal event")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return withdrawal, nil
}

func (s *service) ListWithdrawals(ctx context.Context, providerID uuid.UUID) ([]models.Withdrawal, error) {
	if providerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "provider id required")
	}
	withdrawals, err := s.repo.ListByProvider(ctx, providerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list withdrawals")
	}
	return withdrawals, nil
}

// cooldownCleared reports whether enough full days have elapsed since the
// last withdrawal. The comparison is on calendar dates, not timestamps, so a
// request late on day N and one early on day N+cooldown are both valid.
func (s *service) cooldownCleared(lastWithdrawalAt *time.Time) bool {
	if lastWithdrawalAt == nil {
		return true
	}
	next := dateOnly(*lastWithdrawalAt).AddDate(0, 0, s.cfg.CooldownDays)
	return !dateOnly(s.now().UTC()).Before(next)
}

// nextEligibleDate is today for providers who never withdrew.
func (s *service) nextEligibleDate(lastWithdrawalAt *time.Time) *time.Time {
	if lastWithdrawalAt == nil {
		today := dateOnly(s.now().UTC())
		return &today
	}
	next := dateOnly(*lastWithdrawalAt).AddDate(0, 0, s.cfg.CooldownDays)
	return &next
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
