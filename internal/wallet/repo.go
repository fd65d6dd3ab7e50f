// Package wallet settles provider earnings: balance accounting plus the
// immutable ledger that anchors settlement idempotency.
package wallet

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ajeitai/marketplace-backend/pkg/db/models"
)

// Repository defines persistence operations for wallet accounts and ledger
// entries.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindAccountByProvider(ctx context.Context, providerID uuid.UUID) (*models.WalletAccount, error)
	FindAccountByProviderForUpdate(ctx context.Context, providerID uuid.UUID) (*models.WalletAccount, error)
	CreateAccount(ctx context.Context, account *models.WalletAccount) (*models.WalletAccount, error)
	UpdateAccount(ctx context.Context, id uuid.UUID, updates map[string]any) error
	CreditExistsForPayment(ctx context.Context, paymentID uuid.UUID) (bool, error)
	InsertTransaction(ctx context.Context, entry *models.WalletTransaction) (*models.WalletTransaction, error)
	ListTransactions(ctx context.Context, providerID uuid.UUID) ([]models.WalletTransaction, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a wallet repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindAccountByProvider(ctx context.Context, providerID uuid.UUID) (*models.WalletAccount, error) {
	var account models.WalletAccount
	if err := r.db.WithContext(ctx).Where("provider_id = ?", providerID).First(&account).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

// FindAccountByProviderForUpdate locks the account row for the rest of the
// transaction so concurrent credits and withdrawals serialize.
func (r *repository) FindAccountByProviderForUpdate(ctx context.Context, providerID uuid.UUID) (*models.WalletAccount, error) {
	var account models.WalletAccount
	err := r.db.WithContext(ctx).
		Raw("SELECT * FROM wallet_accounts WHERE provider_id = ? FOR UPDATE", providerID).
		Scan(&account).Error
	if err != nil {
		return nil, err
	}
	if account.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &account, nil
}

func (r *repository) CreateAccount(ctx context.Context, account *models.WalletAccount) (*models.WalletAccount, error) {
	if err := r.db.WithContext(ctx).Create(account).Error; err != nil {
		return nil, err
	}
	return account, nil
}

func (r *repository) UpdateAccount(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.WalletAccount{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) CreditExistsForPayment(ctx context.Context, paymentID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.WalletTransaction{}).
		Where("payment_id = ?", paymentID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) InsertTransaction(ctx context.Context, entry *models.WalletTransaction) (*models.WalletTransaction, error) {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

func (r *repository) ListTransactions(ctx context.Context, providerID uuid.UUID) ([]models.WalletTransaction, error) {
	var entries []models.WalletTransaction
	err := r.db.WithContext(ctx).
		Where("provider_id = ?", providerID).
		Order("created_at DESC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
