package db

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LockProviderRow takes an exclusive row lock on the provider inside the
// current transaction, waiting at most lockTimeout. Booking creation runs its
// conflict check and insert behind this lock so two concurrent attempts
// against the same provider serialize. Use IsLockNotAvailable to recognize a
// timed-out wait.
func LockProviderRow(tx *gorm.DB, providerID uuid.UUID, lockTimeout time.Duration) error {
	if tx == nil {
		return fmt.Errorf("transaction required")
	}
	if providerID == uuid.Nil {
		return fmt.Errorf("provider id required")
	}

	if lockTimeout > 0 {
		// SET LOCAL dies with the transaction, so the session timeout is
		// never leaked back to the pool.
		if err := tx.Exec(fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", lockTimeout.Milliseconds())).Error; err != nil {
			return err
		}
	}

	var lockedID uuid.UUID
	res := tx.Raw("SELECT id FROM providers WHERE id = ? FOR UPDATE", providerID).Scan(&lockedID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
