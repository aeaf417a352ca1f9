package repository

import (
	"fandreams/internal/models"

	"gorm.io/gorm"
)

// LedgerRepository appends and reads the immutable transaction history.
// There is no update or delete path on ledger rows.
type LedgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

func (r *LedgerRepository) Record(entry *models.LedgerEntry) error {
	return r.db.Create(entry).Error
}

// ListByUser returns entries in reverse chronological order.
func (r *LedgerRepository) ListByUser(userID uint, limit, offset int) ([]models.LedgerEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var entries []models.LedgerEntry
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).Offset(offset).
		Find(&entries).Error
	return entries, err
}

// ExistsByReference reports whether an entry with the given reference and type
// was already recorded. Used as the idempotency probe for external events.
func (r *LedgerRepository) ExistsByReference(referenceID, entryType string) (bool, error) {
	var count int64
	err := r.db.Model(&models.LedgerEntry{}).
		Where("reference_id = ? AND type = ?", referenceID, entryType).
		Count(&count).Error
	return count > 0, err
}

// ExistsByUserAndReference is the per-user variant, for events keyed to a
// shared object id such as a post.
func (r *LedgerRepository) ExistsByUserAndReference(userID uint, referenceID, entryType string) (bool, error) {
	var count int64
	err := r.db.Model(&models.LedgerEntry{}).
		Where("user_id = ? AND reference_id = ? AND type = ?", userID, referenceID, entryType).
		Count(&count).Error
	return count > 0, err
}

// SumByUserAndType returns the signed sum of entries of one type for a user.
func (r *LedgerRepository) SumByUserAndType(userID uint, entryType string) (int64, error) {
	var total int64
	err := r.db.Model(&models.LedgerEntry{}).
		Where("user_id = ? AND type = ?", userID, entryType).
		Select("COALESCE(SUM(amount), 0)").Scan(&total).Error
	return total, err
}
