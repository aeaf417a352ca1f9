package repository

import (
	"time"

	"fandreams/internal/domain"
	"fandreams/internal/models"

	"gorm.io/gorm"
)

type CommitmentRepository struct {
	db *gorm.DB
}

func NewCommitmentRepository(db *gorm.DB) *CommitmentRepository {
	return &CommitmentRepository{db: db}
}

func (r *CommitmentRepository) Create(c *models.FanCommitment) error {
	return r.db.Create(c).Error
}

func (r *CommitmentRepository) GetByID(id uint) (*models.FanCommitment, error) {
	var c models.FanCommitment
	if err := r.db.First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CommitmentRepository) ListByFan(fanID uint) ([]models.FanCommitment, error) {
	var commitments []models.FanCommitment
	err := r.db.Where("fan_id = ?", fanID).Order("created_at DESC").Find(&commitments).Error
	return commitments, err
}

// Settle moves an active commitment to a terminal status exactly once.
// The conditional guard keys the principal refund: only the winning call
// credits the wallet.
func (r *CommitmentRepository) Settle(id uint, toStatus string, bonusGranted int64, withdrawnAt *time.Time) (bool, error) {
	updates := map[string]interface{}{
		"status":     toStatus,
		"updated_at": time.Now(),
	}
	if bonusGranted > 0 {
		updates["bonus_granted"] = bonusGranted
	}
	if withdrawnAt != nil {
		updates["withdrawn_at"] = withdrawnAt
	}
	res := r.db.Model(&models.FanCommitment{}).
		Where("id = ? AND status = ?", id, domain.CommitmentStatusActive).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ListMatured returns active commitments past their end date.
func (r *CommitmentRepository) ListMatured(now time.Time, limit int) ([]models.FanCommitment, error) {
	if limit <= 0 {
		limit = 200
	}
	var commitments []models.FanCommitment
	err := r.db.Where("status = ? AND ends_at <= ?", domain.CommitmentStatusActive, now).
		Order("ends_at ASC").Limit(limit).Find(&commitments).Error
	return commitments, err
}
