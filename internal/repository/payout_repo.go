package repository

import (
	"time"

	"fandreams/internal/domain"
	"fandreams/internal/models"

	"gorm.io/gorm"
)

type PayoutRepository struct {
	db *gorm.DB
}

func NewPayoutRepository(db *gorm.DB) *PayoutRepository {
	return &PayoutRepository{db: db}
}

func (r *PayoutRepository) Create(p *models.Payout) error {
	return r.db.Create(p).Error
}

func (r *PayoutRepository) GetByID(id uint) (*models.Payout, error) {
	var p models.Payout
	if err := r.db.First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PayoutRepository) GetByOrderID(orderID string) (*models.Payout, error) {
	var p models.Payout
	if err := r.db.Where("order_id = ?", orderID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PayoutRepository) ListByCreator(creatorID uint, limit int) ([]models.Payout, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var payouts []models.Payout
	err := r.db.Where("creator_id = ?", creatorID).
		Order("created_at DESC").Limit(limit).Find(&payouts).Error
	return payouts, err
}

func (r *PayoutRepository) ListPendingApproval(limit int) ([]models.Payout, error) {
	if limit <= 0 || limit > 200 {
		limit = 100
	}
	var payouts []models.Payout
	err := r.db.Where("status = ?", domain.PayoutStatusPendingApproval).
		Order("created_at ASC").Limit(limit).Find(&payouts).Error
	return payouts, err
}

// CountSince counts withdrawal requests created since the instant, any status.
func (r *PayoutRepository) CountSince(creatorID uint, since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.Payout{}).
		Where("creator_id = ? AND created_at >= ?", creatorID, since).
		Count(&count).Error
	return count, err
}

// SumAmountSince sums the fiat amount of requests created since the instant.
func (r *PayoutRepository) SumAmountSince(creatorID uint, since time.Time) (float64, error) {
	var total float64
	err := r.db.Model(&models.Payout{}).
		Where("creator_id = ? AND created_at >= ?", creatorID, since).
		Select("COALESCE(SUM(amount), 0)").Scan(&total).Error
	return total, err
}

// HasCompletedSince reports whether the creator has a completed payout created
// after the instant. Drives the cooldown flag.
func (r *PayoutRepository) HasCompletedSince(creatorID uint, since time.Time) (bool, error) {
	var count int64
	err := r.db.Model(&models.Payout{}).
		Where("creator_id = ? AND created_at >= ? AND status = ?",
			creatorID, since, domain.PayoutStatusCompleted).
		Count(&count).Error
	return count > 0, err
}

// SumCompleted returns the creator's lifetime completed payout total in fiat.
func (r *PayoutRepository) SumCompleted(creatorID uint) (float64, error) {
	var total float64
	err := r.db.Model(&models.Payout{}).
		Where("creator_id = ? AND status = ?", creatorID, domain.PayoutStatusCompleted).
		Select("COALESCE(SUM(amount), 0)").Scan(&total).Error
	return total, err
}

// Approve releases a payout held for manual review back into the processing
// queue. Returns false when the payout is not awaiting approval.
func (r *PayoutRepository) Approve(id, adminID uint) (bool, error) {
	now := time.Now()
	res := r.db.Model(&models.Payout{}).
		Where("id = ? AND status = ?", id, domain.PayoutStatusPendingApproval).
		Updates(map[string]interface{}{
			"status":       domain.PayoutStatusPending,
			"approved_by":  adminID,
			"processed_at": &now,
			"updated_at":   now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Complete marks a pending payout as disbursed, keyed by the order id echoed
// back from the payout provider. At most one call wins.
func (r *PayoutRepository) Complete(orderID string) (bool, error) {
	now := time.Now()
	res := r.db.Model(&models.Payout{}).
		Where("order_id = ? AND status = ?", orderID, domain.PayoutStatusPending).
		Updates(map[string]interface{}{
			"status":       domain.PayoutStatusCompleted,
			"completed_at": &now,
			"updated_at":   now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Reject moves a payout to rejected if it is still awaiting action. The
// conditional guard makes the compensating refund safe to key off the result:
// only the call that wins the transition refunds.
func (r *PayoutRepository) Reject(id, adminID uint, reason string) (bool, error) {
	now := time.Now()
	res := r.db.Model(&models.Payout{}).
		Where("id = ? AND status IN ?", id,
			[]string{domain.PayoutStatusPending, domain.PayoutStatusPendingApproval}).
		Updates(map[string]interface{}{
			"status":          domain.PayoutStatusRejected,
			"approved_by":     adminID,
			"rejected_reason": reason,
			"processed_at":    &now,
			"updated_at":      now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
