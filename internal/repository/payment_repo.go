package repository

import (
	"time"

	"fandreams/internal/domain"
	"fandreams/internal/models"

	"gorm.io/gorm"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(p *models.ExternalPayment) error {
	return r.db.Create(p).Error
}

func (r *PaymentRepository) GetByOrderID(orderID string) (*models.ExternalPayment, error) {
	var p models.ExternalPayment
	if err := r.db.Where("order_id = ?", orderID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRepository) GetByID(id uint) (*models.ExternalPayment, error) {
	var p models.ExternalPayment
	if err := r.db.First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRepository) ListByUser(userID uint, limit int) ([]models.ExternalPayment, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var payments []models.ExternalPayment
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").Limit(limit).Find(&payments).Error
	return payments, err
}

// MarkCompleted performs the pending -> completed transition as a single
// conditional UPDATE. Returns true when this call won the transition; false
// means the payment was already completed (duplicate webhook, polling race)
// and the caller must not apply ledger effects again.
func (r *PaymentRepository) MarkCompleted(orderID, providerTxID string) (bool, error) {
	now := time.Now()
	updates := map[string]interface{}{
		"status":       domain.PaymentStatusCompleted,
		"completed_at": &now,
		"updated_at":   now,
	}
	if providerTxID != "" {
		updates["provider_tx_id"] = providerTxID
	}
	res := r.db.Model(&models.ExternalPayment{}).
		Where("order_id = ? AND status <> ?", orderID, domain.PaymentStatusCompleted).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// MarkStatus moves a pending payment to a terminal non-completed status
// (failed, refunded, expired). Completed payments are never downgraded.
func (r *PaymentRepository) MarkStatus(orderID, status string) (bool, error) {
	res := r.db.Model(&models.ExternalPayment{}).
		Where("order_id = ? AND status = ?", orderID, domain.PaymentStatusPending).
		Updates(map[string]interface{}{"status": status, "updated_at": time.Now()})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ExpireStale marks pending payments past their expiry. Returns the number of
// rows expired.
func (r *PaymentRepository) ExpireStale(now time.Time) (int64, error) {
	res := r.db.Model(&models.ExternalPayment{}).
		Where("status = ? AND expires_at IS NOT NULL AND expires_at < ?", domain.PaymentStatusPending, now).
		Updates(map[string]interface{}{"status": domain.PaymentStatusExpired, "updated_at": now})
	return res.RowsAffected, res.Error
}
