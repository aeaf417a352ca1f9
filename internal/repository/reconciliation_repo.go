package repository

import (
	"time"

	"fandreams/internal/models"

	"gorm.io/gorm"
)

type ReconciliationRepository struct {
	db *gorm.DB
}

func NewReconciliationRepository(db *gorm.DB) *ReconciliationRepository {
	return &ReconciliationRepository{db: db}
}

func (r *ReconciliationRepository) Create(item *models.ReconciliationItem) error {
	return r.db.Create(item).Error
}

func (r *ReconciliationRepository) ListUnresolved(limit int) ([]models.ReconciliationItem, error) {
	if limit <= 0 {
		limit = 100
	}
	var items []models.ReconciliationItem
	err := r.db.Where("resolved = ?", false).
		Order("created_at ASC").Limit(limit).Find(&items).Error
	return items, err
}

func (r *ReconciliationRepository) MarkResolved(id uint) error {
	now := time.Now()
	return r.db.Model(&models.ReconciliationItem{}).Where("id = ?", id).
		Updates(map[string]interface{}{"resolved": true, "resolved_at": &now}).Error
}
