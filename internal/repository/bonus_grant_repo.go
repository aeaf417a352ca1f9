package repository

import (
	"time"

	"fandreams/internal/domain"
	"fandreams/internal/models"

	"gorm.io/gorm"
)

type BonusGrantRepository struct {
	db *gorm.DB
}

func NewBonusGrantRepository(db *gorm.DB) *BonusGrantRepository {
	return &BonusGrantRepository{db: db}
}

func (r *BonusGrantRepository) Create(g *models.BonusGrant) error {
	return r.db.Create(g).Error
}

func (r *BonusGrantRepository) GetByID(id uint) (*models.BonusGrant, error) {
	var g models.BonusGrant
	if err := r.db.First(&g, id).Error; err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *BonusGrantRepository) Save(g *models.BonusGrant) error {
	return r.db.Save(g).Error
}

func (r *BonusGrantRepository) ListByUser(userID uint) ([]models.BonusGrant, error) {
	var grants []models.BonusGrant
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&grants).Error
	return grants, err
}

// ListActiveByUser returns active grants oldest first, the order in which
// spending and revenue vesting consume them.
func (r *BonusGrantRepository) ListActiveByUser(userID uint) ([]models.BonusGrant, error) {
	var grants []models.BonusGrant
	err := r.db.Where("user_id = ? AND status = ?", userID, domain.GrantStatusActive).
		Order("created_at ASC, id ASC").Find(&grants).Error
	return grants, err
}

func (r *BonusGrantRepository) ListActiveByUserAndRule(userID uint, rule string) ([]models.BonusGrant, error) {
	var grants []models.BonusGrant
	err := r.db.Where("user_id = ? AND status = ? AND vesting_rule = ?",
		userID, domain.GrantStatusActive, rule).
		Order("created_at ASC, id ASC").Find(&grants).Error
	return grants, err
}

// ListDueTimeGrants returns active time-rule grants whose cliff has passed.
func (r *BonusGrantRepository) ListDueTimeGrants(now time.Time, limit int) ([]models.BonusGrant, error) {
	if limit <= 0 {
		limit = 200
	}
	var grants []models.BonusGrant
	err := r.db.Where("status = ? AND vesting_rule = ? AND vesting_unlock_at IS NOT NULL AND vesting_unlock_at <= ?",
		domain.GrantStatusActive, domain.VestingTime, now).
		Order("vesting_unlock_at ASC").Limit(limit).Find(&grants).Error
	return grants, err
}

// ExistsByReference reports whether a grant of the given type already
// references the id. Guards one-shot grants like the creator signup bonus.
func (r *BonusGrantRepository) ExistsByReference(referenceID, grantType string) (bool, error) {
	var count int64
	err := r.db.Model(&models.BonusGrant{}).
		Where("reference_id = ? AND type = ?", referenceID, grantType).
		Count(&count).Error
	return count > 0, err
}
