package repository

import (
	"time"

	"fandreams/internal/domain"
	"fandreams/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CreatorBonusRepository struct {
	db *gorm.DB
}

func NewCreatorBonusRepository(db *gorm.DB) *CreatorBonusRepository {
	return &CreatorBonusRepository{db: db}
}

func (r *CreatorBonusRepository) GetByCreator(creatorID uint) (*models.CreatorBonus, error) {
	var b models.CreatorBonus
	err := r.db.Where("creator_id = ?", creatorID).First(&b).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// CreateIfMissing inserts the bonus offer once per creator.
func (r *CreatorBonusRepository) CreateIfMissing(b *models.CreatorBonus) error {
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(b).Error
}

func (r *CreatorBonusRepository) MarkClaimable(creatorID uint) (bool, error) {
	res := r.db.Model(&models.CreatorBonus{}).
		Where("creator_id = ? AND status = ?", creatorID, domain.CreatorBonusPending).
		Updates(map[string]interface{}{"status": domain.CreatorBonusClaimable, "updated_at": time.Now()})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Claim wins the claimable -> claimed transition at most once, so the coin
// credit keyed off it cannot double-apply.
func (r *CreatorBonusRepository) Claim(creatorID uint) (bool, error) {
	now := time.Now()
	res := r.db.Model(&models.CreatorBonus{}).
		Where("creator_id = ? AND status = ?", creatorID, domain.CreatorBonusClaimable).
		Updates(map[string]interface{}{
			"status":     domain.CreatorBonusClaimed,
			"claimed_at": &now,
			"updated_at": now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
