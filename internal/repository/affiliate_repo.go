package repository

import (
	"time"

	"fandreams/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AffiliateRepository struct {
	db *gorm.DB
}

func NewAffiliateRepository(db *gorm.DB) *AffiliateRepository {
	return &AffiliateRepository{db: db}
}

func (r *AffiliateRepository) GetProgram(creatorID uint) (*models.AffiliateProgram, error) {
	var p models.AffiliateProgram
	if err := r.db.Where("creator_id = ?", creatorID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// SaveProgram upserts the program and replaces its level table in one
// transaction, so readers never observe a half-configured program.
func (r *AffiliateRepository) SaveProgram(p *models.AffiliateProgram, levels []models.AffiliateLevel) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "creator_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"is_active", "max_levels", "updated_at"}),
		}).Create(p).Error; err != nil {
			return err
		}
		if err := tx.Where("creator_id = ?", p.CreatorID).Delete(&models.AffiliateLevel{}).Error; err != nil {
			return err
		}
		for i := range levels {
			levels[i].ID = 0
			levels[i].CreatorID = p.CreatorID
		}
		return tx.Create(&levels).Error
	})
}

func (r *AffiliateRepository) GetLevels(creatorID uint) ([]models.AffiliateLevel, error) {
	var levels []models.AffiliateLevel
	err := r.db.Where("creator_id = ?", creatorID).Order("level ASC").Find(&levels).Error
	return levels, err
}

func (r *AffiliateRepository) CreateLink(link *models.AffiliateLink) error {
	return r.db.Create(link).Error
}

func (r *AffiliateRepository) GetLinkByCode(code string) (*models.AffiliateLink, error) {
	var link models.AffiliateLink
	if err := r.db.Where("code = ?", code).First(&link).Error; err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *AffiliateRepository) GetLink(affiliateUserID, creatorID uint) (*models.AffiliateLink, error) {
	var link models.AffiliateLink
	err := r.db.Where("affiliate_user_id = ? AND creator_id = ?", affiliateUserID, creatorID).
		First(&link).Error
	if err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *AffiliateRepository) IncrementClicks(linkID uint) error {
	return r.db.Model(&models.AffiliateLink{}).Where("id = ?", linkID).
		Update("clicks", gorm.Expr("clicks + 1")).Error
}

func (r *AffiliateRepository) IncrementConversions(linkID uint) error {
	return r.db.Model(&models.AffiliateLink{}).Where("id = ?", linkID).
		Update("conversions", gorm.Expr("conversions + 1")).Error
}

func (r *AffiliateRepository) AddLinkEarnings(linkID uint, fiat float64) error {
	return r.db.Model(&models.AffiliateLink{}).Where("id = ?", linkID).
		Update("total_earned", gorm.Expr("total_earned + ?", fiat)).Error
}

func (r *AffiliateRepository) ListLinksByAffiliate(affiliateUserID uint) ([]models.AffiliateLink, error) {
	var links []models.AffiliateLink
	err := r.db.Where("affiliate_user_id = ?", affiliateUserID).
		Order("created_at DESC").Find(&links).Error
	return links, err
}

func (r *AffiliateRepository) CountReferralsByCreator(creatorID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.AffiliateReferral{}).
		Where("creator_id = ?", creatorID).Count(&count).Error
	return count, err
}

// CreateReferral inserts the referral snapshot; the unique index on
// (referred_user_id, creator_id) makes a second registration a no-op.
// Returns true when the row was inserted.
func (r *AffiliateRepository) CreateReferral(ref *models.AffiliateReferral) (bool, error) {
	res := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(ref)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *AffiliateRepository) GetReferral(referredUserID, creatorID uint) (*models.AffiliateReferral, error) {
	var ref models.AffiliateReferral
	err := r.db.Where("referred_user_id = ? AND creator_id = ?", referredUserID, creatorID).
		First(&ref).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ref, nil
}

// CreateCommission relies on the unique (payment_id, level) index to make
// commission crediting idempotent per payment and level. Returns true when
// this call inserted the row.
func (r *AffiliateRepository) CreateCommission(c *models.AffiliateCommission) (bool, error) {
	res := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(c)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *AffiliateRepository) ListCommissionsByAffiliate(affiliateUserID uint, since time.Time) ([]models.AffiliateCommission, error) {
	var commissions []models.AffiliateCommission
	err := r.db.Where("affiliate_user_id = ? AND created_at >= ?", affiliateUserID, since).
		Order("created_at DESC").Find(&commissions).Error
	return commissions, err
}
