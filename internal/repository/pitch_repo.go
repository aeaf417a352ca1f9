package repository

import (
	"time"

	"fandreams/internal/domain"
	"fandreams/internal/models"

	"gorm.io/gorm"
)

type PitchRepository struct {
	db *gorm.DB
}

func NewPitchRepository(db *gorm.DB) *PitchRepository {
	return &PitchRepository{db: db}
}

func (r *PitchRepository) Create(c *models.PitchCampaign) error {
	return r.db.Create(c).Error
}

func (r *PitchRepository) GetByID(id uint) (*models.PitchCampaign, error) {
	var c models.PitchCampaign
	if err := r.db.First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *PitchRepository) ListActive(limit int) ([]models.PitchCampaign, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var campaigns []models.PitchCampaign
	err := r.db.Where("status = ?", domain.CampaignStatusActive).
		Order("created_at DESC").Limit(limit).Find(&campaigns).Error
	return campaigns, err
}

func (r *PitchRepository) ListByCreator(creatorID uint) ([]models.PitchCampaign, error) {
	var campaigns []models.PitchCampaign
	err := r.db.Where("creator_id = ?", creatorID).
		Order("created_at DESC").Find(&campaigns).Error
	return campaigns, err
}

// AddContribution registers a contribution against a still-active campaign.
// The raised-amount increment is guarded on status so contributions cannot
// land on a settled campaign; the contribution row is written in the same
// transaction. Returns false when the campaign is not active.
func (r *PitchRepository) AddContribution(campaignID uint, contribution *models.PitchContribution, firstTime bool) (bool, error) {
	applied := false
	err := r.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"raised_amount": gorm.Expr("raised_amount + ?", contribution.Amount),
			"updated_at":    time.Now(),
		}
		if firstTime {
			updates["total_contributors"] = gorm.Expr("total_contributors + 1")
		}
		res := tx.Model(&models.PitchCampaign{}).
			Where("id = ? AND status = ?", campaignID, domain.CampaignStatusActive).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		contribution.CampaignID = campaignID
		if err := tx.Create(contribution).Error; err != nil {
			return err
		}
		applied = true
		return nil
	})
	return applied, err
}

func (r *PitchRepository) HasContribution(campaignID, userID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.PitchContribution{}).
		Where("campaign_id = ? AND user_id = ?", campaignID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *PitchRepository) ListContributions(campaignID uint) ([]models.PitchContribution, error) {
	var contributions []models.PitchContribution
	err := r.db.Where("campaign_id = ?", campaignID).
		Order("created_at ASC").Find(&contributions).Error
	return contributions, err
}

// TransitionStatus moves a campaign from one status to another as a
// conditional UPDATE. Returns true when this call won the transition.
func (r *PitchRepository) TransitionStatus(campaignID uint, from, to string) (bool, error) {
	res := r.db.Model(&models.PitchCampaign{}).
		Where("id = ? AND status = ?", campaignID, from).
		Updates(map[string]interface{}{"status": to, "updated_at": time.Now()})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// MarkContributionRefunded flips a contribution to refunded at most once.
func (r *PitchRepository) MarkContributionRefunded(id uint) (bool, error) {
	now := time.Now()
	res := r.db.Model(&models.PitchContribution{}).
		Where("id = ? AND status = ?", id, domain.ContributionStatusActive).
		Updates(map[string]interface{}{
			"status":      domain.ContributionStatusRefunded,
			"refunded_at": &now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ListEndedActive returns active campaigns whose deadline has passed.
func (r *PitchRepository) ListEndedActive(now time.Time, limit int) ([]models.PitchCampaign, error) {
	if limit <= 0 {
		limit = 100
	}
	var campaigns []models.PitchCampaign
	err := r.db.Where("status = ? AND ends_at IS NOT NULL AND ends_at <= ?",
		domain.CampaignStatusActive, now).
		Order("ends_at ASC").Limit(limit).Find(&campaigns).Error
	return campaigns, err
}
