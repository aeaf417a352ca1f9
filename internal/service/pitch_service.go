package service

import (
	"fmt"
	"log"
	"math"
	"strconv"
	"time"

	"fandreams/internal/domain"
	"fandreams/internal/models"
	"fandreams/internal/repository"

	"gorm.io/gorm"
)

// PitchService runs FanCoin-denominated crowdfunding campaigns. Contributions
// debit immediately and credit the creator minus platform and ecosystem cuts;
// a campaign that ends below goal refunds every active contribution.
type PitchService struct {
	repo    *repository.PitchRepository
	fancoin *FancoinService
}

func NewPitchService(repo *repository.PitchRepository, fancoin *FancoinService) *PitchService {
	return &PitchService{repo: repo, fancoin: fancoin}
}

type CreateCampaignParams struct {
	Title        string
	Description  string
	GoalAmount   int64
	DurationDays int
}

func (s *PitchService) CreateCampaign(creatorID uint, params CreateCampaignParams) (*models.PitchCampaign, error) {
	if params.GoalAmount < domain.PitchMinGoal || params.GoalAmount > domain.PitchMaxGoal {
		return nil, domain.Errorf(domain.CodeInvalidAmount,
			"goal must be between %d and %d FanCoins", domain.PitchMinGoal, domain.PitchMaxGoal)
	}
	if params.DurationDays == 0 {
		params.DurationDays = domain.PitchDefaultDurationDays
	}
	if params.DurationDays < domain.PitchMinDurationDays || params.DurationDays > domain.PitchMaxDurationDays {
		return nil, domain.Errorf(domain.CodeInvalidConfiguration,
			"duration must be between %d and %d days", domain.PitchMinDurationDays, domain.PitchMaxDurationDays)
	}
	endsAt := time.Now().AddDate(0, 0, params.DurationDays)
	campaign := &models.PitchCampaign{
		CreatorID:    creatorID,
		Title:        params.Title,
		Description:  params.Description,
		GoalAmount:   params.GoalAmount,
		DurationDays: params.DurationDays,
		Status:       domain.CampaignStatusActive,
		EndsAt:       &endsAt,
	}
	if err := s.repo.Create(campaign); err != nil {
		return nil, err
	}
	return campaign, nil
}

func (s *PitchService) Get(campaignID uint) (*models.PitchCampaign, error) {
	c, err := s.repo.GetByID(campaignID)
	if err == gorm.ErrRecordNotFound {
		return nil, domain.Errorf(domain.CodeNotFound, "campaign %d not found", campaignID)
	}
	return c, err
}

func (s *PitchService) ListActive(limit int) ([]models.PitchCampaign, error) {
	return s.repo.ListActive(limit)
}

type ContributionView struct {
	Contribution    *models.PitchContribution `json:"contribution"`
	CreatorReceived int64                     `json:"creator_received"`
	PlatformFee     int64                     `json:"platform_fee"`
	EcosystemFee    int64                     `json:"ecosystem_fee"`
	Funded          bool                      `json:"funded"`
}

// Contribute debits the backer, registers the contribution against the
// still-active campaign, and credits the creator minus the 5% platform cut
// and 1% ecosystem cut. If the campaign settled between debit and
// registration, the debit is refunded.
func (s *PitchService) Contribute(campaignID, userID uint, amount int64) (*ContributionView, error) {
	if amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	campaign, err := s.Get(campaignID)
	if err != nil {
		return nil, err
	}
	if campaign.Status != domain.CampaignStatusActive {
		return nil, domain.Errorf(domain.CodeInvalidStatus, "campaign is not active")
	}
	if campaign.EndsAt != nil && time.Now().After(*campaign.EndsAt) {
		return nil, domain.Errorf(domain.CodeInvalidStatus, "campaign has ended")
	}
	if campaign.CreatorID == userID {
		return nil, domain.ErrSelfTransfer
	}

	refID := strconv.FormatUint(uint64(campaignID), 10)
	alreadyBacked, err := s.repo.HasContribution(campaignID, userID)
	if err != nil {
		return nil, err
	}

	if _, err := s.fancoin.Debit(userID, amount, false, domain.LedgerPitchContribution, refID,
		fmt.Sprintf("Contribution to campaign %q", campaign.Title)); err != nil {
		return nil, err
	}

	contribution := &models.PitchContribution{
		UserID: userID,
		Amount: amount,
		Status: domain.ContributionStatusActive,
	}
	applied, err := s.repo.AddContribution(campaignID, contribution, !alreadyBacked)
	if err != nil || !applied {
		if _, refundErr := s.fancoin.Refund(userID, amount, domain.LedgerPitchRefund, refID,
			"Contribution could not be registered"); refundErr != nil {
			log.Printf("[pitch] refund after failed registration failed (campaign=%d user=%d): %v",
				campaignID, userID, refundErr)
		}
		if err != nil {
			return nil, err
		}
		return nil, domain.Errorf(domain.CodeInvalidStatus, "campaign is not active")
	}

	platformCut := int64(math.Floor(float64(amount) * domain.PitchPlatformFeeRate))
	ecosystemCut := int64(math.Floor(float64(amount) * domain.EcosystemFundRate))
	creatorReceives := amount - platformCut - ecosystemCut
	if _, err := s.fancoin.Credit(campaign.CreatorID, creatorReceives, false,
		domain.LedgerPitchReceived, refID,
		fmt.Sprintf("Contribution received for campaign %q", campaign.Title)); err != nil {
		log.Printf("[pitch] creator credit failed (campaign=%d creator=%d): %v",
			campaignID, campaign.CreatorID, err)
	}

	funded := false
	if campaign.RaisedAmount+amount >= campaign.GoalAmount {
		funded, err = s.repo.TransitionStatus(campaignID, domain.CampaignStatusActive, domain.CampaignStatusFunded)
		if err != nil {
			log.Printf("[pitch] funded transition failed (campaign=%d): %v", campaignID, err)
		}
	}
	return &ContributionView{
		Contribution:    contribution,
		CreatorReceived: creatorReceives,
		PlatformFee:     platformCut,
		EcosystemFee:    ecosystemCut,
		Funded:          funded,
	}, nil
}

// RefundCampaign refunds every active contribution of a failed campaign.
// Each contribution is flipped to refunded at most once before the coins go
// back, so a concurrent or repeated refund pass cannot double-pay.
func (s *PitchService) RefundCampaign(campaignID uint) (int, error) {
	campaign, err := s.Get(campaignID)
	if err != nil {
		return 0, err
	}
	if campaign.Status != domain.CampaignStatusActive && campaign.Status != domain.CampaignStatusFailed {
		return 0, domain.Errorf(domain.CodeInvalidStatus, "campaign cannot be refunded in status %s", campaign.Status)
	}
	contributions, err := s.repo.ListContributions(campaignID)
	if err != nil {
		return 0, err
	}
	refID := strconv.FormatUint(uint64(campaignID), 10)
	refunded := 0
	for _, contribution := range contributions {
		if contribution.Status != domain.ContributionStatusActive {
			continue
		}
		won, err := s.repo.MarkContributionRefunded(contribution.ID)
		if err != nil {
			log.Printf("[pitch] contribution flip failed (id=%d): %v", contribution.ID, err)
			continue
		}
		if !won {
			continue
		}
		if _, err := s.fancoin.Refund(contribution.UserID, contribution.Amount,
			domain.LedgerPitchRefund, refID,
			fmt.Sprintf("Refund for campaign %q", campaign.Title)); err != nil {
			log.Printf("[pitch] contributor refund failed (campaign=%d user=%d): %v",
				campaignID, contribution.UserID, err)
			continue
		}
		refunded++
	}
	if _, err := s.repo.TransitionStatus(campaignID, domain.CampaignStatusActive, domain.CampaignStatusFailed); err != nil {
		log.Printf("[pitch] failed transition error (campaign=%d): %v", campaignID, err)
	}
	return refunded, nil
}

// SweepEnded settles campaigns past their deadline: below goal refunds,
// at-or-above goal flips to funded. One campaign's failure does not abort
// the sweep.
func (s *PitchService) SweepEnded(now time.Time) (processed, total int, err error) {
	campaigns, err := s.repo.ListEndedActive(now, 0)
	if err != nil {
		return 0, 0, err
	}
	for _, campaign := range campaigns {
		total++
		if campaign.RaisedAmount >= campaign.GoalAmount {
			if _, err := s.repo.TransitionStatus(campaign.ID, domain.CampaignStatusActive, domain.CampaignStatusFunded); err != nil {
				log.Printf("[pitch] sweep funded transition failed (campaign=%d): %v", campaign.ID, err)
				continue
			}
			processed++
			continue
		}
		if _, err := s.RefundCampaign(campaign.ID); err != nil {
			log.Printf("[pitch] sweep refund failed (campaign=%d): %v", campaign.ID, err)
			continue
		}
		processed++
	}
	return processed, total, nil
}
