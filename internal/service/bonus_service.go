package service

import (
	"log"

	"fandreams/internal/domain"
	"fandreams/internal/models"
	"fandreams/internal/repository"
)

// CreatorBonusService handles the welcome bonus offered to new creators. The
// offer is created when the feature flag is on, becomes claimable once the
// creator reaches the subscriber threshold, and pays out non-withdrawable
// coins exactly once on claim.
type CreatorBonusService struct {
	repo     *repository.CreatorBonusRepository
	profiles *repository.CreatorProfileRepository
	fancoin  *FancoinService
	settings *SettingsService
}

func NewCreatorBonusService(
	repo *repository.CreatorBonusRepository,
	profiles *repository.CreatorProfileRepository,
	fancoin *FancoinService,
	settings *SettingsService,
) *CreatorBonusService {
	return &CreatorBonusService{repo: repo, profiles: profiles, fancoin: fancoin, settings: settings}
}

// CreateForCreator registers the welcome bonus offer when the feature is
// enabled. Safe to call repeatedly; the insert is once per creator.
func (s *CreatorBonusService) CreateForCreator(creatorID uint) error {
	if !s.settings.CreatorBonusEnabled() {
		return nil
	}
	bonus := &models.CreatorBonus{
		CreatorID:           creatorID,
		BonusCoins:          s.settings.CreatorBonusCoins(),
		RequiredSubscribers: s.settings.CreatorBonusRequiredSubs(),
		Status:              domain.CreatorBonusPending,
	}
	if err := s.repo.CreateIfMissing(bonus); err != nil {
		return err
	}
	return s.CheckEligibility(creatorID)
}

// CheckEligibility promotes a pending offer to claimable once the creator has
// enough subscribers. Called after subscription settlements.
func (s *CreatorBonusService) CheckEligibility(creatorID uint) error {
	bonus, err := s.repo.GetByCreator(creatorID)
	if err != nil {
		return err
	}
	if bonus == nil || bonus.Status != domain.CreatorBonusPending {
		return nil
	}
	profile, err := s.profiles.GetByUserID(creatorID)
	if err != nil {
		return err
	}
	if profile.TotalSubscribers < bonus.RequiredSubscribers {
		return nil
	}
	if _, err := s.repo.MarkClaimable(creatorID); err != nil {
		return err
	}
	return nil
}

// Claim pays out a claimable bonus. The claimable -> claimed transition keys
// the credit, so concurrent claims pay at most once.
func (s *CreatorBonusService) Claim(creatorID uint) (int64, error) {
	bonus, err := s.repo.GetByCreator(creatorID)
	if err != nil {
		return 0, err
	}
	if bonus == nil {
		return 0, domain.Errorf(domain.CodeNotFound, "no welcome bonus for this creator")
	}
	switch bonus.Status {
	case domain.CreatorBonusPending:
		return 0, domain.Errorf(domain.CodeInvalidStatus,
			"bonus unlocks at %d subscribers", bonus.RequiredSubscribers)
	case domain.CreatorBonusClaimed:
		return 0, domain.Errorf(domain.CodeAlreadyExists, "bonus already claimed")
	}
	won, err := s.repo.Claim(creatorID)
	if err != nil {
		return 0, err
	}
	if !won {
		return 0, domain.Errorf(domain.CodeAlreadyExists, "bonus already claimed")
	}
	balance, err := s.fancoin.Credit(creatorID, bonus.BonusCoins, true,
		domain.LedgerBonusPrefix+"welcome", "", "Creator welcome bonus")
	if err != nil {
		log.Printf("[bonus] welcome credit failed after claim (creator=%d coins=%d): %v",
			creatorID, bonus.BonusCoins, err)
		return 0, err
	}
	return balance, nil
}

func (s *CreatorBonusService) Status(creatorID uint) (*models.CreatorBonus, error) {
	return s.repo.GetByCreator(creatorID)
}
