package service

import (
	"fmt"
	"log"
	"math"
	"time"

	"fandreams/internal/domain"
	"fandreams/internal/models"
	"fandreams/internal/repository"

	"gorm.io/gorm"
)

// VestingService manages promotional bonus grants. Issuing a grant credits
// the full amount to the wallet's bonus balance up front; vesting then moves
// coins to the withdrawable portion by shrinking bonus_balance only. The total
// balance is never touched by an unlock.
type VestingService struct {
	grants  *repository.BonusGrantRepository
	wallets *repository.WalletRepository
	ledger  *repository.LedgerRepository
}

func NewVestingService(
	grants *repository.BonusGrantRepository,
	wallets *repository.WalletRepository,
	ledger *repository.LedgerRepository,
) *VestingService {
	return &VestingService{grants: grants, wallets: wallets, ledger: ledger}
}

type IssueGrantParams struct {
	UserID      uint
	Type        string
	TotalAmount int64
	VestingRule string
	// VestingRate applies to the revenue rule: the fraction of each revenue
	// event that unlocks (0.04 = 4%).
	VestingRate      float64
	VestingUnlockAt  *time.Time
	VestingCondition string
	ReferenceID      string
	Description      string
}

// Issue creates the grant and credits the coins as non-withdrawable funds.
func (s *VestingService) Issue(params IssueGrantParams) (*models.BonusGrant, error) {
	if params.TotalAmount <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	switch params.VestingRule {
	case domain.VestingNever, domain.VestingCondition:
	case domain.VestingRevenue:
		if params.VestingRate <= 0 || params.VestingRate > 1 {
			return nil, domain.Errorf(domain.CodeInvalidConfiguration,
				"revenue vesting rate must be in (0,1], got %v", params.VestingRate)
		}
	case domain.VestingTime:
		if params.VestingUnlockAt == nil {
			return nil, domain.Errorf(domain.CodeInvalidConfiguration,
				"time vesting requires an unlock instant")
		}
	default:
		return nil, domain.Errorf(domain.CodeInvalidConfiguration,
			"unknown vesting rule %q", params.VestingRule)
	}

	grant := &models.BonusGrant{
		UserID:           params.UserID,
		Type:             params.Type,
		TotalAmount:      params.TotalAmount,
		VestingRule:      params.VestingRule,
		VestingRate:      params.VestingRate,
		VestingUnlockAt:  params.VestingUnlockAt,
		VestingCondition: params.VestingCondition,
		ReferenceID:      params.ReferenceID,
		Description:      params.Description,
		Status:           domain.GrantStatusActive,
	}
	if params.VestingRule == domain.VestingRevenue {
		grant.VestingRevenueRequired = int64(math.Ceil(float64(params.TotalAmount) / params.VestingRate))
	}
	if err := s.grants.Create(grant); err != nil {
		return nil, err
	}

	newBalance, err := s.wallets.Credit(params.UserID, params.TotalAmount, true)
	if err != nil {
		return nil, err
	}

	description := params.Description
	if description == "" {
		description = fmt.Sprintf("Bonus: %s (%s vesting)", params.Type, params.VestingRule)
	}
	if err := s.ledger.Record(&models.LedgerEntry{
		UserID:       params.UserID,
		Type:         domain.LedgerBonusPrefix + params.Type,
		Amount:       params.TotalAmount,
		BalanceAfter: newBalance,
		ReferenceID:  params.ReferenceID,
		Description:  description,
	}); err != nil {
		log.Printf("[vesting] ledger write failed for grant %d: %v", grant.ID, err)
	}
	return grant, nil
}

type UnlockResult struct {
	GrantID  uint  `json:"grant_id"`
	Unlocked int64 `json:"unlocked"`
	Complete bool  `json:"complete"`
}

// OnRevenueEvent is called whenever a user earns revenue, with the revenue in
// coins. Each active revenue grant unlocks floor(revenue * rate), capped at
// what is still locked.
func (s *VestingService) OnRevenueEvent(userID uint, revenueCoins int64) ([]UnlockResult, error) {
	if revenueCoins <= 0 {
		return nil, nil
	}
	grants, err := s.grants.ListActiveByUserAndRule(userID, domain.VestingRevenue)
	if err != nil {
		return nil, err
	}
	var results []UnlockResult
	for i := range grants {
		grant := &grants[i]
		if grant.VestingRate <= 0 {
			continue
		}
		unlock := int64(math.Floor(float64(revenueCoins) * grant.VestingRate))
		if unlock <= 0 {
			continue
		}
		if remaining := grant.Remaining(); unlock > remaining {
			unlock = remaining
		}
		if unlock <= 0 {
			continue
		}

		grant.UnlockedAmount += unlock
		grant.VestingRevenueAccumulated += revenueCoins
		if grant.UnlockedAmount >= grant.TotalAmount-grant.SpentAmount {
			grant.VestingComplete = true
			grant.Status = domain.GrantStatusFullyVested
		}
		if err := s.grants.Save(grant); err != nil {
			log.Printf("[vesting] save failed for grant %d: %v", grant.ID, err)
			continue
		}
		if err := s.wallets.Unlock(userID, unlock); err != nil {
			log.Printf("[vesting] unlock failed for grant %d: %v", grant.ID, err)
			continue
		}
		results = append(results, UnlockResult{
			GrantID:  grant.ID,
			Unlocked: unlock,
			Complete: grant.VestingComplete,
		})
	}
	return results, nil
}

// OnScheduleTick releases time-rule grants past their cliff. The whole
// remaining amount unlocks at once. One grant's failure does not abort the
// batch; returns processed and total counts.
func (s *VestingService) OnScheduleTick(now time.Time) (processed, total int, err error) {
	grants, err := s.grants.ListDueTimeGrants(now, 0)
	if err != nil {
		return 0, 0, err
	}
	for i := range grants {
		grant := &grants[i]
		total++
		remaining := grant.Remaining()
		if remaining <= 0 {
			grant.VestingComplete = true
			grant.Status = domain.GrantStatusFullyVested
			if err := s.grants.Save(grant); err != nil {
				log.Printf("[vesting] save failed for grant %d: %v", grant.ID, err)
				continue
			}
			processed++
			continue
		}
		grant.UnlockedAmount = grant.TotalAmount - grant.SpentAmount
		grant.VestingComplete = true
		grant.Status = domain.GrantStatusFullyVested
		if err := s.grants.Save(grant); err != nil {
			log.Printf("[vesting] save failed for grant %d: %v", grant.ID, err)
			continue
		}
		if err := s.wallets.Unlock(grant.UserID, remaining); err != nil {
			log.Printf("[vesting] unlock failed for grant %d: %v", grant.ID, err)
			continue
		}
		processed++
	}
	return processed, total, nil
}

// CompleteConditionVesting unlocks everything still locked in a grant on an
// external signal (campaign delivered, milestone hit).
func (s *VestingService) CompleteConditionVesting(grantID uint) (*models.BonusGrant, error) {
	grant, err := s.grants.GetByID(grantID)
	if err == gorm.ErrRecordNotFound {
		return nil, domain.Errorf(domain.CodeNotFound, "bonus grant %d not found", grantID)
	}
	if err != nil {
		return nil, err
	}
	if grant.VestingComplete {
		return grant, nil
	}
	remaining := grant.Remaining()
	grant.UnlockedAmount = grant.TotalAmount - grant.SpentAmount
	grant.VestingComplete = true
	grant.Status = domain.GrantStatusFullyVested
	if err := s.grants.Save(grant); err != nil {
		return nil, err
	}
	if remaining > 0 {
		if err := s.wallets.Unlock(grant.UserID, remaining); err != nil {
			return nil, err
		}
	}
	return grant, nil
}

func (s *VestingService) ListByUser(userID uint) ([]models.BonusGrant, error) {
	return s.grants.ListByUser(userID)
}
