package service

import (
	"fmt"
	"log"
	"math/rand"
	"strconv"
	"time"

	"fandreams/internal/domain"
	"fandreams/internal/models"
	"fandreams/internal/repository"

	"gorm.io/gorm"
)

// AffiliateService manages creator referral programs with up to two
// commission levels. L1 is the direct referrer; L2 is whoever recruited the
// L1 affiliate to the same creator, snapshotted when the referral is created.
type AffiliateService struct {
	repo    *repository.AffiliateRepository
	fancoin *FancoinService
}

func NewAffiliateService(repo *repository.AffiliateRepository, fancoin *FancoinService) *AffiliateService {
	return &AffiliateService{repo: repo, fancoin: fancoin}
}

type ProgramView struct {
	Program *models.AffiliateProgram `json:"program"`
	Levels  []models.AffiliateLevel  `json:"levels"`
}

func (s *AffiliateService) GetProgram(creatorID uint) (*ProgramView, error) {
	program, err := s.repo.GetProgram(creatorID)
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	levels, err := s.repo.GetLevels(creatorID)
	if err != nil {
		return nil, err
	}
	return &ProgramView{Program: program, Levels: levels}, nil
}

type LevelConfig struct {
	Level   int     `json:"level" binding:"required"`
	Percent float64 `json:"percent" binding:"required"`
}

// ConfigureProgram upserts the creator's program. Levels must be 1..2 in
// order and the combined commission may not exceed 50% of the creator gross;
// the cap is enforced here, at configuration time, not at distribution time.
func (s *AffiliateService) ConfigureProgram(creatorID uint, isActive bool, levels []LevelConfig) (*ProgramView, error) {
	if len(levels) == 0 || len(levels) > domain.AffiliateMaxLevels {
		return nil, domain.Errorf(domain.CodeInvalidConfiguration,
			"program must define between 1 and %d levels", domain.AffiliateMaxLevels)
	}
	var total float64
	rows := make([]models.AffiliateLevel, 0, len(levels))
	for i, lvl := range levels {
		if lvl.Level != i+1 {
			return nil, domain.Errorf(domain.CodeInvalidConfiguration,
				"levels must be consecutive starting at 1")
		}
		if lvl.Percent < 1 || lvl.Percent > domain.AffiliateMaxTotalPercent {
			return nil, domain.Errorf(domain.CodeInvalidConfiguration,
				"level %d commission must be between 1%% and %.0f%%", lvl.Level, domain.AffiliateMaxTotalPercent)
		}
		total += lvl.Percent
		rows = append(rows, models.AffiliateLevel{Level: lvl.Level, Percent: lvl.Percent})
	}
	if total > domain.AffiliateMaxTotalPercent {
		return nil, domain.Errorf(domain.CodeInvalidConfiguration,
			"combined commission %.1f%% exceeds the %.0f%% cap", total, domain.AffiliateMaxTotalPercent)
	}
	program := &models.AffiliateProgram{
		CreatorID: creatorID,
		IsActive:  isActive,
		MaxLevels: len(levels),
	}
	if err := s.repo.SaveProgram(program, rows); err != nil {
		return nil, err
	}
	return s.GetProgram(creatorID)
}

const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnpqrstuvwxyz23456789"

func generateCode() string {
	b := make([]byte, domain.AffiliateCodeLength)
	for i := range b {
		b[i] = codeAlphabet[rand.Intn(len(codeAlphabet))]
	}
	return string(b)
}

// CreateLink returns the affiliate's link for a creator, creating it when
// absent. The code retries on collision up to a fixed bound.
func (s *AffiliateService) CreateLink(affiliateUserID, creatorID uint) (*models.AffiliateLink, error) {
	if affiliateUserID == creatorID {
		return nil, domain.Errorf(domain.CodeForbidden, "you cannot be your own affiliate")
	}
	view, err := s.GetProgram(creatorID)
	if err != nil {
		return nil, err
	}
	if view == nil || !view.Program.IsActive {
		return nil, domain.Errorf(domain.CodeNotFound, "creator has no active affiliate program")
	}
	if existing, err := s.repo.GetLink(affiliateUserID, creatorID); err == nil {
		return existing, nil
	} else if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	code := generateCode()
	for attempt := 0; attempt < domain.MaxAffiliateCodeAttempts; attempt++ {
		if _, err := s.repo.GetLinkByCode(code); err == gorm.ErrRecordNotFound {
			break
		} else if err != nil {
			return nil, err
		}
		code = generateCode()
	}
	link := &models.AffiliateLink{
		AffiliateUserID: affiliateUserID,
		CreatorID:       creatorID,
		Code:            code,
	}
	if err := s.repo.CreateLink(link); err != nil {
		return nil, err
	}
	return link, nil
}

func (s *AffiliateService) TrackClick(code string) error {
	link, err := s.repo.GetLinkByCode(code)
	if err == gorm.ErrRecordNotFound {
		return nil
	}
	if err != nil {
		return err
	}
	return s.repo.IncrementClicks(link.ID)
}

// RegisterReferral binds a new user to the affiliate chain for one creator.
// The L2 slot snapshots the L1 affiliate's own recruiter for this creator at
// this moment; a chain formed later does not retroactively apply.
func (s *AffiliateService) RegisterReferral(referredUserID, creatorID uint, refCode string) (*models.AffiliateReferral, error) {
	link, err := s.repo.GetLinkByCode(refCode)
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if link.CreatorID != creatorID || link.AffiliateUserID == referredUserID {
		return nil, nil
	}

	referral := &models.AffiliateReferral{
		ReferredUserID: referredUserID,
		CreatorID:      creatorID,
		L1AffiliateID:  link.AffiliateUserID,
		LinkID:         link.ID,
	}
	upstream, err := s.repo.GetReferral(link.AffiliateUserID, creatorID)
	if err != nil {
		return nil, err
	}
	if upstream != nil {
		referral.L2AffiliateID = &upstream.L1AffiliateID
	}

	created, err := s.repo.CreateReferral(referral)
	if err != nil {
		return nil, err
	}
	if !created {
		return nil, nil
	}
	if err := s.repo.IncrementConversions(link.ID); err != nil {
		log.Printf("[affiliate] conversion bump failed (link=%d): %v", link.ID, err)
	}
	return referral, nil
}

type CommissionDistribution struct {
	AffiliateUserID uint    `json:"affiliate_user_id"`
	Level           int     `json:"level"`
	AmountFiat      float64 `json:"amount_fiat"`
	Coins           int64   `json:"coins"`
}

// DistributeCommissions credits affiliate commissions for a settled payment.
// L1 is computed before L2 and each level is keyed by the unique
// (payment, level) commission row, so re-settlement of the same payment
// cannot double-credit. A missing L2 chain silently skips that level.
// Returns the total commission in fiat, to be deducted from the creator net.
func (s *AffiliateService) DistributeCommissions(paymentID uint, buyerID, creatorID uint, creatorGrossBrl float64) (float64, []CommissionDistribution, error) {
	referral, err := s.repo.GetReferral(buyerID, creatorID)
	if err != nil {
		return 0, nil, err
	}
	if referral == nil {
		return 0, nil, nil
	}
	view, err := s.GetProgram(creatorID)
	if err != nil {
		return 0, nil, err
	}
	if view == nil || !view.Program.IsActive || len(view.Levels) == 0 {
		return 0, nil, nil
	}

	coinRate := s.fancoin.settings.CoinRate()
	var total float64
	var distributions []CommissionDistribution
	for _, lvl := range view.Levels {
		var affiliateID uint
		switch lvl.Level {
		case 1:
			affiliateID = referral.L1AffiliateID
		case 2:
			if referral.L2AffiliateID == nil {
				continue
			}
			affiliateID = *referral.L2AffiliateID
		default:
			continue
		}

		amountBrl := Round2(creatorGrossBrl * lvl.Percent / 100)
		coins := CoinsFromFiat(amountBrl, coinRate)
		if coins <= 0 {
			continue
		}
		created, err := s.repo.CreateCommission(&models.AffiliateCommission{
			AffiliateUserID: affiliateID,
			CreatorID:       creatorID,
			PaymentID:       paymentID,
			Level:           lvl.Level,
			Percent:         lvl.Percent,
			AmountFiat:      amountBrl,
			CoinsCredited:   coins,
			Status:          "credited",
		})
		if err != nil {
			return total, distributions, err
		}
		if !created {
			// Already credited by a previous settlement of this payment.
			total += amountBrl
			continue
		}

		if _, err := s.fancoin.CreditEarnings(affiliateID, amountBrl, domain.LedgerAffiliateCommission,
			strconv.FormatUint(uint64(paymentID), 10),
			fmt.Sprintf("Affiliate commission (%.1f%%, level %d)", lvl.Percent, lvl.Level)); err != nil {
			log.Printf("[affiliate] commission credit failed (payment=%d level=%d affiliate=%d): %v",
				paymentID, lvl.Level, affiliateID, err)
		}
		if lvl.Level == 1 && referral.LinkID != 0 {
			if err := s.repo.AddLinkEarnings(referral.LinkID, amountBrl); err != nil {
				log.Printf("[affiliate] link earnings bump failed (link=%d): %v", referral.LinkID, err)
			}
		}
		total += amountBrl
		distributions = append(distributions, CommissionDistribution{
			AffiliateUserID: affiliateID,
			Level:           lvl.Level,
			AmountFiat:      amountBrl,
			Coins:           coins,
		})
	}
	return total, distributions, nil
}

type AffiliateDashboard struct {
	Links       []models.AffiliateLink        `json:"links"`
	Commissions []models.AffiliateCommission  `json:"commissions"`
	TotalEarned float64                       `json:"total_earned"`
	TotalCoins  int64                         `json:"total_coins"`
}

func (s *AffiliateService) Dashboard(userID uint) (*AffiliateDashboard, error) {
	links, err := s.repo.ListLinksByAffiliate(userID)
	if err != nil {
		return nil, err
	}
	commissions, err := s.repo.ListCommissionsByAffiliate(userID, time.Time{})
	if err != nil {
		return nil, err
	}
	dash := &AffiliateDashboard{Links: links, Commissions: commissions}
	for _, c := range commissions {
		dash.TotalEarned += c.AmountFiat
		dash.TotalCoins += c.CoinsCredited
	}
	return dash, nil
}
