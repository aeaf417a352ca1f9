package service

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"fandreams/internal/domain"
	"fandreams/internal/models"
	"fandreams/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Risk flag weights. The model is deliberately linear and additive so every
// heuristic stays independently testable and the score is explainable to the
// admin reviewing a payout.
const (
	scoreDailyLimit     = 100
	scoreDailyAmount    = 100
	scoreCooldown       = 50
	scoreAboveThreshold = 30
	scoreVeryNewAccount = 40
	scoreNewAccount     = 15
	scoreHighRatio      = 25
	scoreFullDrain      = 20
	scoreNewCreator     = 35

	manualApprovalScore = 50
)

type RiskAssessment struct {
	Score   int      `json:"score"`
	Flags   []string `json:"flags"`
	Blocked bool     `json:"blocked"`
}

// WithdrawalService gates payout creation behind the risk engine and owns the
// payout lifecycle. The coin debit happens atomically at request time; a
// rejection refunds through the ledgered compensating-credit path.
type WithdrawalService struct {
	wallets  *repository.WalletRepository
	payouts  *repository.PayoutRepository
	profiles *repository.CreatorProfileRepository
	fancoin  *FancoinService
	settings *SettingsService
}

func NewWithdrawalService(
	wallets *repository.WalletRepository,
	payouts *repository.PayoutRepository,
	profiles *repository.CreatorProfileRepository,
	fancoin *FancoinService,
	settings *SettingsService,
) *WithdrawalService {
	return &WithdrawalService{
		wallets:  wallets,
		payouts:  payouts,
		profiles: profiles,
		fancoin:  fancoin,
		settings: settings,
	}
}

// AssessRisk scores a withdrawal request. Each heuristic fires independently;
// only the two daily-limit flags block outright.
func (s *WithdrawalService) AssessRisk(creatorID uint, fiatAmount float64, coinAmount int64) (*RiskAssessment, error) {
	assessment := &RiskAssessment{Flags: []string{}}
	now := time.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	dailyCount, err := s.payouts.CountSince(creatorID, dayStart)
	if err != nil {
		return nil, err
	}
	if dailyCount >= int64(s.settings.MaxDailyWithdrawals()) {
		assessment.Flags = append(assessment.Flags, domain.FlagDailyLimitExceeded)
		assessment.Score += scoreDailyLimit
	}

	dailyTotal, err := s.payouts.SumAmountSince(creatorID, dayStart)
	if err != nil {
		return nil, err
	}
	if dailyTotal+fiatAmount > s.settings.MaxDailyAmount() {
		assessment.Flags = append(assessment.Flags, domain.FlagDailyAmountExceeded)
		assessment.Score += scoreDailyAmount
	}

	inCooldown, err := s.payouts.HasCompletedSince(creatorID, now.Add(-s.settings.Cooldown()))
	if err != nil {
		return nil, err
	}
	if inCooldown {
		assessment.Flags = append(assessment.Flags, domain.FlagCooldownActive)
		assessment.Score += scoreCooldown
	}

	if fiatAmount >= s.settings.ManualApprovalThreshold() {
		assessment.Flags = append(assessment.Flags, domain.FlagAboveManualThreshold)
		assessment.Score += scoreAboveThreshold
	}

	wallet, err := s.wallets.GetByUserID(creatorID)
	if err != nil && err != gorm.ErrRecordNotFound {
		return nil, err
	}
	if wallet != nil {
		accountAge := now.Sub(wallet.CreatedAt)
		if accountAge < 7*24*time.Hour {
			assessment.Flags = append(assessment.Flags, domain.FlagVeryNewAccount)
			assessment.Score += scoreVeryNewAccount
		} else if accountAge < 30*24*time.Hour {
			assessment.Flags = append(assessment.Flags, domain.FlagNewAccount)
			assessment.Score += scoreNewAccount
		}

		if wallet.TotalEarned > 0 && float64(coinAmount)/float64(wallet.TotalEarned) > 0.9 {
			assessment.Flags = append(assessment.Flags, domain.FlagHighWithdrawalRatio)
			assessment.Score += scoreHighRatio
		}
		if withdrawable := wallet.Withdrawable(); withdrawable > 0 &&
			float64(coinAmount)/float64(withdrawable) > 0.95 {
			assessment.Flags = append(assessment.Flags, domain.FlagFullWithdrawableDrain)
			assessment.Score += scoreFullDrain
		}
	}

	profile, err := s.profiles.GetByUserID(creatorID)
	if err != nil && err != gorm.ErrRecordNotFound {
		return nil, err
	}
	if profile != nil {
		creatorAge := now.Sub(profile.CreatedAt)
		if creatorAge < 30*24*time.Hour && profile.TotalEarnings < fiatAmount*2 {
			assessment.Flags = append(assessment.Flags, domain.FlagNewCreatorLowEarnings)
			assessment.Score += scoreNewCreator
		}
	}

	for _, flag := range assessment.Flags {
		if flag == domain.FlagDailyLimitExceeded || flag == domain.FlagDailyAmountExceeded {
			assessment.Blocked = true
			break
		}
	}
	return assessment, nil
}

type WithdrawalRequest struct {
	Method        string
	CoinAmount    int64
	PixKey        string
	CryptoAddress string
}

type WithdrawalResult struct {
	Payout        *models.Payout  `json:"payout"`
	NeedsApproval bool            `json:"needs_approval"`
	Risk          *RiskAssessment `json:"risk"`
	EstimatedBrl  float64         `json:"estimated_brl"`
}

// Request validates, scores, and atomically debits a withdrawal. Only the
// withdrawable portion of the balance can fund it, so the debit guard
// includes balance - bonus_balance >= amount.
func (s *WithdrawalService) Request(creatorID uint, req WithdrawalRequest) (*WithdrawalResult, error) {
	if req.CoinAmount <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	rate := s.settings.CoinRate()
	brlAmount := FiatFromCoins(req.CoinAmount, rate)
	if minPayout := s.settings.MinPayout(); brlAmount < minPayout {
		return nil, domain.Errorf(domain.CodeBelowMinPayout, "minimum payout is R$ %.2f", minPayout)
	}

	switch req.Method {
	case domain.WithdrawMethodPix:
		if req.PixKey == "" {
			return nil, domain.Errorf(domain.CodeInvalidConfiguration, "pix key is required")
		}
	case domain.WithdrawMethodCrypto:
		if req.CryptoAddress == "" {
			return nil, domain.Errorf(domain.CodeInvalidConfiguration, "crypto address is required")
		}
	case domain.WithdrawMethodBankTransfer:
	default:
		return nil, domain.Errorf(domain.CodeInvalidConfiguration, "unknown withdrawal method %q", req.Method)
	}

	wallet, err := s.wallets.GetOrCreate(creatorID)
	if err != nil {
		return nil, err
	}
	if wallet.Balance < req.CoinAmount {
		return nil, domain.ErrInsufficientBalance
	}
	if wallet.Withdrawable() < req.CoinAmount {
		return nil, domain.Errorf(domain.CodeBonusNotWithdrawable,
			"withdrawable balance is %d FanCoins; purchased coins, bonuses and rewards can only be spent on-platform",
			wallet.Withdrawable())
	}

	risk, err := s.AssessRisk(creatorID, brlAmount, req.CoinAmount)
	if err != nil {
		return nil, err
	}
	if risk.Blocked {
		return nil, domain.Errorf(domain.CodeWithdrawalBlocked,
			"daily withdrawal limit reached (flags: %v)", risk.Flags)
	}
	needsApproval := brlAmount >= s.settings.ManualApprovalThreshold() || risk.Score >= manualApprovalScore

	orderID := uuid.New().String()
	if _, err := s.fancoin.Debit(creatorID, req.CoinAmount, true, domain.LedgerWithdrawal, orderID,
		fmt.Sprintf("Withdrawal of R$ %.2f via %s", brlAmount, req.Method)); err != nil {
		return nil, err
	}

	status := domain.PayoutStatusPending
	if needsApproval {
		status = domain.PayoutStatusPendingApproval
	}
	flagsJSON, _ := json.Marshal(risk.Flags)
	payout := &models.Payout{
		CreatorID:              creatorID,
		OrderID:                orderID,
		Amount:                 brlAmount,
		FancoinAmount:          req.CoinAmount,
		Currency:               "BRL",
		Method:                 req.Method,
		Status:                 status,
		PixKey:                 req.PixKey,
		CryptoAddress:          req.CryptoAddress,
		RiskScore:              risk.Score,
		RiskFlags:              string(flagsJSON),
		RequiresManualApproval: needsApproval,
	}
	if err := s.payouts.Create(payout); err != nil {
		// The debit is committed; restore it rather than leave coins limbo.
		log.Printf("[withdrawal] payout insert failed (creator=%d order=%s), refunding: %v",
			creatorID, orderID, err)
		if _, refundErr := s.fancoin.Refund(creatorID, req.CoinAmount, domain.LedgerWithdrawalRefund,
			orderID, "Withdrawal request failed"); refundErr != nil {
			log.Printf("[withdrawal] compensating refund failed (creator=%d order=%s): %v",
				creatorID, orderID, refundErr)
		}
		return nil, err
	}

	return &WithdrawalResult{
		Payout:        payout,
		NeedsApproval: needsApproval,
		Risk:          risk,
		EstimatedBrl:  brlAmount,
	}, nil
}

// Approve releases a held payout into the processing queue.
func (s *WithdrawalService) Approve(payoutID, adminID uint) error {
	ok, err := s.payouts.Approve(payoutID, adminID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.Errorf(domain.CodeInvalidStatus, "payout %d is not awaiting approval", payoutID)
	}
	return nil
}

// Reject finalizes a payout as rejected and refunds the coins. The refund is
// keyed to winning the status transition, so concurrent rejects cannot
// double-refund.
func (s *WithdrawalService) Reject(payoutID, adminID uint, reason string) error {
	payout, err := s.payouts.GetByID(payoutID)
	if err == gorm.ErrRecordNotFound {
		return domain.Errorf(domain.CodeNotFound, "payout %d not found", payoutID)
	}
	if err != nil {
		return err
	}
	ok, err := s.payouts.Reject(payoutID, adminID, reason)
	if err != nil {
		return err
	}
	if !ok {
		return domain.Errorf(domain.CodeInvalidStatus, "payout %d cannot be rejected", payoutID)
	}
	if _, err := s.fancoin.Refund(payout.CreatorID, payout.FancoinAmount,
		domain.LedgerWithdrawalRefund, payout.OrderID,
		fmt.Sprintf("Withdrawal rejected: %s", reason)); err != nil {
		log.Printf("[withdrawal] refund failed (payout=%d creator=%d): %v",
			payoutID, payout.CreatorID, err)
		return err
	}
	return nil
}

// CompleteFromProvider settles a pending payout on the disbursement
// provider's confirmation. Duplicate confirmations are no-ops.
func (s *WithdrawalService) CompleteFromProvider(orderID string) (bool, error) {
	return s.payouts.Complete(orderID)
}

func (s *WithdrawalService) ListByCreator(creatorID uint, limit int) ([]models.Payout, error) {
	return s.payouts.ListByCreator(creatorID, limit)
}

func (s *WithdrawalService) ListPendingApproval(limit int) ([]models.Payout, error) {
	return s.payouts.ListPendingApproval(limit)
}

type EarningsSummary struct {
	Wallet            *models.Wallet  `json:"wallet"`
	CoinRate          float64         `json:"coin_rate"`
	BalanceBrl        float64         `json:"balance_brl"`
	Withdrawable      int64           `json:"withdrawable"`
	WithdrawableBrl   float64         `json:"withdrawable_brl"`
	TotalWithdrawnBrl float64         `json:"total_withdrawn_brl"`
	Payouts           []models.Payout `json:"payouts"`
}

func (s *WithdrawalService) Earnings(creatorID uint) (*EarningsSummary, error) {
	wallet, err := s.wallets.GetOrCreate(creatorID)
	if err != nil {
		return nil, err
	}
	rate := s.settings.CoinRate()
	withdrawn, err := s.payouts.SumCompleted(creatorID)
	if err != nil {
		return nil, err
	}
	payouts, err := s.payouts.ListByCreator(creatorID, 50)
	if err != nil {
		return nil, err
	}
	return &EarningsSummary{
		Wallet:            wallet,
		CoinRate:          rate,
		BalanceBrl:        FiatFromCoins(wallet.Balance, rate),
		Withdrawable:      wallet.Withdrawable(),
		WithdrawableBrl:   FiatFromCoins(wallet.Withdrawable(), rate),
		TotalWithdrawnBrl: withdrawn,
		Payouts:           payouts,
	}, nil
}
