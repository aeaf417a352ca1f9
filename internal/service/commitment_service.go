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

// CommitmentService locks a fan's coins with a creator for a fixed term.
// Completion returns the principal plus a non-withdrawable loyalty bonus;
// cashing out early costs a penalty that stays with the platform.
type CommitmentService struct {
	repo    *repository.CommitmentRepository
	fancoin *FancoinService
}

func NewCommitmentService(repo *repository.CommitmentRepository, fancoin *FancoinService) *CommitmentService {
	return &CommitmentService{repo: repo, fancoin: fancoin}
}

func validDuration(days int) bool {
	for _, d := range domain.CommitmentDurations {
		if d == days {
			return true
		}
	}
	return false
}

func (s *CommitmentService) Create(fanID, creatorID uint, amount int64, durationDays int) (*models.FanCommitment, error) {
	if fanID == creatorID {
		return nil, domain.ErrSelfTransfer
	}
	if amount < domain.CommitmentMinAmount || amount > domain.CommitmentMaxAmount {
		return nil, domain.Errorf(domain.CodeInvalidAmount,
			"commitment must be between %d and %d FanCoins", domain.CommitmentMinAmount, domain.CommitmentMaxAmount)
	}
	if !validDuration(durationDays) {
		return nil, domain.Errorf(domain.CodeInvalidConfiguration,
			"duration must be one of %v days", domain.CommitmentDurations)
	}

	now := time.Now()
	commitment := &models.FanCommitment{
		FanID:        fanID,
		CreatorID:    creatorID,
		Amount:       amount,
		DurationDays: durationDays,
		Status:       domain.CommitmentStatusActive,
		StartedAt:    now,
		EndsAt:       now.AddDate(0, 0, durationDays),
	}
	if err := s.repo.Create(commitment); err != nil {
		return nil, err
	}
	refID := strconv.FormatUint(uint64(commitment.ID), 10)
	if _, err := s.fancoin.Debit(fanID, amount, false, domain.LedgerCommitmentLock, refID,
		fmt.Sprintf("Locked %d FanCoins for %d days", amount, durationDays)); err != nil {
		// Remove the row so a failed debit leaves no phantom lock.
		if _, settleErr := s.repo.Settle(commitment.ID, domain.CommitmentStatusWithdrawnEarly, 0, &now); settleErr != nil {
			log.Printf("[commitment] cleanup failed (id=%d): %v", commitment.ID, settleErr)
		}
		return nil, err
	}
	return commitment, nil
}

type CompletionResult struct {
	Refunded int64 `json:"refunded"`
	Bonus    int64 `json:"bonus"`
}

// Complete settles a matured commitment: the principal returns to the fan's
// balance and the 5% loyalty bonus lands as non-withdrawable coins. The
// conditional status transition guarantees at most one payout.
func (s *CommitmentService) Complete(commitmentID uint) (*CompletionResult, error) {
	commitment, err := s.repo.GetByID(commitmentID)
	if err == gorm.ErrRecordNotFound {
		return nil, domain.Errorf(domain.CodeNotFound, "commitment %d not found", commitmentID)
	}
	if err != nil {
		return nil, err
	}
	if commitment.Status != domain.CommitmentStatusActive {
		return nil, domain.Errorf(domain.CodeInvalidStatus, "commitment is not active")
	}
	if time.Now().Before(commitment.EndsAt) {
		return nil, domain.Errorf(domain.CodeInvalidStatus, "commitment has not matured yet")
	}

	bonus := int64(math.Floor(float64(commitment.Amount) * domain.CommitmentCompletionBonusRate))
	won, err := s.repo.Settle(commitmentID, domain.CommitmentStatusCompleted, bonus, nil)
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, domain.Errorf(domain.CodeInvalidStatus, "commitment is not active")
	}

	refID := strconv.FormatUint(uint64(commitmentID), 10)
	if _, err := s.fancoin.Refund(commitment.FanID, commitment.Amount, domain.LedgerCommitmentComplete,
		refID, fmt.Sprintf("Commitment completed, %d FanCoins returned", commitment.Amount)); err != nil {
		log.Printf("[commitment] principal return failed (id=%d fan=%d): %v",
			commitmentID, commitment.FanID, err)
		return nil, err
	}
	if bonus > 0 {
		if _, err := s.fancoin.Credit(commitment.FanID, bonus, true, domain.LedgerCommitmentBonus,
			refID, fmt.Sprintf("Loyalty bonus of %d FanCoins (non-withdrawable)", bonus)); err != nil {
			log.Printf("[commitment] bonus credit failed (id=%d fan=%d): %v",
				commitmentID, commitment.FanID, err)
		}
	}
	return &CompletionResult{Refunded: commitment.Amount, Bonus: bonus}, nil
}

type EarlyWithdrawalResult struct {
	Refunded int64 `json:"refunded"`
	Penalty  int64 `json:"penalty"`
}

// WithdrawEarly cancels an active commitment, returning the principal minus
// the 10% penalty.
func (s *CommitmentService) WithdrawEarly(commitmentID, fanID uint) (*EarlyWithdrawalResult, error) {
	commitment, err := s.repo.GetByID(commitmentID)
	if err == gorm.ErrRecordNotFound {
		return nil, domain.Errorf(domain.CodeNotFound, "commitment %d not found", commitmentID)
	}
	if err != nil {
		return nil, err
	}
	if commitment.FanID != fanID {
		return nil, domain.Errorf(domain.CodeForbidden, "commitment belongs to another user")
	}
	if commitment.Status != domain.CommitmentStatusActive {
		return nil, domain.Errorf(domain.CodeInvalidStatus, "commitment is not active")
	}

	penalty := int64(math.Floor(float64(commitment.Amount) * domain.CommitmentEarlyPenaltyRate))
	refund := commitment.Amount - penalty
	now := time.Now()
	won, err := s.repo.Settle(commitmentID, domain.CommitmentStatusWithdrawnEarly, 0, &now)
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, domain.Errorf(domain.CodeInvalidStatus, "commitment is not active")
	}

	refID := strconv.FormatUint(uint64(commitmentID), 10)
	if _, err := s.fancoin.Refund(fanID, refund, domain.LedgerCommitmentEarly, refID,
		fmt.Sprintf("Early withdrawal, %d FanCoins returned (%d penalty)", refund, penalty)); err != nil {
		log.Printf("[commitment] early refund failed (id=%d fan=%d): %v", commitmentID, fanID, err)
		return nil, err
	}
	return &EarlyWithdrawalResult{Refunded: refund, Penalty: penalty}, nil
}

func (s *CommitmentService) ListByFan(fanID uint) ([]models.FanCommitment, error) {
	return s.repo.ListByFan(fanID)
}

// SweepMatured completes commitments past their end date, log-and-continue
// per item.
func (s *CommitmentService) SweepMatured(now time.Time) (processed, total int, err error) {
	matured, err := s.repo.ListMatured(now, 0)
	if err != nil {
		return 0, 0, err
	}
	for _, commitment := range matured {
		total++
		if _, err := s.Complete(commitment.ID); err != nil {
			log.Printf("[commitment] sweep completion failed (id=%d): %v", commitment.ID, err)
			continue
		}
		processed++
	}
	return processed, total, nil
}
