package service

import (
	"fmt"
	"log"
	"time"

	"fandreams/internal/domain"
	"fandreams/internal/models"
	"fandreams/internal/repository"
)

// WalletNotifier pushes balance changes to connected clients. The service
// never blocks on it.
type WalletNotifier interface {
	NotifyBalance(userID uint, balance int64)
}

type nopNotifier struct{}

func (nopNotifier) NotifyBalance(uint, int64) {}

// FancoinService is the transfer engine: the only caller of the wallet
// repository's mutation methods. Every move writes matching ledger rows.
// Secondary effects after a committed debit (recipient credit, ledger rows)
// are best effort: failures are logged and queued for reconciliation, never
// rolled back into the committed primary.
type FancoinService struct {
	wallets  *repository.WalletRepository
	ledger   *repository.LedgerRepository
	users    *repository.UserRepository
	profiles *repository.CreatorProfileRepository
	payments *repository.PaymentRepository
	recon    *repository.ReconciliationRepository
	settings *SettingsService
	vesting  *VestingService
	notifier WalletNotifier
}

func NewFancoinService(
	wallets *repository.WalletRepository,
	ledger *repository.LedgerRepository,
	users *repository.UserRepository,
	profiles *repository.CreatorProfileRepository,
	payments *repository.PaymentRepository,
	recon *repository.ReconciliationRepository,
	settings *SettingsService,
	vesting *VestingService,
) *FancoinService {
	return &FancoinService{
		wallets:  wallets,
		ledger:   ledger,
		users:    users,
		profiles: profiles,
		payments: payments,
		recon:    recon,
		settings: settings,
		vesting:  vesting,
		notifier: nopNotifier{},
	}
}

func (s *FancoinService) SetNotifier(n WalletNotifier) {
	if n != nil {
		s.notifier = n
	}
}

func (s *FancoinService) GetWallet(userID uint) (*models.Wallet, error) {
	return s.wallets.GetOrCreate(userID)
}

func (s *FancoinService) GetTransactions(userID uint, limit, offset int) ([]models.LedgerEntry, error) {
	return s.ledger.ListByUser(userID, limit, offset)
}

// record appends the ledger row for a committed mutation. The mutation is
// already final, so a write failure becomes a reconciliation item instead of
// an error to the caller.
func (s *FancoinService) record(entry *models.LedgerEntry) {
	if err := s.ledger.Record(entry); err != nil {
		log.Printf("[fancoin] ledger write failed (user=%d type=%s ref=%s): %v",
			entry.UserID, entry.Type, entry.ReferenceID, err)
		s.flagForReconciliation("ledger", entry.UserID, entry.Amount, entry.ReferenceID,
			fmt.Sprintf("missing ledger row type=%s: %v", entry.Type, err))
	}
}

func (s *FancoinService) flagForReconciliation(kind string, userID uint, amount int64, refID, detail string) {
	item := &models.ReconciliationItem{
		Kind:        kind,
		UserID:      userID,
		Amount:      amount,
		ReferenceID: refID,
		Detail:      detail,
	}
	if err := s.recon.Create(item); err != nil {
		log.Printf("[fancoin] reconciliation write failed (user=%d ref=%s): %v", userID, refID, err)
	}
}

// Credit adds coins and records the ledger entry.
func (s *FancoinService) Credit(userID uint, amount int64, isBonus bool, entryType, referenceID, description string) (int64, error) {
	newBalance, err := s.wallets.Credit(userID, amount, isBonus)
	if err != nil {
		return 0, err
	}
	s.record(&models.LedgerEntry{
		UserID:       userID,
		Type:         entryType,
		Amount:       amount,
		BalanceAfter: newBalance,
		ReferenceID:  referenceID,
		Description:  description,
	})
	s.notifier.NotifyBalance(userID, newBalance)
	return newBalance, nil
}

// Debit removes coins under the balance guard and records the ledger entry.
func (s *FancoinService) Debit(userID uint, amount int64, withdrawableOnly bool, entryType, referenceID, description string) (int64, error) {
	newBalance, err := s.wallets.Debit(userID, amount, withdrawableOnly)
	if err != nil {
		return 0, err
	}
	s.record(&models.LedgerEntry{
		UserID:       userID,
		Type:         entryType,
		Amount:       -amount,
		BalanceAfter: newBalance,
		ReferenceID:  referenceID,
		Description:  description,
	})
	s.notifier.NotifyBalance(userID, newBalance)
	return newBalance, nil
}

// Refund reverses a previously committed debit with a compensating credit.
func (s *FancoinService) Refund(userID uint, amount int64, entryType, referenceID, description string) (int64, error) {
	newBalance, err := s.wallets.Refund(userID, amount)
	if err != nil {
		return 0, err
	}
	s.record(&models.LedgerEntry{
		UserID:       userID,
		Type:         entryType,
		Amount:       amount,
		BalanceAfter: newBalance,
		ReferenceID:  referenceID,
		Description:  description,
	})
	s.notifier.NotifyBalance(userID, newBalance)
	return newBalance, nil
}

type TransferResult struct {
	Sent            int64 `json:"sent"`
	PlatformFee     int64 `json:"platform_fee"`
	CreatorReceived int64 `json:"creator_received"`
	SenderBalance   int64 `json:"sender_balance"`
}

// Transfer moves coins from one user to another with the platform fee taken
// out of the recipient's share. The sender debit gates the whole operation;
// once it commits, the recipient credit is applied best effort and a failure
// is queued for reconciliation rather than unwinding the debit.
func (s *FancoinService) Transfer(fromID, toID uint, amount int64, debitType, creditType, referenceID, debitDesc, creditDesc string) (*TransferResult, error) {
	if fromID == toID {
		return nil, domain.ErrSelfTransfer
	}
	senderBalance, err := s.Debit(fromID, amount, false, debitType, referenceID, debitDesc)
	if err != nil {
		return nil, err
	}

	fee, creatorAmount := SplitCoins(amount, s.settings.PlatformFeeRate())
	if _, err := s.Credit(toID, creatorAmount, false, creditType, referenceID, creditDesc); err != nil {
		log.Printf("[fancoin] recipient credit failed after debit (from=%d to=%d amount=%d): %v",
			fromID, toID, creatorAmount, err)
		s.flagForReconciliation("credit", toID, creatorAmount, referenceID,
			fmt.Sprintf("recipient credit for %s failed: %v", creditType, err))
	} else if _, err := s.vesting.OnRevenueEvent(toID, creatorAmount); err != nil {
		log.Printf("[fancoin] revenue vesting failed (user=%d): %v", toID, err)
	}

	return &TransferResult{
		Sent:            amount,
		PlatformFee:     fee,
		CreatorReceived: creatorAmount,
		SenderBalance:   senderBalance,
	}, nil
}

func (s *FancoinService) username(userID uint) string {
	u, err := s.users.GetByID(userID)
	if err != nil {
		return "user"
	}
	return u.Username
}

// SendTip transfers coins from a fan to a creator.
func (s *FancoinService) SendTip(fromID, toID uint, amount int64, referenceID string) (*TransferResult, error) {
	return s.Transfer(fromID, toID, amount,
		domain.LedgerTipSent, domain.LedgerTipReceived, referenceID,
		fmt.Sprintf("Tip sent to @%s", s.username(toID)),
		fmt.Sprintf("Tip received from @%s", s.username(fromID)))
}

type PpvResult struct {
	Unlocked      bool  `json:"unlocked"`
	FancoinsSpent int64 `json:"fancoins_spent"`
	NewBalance    int64 `json:"new_balance"`
}

// UnlockPpv charges a fan for a pay-per-view post priced in fiat. The unlock
// is idempotent per (user, post): a second attempt fails AlreadyExists
// without debiting.
func (s *FancoinService) UnlockPpv(userID, creatorID uint, postID string, priceBrl float64) (*PpvResult, error) {
	if userID == creatorID {
		return nil, domain.ErrSelfTransfer
	}
	if priceBrl <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	unlocked, err := s.ledger.ExistsByUserAndReference(userID, postID, domain.LedgerPpvUnlock)
	if err != nil {
		return nil, err
	}
	if unlocked {
		return nil, domain.Errorf(domain.CodeAlreadyExists, "post %s already unlocked", postID)
	}

	rate := s.settings.CoinRate()
	priceCoins := CoinsFromFiat(priceBrl, rate)
	if priceCoins <= 0 {
		return nil, domain.ErrInvalidAmount
	}

	newBalance, err := s.Debit(userID, priceCoins, false, domain.LedgerPpvUnlock, postID,
		fmt.Sprintf("PPV unlock of post by @%s", s.username(creatorID)))
	if err != nil {
		return nil, err
	}

	_, creatorCoins := SplitCoins(priceCoins, s.settings.PlatformFeeRate())
	if _, err := s.Credit(creatorID, creatorCoins, false, domain.LedgerPpvReceived, postID,
		fmt.Sprintf("PPV received from @%s", s.username(userID))); err != nil {
		log.Printf("[fancoin] ppv creator credit failed (creator=%d post=%s): %v", creatorID, postID, err)
		s.flagForReconciliation("credit", creatorID, creatorCoins, postID,
			fmt.Sprintf("ppv creator credit failed: %v", err))
	} else {
		if _, err := s.vesting.OnRevenueEvent(creatorID, creatorCoins); err != nil {
			log.Printf("[fancoin] revenue vesting failed (user=%d): %v", creatorID, err)
		}
	}

	feeBrl, creatorBrl := SplitFiat(priceBrl, s.settings.PlatformFeeRate())
	completedAt := time.Now()
	payment := &models.ExternalPayment{
		OrderID:       fmt.Sprintf("ppv-%d-%s", userID, postID),
		UserID:        userID,
		RecipientID:   &creatorID,
		Type:          domain.PaymentTypePpv,
		Amount:        priceBrl,
		PlatformFee:   feeBrl,
		CreatorAmount: creatorBrl,
		Provider:      "fancoins",
		Status:        domain.PaymentStatusCompleted,
		Metadata:      fmt.Sprintf(`{"postId":%q,"method":"fancoins","fancoinsSpent":%d}`, postID, priceCoins),
		CompletedAt:   &completedAt,
	}
	if err := s.payments.Create(payment); err != nil {
		log.Printf("[fancoin] ppv payment record failed (user=%d post=%s): %v", userID, postID, err)
	}
	if err := s.profiles.AddEarnings(creatorID, creatorBrl); err != nil {
		log.Printf("[fancoin] creator earnings update failed (creator=%d): %v", creatorID, err)
	}

	return &PpvResult{Unlocked: true, FancoinsSpent: priceCoins, NewBalance: newBalance}, nil
}

// CreditPurchase applies a confirmed coin purchase. Idempotent per payment:
// a duplicate confirmation is a success no-op. Purchased coins are
// non-withdrawable, only coins earned from other users can be cashed out.
func (s *FancoinService) CreditPurchase(userID uint, coins int64, label, orderID string) (int64, bool, error) {
	done, err := s.ledger.ExistsByReference(orderID, domain.LedgerPurchase)
	if err != nil {
		return 0, false, err
	}
	if done {
		w, err := s.wallets.GetOrCreate(userID)
		if err != nil {
			return 0, true, err
		}
		return w.Balance, true, nil
	}
	newBalance, err := s.Credit(userID, coins, true, domain.LedgerPurchase, orderID,
		fmt.Sprintf("Purchase of %s", label))
	if err != nil {
		return 0, false, err
	}
	return newBalance, false, nil
}

// CreditEarnings converts a creator's fiat revenue share into coins and
// credits it as withdrawable funds, bumping the lifetime fiat counter and
// feeding revenue vesting.
func (s *FancoinService) CreditEarnings(creatorID uint, fiatAmount float64, entryType, referenceID, description string) (int64, error) {
	coins := CoinsFromFiat(fiatAmount, s.settings.CoinRate())
	if coins <= 0 {
		return 0, nil
	}
	if _, err := s.Credit(creatorID, coins, false, entryType, referenceID, description); err != nil {
		return 0, err
	}
	if err := s.profiles.AddEarnings(creatorID, fiatAmount); err != nil {
		log.Printf("[fancoin] creator earnings update failed (creator=%d): %v", creatorID, err)
	}
	if _, err := s.vesting.OnRevenueEvent(creatorID, coins); err != nil {
		log.Printf("[fancoin] revenue vesting failed (user=%d): %v", creatorID, err)
	}
	return coins, nil
}

// RewardEngagement credits a non-withdrawable engagement reward.
func (s *FancoinService) RewardEngagement(userID uint, rewardType string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, domain.ErrInvalidAmount
	}
	return s.Credit(userID, amount, true, domain.LedgerRewardPrefix+rewardType, "",
		fmt.Sprintf("Engagement reward: %s", rewardType))
}
