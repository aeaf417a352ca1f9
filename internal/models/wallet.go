package models

import "time"

// Wallet holds a user's FanCoin balances. One row per user, created lazily,
// never deleted. All amounts are integer FanCoins.
//
// Invariants: balance >= 0 and 0 <= bonus_balance <= balance. The withdrawable
// portion is balance - bonus_balance. TotalEarned and TotalSpent are monotonic
// audit counters.
type Wallet struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	Balance      int64     `gorm:"not null;default:0" json:"balance"`
	BonusBalance int64     `gorm:"not null;default:0" json:"bonus_balance"`
	TotalEarned  int64     `gorm:"not null;default:0" json:"total_earned"`
	TotalSpent   int64     `gorm:"not null;default:0" json:"total_spent"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (Wallet) TableName() string { return "fancoin_wallets" }

// Withdrawable returns the portion of the balance eligible for cash-out.
func (w *Wallet) Withdrawable() int64 {
	if v := w.Balance - w.BonusBalance; v > 0 {
		return v
	}
	return 0
}
