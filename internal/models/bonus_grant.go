package models

import "time"

// BonusGrant is a promotional FanCoin grant with a vesting schedule. The coins
// are credited to the wallet's bonus balance up front (spendable on-platform,
// excluded from withdrawal); vesting moves them to the withdrawable portion.
//
// Invariant: unlocked_amount + spent_amount <= total_amount.
// State machine: pending -> active -> fully_vested (terminal).
type BonusGrant struct {
	ID                        uint       `gorm:"primaryKey" json:"id"`
	UserID                    uint       `gorm:"not null;index" json:"user_id"`
	Type                      string     `gorm:"size:40;not null" json:"type"`
	TotalAmount               int64      `gorm:"not null" json:"total_amount"`
	VestingRule               string     `gorm:"size:20;not null;index" json:"vesting_rule"` // never | revenue | time | condition
	VestingRate               float64    `json:"vesting_rate"`                               // revenue rule: fraction of revenue unlocked (0.04 = 4%)
	VestingRevenueRequired    int64      `json:"vesting_revenue_required"`
	VestingRevenueAccumulated int64      `gorm:"not null;default:0" json:"vesting_revenue_accumulated"`
	VestingUnlockAt           *time.Time `json:"vesting_unlock_at"` // time rule: cliff instant
	VestingCondition          string     `gorm:"size:255" json:"vesting_condition"`
	UnlockedAmount            int64      `gorm:"not null;default:0" json:"unlocked_amount"`
	SpentAmount               int64      `gorm:"not null;default:0" json:"spent_amount"`
	VestingComplete           bool       `gorm:"not null;default:false" json:"vesting_complete"`
	Status                    string     `gorm:"size:20;not null;default:'active';index" json:"status"`
	ReferenceID               string     `gorm:"size:64" json:"reference_id"`
	Description               string     `gorm:"size:255" json:"description"`
	CreatedAt                 time.Time  `json:"created_at"`
	UpdatedAt                 time.Time  `json:"updated_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (BonusGrant) TableName() string { return "bonus_grants" }

// Remaining returns the amount still locked in the grant.
func (g *BonusGrant) Remaining() int64 {
	if v := g.TotalAmount - g.UnlockedAmount - g.SpentAmount; v > 0 {
		return v
	}
	return 0
}
