package models

import "time"

// AffiliateProgram is a creator's referral program configuration. Levels are
// stored separately; combined commission across levels is capped at 50% and
// validated when the program is configured.
type AffiliateProgram struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatorID uint      `gorm:"uniqueIndex;not null" json:"creator_id"`
	IsActive  bool      `gorm:"not null;default:false" json:"is_active"`
	MaxLevels int       `gorm:"not null;default:1" json:"max_levels"` // 1 or 2
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (AffiliateProgram) TableName() string { return "affiliate_programs" }

type AffiliateLevel struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	CreatorID uint    `gorm:"not null;uniqueIndex:uniq_creator_level" json:"creator_id"`
	Level     int     `gorm:"not null;uniqueIndex:uniq_creator_level" json:"level"` // 1 = direct referrer, 2 = recruiter of referrer
	Percent   float64 `gorm:"not null" json:"percent"`
}

func (AffiliateLevel) TableName() string { return "affiliate_levels" }

type AffiliateLink struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	AffiliateUserID uint      `gorm:"not null;uniqueIndex:uniq_affiliate_creator" json:"affiliate_user_id"`
	CreatorID       uint      `gorm:"not null;uniqueIndex:uniq_affiliate_creator" json:"creator_id"`
	Code            string    `gorm:"size:20;uniqueIndex;not null" json:"code"`
	Clicks          int64     `gorm:"not null;default:0" json:"clicks"`
	Conversions     int64     `gorm:"not null;default:0" json:"conversions"`
	TotalEarned     float64   `gorm:"not null;default:0" json:"total_earned"` // fiat
	CreatedAt       time.Time `json:"created_at"`
}

func (AffiliateLink) TableName() string { return "affiliate_links" }

// AffiliateReferral snapshots the referral chain when a referred user signs
// up: L1 is the link owner, L2 is whoever recruited the L1 affiliate to this
// creator at that moment (nil when there is no such chain).
type AffiliateReferral struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ReferredUserID uint      `gorm:"not null;uniqueIndex:uniq_referred_creator" json:"referred_user_id"`
	CreatorID      uint      `gorm:"not null;uniqueIndex:uniq_referred_creator" json:"creator_id"`
	L1AffiliateID  uint      `gorm:"not null;index" json:"l1_affiliate_id"`
	L2AffiliateID  *uint     `gorm:"index" json:"l2_affiliate_id,omitempty"`
	LinkID         uint      `json:"link_id"`
	CreatedAt      time.Time `json:"created_at"`
}

func (AffiliateReferral) TableName() string { return "affiliate_referrals" }

// AffiliateCommission is one credited commission. Unique per (payment, level)
// so repeated settlement of the same payment cannot double-credit.
type AffiliateCommission struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	AffiliateUserID uint      `gorm:"not null;index" json:"affiliate_user_id"`
	CreatorID       uint      `gorm:"not null;index" json:"creator_id"`
	PaymentID       uint      `gorm:"not null;uniqueIndex:uniq_payment_level" json:"payment_id"`
	Level           int       `gorm:"not null;uniqueIndex:uniq_payment_level" json:"level"`
	Percent         float64   `gorm:"not null" json:"percent"`
	AmountFiat      float64   `gorm:"not null" json:"amount_fiat"`
	CoinsCredited   int64     `gorm:"not null" json:"coins_credited"`
	Status          string    `gorm:"size:20;not null;default:'credited'" json:"status"`
	CreatedAt       time.Time `json:"created_at"`
}

func (AffiliateCommission) TableName() string { return "affiliate_commissions" }
