package models

import "time"

// Payout is a creator withdrawal request. The FanCoin amount is debited
// atomically when the row is created; rejection refunds via a compensating
// credit. Terminal states: completed, rejected.
type Payout struct {
	ID                     uint       `gorm:"primaryKey" json:"id"`
	CreatorID              uint       `gorm:"not null;index" json:"creator_id"`
	OrderID                string     `gorm:"size:64;uniqueIndex;not null" json:"order_id"`
	Amount                 float64    `gorm:"not null" json:"amount"` // fiat (BRL)
	FancoinAmount          int64      `gorm:"not null" json:"fancoin_amount"`
	Currency               string     `gorm:"size:3;default:'BRL'" json:"currency"`
	Method                 string     `gorm:"size:20;not null" json:"method"` // pix | bank_transfer | crypto
	Status                 string     `gorm:"size:20;not null;index" json:"status"`
	PixKey                 string     `gorm:"size:140" json:"pix_key,omitempty"`
	CryptoAddress          string     `gorm:"size:140" json:"crypto_address,omitempty"`
	RiskScore              int        `gorm:"not null;default:0" json:"risk_score"`
	RiskFlags              string     `gorm:"size:512" json:"risk_flags"` // JSON array of flag codes
	RequiresManualApproval bool       `gorm:"not null;default:false" json:"requires_manual_approval"`
	ApprovedBy             *uint      `json:"approved_by,omitempty"`
	RejectedReason         string     `gorm:"size:255" json:"rejected_reason,omitempty"`
	ProcessedAt            *time.Time `json:"processed_at,omitempty"`
	CompletedAt            *time.Time `json:"completed_at,omitempty"`
	CreatedAt              time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at"`

	Creator User `gorm:"foreignKey:CreatorID" json:"-"`
}

func (Payout) TableName() string { return "payouts" }
