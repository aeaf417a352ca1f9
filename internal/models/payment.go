package models

import "time"

// ExternalPayment mirrors a payment at a PSP. OrderID is our reference handed
// to the provider and echoed back in webhooks. The pending -> completed status
// transition is the single irreversible trigger for ledger effects: it is
// performed as one conditional UPDATE, so concurrent webhook deliveries and
// polling races apply effects exactly once.
type ExternalPayment struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	OrderID       string     `gorm:"size:64;uniqueIndex;not null" json:"order_id"`
	UserID        uint       `gorm:"not null;index" json:"user_id"`
	RecipientID   *uint      `gorm:"index" json:"recipient_id,omitempty"` // creator, for revenue payments
	Type          string     `gorm:"size:30;not null" json:"type"`
	Amount        float64    `gorm:"not null" json:"amount"` // gross fiat
	PlatformFee   float64    `gorm:"not null;default:0" json:"platform_fee"`
	CreatorAmount float64    `gorm:"not null;default:0" json:"creator_amount"`
	Provider      string     `gorm:"size:30;not null" json:"provider"`
	ProviderTxID  string     `gorm:"size:128;index" json:"provider_tx_id"`
	Status        string     `gorm:"size:20;not null;index" json:"status"`
	Metadata      string     `gorm:"type:text" json:"metadata"` // JSON
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (ExternalPayment) TableName() string { return "payments" }
