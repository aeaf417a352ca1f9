package models

import "time"

// ReconciliationItem records a secondary-effect failure after a committed
// primary mutation (e.g. a creator credit that failed after the buyer debit
// succeeded). The primary is never rolled back; an out-of-band job retries
// these items instead.
type ReconciliationItem struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Kind        string     `gorm:"size:40;not null" json:"kind"` // credit | commission | treasury
	UserID      uint       `gorm:"not null;index" json:"user_id"`
	Amount      int64      `gorm:"not null" json:"amount"`
	ReferenceID string     `gorm:"size:64;index" json:"reference_id"`
	Detail      string     `gorm:"size:512" json:"detail"`
	Resolved    bool       `gorm:"not null;default:false;index" json:"resolved"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func (ReconciliationItem) TableName() string { return "reconciliation_items" }
