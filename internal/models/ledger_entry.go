package models

import "time"

// LedgerEntry is one immutable row of a wallet's transaction history.
// Amount is signed (positive = credit, negative = debit). BalanceAfter is the
// wallet balance captured in the same transaction as the causing mutation, so
// the history is replayable. Rows are insert-only and never mutated.
type LedgerEntry struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"not null;index" json:"user_id"`
	Type         string    `gorm:"size:40;not null;index:idx_ledger_ref_type" json:"type"`
	Amount       int64     `gorm:"not null" json:"amount"`
	BalanceAfter int64     `gorm:"not null" json:"balance_after"`
	ReferenceID  string    `gorm:"size:64;index:idx_ledger_ref_type" json:"reference_id"` // payment/post/campaign/commitment id
	Description  string    `gorm:"size:255" json:"description"`
	CreatedAt    time.Time `gorm:"index" json:"created_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (LedgerEntry) TableName() string { return "fancoin_transactions" }
