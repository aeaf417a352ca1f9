package models

import "time"

// CreatorBonus is the one-shot welcome bonus offered when a user becomes a
// creator. It starts pending, becomes claimable once the subscriber
// requirement is met, and claiming credits non-withdrawable coins.
type CreatorBonus struct {
	ID                  uint       `gorm:"primaryKey" json:"id"`
	CreatorID           uint       `gorm:"uniqueIndex;not null" json:"creator_id"`
	BonusCoins          int64      `gorm:"not null" json:"bonus_coins"`
	RequiredSubscribers int        `gorm:"not null;default:1" json:"required_subscribers"`
	Status              string     `gorm:"size:20;not null;default:'pending'" json:"status"` // pending | claimable | claimed
	ClaimedAt           *time.Time `json:"claimed_at,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

func (CreatorBonus) TableName() string { return "creator_bonuses" }
