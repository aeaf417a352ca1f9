package models

import "time"

// FanCommitment locks a fan's FanCoins with a creator for a fixed period.
// Completion refunds the principal and grants a non-withdrawable loyalty
// bonus; early withdrawal refunds minus a penalty.
type FanCommitment struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	FanID        uint       `gorm:"not null;index" json:"fan_id"`
	CreatorID    uint       `gorm:"not null;index" json:"creator_id"`
	Amount       int64      `gorm:"not null" json:"amount"`
	DurationDays int        `gorm:"not null" json:"duration_days"`
	Status       string     `gorm:"size:20;not null;index" json:"status"` // active | completed | withdrawn_early
	BonusGranted int64      `gorm:"not null;default:0" json:"bonus_granted"`
	StartedAt    time.Time  `json:"started_at"`
	EndsAt       time.Time  `gorm:"index" json:"ends_at"`
	WithdrawnAt  *time.Time `json:"withdrawn_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (FanCommitment) TableName() string { return "fan_commitments" }
