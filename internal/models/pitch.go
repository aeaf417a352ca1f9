package models

import "time"

// PitchCampaign is a crowdfunding campaign denominated in FanCoins.
type PitchCampaign struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	CreatorID         uint       `gorm:"not null;index" json:"creator_id"`
	Title             string     `gorm:"size:140;not null" json:"title"`
	Description       string     `gorm:"type:text" json:"description"`
	GoalAmount        int64      `gorm:"not null" json:"goal_amount"`
	RaisedAmount      int64      `gorm:"not null;default:0" json:"raised_amount"`
	TotalContributors int        `gorm:"not null;default:0" json:"total_contributors"`
	Status            string     `gorm:"size:20;not null;index" json:"status"` // active | funded | failed
	DurationDays      int        `gorm:"not null" json:"duration_days"`
	EndsAt            *time.Time `gorm:"index" json:"ends_at"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`

	Creator User `gorm:"foreignKey:CreatorID" json:"-"`
}

func (PitchCampaign) TableName() string { return "pitch_campaigns" }

type PitchContribution struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	CampaignID uint       `gorm:"not null;index" json:"campaign_id"`
	UserID     uint       `gorm:"not null;index" json:"user_id"`
	Amount     int64      `gorm:"not null" json:"amount"`
	Status     string     `gorm:"size:20;not null;default:'active'" json:"status"` // active | refunded
	RefundedAt *time.Time `json:"refunded_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

func (PitchContribution) TableName() string { return "pitch_contributions" }
