package models

import "time"

// Guild is a collective of creators with a shared FanCoin treasury. Members
// automatically contribute a percentage of their earnings; combo subscriptions
// are split equally across current members.
type Guild struct {
	ID                          uint      `gorm:"primaryKey" json:"id"`
	Name                        string    `gorm:"size:100;not null" json:"name"`
	Slug                        string    `gorm:"size:100;uniqueIndex;not null" json:"slug"`
	LeaderID                    uint      `gorm:"not null;index" json:"leader_id"`
	TreasuryBalance             int64     `gorm:"not null;default:0" json:"treasury_balance"`
	TreasuryContributionPercent float64   `gorm:"not null;default:3" json:"treasury_contribution_percent"`
	ComboSubscriptionPrice      float64   `gorm:"not null;default:0" json:"combo_subscription_price"` // fiat; 0 = combo disabled
	TotalMembers                int       `gorm:"not null;default:1" json:"total_members"`
	MaxMembers                  int       `gorm:"not null;default:20" json:"max_members"`
	TotalSubscribers            int       `gorm:"not null;default:0" json:"total_subscribers"`
	IsActive                    bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt                   time.Time `json:"created_at"`
	UpdatedAt                   time.Time `json:"updated_at"`
}

func (Guild) TableName() string { return "guilds" }

type GuildMember struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	GuildID          uint      `gorm:"not null;index" json:"guild_id"`
	UserID           uint      `gorm:"uniqueIndex;not null" json:"user_id"` // one guild per user
	Role             string    `gorm:"size:20;not null;default:'member'" json:"role"`
	TotalContributed int64     `gorm:"not null;default:0" json:"total_contributed"`
	JoinedAt         time.Time `gorm:"autoCreateTime" json:"joined_at"`
}

func (GuildMember) TableName() string { return "guild_members" }

// GuildTreasuryTx mirrors the wallet ledger for the guild treasury:
// append-only with a balance snapshot.
type GuildTreasuryTx struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	GuildID      uint      `gorm:"not null;index" json:"guild_id"`
	UserID       uint      `gorm:"not null" json:"user_id"`
	Type         string    `gorm:"size:30;not null" json:"type"` // contribution | combo_remainder
	Amount       int64     `gorm:"not null" json:"amount"`
	BalanceAfter int64     `gorm:"not null" json:"balance_after"`
	Description  string    `gorm:"size:255" json:"description"`
	CreatedAt    time.Time `json:"created_at"`
}

func (GuildTreasuryTx) TableName() string { return "guild_treasury_transactions" }
