package models

import "time"

// CreatorProfile tracks lifetime creator earnings in fiat. The risk engine
// uses profile age and earnings to spot fans who converted to creator just to
// cash out bonus coins.
type CreatorProfile struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	UserID           uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	TotalEarnings    float64   `gorm:"not null;default:0" json:"total_earnings"`
	TotalSubscribers int       `gorm:"not null;default:0" json:"total_subscribers"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (CreatorProfile) TableName() string { return "creator_profiles" }
