package models

import (
	"time"

	"fandreams/internal/domain"

	"gorm.io/gorm"
)

type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Username     string         `gorm:"uniqueIndex;size:64;not null" json:"username"`
	Email        string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string         `gorm:"size:255" json:"-"`
	Role         string         `gorm:"size:20;not null;index" json:"role"` // FAN | CREATOR | ADMIN
	DisplayName  string         `gorm:"size:100" json:"display_name"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	CreatorProfile *CreatorProfile `gorm:"foreignKey:UserID" json:"creator_profile,omitempty"`
}

func (u *User) IsCreator() bool { return u.Role == domain.RoleCreator }
func (u *User) IsAdmin() bool   { return u.Role == domain.RoleAdmin }

func (User) TableName() string { return "users" }
