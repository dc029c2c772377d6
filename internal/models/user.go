package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a storefront customer identified through Discord OAuth. Points is
// the integer balance debited by purchases and credited by top-ups;
// ResetToken counts remaining HWID resets.
type User struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	DiscordID   string    `gorm:"uniqueIndex;not null" json:"discord_id"`
	Name        string    `json:"name"`
	Points      int       `gorm:"not null;default:0" json:"points"`
	ResetToken  int       `gorm:"not null;default:0" json:"reset_token"`
	CreatedAt   time.Time `json:"created_at"`
	LastUpdated time.Time `json:"last_updated"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

func (User) TableName() string {
	return "users"
}
