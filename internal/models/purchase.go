package models

import (
	"time"

	"github.com/google/uuid"
)

// PlaceholderLicense is stored for reset-token purchases, which mint nothing.
const PlaceholderLicense = "TOKEN"

// PurchaseRecord ties a user to a purchased product and the minted license.
// Rows are append-only; the gateway never updates them.
type PurchaseRecord struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	ProductID uuid.UUID `gorm:"type:uuid;index;not null" json:"product_id"`
	License   string    `gorm:"not null" json:"license"`
	DiscordID string    `json:"discord_id"`
	Product   *Product  `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (PurchaseRecord) TableName() string {
	return "purchase_history"
}
