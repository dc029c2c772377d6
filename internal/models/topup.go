package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	TopUpStatusSuccess = "success"
	TopUpStatusFailed  = "failed"
	TopUpStatusPending = "pending"
)

// TopUpRecord is one redeemed voucher. Amount is the provider-reported value;
// the credited points are the rounded integer of it.
type TopUpRecord struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	Amount    float64   `gorm:"not null" json:"amount"`
	Method    string    `gorm:"not null" json:"method"`
	VoucherID string    `json:"voucher_id"`
	Status    string    `gorm:"not null" json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

func (TopUpRecord) TableName() string {
	return "topup_history"
}
