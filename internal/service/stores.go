package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/xjinkx/license-gateway/internal/models"
)

// Store interfaces are the slices of the datastore each service touches.
// The gorm-backed repositories satisfy them; tests substitute fakes.

type UserStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByDiscordID(ctx context.Context, discordID string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	DebitPoints(ctx context.Context, id uuid.UUID, total int) (bool, error)
	CreditPoints(ctx context.Context, id uuid.UUID, amount int) error
	AddResetTokens(ctx context.Context, id uuid.UUID, amount int) error
	ConsumeResetToken(ctx context.Context, id uuid.UUID) (int, bool, error)
}

type ProductStore interface {
	FindActiveByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	IncrementSolds(ctx context.Context, id uuid.UUID, qty int) error
}

type PurchaseStore interface {
	InsertBatch(ctx context.Context, records []models.PurchaseRecord) error
}

type TopUpStore interface {
	Insert(ctx context.Context, record *models.TopUpRecord) error
}

type AdminStore interface {
	FindByEmail(ctx context.Context, email string) (*models.AdminUser, error)
	Create(ctx context.Context, user *models.AdminUser) error
}
