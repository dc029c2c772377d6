package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/xjinkx/license-gateway/internal/models"
	"github.com/xjinkx/license-gateway/internal/storage"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *storage.Postgres
}

func NewUserRepository(db *storage.Postgres) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.DB.WithContext(ctx).Create(user).Error
}

func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.db.DB.WithContext(ctx).
		Where("id = ?", id).
		First(&user).Error

	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}

	return &user, err
}

func (r *UserRepository) FindByDiscordID(ctx context.Context, discordID string) (*models.User, error) {
	var user models.User
	err := r.db.DB.WithContext(ctx).
		Where("discord_id = ?", discordID).
		First(&user).Error

	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}

	return &user, err
}

// DebitPoints subtracts total from the user's balance in a single conditional
// update. Returns false when the balance is insufficient at write time, which
// also covers races between concurrent purchases.
func (r *UserRepository) DebitPoints(ctx context.Context, id uuid.UUID, total int) (bool, error) {
	result := r.db.DB.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ? AND points >= ?", id, total).
		Updates(map[string]interface{}{
			"points":       gorm.Expr("points - ?", total),
			"last_updated": time.Now().UTC(),
		})

	return result.RowsAffected > 0, result.Error
}

// CreditPoints adds amount to the user's balance unconditionally.
func (r *UserRepository) CreditPoints(ctx context.Context, id uuid.UUID, amount int) error {
	return r.db.DB.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"points":       gorm.Expr("points + ?", amount),
			"last_updated": time.Now().UTC(),
		}).Error
}

// AddResetTokens credits HWID reset tokens.
func (r *UserRepository) AddResetTokens(ctx context.Context, id uuid.UUID, amount int) error {
	return r.db.DB.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"reset_token":  gorm.Expr("reset_token + ?", amount),
			"last_updated": time.Now().UTC(),
		}).Error
}

// ConsumeResetToken decrements one reset token, refusing to go below zero,
// and reports the post-decrement count so callers never echo a stale read.
// Returns false when no token was available at write time.
func (r *UserRepository) ConsumeResetToken(ctx context.Context, id uuid.UUID) (int, bool, error) {
	var remaining []int
	result := r.db.DB.WithContext(ctx).Raw(
		`UPDATE users SET reset_token = reset_token - 1, last_updated = ? WHERE id = ? AND reset_token >= 1 RETURNING reset_token`,
		time.Now().UTC(), id,
	).Scan(&remaining)

	if result.Error != nil {
		return 0, false, result.Error
	}
	if len(remaining) == 0 {
		return 0, false, nil
	}

	return remaining[0], true, nil
}
