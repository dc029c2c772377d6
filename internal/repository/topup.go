package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/xjinkx/license-gateway/internal/models"
	"github.com/xjinkx/license-gateway/internal/storage"
)

type TopUpRepository struct {
	db *storage.Postgres
}

func NewTopUpRepository(db *storage.Postgres) *TopUpRepository {
	return &TopUpRepository{db: db}
}

func (r *TopUpRepository) Insert(ctx context.Context, record *models.TopUpRecord) error {
	return r.db.DB.WithContext(ctx).Create(record).Error
}

func (r *TopUpRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.TopUpRecord, error) {
	var records []models.TopUpRecord
	err := r.db.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&records).Error

	return records, err
}
