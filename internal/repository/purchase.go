package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/xjinkx/license-gateway/internal/models"
	"github.com/xjinkx/license-gateway/internal/storage"
)

type PurchaseRepository struct {
	db *storage.Postgres
}

func NewPurchaseRepository(db *storage.Postgres) *PurchaseRepository {
	return &PurchaseRepository{db: db}
}

func (r *PurchaseRepository) InsertBatch(ctx context.Context, records []models.PurchaseRecord) error {
	if len(records) == 0 {
		return nil
	}
	return r.db.DB.WithContext(ctx).Create(&records).Error
}

// ListByUser returns the user's purchases newest-first, excluding the TOKEN
// placeholder rows written for reset-token products.
func (r *PurchaseRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.PurchaseRecord, error) {
	var records []models.PurchaseRecord
	err := r.db.DB.WithContext(ctx).
		Preload("Product").
		Where("user_id = ? AND license <> ?", userID, models.PlaceholderLicense).
		Order("created_at DESC").
		Find(&records).Error

	return records, err
}

func (r *PurchaseRepository) CountByProduct(ctx context.Context, productID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.DB.WithContext(ctx).
		Model(&models.PurchaseRecord{}).
		Where("product_id = ?", productID).
		Count(&count).Error

	return count, err
}
