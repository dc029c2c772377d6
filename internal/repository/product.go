package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/xjinkx/license-gateway/internal/models"
	"github.com/xjinkx/license-gateway/internal/storage"
	"gorm.io/gorm"
)

type ProductRepository struct {
	db *storage.Postgres
}

func NewProductRepository(db *storage.Postgres) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) Create(ctx context.Context, product *models.Product) error {
	return r.db.DB.WithContext(ctx).Create(product).Error
}

func (r *ProductRepository) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	return r.db.DB.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// FindActiveByID returns nil,nil for inactive or missing products.
func (r *ProductRepository) FindActiveByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.DB.WithContext(ctx).
		Preload("Category").
		Where("id = ? AND is_active = ?", id, true).
		First(&product).Error

	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}

	return &product, err
}

func (r *ProductRepository) ListActive(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := r.db.DB.WithContext(ctx).
		Preload("Category").
		Where("is_active = ?", true).
		Order("created_at DESC").
		Find(&products).Error

	return products, err
}

func (r *ProductRepository) IncrementSolds(ctx context.Context, id uuid.UUID, qty int) error {
	return r.db.DB.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		Update("solds", gorm.Expr("solds + ?", qty)).Error
}

func (r *ProductRepository) FindCategoryByName(ctx context.Context, name string) (*models.Category, error) {
	var category models.Category
	err := r.db.DB.WithContext(ctx).
		Where("name = ?", name).
		First(&category).Error

	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}

	return &category, err
}
