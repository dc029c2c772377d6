package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CategoryResetToken marks products that grant HWID reset tokens instead of
// minting licenses.
const CategoryResetToken = "ResetToken"

type Category struct {
	ID   uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Name string    `gorm:"uniqueIndex;not null" json:"name"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (Category) TableName() string {
	return "categories"
}

// Product is a purchasable store item. Duration is the license lifetime in
// days for license products; ignored for reset-token products.
type Product struct {
	ID          uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	Title       string     `gorm:"not null" json:"title"`
	Image       string     `json:"image"`
	Duration    int        `json:"duration"`
	Price       int        `gorm:"not null" json:"price"`
	Solds       int        `gorm:"not null;default:0" json:"solds"`
	Description string     `json:"description"`
	IsActive    bool       `gorm:"default:true" json:"is_active"`
	CategoryID  *uuid.UUID `gorm:"index" json:"category_id"`
	Category    *Category  `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (Product) TableName() string {
	return "products"
}

// IsResetTokenProduct reports whether purchasing this product grants reset
// tokens rather than minted licenses.
func (p *Product) IsResetTokenProduct() bool {
	return p.Category != nil && p.Category.Name == CategoryResetToken
}
