package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/xjinkx/license-gateway/internal/logger"
	"github.com/xjinkx/license-gateway/internal/models"
	"github.com/xjinkx/license-gateway/internal/repository"
)

type ProductHandler struct {
	products  *repository.ProductRepository
	purchases *repository.PurchaseRepository
}

func NewProductHandler(products *repository.ProductRepository, purchases *repository.PurchaseRepository) *ProductHandler {
	return &ProductHandler{products: products, purchases: purchases}
}

type productView struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Image       string    `json:"image"`
	Category    string    `json:"category"`
	Duration    int       `json:"duration"`
	Price       int       `json:"price"`
	Solds       int       `json:"solds"`
	Description string    `json:"description"`
}

// List returns active products. The displayed solds count is whichever is
// larger: the product counter or the actual history row count, so the number
// never moves backwards after manual counter edits.
func (h *ProductHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	products, err := h.products.ListActive(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
		return
	}

	views := make([]productView, 0, len(products))
	for _, p := range products {
		solds := p.Solds
		if count, err := h.purchases.CountByProduct(ctx, p.ID); err == nil && int(count) > solds {
			solds = int(count)
		} else if err != nil {
			logger.LogEvent(logrus.ErrorLevel, "history count failed", logrus.Fields{
				"product_id": p.ID.String(),
				"error":      err.Error(),
			})
		}

		category := "Unknown"
		if p.Category != nil {
			category = p.Category.Name
		}

		views = append(views, productView{
			ID:          p.ID,
			Title:       p.Title,
			Image:       p.Image,
			Category:    category,
			Duration:    p.Duration,
			Price:       p.Price,
			Solds:       solds,
			Description: p.Description,
		})
	}

	c.Header("Cache-Control", "no-store, max-age=0")
	c.JSON(http.StatusOK, views)
}

// Create is an admin operation.
func (h *ProductHandler) Create(c *gin.Context) {
	var req struct {
		Title       string `json:"title" binding:"required"`
		Image       string `json:"image"`
		Duration    int    `json:"duration"`
		Price       int    `json:"price" binding:"required"`
		Description string `json:"description"`
		Category    string `json:"category"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()

	product := models.Product{
		Title:       req.Title,
		Image:       req.Image,
		Duration:    req.Duration,
		Price:       req.Price,
		Description: req.Description,
		IsActive:    true,
	}

	if req.Category != "" {
		category, err := h.products.FindCategoryByName(ctx, req.Category)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		if category == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown category"})
			return
		}
		product.CategoryID = &category.ID
	}

	if err := h.products.Create(ctx, &product); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
		return
	}

	c.JSON(http.StatusCreated, product)
}

// Update is an admin operation; it can change price, stock status, etc.
func (h *ProductHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	var req struct {
		Title       *string `json:"title"`
		Image       *string `json:"image"`
		Duration    *int    `json:"duration"`
		Price       *int    `json:"price"`
		Description *string `json:"description"`
		IsActive    *bool   `json:"is_active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Image != nil {
		updates["image"] = *req.Image
	}
	if req.Duration != nil {
		updates["duration"] = *req.Duration
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No fields to update"})
		return
	}

	if err := h.products.Update(c.Request.Context(), id, updates); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
