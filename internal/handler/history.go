package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xjinkx/license-gateway/internal/middleware"
	"github.com/xjinkx/license-gateway/internal/repository"
)

type HistoryHandler struct {
	purchases *repository.PurchaseRepository
	topups    *repository.TopUpRepository
}

func NewHistoryHandler(purchases *repository.PurchaseRepository, topups *repository.TopUpRepository) *HistoryHandler {
	return &HistoryHandler{purchases: purchases, topups: topups}
}

func (h *HistoryHandler) PurchaseHistory(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	records, err := h.purchases.ListByUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch purchase history"})
		return
	}

	type row struct {
		ID           uint      `json:"id"`
		License      string    `json:"license"`
		CreatedAt    time.Time `json:"created_at"`
		ProductTitle string    `json:"productTitle"`
		Price        int       `json:"price"`
	}

	rows := make([]row, 0, len(records))
	for _, r := range records {
		title := "Unknown"
		price := 0
		if r.Product != nil {
			title = r.Product.Title
			price = r.Product.Price
		}
		rows = append(rows, row{
			ID:           r.ID,
			License:      r.License,
			CreatedAt:    r.CreatedAt,
			ProductTitle: title,
			Price:        price,
		})
	}

	c.JSON(http.StatusOK, rows)
}

func (h *HistoryHandler) TopUpHistory(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	records, err := h.topups.ListByUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch topup history"})
		return
	}

	type row struct {
		ID        uint      `json:"id"`
		Amount    float64   `json:"amount"`
		Method    string    `json:"method"`
		Reference string    `json:"reference"`
		Status    string    `json:"status"`
		CreatedAt time.Time `json:"created_at"`
	}

	rows := make([]row, 0, len(records))
	for _, r := range records {
		rows = append(rows, row{
			ID:        r.ID,
			Amount:    r.Amount,
			Method:    r.Method,
			Reference: r.VoucherID,
			Status:    r.Status,
			CreatedAt: r.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, rows)
}
