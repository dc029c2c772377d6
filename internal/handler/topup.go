package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xjinkx/license-gateway/internal/middleware"
	"github.com/xjinkx/license-gateway/internal/service"
)

type TopUpHandler struct {
	topups *service.TopUpService
}

func NewTopUpHandler(topups *service.TopUpService) *TopUpHandler {
	return &TopUpHandler{topups: topups}
}

func (h *TopUpHandler) RedeemAngpao(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req struct {
		GiftLink string `json:"giftLink" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Gift link is required"})
		return
	}

	result, err := h.topups.RedeemAngpao(c.Request.Context(), userID, req.GiftLink)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
