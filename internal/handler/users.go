package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/xjinkx/license-gateway/internal/logger"
	"github.com/xjinkx/license-gateway/internal/repository"
)

type UserHandler struct {
	users *repository.UserRepository
}

func NewUserHandler(users *repository.UserRepository) *UserHandler {
	return &UserHandler{users: users}
}

// GrantPoints credits a user's balance out of band, e.g. after a manual
// refund or a promotion. Admin only.
func (h *UserHandler) GrantPoints(c *gin.Context) {
	var req struct {
		DiscordID string `json:"discord_id" binding:"required"`
		Points    int    `json:"points" binding:"required,gt=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()

	user, err := h.users.FindByDiscordID(ctx, req.DiscordID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if err := h.users.CreditPoints(ctx, user.ID, req.Points); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update points"})
		return
	}

	logger.LogEvent(logrus.InfoLevel, "points granted", logrus.Fields{
		"admin_id":   c.GetString("admin_id"),
		"discord_id": req.DiscordID,
		"points":     req.Points,
	})

	c.JSON(http.StatusOK, gin.H{
		"ok":        true,
		"newPoints": user.Points + req.Points,
	})
}
