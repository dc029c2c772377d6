package handler

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xjinkx/license-gateway/internal/service"
)

type AuthHandler struct {
	auth            *service.AuthService
	bootstrapSecret string
}

func NewAuthHandler(auth *service.AuthService, bootstrapSecret string) *AuthHandler {
	return &AuthHandler{auth: auth, bootstrapSecret: bootstrapSecret}
}

// Register creates an admin account. Gated by the bootstrap secret so the
// endpoint is unusable unless the operator configured one.
func (h *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Email           string `json:"email" binding:"required,email"`
		Password        string `json:"password" binding:"required,min=8"`
		Name            string `json:"name"`
		BootstrapSecret string `json:"bootstrap_secret" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if h.bootstrapSecret == "" ||
		subtle.ConstantTimeCompare([]byte(req.BootstrapSecret), []byte(h.bootstrapSecret)) != 1 {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return
	}

	if err := h.auth.RegisterAdmin(c.Request.Context(), req.Email, req.Password, req.Name); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Admin created"})
}

// Session exchanges a Discord identity for a storefront session token,
// creating the user row on first sight. Machine surface: the site backend
// calls this after its OAuth callback.
func (h *AuthHandler) Session(c *gin.Context) {
	var req struct {
		DiscordID string `json:"discord_id" binding:"required"`
		Name      string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "discord_id is required"})
		return
	}

	token, user, err := h.auth.EstablishSession(c.Request.Context(), req.DiscordID, req.Name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to establish session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, err := h.auth.LoginAdmin(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}
