package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xjinkx/license-gateway/internal/middleware"
	"github.com/xjinkx/license-gateway/internal/service"
	"github.com/xjinkx/license-gateway/internal/upstream"
)

type KeyHandler struct {
	licenses *service.LicenseService
	captcha  *upstream.HcaptchaVerifier
}

func NewKeyHandler(licenses *service.LicenseService, captcha *upstream.HcaptchaVerifier) *KeyHandler {
	return &KeyHandler{licenses: licenses, captcha: captcha}
}

// CreateKey mints a license through the provider. When hCaptcha is
// configured every caller must carry a token; deployments whose only
// callers are the API-keyed backend leave the secret unset.
func (h *KeyHandler) CreateKey(c *gin.Context) {
	var req service.CreateKeyRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
	}

	if h.captcha.Enabled() {
		if req.HcaptchaToken == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "hCaptcha token is required"})
			return
		}
		if !h.captcha.Verify(c.Request.Context(), req.HcaptchaToken) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid hCaptcha verification"})
			return
		}
	}

	result, err := h.licenses.CreateKey(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *KeyHandler) GetUserKey(c *gin.Context) {
	userKey := c.Query("user_key")

	result, err := h.licenses.GetUserKey(c.Request.Context(), userKey)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *KeyHandler) ResetHWID(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req struct {
		UserKey string `json:"user_key"`
		Force   bool   `json:"force"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	result, err := h.licenses.ResetHWID(c.Request.Context(), userID, req.UserKey, req.Force)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
