package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xjinkx/license-gateway/internal/upstream"
)

type VersionsHandler struct {
	versions *upstream.VersionsClient
}

func NewVersionsHandler(versions *upstream.VersionsClient) *VersionsHandler {
	return &VersionsHandler{versions: versions}
}

func (h *VersionsHandler) Current(c *gin.Context) {
	payload, err := h.versions.Current(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	c.Data(http.StatusOK, "application/json", payload)
}
