package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/xjinkx/license-gateway/internal/logger"
	"github.com/xjinkx/license-gateway/internal/service"
	"github.com/xjinkx/license-gateway/internal/upstream"
)

// writeError maps an internal failure onto the {error: string} wire shape.
// Only taxonomy-approved messages leave the server; anything unclassified
// becomes a plain 500.
func writeError(c *gin.Context, err error) {
	switch e := err.(type) {
	case *service.Error:
		c.JSON(e.Status, gin.H{"error": e.Message})
	case *upstream.Error:
		c.JSON(e.StatusCode, gin.H{"error": e.Message})
	default:
		logger.LogEvent(logrus.ErrorLevel, "unclassified handler error", logrus.Fields{
			"path":  c.Request.URL.Path,
			"error": err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
