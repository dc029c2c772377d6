package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/xjinkx/license-gateway/internal/clientip"
	"github.com/xjinkx/license-gateway/internal/logger"
)

func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method
		ip := clientip.Resolve(c.Request, c.ClientIP())

		c.Next()

		logger.LogEvent(logrus.InfoLevel, "request", logrus.Fields{
			"request_id": c.GetString("request_id"),
			"method":     method,
			"path":       path,
			"status":     c.Writer.Status(),
			"latency_ms": time.Since(start).Milliseconds(),
			"ip":         ip.ChosenIP,
		})
	}
}
