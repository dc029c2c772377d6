package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/xjinkx/license-gateway/internal/clientip"
	"github.com/xjinkx/license-gateway/internal/logger"
)

// The health check at the root path bypasses every admission check.
const healthPath = "/"

// OriginCheck rejects browser requests whose Origin and Referer both fail a
// prefix match against the allow-list. Requests with neither header pass only
// when the User-Agent carries a known server-to-server client marker.
// An empty allow-list disables the check.
func OriginCheck(allowedOrigins, serverAgentMarkers []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == healthPath || len(allowedOrigins) == 0 {
			c.Next()
			return
		}

		origin := c.GetHeader("Origin")
		referer := c.GetHeader("Referer")

		validOrigin := origin != "" && hasAnyPrefix(origin, allowedOrigins)
		validReferer := referer != "" && hasAnyPrefix(referer, allowedOrigins)

		// No origin and no referer usually means a server-to-server call
		// (the site's own backend); those are recognized by User-Agent.
		userAgent := c.GetHeader("User-Agent")
		isServerRequest := containsAny(userAgent, serverAgentMarkers)

		if !isServerRequest && !validOrigin && !validReferer {
			ip := clientip.Resolve(c.Request, c.ClientIP())
			logger.LogEvent(logrus.WarnLevel, "blocked: invalid origin/referer", logrus.Fields{
				"ip":      ip.ChosenIP,
				"origin":  origin,
				"referer": referer,
				"path":    c.Request.URL.Path,
			})
			c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden: Invalid origin"})
			c.Abort()
			return
		}

		c.Next()
	}
}

// APIKeyCheck requires the shared-secret x-api-key header on every request
// except the health check. The comparison is constant time.
func APIKeyCheck(localAPIKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == healthPath {
			c.Next()
			return
		}

		apiKey := c.GetHeader("X-API-Key")
		if apiKey == "" || subtle.ConstantTimeCompare([]byte(apiKey), []byte(localAPIKey)) != 1 {
			ip := clientip.Resolve(c.Request, c.ClientIP())
			logger.LogEvent(logrus.WarnLevel, "blocked: invalid/missing x-api-key", logrus.Fields{
				"ip":   ip.ChosenIP,
				"path": c.Request.URL.Path,
			})
			c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden: Invalid or missing API key"})
			c.Abort()
			return
		}

		c.Next()
	}
}

func hasAnyPrefix(value string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(value, p) {
			return true
		}
	}
	return false
}

func containsAny(value string, markers []string) bool {
	for _, m := range markers {
		if m != "" && strings.Contains(value, m) {
			return true
		}
	}
	return false
}
