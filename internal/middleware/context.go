package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/windoze95/saltybytes-chef/internal/config"
)

// RequireDebug rejects requests unless the server runs with DEBUG enabled.
func RequireDebug(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cfg.EnvVars.Debug {
			c.JSON(http.StatusForbidden, gin.H{"error": "Diagnostic endpoints are only available in debug mode"})
			c.Abort()
			return
		}
		c.Next()
	}
}
