package middleware

import (
	"math"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/windoze95/saltybytes-chef/internal/config"
	"github.com/windoze95/saltybytes-chef/internal/logger"
	"github.com/windoze95/saltybytes-chef/internal/util"
	"go.uber.org/zap"
)

// accessTokenType is the "type" claim carried by access tokens. Refresh
// tokens are rejected on the chef API.
const accessTokenType = "access"

// VerifyTokenMiddleware verifies the access token in the Authorization
// header and makes its user the owner of the request: the ID goes onto the
// gin context and the request-scoped logger.
func VerifyTokenMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.FromContext(c.Request.Context())
		tokenString := strings.TrimSpace(strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer "))

		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			return []byte(cfg.EnvVars.JwtSecretKey), nil
		}, jwt.WithValidMethods([]string{"HS256"}))
		if err != nil || !token.Valid {
			log.Debug("rejected token", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		if tokenType, _ := claims["type"].(string); tokenType != accessTokenType {
			log.Debug("rejected token", zap.String("type", tokenType))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token type"})
			return
		}

		userID, ok := userIDClaim(claims)
		if !ok {
			log.Warn("token carries no usable user_id", zap.Any("user_id", claims[util.UserIDKey]))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid user_id in token"})
			return
		}

		util.SetUserID(c, userID)
		c.Next()
	}
}

// userIDClaim reads user_id as a positive whole number. JSON numbers decode
// as float64.
func userIDClaim(claims jwt.MapClaims) (uint, bool) {
	f, ok := claims[util.UserIDKey].(float64)
	if !ok || f < 1 || f != math.Trunc(f) || f > math.MaxUint32 {
		return 0, false
	}
	return uint(f), true
}
