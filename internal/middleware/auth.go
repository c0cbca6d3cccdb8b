package middleware

import (
	"net/http"
	"strings"

	"soup-server/internal/auth"
	"soup-server/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Ключи контекста Gin, заполняемые после проверки токена.
const (
	ContextUserIDKey   = "user_id"
	ContextUsernameKey = "username"
)

// AuthMiddleware проверяет Bearer токен и кладет личность пользователя
// в контекст запроса.
func AuthMiddleware(verifier *auth.JWTVerifier, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Error: "missing authorization header"})
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Error: "invalid authorization header format"})
			return
		}

		claims, err := verifier.VerifyToken(c.Request.Context(), parts[1])
		if err != nil {
			log.Debug("Token verification failed", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Error: "could not validate credentials"})
			return
		}

		c.Set(ContextUserIDKey, claims.UserID)
		c.Set(ContextUsernameKey, claims.Username)
		c.Next()
	}
}
