package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jotbox/jotbox/internal/pkg/jwt"
	"github.com/jotbox/jotbox/internal/pkg/response"
)

const (
	ContextUserIDKey   = "user_id"
	ContextUserEmail   = "user_email"
	ContextUserName    = "user_name"
	ContextProviderKey = "provider"
)

func JWTAuth(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, http.StatusUnauthorized, "unauthorized", "missing authorization")
			c.Abort()
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Error(c, http.StatusUnauthorized, "unauthorized", "invalid authorization")
			c.Abort()
			return
		}
		claims, err := jwt.ParseToken(parts[1], secret)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "unauthorized", "invalid token")
			c.Abort()
			return
		}
		c.Set(ContextUserIDKey, claims.UserID)
		if claims.Email != "" {
			c.Set(ContextUserEmail, claims.Email)
		}
		if claims.FullName != "" {
			c.Set(ContextUserName, claims.FullName)
		}
		if claims.Provider != "" {
			c.Set(ContextProviderKey, claims.Provider)
		}
		c.Next()
	}
}
