package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mediavault/backend/internal/config"
	"github.com/mediavault/backend/pkg/jwt"
)

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

// Auth requires a valid bearer token and puts the caller's identity into the
// context as "userID" (uuid) and "isAdmin" (bool).
func Auth(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			c.Abort()
			return
		}

		claims, err := jwt.ValidateToken(tokenString, cfg.JWTSecret)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			c.Abort()
			return
		}

		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token subject"})
			c.Abort()
			return
		}

		c.Set("userID", userID)
		c.Set("isAdmin", claims.IsAdmin)
		c.Next()
	}
}

// OptionalAuth sets the caller's identity when a valid token is present but
// never rejects the request. Routes serving both anonymous and owner traffic
// (download by internal id) use this and decide per asset.
func OptionalAuth(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString != "" {
			if claims, err := jwt.ValidateToken(tokenString, cfg.JWTSecret); err == nil {
				if userID, err := uuid.Parse(claims.UserID); err == nil {
					c.Set("userID", userID)
					c.Set("isAdmin", claims.IsAdmin)
				}
			}
		}
		c.Next()
	}
}

// AdminOnly requires the admin claim set by Auth.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		isAdmin, exists := c.Get("isAdmin")
		if !exists || isAdmin != true {
			c.JSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// CallerID returns the authenticated caller's id, if any.
func CallerID(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get("userID")
	if !exists {
		return uuid.Nil, false
	}
	userID, ok := value.(uuid.UUID)
	return userID, ok
}
