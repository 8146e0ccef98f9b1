package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mediavault/backend/internal/config"
	"github.com/redis/go-redis/v9"
)

// UploadRateLimit limits the number of uploads per user per day. The counter
// resets at midnight for predictable behavior. Redis failures never block an
// upload.
func UploadRateLimit(redisClient *redis.Client, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background()

		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		userIDInterface, exists := c.Get("userID")
		if !exists {
			c.Next()
			return
		}
		userID, ok := userIDInterface.(uuid.UUID)
		if !ok {
			c.Next()
			return
		}

		today := time.Now().Format("2006-01-02")
		key := fmt.Sprintf("upload_limit:%s:%s", userID.String(), today)

		count, err := redisClient.Get(ctx, key).Int()
		if err == redis.Nil {
			now := time.Now()
			midnight := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, now.Location())
			if err := redisClient.Set(ctx, key, 1, midnight.Sub(now)).Err(); err != nil {
				c.Next()
				return
			}
		} else if err != nil {
			c.Next()
			return
		} else if count >= cfg.UploadMaxPerDay {
			ttl, _ := redisClient.TTL(ctx, key).Result()
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":               "upload_rate_limit_exceeded",
				"message":             "Too many uploads today. Please try again tomorrow.",
				"retry_after_hours":   int(ttl.Hours()),
				"uploads_today":       count,
				"max_uploads_per_day": cfg.UploadMaxPerDay,
			})
			c.Abort()
			return
		} else {
			redisClient.Incr(ctx, key)
		}

		c.Next()
	}
}
