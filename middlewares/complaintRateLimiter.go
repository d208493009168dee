package middlewares

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const complaintLimitWindow = 24 * time.Hour

// ComplaintRateLimiter caps how many complaints each user may file per day.
// A nil client disables the limit.
func ComplaintRateLimiter(client *redis.Client, prefix string, limit int) gin.HandlerFunc {
	return func(c *gin.Context) {
		if client == nil || limit <= 0 {
			c.Next()
			return
		}

		principal := CurrentPrincipal(c)
		if principal == nil || principal.ID == "" {
			abortWithError(c, fmt.Errorf("complaint rate limiter: no principal on request"))
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		// One counter per user; the TTL starts with the first complaint of the window.
		userKey := prefix + ":" + principal.ID

		count, err := client.Incr(ctx, userKey).Result()
		if err != nil {
			abortWithError(c, fmt.Errorf("redis error incrementing count: %w", err))
			return
		}

		if count == 1 {
			if err := client.Expire(ctx, userKey, complaintLimitWindow).Err(); err != nil {
				abortWithError(c, fmt.Errorf("redis error setting TTL: %w", err))
				return
			}
		}

		if count > int64(limit) {
			body := gin.H{"message": "Daily complaint limit reached"}
			retryAfter, err := client.TTL(ctx, userKey).Result()
			if err != nil {
				log.Printf("Redis error reading TTL for %s: %v", userKey, err)
			} else if retryAfter > 0 {
				body["retry_after"] = retryAfter.Seconds()
			}
			c.AbortWithStatusJSON(http.StatusTooManyRequests, body)
			return
		}

		c.Next()
	}
}
