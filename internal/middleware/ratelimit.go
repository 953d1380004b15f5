package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"secret_santa/internal/repository"
)

// RateLimit 以 客戶端 IP + 路由 為鍵做固定時間窗限流。
// 儲存層出錯時放行請求，只記錄日誌。
func RateLimit(limiter repository.RateLimitRepository, requests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil || requests <= 0 {
			c.Next()
			return
		}

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		key := c.ClientIP() + ":" + c.Request.Method + ":" + route

		allowed, err := limiter.Allow(c.Request.Context(), key, requests, window)
		if err != nil {
			logrus.WithError(err).WithField("key", key).Warn("Rate limiter unavailable, allowing request")
			c.Next()
			return
		}
		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests, please slow down"})
			return
		}
		c.Next()
	}
}
