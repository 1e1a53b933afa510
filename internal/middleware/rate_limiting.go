package middleware

import (
	"net/http"
	"strings"
	"time"

	"trident-dashboards/internal/config"
	"trident-dashboards/internal/constants"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimitMiddleware creates a middleware that limits request rate per IP
// It requires a RateLimitManager to be set in the context by the application
func RateLimitMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if shouldBypassRateLimit(c.Request) {
			c.Next()
			return
		}

		manager := managerFromContext(c)
		if manager == nil {
			c.Next()
			return
		}

		limiter := manager.GetVisitor(
			c.ClientIP(),
			cfg.RateLimitRequests,
			cfg.RateLimitWindow,
			cfg.RateLimitBurst,
		)

		if limiter == nil {
			c.Next()
			return
		}

		if !limiter.Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "too many requests, please try again later",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// ActionRateLimitMiddleware limits sidebar toggles and dashboard actions per IP
// Default: 30 requests per 60 seconds
func ActionRateLimitMiddleware(cfg *config.Config) gin.HandlerFunc {
	requestsPerWindow := cfg.ActionRateLimitRequests
	if requestsPerWindow <= 0 {
		requestsPerWindow = 30
	}
	windowSeconds := cfg.ActionRateLimitWindow
	if windowSeconds <= 0 {
		windowSeconds = 60
	}

	return func(c *gin.Context) {
		manager := managerFromContext(c)
		if manager == nil {
			c.Next()
			return
		}

		limiter := manager.GetActionLimiter(c.ClientIP(), requestsPerWindow, windowSeconds)
		if limiter == nil {
			c.Next()
			return
		}

		if !limiter.Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":          "action rate limit exceeded",
				"message":        "Too many requests. Please try again later.",
				"retry_after":    windowSeconds,
				"max_requests":   requestsPerWindow,
				"window_seconds": windowSeconds,
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

func managerFromContext(c *gin.Context) *RateLimitManager {
	managerVal, exists := c.Get(constants.ContextRateLimitManager)
	if !exists {
		return nil
	}
	manager, ok := managerVal.(*RateLimitManager)
	if !ok {
		return nil
	}
	return manager
}

func shouldBypassRateLimit(r *http.Request) bool {
	if r == nil || r.URL == nil {
		return false
	}

	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		return false
	}

	path := r.URL.Path
	if path == "" {
		return false
	}

	if strings.HasPrefix(path, "/static/") {
		return true
	}

	switch path {
	case "/favicon.ico", "/health":
		return true
	}

	return false
}
