package middleware

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimiter counts requests per client over a fixed window. Analysis
// endpoints fan out into LLM calls, so the cap here protects the upstream
// quota as much as this service.
type RateLimiter struct {
	mu        sync.Mutex
	counts    map[string]int
	windowEnd time.Time
	rate      int
	window    time.Duration
}

func NewRateLimiter(rate int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		counts:    make(map[string]int),
		windowEnd: time.Now().Add(window),
		rate:      rate,
		window:    window,
	}
}

// Allow reports whether one more request from key fits in the current window.
func (l *RateLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if time.Now().After(l.windowEnd) {
		l.counts = make(map[string]int)
		l.windowEnd = time.Now().Add(l.window)
	}

	if l.counts[key] >= l.rate {
		return false
	}
	l.counts[key]++
	return true
}

// RateLimit middleware limits requests per client IP
func RateLimit(rate int, window time.Duration) gin.HandlerFunc {
	limiter := NewRateLimiter(rate, window)

	return func(c *gin.Context) {
		clientIP := c.ClientIP()

		if !limiter.Allow(clientIP) {
			slog.Warn("rate limit exceeded",
				"client_ip", clientIP,
				"request_id", GetRequestID(c),
			)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Rate limit exceeded. Please try again later.",
			})
			return
		}

		c.Next()
	}
}
