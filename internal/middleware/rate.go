package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimitConfig defines rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int
	Burst             int
	// IdleTTL is how long an idle client's limiter is kept. Zero means
	// ten minutes.
	IdleTTL time.Duration
	// OnLimited is called for every rejected request.
	OnLimited func(c *gin.Context)
}

// DefaultRateLimitConfig returns production-ready rate limit configuration.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: 100,
		Burst:             200,
		IdleTTL:           10 * time.Minute,
	}
}

// NewLimiter builds a token bucket for cfg.
func NewLimiter(cfg RateLimitConfig) *rate.Limiter {
	return rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst)
}

// RateLimit creates a per-IP rate limiting middleware.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	type client struct {
		limiter  *rate.Limiter
		lastSeen time.Time
	}

	ttl := cfg.IdleTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}

	var (
		mu        sync.Mutex
		clients   = make(map[string]*client)
		lastSweep = time.Now()
	)

	return func(c *gin.Context) {
		ip := c.ClientIP()
		now := time.Now()

		mu.Lock()
		if now.Sub(lastSweep) > ttl {
			for key, cl := range clients {
				if now.Sub(cl.lastSeen) > ttl {
					delete(clients, key)
				}
			}
			lastSweep = now
		}
		cl, exists := clients[ip]
		if !exists {
			cl = &client{limiter: NewLimiter(cfg)}
			clients[ip] = cl
		}
		cl.lastSeen = now
		limiter := cl.limiter
		mu.Unlock()

		if !limiter.Allow() {
			reject(c, cfg)
			return
		}

		c.Next()
	}
}

// GlobalRateLimit creates a global rate limiting middleware.
func GlobalRateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	limiter := NewLimiter(cfg)

	return func(c *gin.Context) {
		if !limiter.Allow() {
			reject(c, cfg)
			return
		}
		c.Next()
	}
}

func reject(c *gin.Context, cfg RateLimitConfig) {
	if cfg.OnLimited != nil {
		cfg.OnLimited(c)
	}
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
		"error": "rate limit exceeded",
	})
}
