package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/classpulse/classpulse-backend/internal/response"
	"github.com/gin-gonic/gin"
)

// KeyFunc derives the rate-limiting key for a request.
type KeyFunc func(c *gin.Context) string

// ByClientIP keys unauthenticated endpoints (login) by source address.
func ByClientIP(c *gin.Context) string {
	return c.ClientIP()
}

// ByUser keys JWT-protected endpoints by the authenticated account, so
// clients behind a shared NAT do not consume each other's budget. Falls
// back to the source address when no claims are present.
func ByUser(c *gin.Context) string {
	if claims := GetClaims(c); claims != nil {
		return "user:" + claims.UserID
	}
	return c.ClientIP()
}

// RateLimiter implements a keyed token bucket rate limiter.
type RateLimiter struct {
	mu       sync.Mutex
	buckets  map[string]*bucket
	rate     int           // Tokens per interval
	interval time.Duration // Refill interval
}

type bucket struct {
	tokens   int
	lastSeen time.Time
}

// NewRateLimiter creates a RateLimiter granting rate tokens per
// interval for each key (e.g., 10 requests per minute).
func NewRateLimiter(rate int, interval time.Duration) *RateLimiter {
	rl := &RateLimiter{
		buckets:  make(map[string]*bucket),
		rate:     rate,
		interval: interval,
	}

	// Cleanup stale buckets every minute.
	go func() {
		for range time.Tick(time.Minute) {
			rl.cleanup()
		}
	}()

	return rl
}

// Middleware returns a Gin middleware that rate-limits requests by the
// key keyFn derives.
func (rl *RateLimiter) Middleware(keyFn KeyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyFn(c)

		rl.mu.Lock()
		b, exists := rl.buckets[key]
		if !exists {
			b = &bucket{tokens: rl.rate, lastSeen: time.Now()}
			rl.buckets[key] = b
		}

		// Refill tokens based on elapsed time.
		elapsed := time.Since(b.lastSeen)
		refill := int(elapsed/rl.interval) * rl.rate
		if refill > 0 {
			b.tokens += refill
			if b.tokens > rl.rate {
				b.tokens = rl.rate
			}
			b.lastSeen = time.Now()
		}

		if b.tokens <= 0 {
			rl.mu.Unlock()
			response.AbortFail(c, http.StatusTooManyRequests, response.ErrRateLimitExceeded)
			return
		}

		b.tokens--
		rl.mu.Unlock()
		c.Next()
	}
}

func (rl *RateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, b := range rl.buckets {
		if time.Since(b.lastSeen) > 3*time.Minute {
			delete(rl.buckets, key)
		}
	}
}
