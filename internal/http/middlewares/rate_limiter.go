package middlewares

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// Limiter is a fixed-window counter. Allow reports whether the key may
// proceed and, when throttled, how long until the window resets.
type Limiter interface {
	Allow(c *gin.Context, key string) (ok bool, retryAfter time.Duration)
}

// RateLimit enforces a Limiter for a derived key.
func RateLimit(l Limiter, keyFn func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyFn(c)

		if key == "" {
			// fallback to IP if key cannot be derived
			key = clientIP(c)
		}

		ok, retryAfter := l.Allow(c, key)

		if !ok {
			secs := int(retryAfter.Seconds())

			if secs < 0 {
				secs = 0
			}

			c.Header("Retry-After", strconv.Itoa(secs))

			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": gin.H{
					"code":    "rate_limited",
					"message": "Too many requests. Please try again shortly.",
				},
			})
			return
		}

		c.Next()
	}
}

// MemoryLimiter is the in-process fallback used when redis is not
// configured. Stale buckets are replaced lazily on their next hit.
type MemoryLimiter struct {
	mu      sync.Mutex
	window  time.Duration
	limit   int
	clients map[string]*clientBucket
}

type clientBucket struct {
	count     int
	windowEnd time.Time
}

func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		limit:   limit,
		window:  window,
		clients: make(map[string]*clientBucket),
	}
}

func (rl *MemoryLimiter) Allow(c *gin.Context, key string) (bool, time.Duration) {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.clients[key]

	if !ok || now.After(b.windowEnd) {
		rl.clients[key] = &clientBucket{
			count:     1,
			windowEnd: now.Add(rl.window),
		}

		return true, 0
	}

	if b.count >= rl.limit {
		return false, time.Until(b.windowEnd)
	}

	b.count++

	return true, 0
}

// key helpers

// for unauthenticated endpoints: rate limit by IP
func KeyByIP(c *gin.Context) string {
	return clientIP(c)
}

// for authenticated endpoints: rate limit by userID if available
func KeyByUserOrIP(c *gin.Context) string {
	id, ok := UserIDFromContext(c)

	if ok && id != "" {
		return "user:" + id
	}

	return clientIP(c)
}

func clientIP(c *gin.Context) string {
	ip := c.ClientIP()

	host, _, err := net.SplitHostPort(ip)

	if err == nil && host != "" {
		return host
	}

	return ip
}
