package middleware

import (
	"net/http"
	"sync"
	"time"

	"dq-index/internal/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// visitor is one client's limiter and when it was last used.
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter keeps a token bucket per client IP.
type IPRateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor

	reqPerMin int
	burst     int
	ttl       time.Duration
}

// NewIPRateLimiter allows reqPerMin requests per minute per IP with the given
// burst. Limiters idle for longer than ttl are dropped by Cleanup.
func NewIPRateLimiter(reqPerMin, burst int, ttl time.Duration) *IPRateLimiter {
	return &IPRateLimiter{
		visitors:  make(map[string]*visitor),
		reqPerMin: reqPerMin,
		burst:     burst,
		ttl:       ttl,
	}
}

func (rl *IPRateLimiter) getLimiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if v, ok := rl.visitors[ip]; ok {
		v.lastSeen = time.Now()
		return v.limiter
	}

	// requests per minute -> rate.Limit (per second)
	limiter := rate.NewLimiter(rate.Limit(float64(rl.reqPerMin)/60.0), rl.burst)
	rl.visitors[ip] = &visitor{limiter: limiter, lastSeen: time.Now()}
	return limiter
}

// Allow reports whether ip may make a request now.
func (rl *IPRateLimiter) Allow(ip string) bool {
	return rl.getLimiter(ip).Allow()
}

// Cleanup drops limiters that have been idle longer than the ttl.
func (rl *IPRateLimiter) Cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	for ip, v := range rl.visitors {
		if time.Since(v.lastSeen) > rl.ttl {
			delete(rl.visitors, ip)
		}
	}
}

// Visitors returns the number of tracked IPs.
func (rl *IPRateLimiter) Visitors() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.visitors)
}

// RunCleanup calls Cleanup every interval until stop is closed.
func (rl *IPRateLimiter) RunCleanup(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.Cleanup()
		case <-stop:
			return
		}
	}
}

// RateLimitByIP rejects requests over the limit with 429. A nil limiter or a
// non-positive rate disables limiting.
func RateLimitByIP(rl *IPRateLimiter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if rl == nil || rl.reqPerMin <= 0 {
			return c.Next()
		}
		ip := c.IP()
		if !rl.Allow(ip) {
			logger.Get().Warn("Rate limit exceeded",
				zap.String("ip", ip),
				zap.String("path", c.Path()),
				zap.String("request_id", RequestID(c)))
			return c.Status(http.StatusTooManyRequests).JSON(
				newErrorResponse("RATE_LIMITED", "Too many requests, please retry later", http.StatusTooManyRequests))
		}
		return c.Next()
	}
}
