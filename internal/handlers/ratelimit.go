package handlers

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	visitorTTL    = 3 * time.Minute
	sweepInterval = time.Minute

	msgTooManyAttempts = "Too many attempts. Please wait a moment and try again."
)

type visitor struct {
	lim  *rate.Limiter
	seen time.Time
}

// RateLimiter keeps one token bucket per client key. Idle buckets are swept
// lazily on access.
type RateLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	r         rate.Limit
	burst     int
	now       func() time.Time
	lastSweep time.Time
}

func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		r:        rate.Limit(rps),
		burst:    burst,
		now:      time.Now,
	}
}

// Allow reports whether one more request from key fits in its bucket.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastSweep) >= sweepInterval {
		for k, v := range rl.visitors {
			if now.Sub(v.seen) > visitorTTL {
				delete(rl.visitors, k)
			}
		}
		rl.lastSweep = now
	}

	v, ok := rl.visitors[key]
	if !ok {
		v = &visitor{lim: rate.NewLimiter(rl.r, rl.burst)}
		rl.visitors[key] = v
	}
	v.seen = now
	return v.lim.AllowN(now, 1)
}

func (rl *RateLimiter) size() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.visitors)
}

// limitRequests returns a middleware that calls onLimited instead of the
// route when the client IP is over its budget. Without a limiter it is a no-op.
func (h *Handler) limitRequests(onLimited gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.limiter == nil || h.limiter.Allow(c.ClientIP()) {
			c.Next()
			return
		}
		h.log.Infow("rate_limited", "path", c.Request.URL.Path, "client_ip", c.ClientIP())
		onLimited(c)
		c.Abort()
	}
}

func (h *Handler) tooManyAttemptsPage(c *gin.Context) {
	h.setFlash(c, errorNotice(msgTooManyAttempts))
	c.Redirect(http.StatusFound, c.Request.URL.Path)
}

func (h *Handler) tooManyRequestsJSON(c *gin.Context) {
	c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
}
