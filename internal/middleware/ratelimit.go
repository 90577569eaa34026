package middleware

import (
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	appErrors "github.com/noah-isme/formation-api/pkg/errors"
	"github.com/noah-isme/formation-api/pkg/response"
)

const limiterIdleTTL = 10 * time.Minute

// RateLimitConfig sizes the per-client token bucket.
type RateLimitConfig struct {
	RequestsPerMinute int
	Burst             int
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type ipLimiter struct {
	mu          sync.Mutex
	visitors    map[string]*visitor
	limit       rate.Limit
	burst       int
	lastCleanup time.Time
	now         func() time.Time
}

func newIPLimiter(cfg RateLimitConfig) *ipLimiter {
	burst := cfg.Burst
	if burst <= 0 {
		burst = cfg.RequestsPerMinute
	}
	return &ipLimiter{
		visitors:    make(map[string]*visitor),
		limit:       rate.Limit(float64(cfg.RequestsPerMinute) / time.Minute.Seconds()),
		burst:       burst,
		lastCleanup: time.Now(),
		now:         time.Now,
	}
}

// reserve reports whether the key may proceed and, if not, how long until
// a token is available.
func (l *ipLimiter) reserve(key string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.cleanupLocked(now)

	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[key] = v
	}
	v.lastSeen = now

	if v.limiter.AllowN(now, 1) {
		return true, 0
	}
	r := v.limiter.ReserveN(now, 1)
	delay := r.DelayFrom(now)
	r.CancelAt(now)
	return false, delay
}

func (l *ipLimiter) cleanupLocked(now time.Time) {
	if now.Sub(l.lastCleanup) < limiterIdleTTL {
		return
	}
	l.lastCleanup = now
	for key, v := range l.visitors {
		if now.Sub(v.lastSeen) > limiterIdleTTL {
			delete(l.visitors, key)
		}
	}
}

// RateLimit throttles requests per client IP with a token bucket. A
// non-positive rate disables it.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.RequestsPerMinute <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	limiter := newIPLimiter(cfg)

	return func(c *gin.Context) {
		allowed, delay := limiter.reserve(c.ClientIP())
		if allowed {
			c.Next()
			return
		}
		retryAfter := int(math.Ceil(delay.Seconds()))
		if retryAfter < 1 {
			retryAfter = 1
		}
		c.Header("Retry-After", strconv.Itoa(retryAfter))
		response.Error(c, appErrors.Clone(appErrors.ErrTooManyAttempts, "too many requests, try again later"))
		c.Abort()
	}
}
