package middlewares

import (
	"net/http"
	"sync"
	"time"

	ttlworker "github.com/FloatTech/ttl"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/moyoez/claimdesk/tool"
)

// PerClientLimiter keeps one token bucket per client IP. Idle buckets expire
// with the cache.
type PerClientLimiter struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	limiters *ttlworker.Cache[string, *rate.Limiter]
}

// NewPerMinuteLimiter allows perMinute requests per client per minute, all of
// which may arrive at once.
func NewPerMinuteLimiter(perMinute int) *PerClientLimiter {
	if perMinute <= 0 {
		perMinute = 1
	}
	return &PerClientLimiter{
		limit:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    perMinute,
		limiters: ttlworker.NewCache[string, *rate.Limiter](10 * time.Minute),
	}
}

func (l *PerClientLimiter) get(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	lim := l.limiters.Get(ip)
	if lim == nil {
		lim = rate.NewLimiter(l.limit, l.burst)
	}
	l.limiters.Set(ip, lim)
	return lim
}

func (l *PerClientLimiter) Allow(ip string) bool {
	return l.get(ip).Allow()
}

// Middleware answers 429 once the client's bucket is empty.
func (l *PerClientLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !l.Allow(ip) {
			tool.DefaultLogger.Warnf("[RateLimit] %s %s throttled for %s", c.Request.Method, c.FullPath(), ip)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, tool.FastReturnError("Too many requests, please wait a moment"))
			return
		}
		c.Next()
	}
}
