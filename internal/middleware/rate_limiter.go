package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"sheetpos/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const purgeInterval = 5 * time.Minute

// window tracks one client's requests inside a fixed window.
type window struct {
	count int
	end   time.Time
}

// RateLimiter counts requests per client IP over a fixed window. Expired
// entries are purged inline at most once per purgeInterval.
type RateLimiter struct {
	limit   int
	period  time.Duration
	message string
	now     func() time.Time

	mu        sync.Mutex
	clients   map[string]*window
	lastPurge time.Time
}

func NewRateLimiter(limit int, period time.Duration, message string) *RateLimiter {
	return &RateLimiter{
		limit:   limit,
		period:  period,
		message: message,
		now:     time.Now,
		clients: make(map[string]*window),
	}
}

// NewLoginRateLimiter allows 20 login attempts per minute per IP.
func NewLoginRateLimiter() *RateLimiter {
	return NewRateLimiter(20, time.Minute, "Too many login attempts. Try again in a minute.")
}

// allow records one request from ip and reports whether it is within the limit
// along with the end of the current window.
func (l *RateLimiter) allow(ip string) (bool, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastPurge) > purgeInterval {
		l.purge(now)
	}

	w, ok := l.clients[ip]
	if !ok || now.After(w.end) {
		w = &window{end: now.Add(l.period)}
		l.clients[ip] = w
	}
	w.count++
	return w.count <= l.limit, w.end
}

func (l *RateLimiter) purge(now time.Time) {
	purged := 0
	for ip, w := range l.clients {
		if now.After(w.end) {
			delete(l.clients, ip)
			purged++
		}
	}
	l.lastPurge = now
	if purged > 0 {
		log.Debug().Int("purged", purged).Int("remaining", len(l.clients)).Msg("rate limiter purged")
	}
}

func (l *RateLimiter) Middleware() gin.HandlerFunc {
	if l.limit <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		ok, end := l.allow(c.ClientIP())
		if !ok {
			wait := int(end.Sub(l.now()).Seconds()) + 1
			c.Header("Retry-After", strconv.Itoa(wait))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New(l.message))
			return
		}
		c.Next()
	}
}
