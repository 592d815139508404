package web

import (
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/deemkeen/huddle/db"
	"github.com/deemkeen/huddle/domain"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const (
	RequestIdHeader = "X-Request-Id"
	ViewerHeader    = "X-Viewer-Id"

	requestIdKey = "requestId"
	viewerKey    = "viewerId"

	limiterIdleTimeout   = 10 * time.Minute
	limiterSweepInterval = 5 * time.Minute
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter holds one token bucket per client IP. Idle buckets are swept
// by a single goroutine that runs from the first middleware built on the
// limiter until Stop.
type RateLimiter struct {
	visitors map[string]*visitor
	mu       sync.Mutex
	rate     rate.Limit
	burst    int

	startOnce sync.Once
	stopOnce  sync.Once
	stop      chan struct{}
	done      chan struct{}
}

// NewRateLimiter creates a new rate limiter
// r is requests per second, b is burst size
func NewRateLimiter(r rate.Limit, b int) *RateLimiter {
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		rate:     r,
		burst:    b,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (rl *RateLimiter) start() {
	rl.startOnce.Do(func() {
		go rl.cleanupOldLimiters(limiterSweepInterval)
	})
}

// Stop ends the sweeper. It is safe to call more than once, and on a limiter
// that never started one.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() {
		close(rl.stop)
	})
	// claim the start so a later middleware does not launch a sweeper
	rl.startOnce.Do(func() { close(rl.done) })
}

func (rl *RateLimiter) getLimiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, exists := rl.visitors[ip]
	if !exists {
		v = &visitor{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.visitors[ip] = v
	}
	v.lastSeen = time.Now()

	return v.limiter
}

// evictIdle drops limiters not used since before cutoff.
func (rl *RateLimiter) evictIdle(cutoff time.Time) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	n := 0
	for ip, v := range rl.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(rl.visitors, ip)
			n++
		}
	}
	return n
}

func (rl *RateLimiter) cleanupOldLimiters(interval time.Duration) {
	defer close(rl.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := rl.evictIdle(time.Now().Add(-limiterIdleTimeout)); n > 0 {
				log.Debug("evicted idle rate limiters", "count", n)
			}
		case <-rl.stop:
			return
		}
	}
}

// RateLimitMiddleware creates a Gin middleware for rate limiting. Building
// several middlewares on one limiter shares a single sweeper.
func RateLimitMiddleware(rl *RateLimiter) gin.HandlerFunc {
	rl.start()

	return func(c *gin.Context) {
		ip := c.ClientIP()
		limiter := rl.getLimiter(ip)

		if !limiter.Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "Rate limit exceeded. Please try again later.",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// MaxBytesMiddleware limits the size of request bodies
func MaxBytesMiddleware(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{
				"error": "Request body too large",
			})
			c.Abort()
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// RequestLogMiddleware tags each request with an id, echoed in the response,
// and logs it once it completes.
func RequestLogMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIdHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set(requestIdKey, id)
		c.Header(RequestIdHeader, id)

		start := time.Now()
		c.Next()

		log.Info("http",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"request_id", id,
		)
	}
}

// ViewerMiddleware resolves the X-Viewer-Id header to an existing account.
// A request without the header proceeds anonymously.
func ViewerMiddleware(store *db.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader(ViewerHeader)
		if h == "" {
			c.Next()
			return
		}

		id, err := strconv.ParseInt(h, 10, 64)
		if err != nil || id <= 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid " + ViewerHeader})
			return
		}
		if _, err := store.ReadAccById(id); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unknown viewer"})
				return
			}
			writeError(c, err)
			return
		}

		c.Set(viewerKey, id)
		c.Next()
	}
}

func viewerId(c *gin.Context) (int64, bool) {
	v, ok := c.Get(viewerKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

// requireViewer writes a 401 and reports false when the request is anonymous.
func requireViewer(c *gin.Context) (int64, bool) {
	id, ok := viewerId(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": ViewerHeader + " header required"})
	}
	return id, ok
}

func requestId(c *gin.Context) string {
	return c.GetString(requestIdKey)
}
