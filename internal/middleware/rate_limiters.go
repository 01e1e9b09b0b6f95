package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/windoze95/saltybytes-chef/internal/util"
	"golang.org/x/time/rate"
)

// limiterInfo is a struct that holds a rate limiter and the last time it was seen.
type limiterInfo struct {
	limiter  *rate.Limiter
	mu       sync.Mutex
	lastSeen time.Time
}

func (l *limiterInfo) touch() {
	l.mu.Lock()
	l.lastSeen = time.Now()
	l.mu.Unlock()
}

func (l *limiterInfo) idle() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	return time.Since(l.lastSeen)
}

// keyedLimiter hands out one token bucket per key and forgets keys that have
// been idle longer than expiration.
type keyedLimiter struct {
	limiters sync.Map
	limit    rate.Limit
	burst    int
}

func newKeyedLimiter(limit rate.Limit, burst int, cleanupInterval, expiration time.Duration) *keyedLimiter {
	kl := &keyedLimiter{limit: limit, burst: burst}
	if cleanupInterval > 0 {
		go func() {
			for range time.Tick(cleanupInterval) {
				kl.limiters.Range(func(key, value interface{}) bool {
					if value.(*limiterInfo).idle() > expiration {
						kl.limiters.Delete(key)
					}
					return true
				})
			}
		}()
	}
	return kl
}

func (kl *keyedLimiter) allow(key string) bool {
	// Use LoadOrStore to ensure thread safety
	actual, _ := kl.limiters.LoadOrStore(key, &limiterInfo{
		limiter:  rate.NewLimiter(kl.limit, kl.burst),
		lastSeen: time.Now(),
	})
	info := actual.(*limiterInfo)
	info.touch()
	return info.limiter.Allow()
}

func tooManyRequests(c *gin.Context) {
	c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests"})
	c.Abort()
}

// RateLimitByIP applies rate limiting to requests per IP address.
func RateLimitByIP(rps int, cleanupInterval time.Duration, expiration time.Duration) gin.HandlerFunc {
	kl := newKeyedLimiter(rate.Limit(rps), rps, cleanupInterval, expiration)

	return func(c *gin.Context) {
		if !kl.allow(c.ClientIP()) {
			tooManyRequests(c)
			return
		}
		c.Next()
	}
}

// RateLimitByUser applies rate limiting per authenticated user, falling back
// to the client IP when no user is attached. It must run after
// VerifyTokenMiddleware.
func RateLimitByUser(perSecond float64, burst int, cleanupInterval time.Duration, expiration time.Duration) gin.HandlerFunc {
	if burst < 1 {
		burst = 1
	}
	kl := newKeyedLimiter(rate.Limit(perSecond), burst, cleanupInterval, expiration)

	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP()
		if userID, err := util.GetUserIDFromContext(c); err == nil {
			key = "user:" + strconv.FormatUint(uint64(userID), 10)
		}
		if !kl.allow(key) {
			tooManyRequests(c)
			return
		}
		c.Next()
	}
}
