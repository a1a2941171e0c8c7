package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/law-makers/pricewatch/internal/ratelimit"
)

const sweepInterval = 5 * time.Minute

// RateLimit returns per-client-IP token-bucket middleware. Idle buckets are
// swept at most every few minutes, piggybacking on incoming requests.
func RateLimit(kl *ratelimit.KeyedLimiter) gin.HandlerFunc {
	var (
		mu        sync.Mutex
		lastSweep = time.Now()
	)

	return func(c *gin.Context) {
		mu.Lock()
		if time.Since(lastSweep) > sweepInterval {
			lastSweep = time.Now()
			mu.Unlock()
			kl.Sweep()
		} else {
			mu.Unlock()
		}

		ip := c.ClientIP()
		if !kl.Allow(ip) {
			wait := kl.RetryAfter(ip)
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "RATE_LIMITED",
					"message": "rate limit exceeded, please slow down",
				},
			})
			return
		}

		c.Next()
	}
}
