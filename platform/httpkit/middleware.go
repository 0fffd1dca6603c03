// Package httpkit provides HTTP middleware infrastructure.
// This is part of the platform layer and contains no business logic.
package httpkit

import (
	"net/http"
	"sync"
	"time"

	"leadpulse_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// ContextTenantIDKey is the gin context key for the tenant ID.
const ContextTenantIDKey = "tenantID"

// RequestLogger logs HTTP requests with timing.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		clientIP := c.ClientIP()

		log.HTTPRequest(c.Request.Method, path, status, float64(latency.Milliseconds()), clientIP)
	}
}

// SecurityHeaders adds security headers to responses.
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		if c.Request.TLS != nil {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}

// TenantResolver reads the tenant ID from the X-Tenant-ID header and stores
// it on the request context. Requests without a valid tenant are rejected;
// isolation policy beyond that is the responsibility of the caller's platform.
func TenantResolver() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader("X-Tenant-ID")
		tenantID, err := uuid.Parse(raw)
		if err != nil {
			Error(c, http.StatusBadRequest, "missing or invalid X-Tenant-ID header", nil)
			c.Abort()
			return
		}
		c.Set(ContextTenantIDKey, tenantID)
		c.Next()
	}
}

// MustGetTenantID returns the tenant ID resolved by TenantResolver.
// Writes a 500 and returns false if the middleware did not run.
func MustGetTenantID(c *gin.Context) (uuid.UUID, bool) {
	val, ok := c.Get(ContextTenantIDKey)
	if !ok {
		Error(c, http.StatusInternalServerError, "tenant not resolved", nil)
		return uuid.Nil, false
	}
	tenantID, ok := val.(uuid.UUID)
	if !ok {
		Error(c, http.StatusInternalServerError, "tenant not resolved", nil)
		return uuid.Nil, false
	}
	return tenantID, true
}

// IPRateLimiter manages per-IP rate limiters.
type IPRateLimiter struct {
	limiters sync.Map
	rate     rate.Limit
	burst    int
	log      *logger.Logger
}

// NewIPRateLimiter creates a new IP-based rate limiter.
func NewIPRateLimiter(r rate.Limit, burst int, log *logger.Logger) *IPRateLimiter {
	return &IPRateLimiter{
		rate:  r,
		burst: burst,
		log:   log,
	}
}

// Middleware returns the gin middleware enforcing the per-IP limit.
func (l *IPRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		limiterAny, _ := l.limiters.LoadOrStore(ip, rate.NewLimiter(l.rate, l.burst))
		limiter := limiterAny.(*rate.Limiter)

		if !limiter.Allow() {
			l.log.RateLimitExceeded(ip, c.Request.URL.Path)
			Error(c, http.StatusTooManyRequests, "rate limit exceeded", nil)
			c.Abort()
			return
		}

		c.Next()
	}
}
