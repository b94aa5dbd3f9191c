package ratelimit

import (
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"
)

// Config holds rate limiting configuration for the credential endpoints.
// Limits are per client IP: password guessing spreads across usernames, so
// keying by username would miss it.
type Config struct {
	Capacity   int     // Max burst per IP
	RefillRate float64 // Requests per second per IP
	BucketTTL  time.Duration
}

// DefaultConfig returns a sensible default configuration: 10 attempts
// burst, refilling one every 6 seconds
func DefaultConfig() *Config {
	return &Config{
		Capacity:   10,
		RefillRate: 10.0 / 60.0,
		BucketTTL:  1 * time.Hour,
	}
}

// Middleware limits request rate per client IP
type Middleware struct {
	limiter *RateLimiter
}

// NewMiddleware creates a new rate limiting middleware
func NewMiddleware(config *Config) *Middleware {
	if config == nil {
		config = DefaultConfig()
	}
	return &Middleware{
		limiter: NewRateLimiter(config.Capacity, config.RefillRate, config.BucketTTL),
	}
}

// Handler wraps next with the per-IP limit
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if !m.limiter.Allow(ip) {
			slog.Warn("Rate limit exceeded", "ip", ip, "path", r.URL.Path)
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP extracts the client address, preferring X-Forwarded-For when a
// proxy set it
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if first, _, ok := strings.Cut(xff, ","); ok {
			return strings.TrimSpace(first)
		}
		return strings.TrimSpace(xff)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
