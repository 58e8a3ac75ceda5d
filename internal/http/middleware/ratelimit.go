package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/httprate"
	"github.com/sprinkle-fairydust/site-api/internal/config"
	"go.uber.org/zap"
)

// RateLimiter holds the per-IP limiters for the public endpoints
type RateLimiter struct {
	cfg             *config.RateLimitConfig
	logger          *zap.Logger
	ipLimiter       func(http.Handler) http.Handler
	trackingLimiter func(http.Handler) http.Handler
	whitelistIPs    map[string]bool
	whitelistPaths  map[string]bool
}

// NewRateLimiter creates a new rate limiter with the given configuration
func NewRateLimiter(cfg *config.RateLimitConfig, logger *zap.Logger) *RateLimiter {
	rl := &RateLimiter{
		cfg:            cfg,
		logger:         logger,
		whitelistIPs:   make(map[string]bool),
		whitelistPaths: make(map[string]bool),
	}

	for _, ip := range cfg.WhitelistIPs {
		rl.whitelistIPs[ip] = true
	}
	for _, path := range cfg.WhitelistPaths {
		rl.whitelistPaths[path] = true
	}

	rl.ipLimiter = httprate.Limit(
		cfg.RequestsPerMinute,
		time.Minute,
		httprate.WithKeyFuncs(keyByClientIP),
		httprate.WithLimitHandler(rl.rateLimitExceededHandler),
	)

	// Page views arrive far more often than form posts, so they get their own budget
	rl.trackingLimiter = httprate.Limit(
		cfg.TrackingRequestsPerMinute,
		time.Minute,
		httprate.WithKeyFuncs(keyByClientIP),
		httprate.WithLimitHandler(rl.rateLimitExceededHandler),
	)

	logger.Info("Rate limiter initialized",
		zap.Bool("enabled", cfg.Enabled),
		zap.Int("requests_per_minute", cfg.RequestsPerMinute),
		zap.Int("tracking_requests_per_minute", cfg.TrackingRequestsPerMinute),
		zap.Strings("whitelist_ips", cfg.WhitelistIPs),
		zap.Strings("whitelist_paths", cfg.WhitelistPaths),
	)

	return rl
}

// LimitByIP limits public form submissions per client IP
func (rl *RateLimiter) LimitByIP(next http.Handler) http.Handler {
	return rl.wrap(rl.ipLimiter, next)
}

// LimitTracking limits analytics ingestion per client IP
func (rl *RateLimiter) LimitTracking(next http.Handler) http.Handler {
	return rl.wrap(rl.trackingLimiter, next)
}

func (rl *RateLimiter) wrap(limiter func(http.Handler) http.Handler, next http.Handler) http.Handler {
	if !rl.cfg.Enabled {
		return next
	}
	limited := limiter(next)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rl.isPathWhitelisted(r.URL.Path) || rl.isIPWhitelisted(ClientIP(r)) {
			next.ServeHTTP(w, r)
			return
		}
		limited.ServeHTTP(w, r)
	})
}

func keyByClientIP(r *http.Request) (string, error) {
	return "ip:" + ClientIP(r), nil
}

// isIPWhitelisted checks if the IP is in the whitelist
func (rl *RateLimiter) isIPWhitelisted(ip string) bool {
	return rl.whitelistIPs[ip]
}

// isPathWhitelisted checks if the path is in the whitelist
func (rl *RateLimiter) isPathWhitelisted(path string) bool {
	if rl.whitelistPaths[path] {
		return true
	}

	// Check prefix match for paths ending with /*
	for wp := range rl.whitelistPaths {
		if strings.HasSuffix(wp, "/*") {
			prefix := strings.TrimSuffix(wp, "/*")
			if strings.HasPrefix(path, prefix) {
				return true
			}
		}
	}

	return false
}

// rateLimitExceededHandler handles rate limit exceeded responses
func (rl *RateLimiter) rateLimitExceededHandler(w http.ResponseWriter, r *http.Request) {
	rl.logger.Warn("rate limit exceeded",
		zap.String("path", r.URL.Path),
		zap.String("method", r.Method),
		zap.String("client_ip", ClientIP(r)),
	)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Retry-After", "60")
	w.WriteHeader(http.StatusTooManyRequests)
	_, _ = w.Write([]byte(`{"error":"rate limit exceeded","message":"Too many requests. Please try again later."}`))
}
