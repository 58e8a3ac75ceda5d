package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/sprinkle-fairydust/site-api/internal/config"
	"go.uber.org/zap"
)

// Middleware handles authentication for admin HTTP requests
type Middleware struct {
	jwtValidator *JWTValidator
	apiKey       string
	logger       *zap.Logger
}

// NewMiddleware creates a new authentication middleware
func NewMiddleware(cfg *config.AdminAuthConfig, logger *zap.Logger) *Middleware {
	return &Middleware{
		jwtValidator: NewJWTValidator(cfg.JWTSecret),
		apiKey:       cfg.APIKey,
		logger:       logger,
	}
}

// Authenticate resolves the caller from an x-api-key header or a bearer
// token. Requests without valid credentials are rejected with 403; the
// reason is logged, never returned.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		admin, reason := m.authenticate(r)
		if admin == nil {
			m.logger.Warn("admin authentication failed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("remote_addr", r.RemoteAddr),
				zap.String("reason", reason),
			)
			forbidden(w)
			return
		}

		m.logger.Debug("request authenticated",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("auth_type", string(admin.Method)),
			zap.String("subject", admin.Subject),
			zap.Duration("auth_duration", time.Since(start)),
		)

		next.ServeHTTP(w, r.WithContext(WithAdminContext(r.Context(), admin)))
	})
}

func (m *Middleware) authenticate(r *http.Request) (*AdminContext, string) {
	if apiKey := r.Header.Get("x-api-key"); apiKey != "" {
		if !m.validateAPIKey(apiKey) {
			return nil, "invalid api key"
		}
		return &AdminContext{Subject: "system", Method: MethodAPIKey}, ""
	}

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, "missing authorization header"
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, "invalid authorization header format"
	}

	admin, err := m.jwtValidator.ValidateToken(strings.TrimSpace(parts[1]))
	if err != nil {
		return nil, err.Error()
	}
	return admin, ""
}

// RequireAdmin ensures the authenticated caller holds the admin role
func (m *Middleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		admin, ok := FromContext(r.Context())
		if !ok || !admin.IsAdmin() {
			forbidden(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (m *Middleware) validateAPIKey(key string) bool {
	if m.apiKey == "" {
		return false
	}
	// Constant-time comparison to prevent timing attacks
	return subtle.ConstantTimeCompare([]byte(key), []byte(m.apiKey)) == 1
}

func forbidden(w http.ResponseWriter) {
	http.Error(w, "Forbidden", http.StatusForbidden)
}
