package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/cors"
	"github.com/sprinkle-fairydust/site-api/internal/config"
	"go.uber.org/zap"
)

// AdminKeyHeader carries the back-office API key
const AdminKeyHeader = "X-API-Key"

// CORS returns the cross-origin policy for the site frontend and the back
// office. The admin key header is always allowed so a browser-based admin
// can authenticate with it.
func CORS(cfg *config.CORSConfig, environment string, logger *zap.Logger) func(http.Handler) http.Handler {
	options := cors.Options{
		AllowedMethods:   cfg.AllowedMethods,
		AllowedHeaders:   withHeader(cfg.AllowedHeaders, AdminKeyHeader),
		ExposedHeaders:   cfg.ExposedHeaders,
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	}

	devMode := environment == "development" || environment == "local" || environment == ""

	switch {
	case containsString(cfg.AllowedOrigins, "*"):
		if !devMode {
			logger.Warn("CORS allows every origin outside development",
				zap.String("environment", environment))
		}
		options.AllowOriginFunc = anyOrigin
	case len(cfg.AllowedOrigins) > 0:
		options.AllowedOrigins = cfg.AllowedOrigins
		logger.Info("CORS configured with explicit origins",
			zap.Strings("origins", cfg.AllowedOrigins))
	case devMode:
		options.AllowOriginFunc = anyOrigin
		logger.Info("CORS allows every origin in development")
	default:
		// An empty AllowedOrigins means "*" to go-chi/cors, so deny explicitly
		options.AllowOriginFunc = func(*http.Request, string) bool { return false }
		logger.Warn("CORS has no allowed origins, cross-origin requests are denied",
			zap.String("environment", environment))
	}

	return cors.Handler(options)
}

func anyOrigin(_ *http.Request, origin string) bool {
	return origin != ""
}

func withHeader(headers []string, header string) []string {
	for _, h := range headers {
		if strings.EqualFold(h, header) {
			return headers
		}
	}
	return append(append([]string(nil), headers...), header)
}

func containsString(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
