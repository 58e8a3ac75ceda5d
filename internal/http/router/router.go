package router

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/sprinkle-fairydust/site-api/internal/auth"
	"github.com/sprinkle-fairydust/site-api/internal/config"
	"github.com/sprinkle-fairydust/site-api/internal/database"
	"github.com/sprinkle-fairydust/site-api/internal/http/handler"
	"github.com/sprinkle-fairydust/site-api/internal/http/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "github.com/sprinkle-fairydust/site-api/docs" // Import generated swagger docs
)

type Router struct {
	cfg                *config.Config
	logger             *zap.Logger
	db                 *gorm.DB
	redis              *redis.Client
	authMiddleware     *auth.Middleware
	rateLimiter        *middleware.RateLimiter
	quoteHandler       *handler.QuoteHandler
	signedLinkHandler  *handler.SignedLinkHandler
	trackingHandler    *handler.TrackingHandler
	testimonialHandler *handler.TestimonialHandler
}

// NewRouter wires the handlers. redisClient may be nil when no Redis is
// configured.
func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	redisClient *redis.Client,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	quoteHandler *handler.QuoteHandler,
	signedLinkHandler *handler.SignedLinkHandler,
	trackingHandler *handler.TrackingHandler,
	testimonialHandler *handler.TestimonialHandler,
) *Router {
	return &Router{
		cfg:                cfg,
		logger:             logger,
		db:                 db,
		redis:              redisClient,
		authMiddleware:     authMiddleware,
		rateLimiter:        rateLimiter,
		quoteHandler:       quoteHandler,
		signedLinkHandler:  signedLinkHandler,
		trackingHandler:    trackingHandler,
		testimonialHandler: testimonialHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))

	// Health check (basic liveness probe)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// Database health check (readiness probe with detailed stats)
	r.Get("/health/db", func(w http.ResponseWriter, r *http.Request) {
		stats, err := database.HealthCheckWithStats(rt.db)
		if err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
				"status":  "unhealthy",
				"error":   err.Error(),
				"service": "database",
			})
			return
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status":  "healthy",
			"service": "database",
			"stats": map[string]interface{}{
				"max_open_connections": stats.MaxOpenConnections,
				"open_connections":     stats.OpenConnections,
				"in_use":               stats.InUse,
				"idle":                 stats.Idle,
				"wait_count":           stats.WaitCount,
				"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
				"max_idle_closed":      stats.MaxIdleClosed,
				"max_lifetime_closed":  stats.MaxLifetimeClosed,
			},
		})
	})

	// Combined readiness check (checks all dependencies)
	r.Get("/health/ready", rt.ready)

	// Swagger documentation
	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	// Public API
	r.Route("/api", func(r chi.Router) {
		r.With(rt.rateLimiter.LimitByIP).Post("/quotes", rt.quoteHandler.Submit)

		r.With(rt.rateLimiter.LimitTracking).Post("/tracking/page-views", rt.trackingHandler.TrackPageView)

		r.Route("/testimonials", func(r chi.Router) {
			r.Use(rt.rateLimiter.LimitByIP)
			r.Get("/", rt.testimonialHandler.ListApproved)
			r.Post("/", rt.testimonialHandler.Submit)
		})
	})

	// Signed links from quote emails. The open pixel is fetched by shared
	// mail proxies and must always answer with the image, so it is not
	// rate limited.
	r.Route("/quotes/{id}", func(r chi.Router) {
		r.With(middleware.ImageResponse).Get("/open", rt.signedLinkHandler.Open)

		r.Group(func(r chi.Router) {
			r.Use(rt.rateLimiter.LimitByIP)
			r.Get("/confirm", rt.signedLinkHandler.Confirm)
			r.Get("/suggest-time", rt.signedLinkHandler.SuggestTimeForm)
			r.Post("/suggest-time", rt.signedLinkHandler.SuggestTimeSubmit)
		})
	})

	// Back office
	r.Route("/admin", func(r chi.Router) {
		r.Use(rt.rateLimiter.LimitByIP)
		r.Use(rt.authMiddleware.Authenticate)
		r.Use(rt.authMiddleware.RequireAdmin)

		r.Route("/quotes", func(r chi.Router) {
			r.Get("/list", rt.quoteHandler.List)
			r.Post("/", rt.quoteHandler.Create)
			r.Get("/{id}", rt.quoteHandler.GetByID)
			r.Put("/{id}", rt.quoteHandler.Update)
			r.Delete("/{id}", rt.quoteHandler.Delete)

			// Lifecycle endpoints
			r.Put("/{id}/pricing", rt.quoteHandler.UpdatePricing)
			r.Post("/{id}/send-email", rt.quoteHandler.SendEmail)
			r.Post("/{id}/decline", rt.quoteHandler.Decline)
		})

		r.Get("/tracking/stats", rt.trackingHandler.Stats)

		r.Route("/testimonials", func(r chi.Router) {
			r.Get("/list", rt.testimonialHandler.List)
			r.Post("/", rt.testimonialHandler.Create)
			r.Put("/{id}", rt.testimonialHandler.Update)
			r.Delete("/{id}", rt.testimonialHandler.Delete)
		})
	})

	return r
}

func (rt *Router) ready(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]interface{})
	allHealthy := true

	// Check database
	if err := database.HealthCheck(rt.db); err != nil {
		rt.logger.Error("Database health check failed", zap.Error(err))
		checks["database"] = map[string]interface{}{
			"status": "unhealthy",
			"error":  err.Error(),
		}
		allHealthy = false
	} else {
		checks["database"] = map[string]interface{}{
			"status": "healthy",
		}
	}

	// Redis failures are reported without failing readiness
	if rt.redis != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := rt.redis.Ping(ctx).Err(); err != nil {
			rt.logger.Warn("Redis health check failed", zap.Error(err))
			checks["redis"] = map[string]interface{}{
				"status": "degraded",
				"error":  err.Error(),
			}
		} else {
			checks["redis"] = map[string]interface{}{
				"status": "healthy",
			}
		}
	}

	status := http.StatusOK
	overall := "healthy"
	if !allHealthy {
		status = http.StatusServiceUnavailable
		overall = "unhealthy"
	}
	writeJSON(w, status, map[string]interface{}{
		"status": overall,
		"checks": checks,
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
