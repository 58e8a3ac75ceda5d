package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sprinkle-fairydust/site-api/docs"
	"github.com/sprinkle-fairydust/site-api/internal/auth"
	"github.com/sprinkle-fairydust/site-api/internal/config"
	"github.com/sprinkle-fairydust/site-api/internal/database"
	"github.com/sprinkle-fairydust/site-api/internal/geoip"
	"github.com/sprinkle-fairydust/site-api/internal/http/handler"
	"github.com/sprinkle-fairydust/site-api/internal/http/middleware"
	"github.com/sprinkle-fairydust/site-api/internal/http/router"
	"github.com/sprinkle-fairydust/site-api/internal/jobs"
	"github.com/sprinkle-fairydust/site-api/internal/logger"
	"github.com/sprinkle-fairydust/site-api/internal/notification"
	"github.com/sprinkle-fairydust/site-api/internal/repository"
	"github.com/sprinkle-fairydust/site-api/internal/service"
	"github.com/sprinkle-fairydust/site-api/internal/signedlink"
	"go.uber.org/zap"
)

// @title Sprinkle Fairydust Site API
// @version 1.0
// @description Quote requests, quote lifecycle links, visitor analytics and testimonials for the Sprinkle Fairydust face painting site

// @contact.name Sprinkle Fairydust
// @contact.email hello@sprinklefairydust.com.au

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name x-api-key
// @description Back office API key

const geoipPruneTimeout = 2 * time.Minute

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// Load basic configuration first (for logging setup)
	basicCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(&basicCfg.Logging, &basicCfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", basicCfg.App.Name),
		zap.String("env", basicCfg.App.Environment),
		zap.Int("port", basicCfg.App.Port),
	)

	if host := basicCfg.App.Host(); host != "" && basicCfg.App.Environment != "development" {
		docs.SwaggerInfo.Host = host
	} else {
		docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", basicCfg.App.Port)
	}

	// Load full configuration with secrets
	// In development: uses environment variables
	// In staging/production: fetches from Azure Key Vault
	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}
	if cfg.SignedLinks.Secret == "" {
		return fmt.Errorf("APP_KEY is required to sign quote links")
	}

	db, err := database.NewDatabase(&cfg.Database, log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if cfg.Database.AutoMigrate {
		if err := database.AutoMigrate(db); err != nil {
			return fmt.Errorf("failed to auto-migrate: %w", err)
		}
		log.Info("Database schema auto-migrated")
	}

	// Redis is optional; without it the GeoIP cache falls back to the database
	var redisClient *redis.Client
	if cfg.GeoIP.CacheDriver == "redis" {
		redisClient, err = database.NewRedisClient(&cfg.Redis, log)
		if err != nil {
			log.Warn("Redis unavailable, using database GeoIP cache", zap.Error(err))
			cfg.GeoIP.CacheDriver = "database"
		}
	}

	// Initialize repositories
	quoteRepo := repository.NewQuoteRepository(db)
	pageViewRepo := repository.NewPageViewRepository(db)
	testimonialRepo := repository.NewTestimonialRepository(db)
	geoipCacheRepo := repository.NewGeoIPCacheRepository(db)

	// Outbound mail
	mailer, err := notification.NewMailer(&cfg.Mail, log)
	if err != nil {
		return fmt.Errorf("failed to configure mailer: %w", err)
	}
	renderer, err := notification.NewTemplateRenderer()
	if err != nil {
		return fmt.Errorf("failed to load email templates: %w", err)
	}
	dispatcher := notification.NewDispatcher(mailer, renderer, cfg.Mail, cfg.Notifications, cfg.App.BaseURL(), log)
	log.Info("Mail configured",
		zap.String("mailer", dispatcher.MailerName()),
		zap.Bool("sender_configured", dispatcher.SenderConfigured()),
	)

	links := signedlink.NewIssuer(cfg.App.BaseURL(), cfg.SignedLinks.Secret, cfg.SignedLinks.Expiry())

	resolver, closeGeoIP := newCountryResolver(cfg, redisClient, geoipCacheRepo, log)
	defer closeGeoIP()

	// Initialize services
	quoteService := service.NewQuoteService(quoteRepo, dispatcher, links, log)
	trackingService := service.NewTrackingService(pageViewRepo, quoteRepo, resolver, cfg.App.Host(), log)
	testimonialService := service.NewTestimonialService(testimonialRepo, dispatcher, log)

	// Initialize middleware
	authMiddleware := auth.NewMiddleware(&cfg.AdminAuth, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	// Initialize handlers
	pages, err := handler.NewPageRenderer(cfg.App.BaseURL(), log)
	if err != nil {
		return fmt.Errorf("failed to load page templates: %w", err)
	}
	quoteHandler := handler.NewQuoteHandler(quoteService, log)
	signedLinkHandler := handler.NewSignedLinkHandler(quoteService, links, pages, log)
	trackingHandler := handler.NewTrackingHandler(trackingService, log)
	testimonialHandler := handler.NewTestimonialHandler(testimonialService, log)

	rt := router.NewRouter(
		cfg,
		log,
		db,
		redisClient,
		authMiddleware,
		rateLimiter,
		quoteHandler,
		signedLinkHandler,
		trackingHandler,
		testimonialHandler,
	)

	scheduler := startScheduler(cfg, geoipCacheRepo, log)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      http.TimeoutHandler(rt.Setup(), cfg.Server.RequestTimeoutDuration(), "request timed out"),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	// Start server in goroutine
	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		if scheduler != nil {
			<-scheduler.Stop().Done()
			log.Info("Scheduler stopped")
		}

		// Graceful shutdown with timeout
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		if redisClient != nil {
			if err := redisClient.Close(); err != nil {
				log.Warn("Error closing Redis connection", zap.Error(err))
			}
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}

// newCountryResolver builds the GeoIP chain from configuration. The
// returned func releases the MaxMind database, if one was opened.
func newCountryResolver(cfg *config.Config, redisClient *redis.Client, dbCache *repository.GeoIPCacheRepository, log *zap.Logger) (*geoip.Resolver, func()) {
	var lookups []geoip.Lookup
	var closer io.Closer

	if cfg.GeoIP.DatabasePath != "" {
		mm, err := geoip.OpenMaxMind(cfg.GeoIP.DatabasePath)
		if err != nil {
			log.Warn("GeoIP database unavailable", zap.String("path", cfg.GeoIP.DatabasePath), zap.Error(err))
		} else {
			lookups = append(lookups, mm)
			closer = mm
		}
	}
	if cfg.GeoIP.Endpoint != "" {
		lookups = append(lookups, geoip.NewHTTPLookup(cfg.GeoIP.Endpoint, cfg.GeoIP.Token, cfg.GeoIP.TimeoutDuration()))
	}

	var cache geoip.Cache
	switch cfg.GeoIP.CacheDriver {
	case "redis":
		cache = geoip.NewRedisCache(redisClient)
	case "memory":
		cache = geoip.NewMemoryCache()
	default:
		cache = dbCache
	}

	log.Info("GeoIP resolver configured",
		zap.Int("lookups", len(lookups)),
		zap.String("cache", cfg.GeoIP.CacheDriver),
	)

	return geoip.NewResolver(cache, cfg.GeoIP.CacheTTL(), log, lookups...), func() {
		if closer != nil {
			_ = closer.Close()
		}
	}
}

// startScheduler starts background jobs, returning nil when there is
// nothing to run
func startScheduler(cfg *config.Config, geoipCache *repository.GeoIPCacheRepository, log *zap.Logger) *jobs.Scheduler {
	if !cfg.Jobs.Enabled || cfg.GeoIP.CacheDriver != "database" {
		log.Info("Background jobs disabled",
			zap.Bool("jobs_enabled", cfg.Jobs.Enabled),
			zap.String("geoip_cache", cfg.GeoIP.CacheDriver),
		)
		return nil
	}

	scheduler := jobs.NewScheduler(log)
	if err := jobs.RegisterGeoIPCachePruneJob(scheduler, geoipCache, log, cfg.GeoIP.CachePruneCron, geoipPruneTimeout); err != nil {
		log.Error("Failed to register GeoIP cache prune job", zap.Error(err))
		return nil
	}

	scheduler.Start()
	return scheduler
}
