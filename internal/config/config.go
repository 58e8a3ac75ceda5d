package config

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sprinkle-fairydust/site-api/internal/secrets"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Config holds all application configuration
type Config struct {
	App           AppConfig
	Database      DatabaseConfig
	Mail          MailConfig
	Notifications NotificationsConfig
	SignedLinks   SignedLinksConfig
	GeoIP         GeoIPConfig
	Redis         RedisConfig
	AdminAuth     AdminAuthConfig
	Secrets       SecretsConfig
	Logging       LoggingConfig
	Server        ServerConfig
	CORS          CORSConfig
	Security      SecurityConfig
	RateLimit     RateLimitConfig
	Jobs          JobsConfig
}

type AppConfig struct {
	Name        string
	Environment string
	Port        int
	// URL is the public base URL used for absolute links and self-referrer exclusion
	URL string
}

type DatabaseConfig struct {
	Host            string
	Port            int
	Name            string
	User            string
	Password        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int
	AutoMigrate     bool
}

// MailConfig selects and configures the outbound mail transport
type MailConfig struct {
	// Driver is "resend", "smtp" or "log"
	Driver       string
	FromAddress  string
	FromName     string
	ResendAPIKey string
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	// TimeoutSeconds bounds a single send
	TimeoutSeconds int
}

// NotificationsConfig holds per-kind recipient overrides
type NotificationsConfig struct {
	QuoteNotificationEmail           string
	QuoteConfirmedNotificationEmail  string
	QuoteRescheduleNotificationEmail string
	TestimonialNotificationEmail     string
	QuoteAdminCopyEmail              string
}

// SignedLinksConfig configures the expiring links embedded in quote emails
type SignedLinksConfig struct {
	Secret     string
	ExpiryDays int
}

// GeoIPConfig configures country resolution for analytics
type GeoIPConfig struct {
	// DatabasePath points at a local MaxMind country database (optional)
	DatabasePath string
	// Endpoint is an HTTP GeoIP API; may contain an {ip} placeholder
	Endpoint        string
	Token           string
	TimeoutSeconds  int
	CacheTTLMinutes int
	// CacheDriver is "redis", "database" or "memory"
	CacheDriver    string
	CachePruneCron string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// AdminAuthConfig configures access to the back office routes
type AdminAuthConfig struct {
	APIKey    string
	JWTSecret string
}

type SecretsConfig struct {
	// Source determines where secrets are loaded from: "environment", "vault", or "auto"
	// "auto" uses environment in development, vault in staging/production
	Source       string
	KeyVaultName string
	CacheEnabled bool
	CacheTTL     int // seconds
}

type LoggingConfig struct {
	Level  string
	Format string
}

type ServerConfig struct {
	ReadTimeout    int
	WriteTimeout   int
	RequestTimeout int
	EnableSwagger  bool
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	// AllowedOrigins is a list of allowed origins for CORS requests
	// Use "*" to allow all origins (not recommended for production)
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	// MaxAge is the max age (in seconds) for preflight cache
	MaxAge int
}

// SecurityConfig holds security header configuration
type SecurityConfig struct {
	EnableHSTS            bool
	HSTSMaxAge            int
	HSTSIncludeSubdomains bool
	HSTSPreload           bool
	ContentSecurityPolicy string
	// FrameOptions sets the X-Frame-Options header (DENY, SAMEORIGIN, or empty to disable)
	FrameOptions       string
	ContentTypeNosniff bool
	ReferrerPolicy     string
	PermissionsPolicy  string
}

// RateLimitConfig holds rate limiting configuration for the public endpoints
type RateLimitConfig struct {
	Enabled bool
	// RequestsPerMinute is the limit per client IP
	RequestsPerMinute int
	// TrackingRequestsPerMinute is the limit per client IP on analytics ingestion
	TrackingRequestsPerMinute int
	WhitelistIPs              []string
	WhitelistPaths            []string
}

// JobsConfig toggles the background scheduler
type JobsConfig struct {
	Enabled bool
}

// ConnectionString builds PostgreSQL connection string
func (d *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

// ConnMaxLifetimeDuration returns connection max lifetime as duration
func (d *DatabaseConfig) ConnMaxLifetimeDuration() time.Duration {
	return time.Duration(d.ConnMaxLifetime) * time.Second
}

// ReadTimeoutDuration returns read timeout as duration
func (s *ServerConfig) ReadTimeoutDuration() time.Duration {
	return time.Duration(s.ReadTimeout) * time.Second
}

// WriteTimeoutDuration returns write timeout as duration
func (s *ServerConfig) WriteTimeoutDuration() time.Duration {
	return time.Duration(s.WriteTimeout) * time.Second
}

// RequestTimeoutDuration returns request timeout as duration
func (s *ServerConfig) RequestTimeoutDuration() time.Duration {
	return time.Duration(s.RequestTimeout) * time.Second
}

// TimeoutDuration returns the per-send timeout
func (m *MailConfig) TimeoutDuration() time.Duration {
	if m.TimeoutSeconds < 1 {
		return 10 * time.Second
	}
	return time.Duration(m.TimeoutSeconds) * time.Second
}

// Expiry returns the signed link lifetime
func (s *SignedLinksConfig) Expiry() time.Duration {
	days := s.ExpiryDays
	if days < 1 {
		days = 45
	}
	return time.Duration(days) * 24 * time.Hour
}

// TimeoutDuration returns the HTTP lookup timeout, never below one second
func (g *GeoIPConfig) TimeoutDuration() time.Duration {
	return time.Duration(max(1, g.TimeoutSeconds)) * time.Second
}

// CacheTTL returns how long a resolved country is cached, never below five minutes
func (g *GeoIPConfig) CacheTTL() time.Duration {
	return time.Duration(max(5, g.CacheTTLMinutes)) * time.Minute
}

// Host returns the lower-cased host of the application URL
func (a *AppConfig) Host() string {
	u, err := url.Parse(a.URL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

// BaseURL returns the application URL without a trailing slash
func (a *AppConfig) BaseURL() string {
	return strings.TrimRight(a.URL, "/")
}

// Load loads configuration from file and environment variables
// This is a basic load that doesn't fetch secrets from vault
// Use LoadWithSecrets for full secret resolution
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Environment variables override config file
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyEnvAliases(v, &cfg)

	return &cfg, nil
}

// applyEnvAliases fills values from the conventional flat environment names
// when the nested keys were not set
func applyEnvAliases(v *viper.Viper, cfg *Config) {
	aliases := []struct {
		target *string
		env    string
	}{
		{&cfg.App.URL, "APP_URL"},
		{&cfg.Mail.Driver, "MAIL_MAILER"},
		{&cfg.Mail.FromAddress, "MAIL_FROM_ADDRESS"},
		{&cfg.Mail.FromName, "MAIL_FROM_NAME"},
		{&cfg.Mail.ResendAPIKey, "RESEND_API_KEY"},
		{&cfg.Mail.SMTPHost, "MAIL_HOST"},
		{&cfg.Mail.SMTPUsername, "MAIL_USERNAME"},
		{&cfg.Mail.SMTPPassword, "MAIL_PASSWORD"},
		{&cfg.Notifications.QuoteNotificationEmail, "QUOTE_NOTIFICATION_EMAIL"},
		{&cfg.Notifications.QuoteConfirmedNotificationEmail, "QUOTE_CONFIRMED_NOTIFICATION_EMAIL"},
		{&cfg.Notifications.QuoteRescheduleNotificationEmail, "QUOTE_RESCHEDULE_NOTIFICATION_EMAIL"},
		{&cfg.Notifications.TestimonialNotificationEmail, "TESTIMONIAL_NOTIFICATION_EMAIL"},
		{&cfg.Notifications.QuoteAdminCopyEmail, "QUOTE_ADMIN_COPY_EMAIL"},
		{&cfg.SignedLinks.Secret, "APP_KEY"},
		{&cfg.GeoIP.Endpoint, "TRACKING_GEOIP_ENDPOINT"},
		{&cfg.GeoIP.Token, "TRACKING_GEOIP_TOKEN"},
		{&cfg.GeoIP.DatabasePath, "TRACKING_GEOIP_DATABASE"},
		{&cfg.AdminAuth.APIKey, "ADMIN_API_KEY"},
		{&cfg.AdminAuth.JWTSecret, "ADMIN_JWT_SECRET"},
		{&cfg.Secrets.KeyVaultName, "AZURE_KEY_VAULT_NAME"},
	}
	for _, a := range aliases {
		if value := v.GetString(a.env); value != "" {
			*a.target = value
		}
	}

	if days := v.GetInt("QUOTE_LINK_EXPIRY_DAYS"); days > 0 {
		cfg.SignedLinks.ExpiryDays = days
	}
	if seconds := v.GetInt("TRACKING_GEOIP_TIMEOUT"); seconds > 0 {
		cfg.GeoIP.TimeoutSeconds = seconds
	}
	if minutes := v.GetInt("TRACKING_GEOIP_CACHE_MINUTES"); minutes > 0 {
		cfg.GeoIP.CacheTTLMinutes = minutes
	}
}

// LoadWithSecrets loads configuration and resolves secrets from the configured source
// In development (or when secrets.source = "environment"), secrets come from env vars
// In staging/production with USE_AZURE_KEY_VAULT=true, secrets come from Azure Key Vault
func LoadWithSecrets(ctx context.Context, logger *zap.Logger) (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	useKeyVault := strings.ToLower(os.Getenv("USE_AZURE_KEY_VAULT")) == "true"
	isValidEnv := cfg.App.Environment == "staging" || cfg.App.Environment == "production"

	if !useKeyVault {
		logger.Info("USE_AZURE_KEY_VAULT not enabled, using environment variables for secrets",
			zap.String("environment", cfg.App.Environment),
		)
		return cfg, nil
	}

	if !isValidEnv {
		logger.Warn("USE_AZURE_KEY_VAULT is enabled but environment is not staging or production, using environment variables for secrets",
			zap.String("environment", cfg.App.Environment),
		)
		return cfg, nil
	}

	if cfg.Secrets.KeyVaultName == "" {
		return nil, fmt.Errorf("AZURE_KEY_VAULT_NAME is required when USE_AZURE_KEY_VAULT=true")
	}

	provider, err := secrets.NewProvider(&secrets.ProviderConfig{
		Source:       secrets.SourceVault,
		VaultName:    cfg.Secrets.KeyVaultName,
		Environment:  cfg.App.Environment,
		CacheEnabled: cfg.Secrets.CacheEnabled,
		CacheTTL:     time.Duration(cfg.Secrets.CacheTTL) * time.Second,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize secrets provider (USE_AZURE_KEY_VAULT=true requires valid vault): %w", err)
	}

	logger.Info("Loading secrets from Azure Key Vault",
		zap.String("key_vault_name", cfg.Secrets.KeyVaultName),
	)

	if err := ApplySecrets(ctx, cfg, provider); err != nil {
		return nil, err
	}

	logger.Info("Secrets loaded from vault successfully")
	return cfg, nil
}

// SecretSource is the subset of secrets.Provider used to overlay configuration
type SecretSource interface {
	GetSecretOrEnv(ctx context.Context, secretName, envName string) (string, error)
}

// ApplySecrets overlays secret values onto cfg. The signed link secret is
// required; every other secret is optional.
func ApplySecrets(ctx context.Context, cfg *Config, source SecretSource) error {
	optional := []struct {
		target *string
		secret string
		env    string
	}{
		{&cfg.Database.Host, "POSTGRES-MAIN-HOST", "DATABASE_HOST"},
		{&cfg.Database.User, "POSTGRES-MAIN-USER", "DATABASE_USER"},
		{&cfg.Database.Password, "POSTGRES-MAIN-PASSWORD", "DATABASE_PASSWORD"},
		{&cfg.Mail.ResendAPIKey, "resend-api-key", "RESEND_API_KEY"},
		{&cfg.Mail.SMTPPassword, "smtp-password", "MAIL_PASSWORD"},
		{&cfg.GeoIP.Token, "geoip-token", "TRACKING_GEOIP_TOKEN"},
		{&cfg.Redis.Password, "redis-password", "REDIS_PASSWORD"},
		{&cfg.AdminAuth.APIKey, "admin-api-key", "ADMIN_API_KEY"},
		{&cfg.AdminAuth.JWTSecret, "admin-jwt-secret", "ADMIN_JWT_SECRET"},
	}
	for _, s := range optional {
		if value, err := source.GetSecretOrEnv(ctx, s.secret, s.env); err == nil && value != "" {
			*s.target = value
		}
	}

	if sslMode := os.Getenv("DATABASE_SSLMODE"); sslMode != "" {
		cfg.Database.SSLMode = sslMode
	}

	signingKey, err := source.GetSecretOrEnv(ctx, "signed-link-secret", "APP_KEY")
	if err != nil {
		return fmt.Errorf("signed-link-secret is required: %w", err)
	}
	if signingKey == "" {
		return fmt.Errorf("signed-link-secret is empty")
	}
	cfg.SignedLinks.Secret = signingKey

	return nil
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "Sprinkle Fairydust API")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.port", 8080)
	v.SetDefault("app.url", "http://localhost:8080")

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "sprinkle")
	v.SetDefault("database.user", "sprinkle_user")
	v.SetDefault("database.password", "sprinkle_password")
	v.SetDefault("database.sslMode", "disable")
	v.SetDefault("database.maxOpenConns", 25)
	v.SetDefault("database.maxIdleConns", 5)
	v.SetDefault("database.connMaxLifetime", 300)
	v.SetDefault("database.autoMigrate", false)

	// Mail defaults
	v.SetDefault("mail.driver", "log")
	v.SetDefault("mail.fromAddress", "")
	v.SetDefault("mail.fromName", "Sprinkle Fairydust")
	v.SetDefault("mail.resendAPIKey", "")
	v.SetDefault("mail.smtpHost", "")
	v.SetDefault("mail.smtpPort", 587)
	v.SetDefault("mail.smtpUsername", "")
	v.SetDefault("mail.smtpPassword", "")
	v.SetDefault("mail.timeoutSeconds", 10)

	// Notification recipients
	v.SetDefault("notifications.quoteNotificationEmail", "")
	v.SetDefault("notifications.quoteConfirmedNotificationEmail", "")
	v.SetDefault("notifications.quoteRescheduleNotificationEmail", "")
	v.SetDefault("notifications.testimonialNotificationEmail", "")
	v.SetDefault("notifications.quoteAdminCopyEmail", "")

	// Signed links
	v.SetDefault("signedLinks.secret", "")
	v.SetDefault("signedLinks.expiryDays", 45)

	// GeoIP defaults
	v.SetDefault("geoip.databasePath", "")
	v.SetDefault("geoip.endpoint", "")
	v.SetDefault("geoip.token", "")
	v.SetDefault("geoip.timeoutSeconds", 2)
	v.SetDefault("geoip.cacheTTLMinutes", 1440)
	v.SetDefault("geoip.cacheDriver", "database")
	v.SetDefault("geoip.cachePruneCron", "0 0 * * * *")

	// Redis defaults
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	// Admin auth
	v.SetDefault("adminAuth.apiKey", "")
	v.SetDefault("adminAuth.jwtSecret", "")

	// Secrets defaults
	v.SetDefault("secrets.source", "auto")
	v.SetDefault("secrets.keyVaultName", "")
	v.SetDefault("secrets.cacheEnabled", true)
	v.SetDefault("secrets.cacheTTL", 300)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	// Server defaults
	v.SetDefault("server.readTimeout", 30)
	v.SetDefault("server.writeTimeout", 30)
	v.SetDefault("server.requestTimeout", 60)
	v.SetDefault("server.enableSwagger", true)

	// CORS defaults
	v.SetDefault("cors.allowedOrigins", []string{})
	v.SetDefault("cors.allowedMethods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowedHeaders", []string{"Accept", "Authorization", "Content-Type", "X-API-Key", "X-Request-ID"})
	v.SetDefault("cors.exposedHeaders", []string{"X-Request-ID"})
	v.SetDefault("cors.allowCredentials", true)
	v.SetDefault("cors.maxAge", 300)

	// Security header defaults. Signed-link pages are inline-styled HTML.
	v.SetDefault("security.enableHSTS", false)
	v.SetDefault("security.hstsMaxAge", 31536000)
	v.SetDefault("security.hstsIncludeSubdomains", true)
	v.SetDefault("security.hstsPreload", false)
	v.SetDefault("security.contentSecurityPolicy", "default-src 'self'; img-src 'self' data: https:; style-src 'self' 'unsafe-inline'")
	v.SetDefault("security.frameOptions", "DENY")
	v.SetDefault("security.contentTypeNosniff", true)
	v.SetDefault("security.referrerPolicy", "strict-origin-when-cross-origin")
	v.SetDefault("security.permissionsPolicy", "geolocation=(), microphone=(), camera=()")

	// Rate limiting defaults
	v.SetDefault("rateLimit.enabled", true)
	v.SetDefault("rateLimit.requestsPerMinute", 20)
	v.SetDefault("rateLimit.trackingRequestsPerMinute", 120)
	v.SetDefault("rateLimit.whitelistIPs", []string{"127.0.0.1", "::1"})
	v.SetDefault("rateLimit.whitelistPaths", []string{"/health", "/health/db", "/health/ready"})

	// Jobs
	v.SetDefault("jobs.enabled", true)
}
