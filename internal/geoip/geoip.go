// Package geoip resolves the country of an analytics visitor from edge
// headers, a local MaxMind database or an HTTP GeoIP API.
package geoip

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/sprinkle-fairydust/site-api/internal/domain"
	"go.uber.org/zap"
)

// CountryHeaders are trusted edge headers, checked in order
var CountryHeaders = []string{
	"CF-IPCountry",
	"CloudFront-Viewer-Country",
	"X-Vercel-IP-Country",
	"Fly-Client-Country",
	"Fastly-GeoIP-Country-Code",
	"X-Country-Code",
	"X-Appengine-Country",
}

const cacheKeyPrefix = "tracking:geoip:country:"

var isoCountryCode = regexp.MustCompile(`^[A-Z]{2}$`)

// Lookup resolves an IP address to an ISO 3166-1 alpha-2 code. An empty
// code with a nil error means the source had no answer.
type Lookup interface {
	Lookup(ctx context.Context, ip string) (string, error)
	Name() string
}

// Cache stores resolved countries, including UNKNOWN, by key
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, countryCode string, ttl time.Duration) error
}

// Resolver determines visitor countries. Resolution never fails: every
// error degrades to domain.CountryUnknown.
type Resolver struct {
	lookups []Lookup
	cache   Cache
	ttl     time.Duration
	logger  *zap.Logger
}

// NewResolver creates a resolver trying lookups in order. cache may be nil.
func NewResolver(cache Cache, ttl time.Duration, logger *zap.Logger, lookups ...Lookup) *Resolver {
	return &Resolver{
		lookups: lookups,
		cache:   cache,
		ttl:     ttl,
		logger:  logger,
	}
}

// Resolve returns the visitor country for a request with the given headers
// and client IP
func (r *Resolver) Resolve(ctx context.Context, header http.Header, ip string) string {
	if code := CountryFromHeaders(header); code != "" {
		return code
	}

	if !IsPublicIP(ip) {
		return domain.CountryUnknown
	}

	key := CacheKey(ip)
	if r.cache != nil {
		code, ok, err := r.cache.Get(ctx, key)
		if err != nil {
			r.logger.Warn("geoip cache read failed", zap.Error(err))
		} else if ok {
			return code
		}
	}

	code := r.lookup(ctx, ip)

	if r.cache != nil {
		if err := r.cache.Set(ctx, key, code, r.ttl); err != nil {
			r.logger.Warn("geoip cache write failed", zap.Error(err))
		}
	}
	return code
}

func (r *Resolver) lookup(ctx context.Context, ip string) string {
	for _, l := range r.lookups {
		code, err := l.Lookup(ctx, ip)
		if err != nil {
			r.logger.Debug("geoip lookup failed", zap.String("source", l.Name()), zap.Error(err))
			continue
		}
		if code = NormalizeCountryCode(code); code != "" {
			return code
		}
	}
	return domain.CountryUnknown
}

// CountryFromHeaders returns the first valid country from CountryHeaders,
// or "" when none is usable
func CountryFromHeaders(header http.Header) string {
	for _, name := range CountryHeaders {
		if code := NormalizeCountryCode(header.Get(name)); code != "" {
			return code
		}
	}
	return ""
}

// NormalizeCountryCode uppercases and validates a country code. Unknown
// placeholders used by CDNs (XX, T1) are rejected.
func NormalizeCountryCode(value string) string {
	code := strings.ToUpper(strings.TrimSpace(value))
	if code == "XX" || code == "T1" || !isoCountryCode.MatchString(code) {
		return ""
	}
	return code
}

// CacheKey derives the cache key for ip without storing the raw address
func CacheKey(ip string) string {
	sum := sha256.Sum256([]byte(ip))
	return cacheKeyPrefix + hex.EncodeToString(sum[:])
}
