package repository

import (
	"context"
	"errors"
	"time"

	"github.com/sprinkle-fairydust/site-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GeoIPCacheRepository stores resolved countries keyed by hashed IP
type GeoIPCacheRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewGeoIPCacheRepository(db *gorm.DB) *GeoIPCacheRepository {
	return &GeoIPCacheRepository{db: db, now: time.Now}
}

// Get returns the cached country for key, or false when absent or expired
func (r *GeoIPCacheRepository) Get(ctx context.Context, key string) (string, bool, error) {
	var entry domain.GeoIPCacheEntry
	err := r.db.WithContext(ctx).
		Where("cache_key = ? AND expires_at > ?", key, r.now().UTC()).
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return entry.CountryCode, true, nil
}

// Set upserts the country for key with the given time to live
func (r *GeoIPCacheRepository) Set(ctx context.Context, key, countryCode string, ttl time.Duration) error {
	entry := domain.GeoIPCacheEntry{
		CacheKey:    key,
		CountryCode: countryCode,
		ExpiresAt:   r.now().UTC().Add(ttl),
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "cache_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"country_code", "expires_at"}),
		}).
		Create(&entry).Error
}

// Prune deletes expired entries and returns how many were removed
func (r *GeoIPCacheRepository) Prune(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at <= ?", r.now().UTC()).
		Delete(&domain.GeoIPCacheEntry{})
	return result.RowsAffected, result.Error
}
