package domain

import "time"

// PageViewEventType distinguishes page views from time-on-page reports
type PageViewEventType string

const (
	PageViewEventView       PageViewEventType = "view"
	PageViewEventEngagement PageViewEventType = "engagement"
)

// CountryUnknown is stored when no country could be resolved
const CountryUnknown = "UNKNOWN"

// Page keys with special meaning in the aggregates
const (
	PageKeyGallery            = "gallery"
	PageKeyDesigns            = "designs"
	PageKeyQuoteStart         = "quote_start"
	PageKeyQuotePackageSelect = "quote_package_select"
	PageKeyQuoteSubmit        = "quote_submit"
)

// PageView is an append-only analytics event
type PageView struct {
	ID              uint              `gorm:"primaryKey"`
	AnonymousID     string            `gorm:"type:varchar(80);not null;column:anonymous_id;index"`
	PageKey         string            `gorm:"type:varchar(80);not null;column:page_key;index"`
	Path            string            `gorm:"type:varchar(255);not null"`
	EventType       PageViewEventType `gorm:"type:varchar(16);not null;default:'view';column:event_type;index"`
	DurationSeconds *int              `gorm:"column:duration_seconds"`
	Referrer        *string           `gorm:"type:varchar(255)"`
	CountryCode     string            `gorm:"type:varchar(16);not null;default:'UNKNOWN';column:country_code;index"`
	UserAgent       *string           `gorm:"type:varchar(512);column:user_agent"`
	ViewedAt        time.Time         `gorm:"not null;column:viewed_at;index"`
	CreatedAt       time.Time         `gorm:"not null"`
}

func (PageView) TableName() string {
	return "page_views"
}

// GeoIPCacheEntry is a resolved country cached by hashed IP
type GeoIPCacheEntry struct {
	CacheKey    string    `gorm:"type:varchar(128);primaryKey;column:cache_key"`
	CountryCode string    `gorm:"type:varchar(16);not null;column:country_code"`
	ExpiresAt   time.Time `gorm:"not null;column:expires_at;index"`
}

func (GeoIPCacheEntry) TableName() string {
	return "geoip_cache"
}
