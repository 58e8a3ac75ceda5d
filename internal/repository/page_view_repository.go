package repository

import (
	"context"
	"time"

	"github.com/sprinkle-fairydust/site-api/internal/domain"
	"gorm.io/gorm"
)

type PageViewRepository struct {
	db *gorm.DB
}

func NewPageViewRepository(db *gorm.DB) *PageViewRepository {
	return &PageViewRepository{db: db}
}

func (r *PageViewRepository) Create(ctx context.Context, view *domain.PageView) error {
	return r.db.WithContext(ctx).Create(view).Error
}

// since limits a query to events viewed at or after t; nil means all-time
func since(t *time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if t == nil {
			return db
		}
		return db.Where("viewed_at >= ?", *t)
	}
}

func (r *PageViewRepository) views(ctx context.Context, from *time.Time) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&domain.PageView{}).
		Scopes(since(from)).
		Where("event_type = ?", domain.PageViewEventView)
}

// CountViews counts view events, optionally restricted to one page key
func (r *PageViewRepository) CountViews(ctx context.Context, from *time.Time, pageKey string) (int64, error) {
	var count int64
	query := r.views(ctx, from)
	if pageKey != "" {
		query = query.Where("page_key = ?", pageKey)
	}
	err := query.Count(&count).Error
	return count, err
}

// CountVisitors counts distinct anonymous ids among view events
func (r *PageViewRepository) CountVisitors(ctx context.Context, from *time.Time) (int64, error) {
	var count int64
	err := r.views(ctx, from).
		Distinct("anonymous_id").
		Count(&count).Error
	return count, err
}

// CountVisitorsOnPage counts distinct visitors with a view of pageKey
func (r *PageViewRepository) CountVisitorsOnPage(ctx context.Context, from *time.Time, pageKey string) (int64, error) {
	var count int64
	err := r.views(ctx, from).
		Where("page_key = ?", pageKey).
		Distinct("anonymous_id").
		Count(&count).Error
	return count, err
}

// TotalEngagementSeconds sums reported time on page
func (r *PageViewRepository) TotalEngagementSeconds(ctx context.Context, from *time.Time) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&domain.PageView{}).
		Scopes(since(from)).
		Where("event_type = ?", domain.PageViewEventEngagement).
		Select("COALESCE(SUM(duration_seconds), 0)").
		Scan(&total).Error
	return total, err
}

// TopCountries returns view counts per country, highest first
func (r *PageViewRepository) TopCountries(ctx context.Context, from *time.Time, limit int) ([]domain.CountryViewCount, error) {
	var rows []domain.CountryViewCount
	err := r.views(ctx, from).
		Select("country_code, COUNT(*) AS views").
		Group("country_code").
		Order("views DESC").
		Order("country_code ASC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// TopPages returns view counts per page key, highest first
func (r *PageViewRepository) TopPages(ctx context.Context, from *time.Time, limit int) ([]domain.PageViewCount, error) {
	var rows []domain.PageViewCount
	err := r.views(ctx, from).
		Select("page_key, COUNT(*) AS views").
		Group("page_key").
		Order("views DESC").
		Order("page_key ASC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// TopReferrers returns view counts per external referrer host
func (r *PageViewRepository) TopReferrers(ctx context.Context, from *time.Time, limit int) ([]domain.ReferrerViewCount, error) {
	var rows []domain.ReferrerViewCount
	err := r.views(ctx, from).
		Where("referrer IS NOT NULL AND referrer <> ''").
		Select("referrer, COUNT(*) AS views").
		Group("referrer").
		Order("views DESC").
		Order("referrer ASC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// ViewTimes returns the timestamp of every view at or after from, for the
// caller to bucket by day
func (r *PageViewRepository) ViewTimes(ctx context.Context, from time.Time) ([]time.Time, error) {
	var times []time.Time
	err := r.views(ctx, &from).Pluck("viewed_at", &times).Error
	return times, err
}

// ListByAnonymousIDs returns all events for the given visitors
func (r *PageViewRepository) ListByAnonymousIDs(ctx context.Context, ids []string) ([]domain.PageView, error) {
	var views []domain.PageView
	if len(ids) == 0 {
		return views, nil
	}
	err := r.db.WithContext(ctx).
		Where("anonymous_id IN ?", ids).
		Order("viewed_at ASC").
		Find(&views).Error
	return views, err
}
