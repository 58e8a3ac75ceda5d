package service

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sprinkle-fairydust/site-api/internal/domain"
	"github.com/sprinkle-fairydust/site-api/internal/repository"
	"go.uber.org/zap"
)

const (
	topListLimit       = 20
	dailyViewDays      = 14
	quoteTrackingLimit = 30
	maxReferrerLength  = 255
	maxUserAgentLength = 512
)

// FunnelPageKeys are the quote funnel steps in order
var FunnelPageKeys = []string{
	domain.PageKeyQuoteStart,
	domain.PageKeyQuotePackageSelect,
	domain.PageKeyQuoteSubmit,
}

// CountryResolver maps a request to an ISO country code
type CountryResolver interface {
	Resolve(ctx context.Context, header http.Header, ip string) string
}

// RequestMeta is the part of the HTTP request the tracker needs
type RequestMeta struct {
	Header    http.Header
	IP        string
	Host      string
	UserAgent string
}

type TrackingService struct {
	pageViewRepo *repository.PageViewRepository
	quoteRepo    *repository.QuoteRepository
	countries    CountryResolver
	appHost      string
	logger       *zap.Logger
	now          func() time.Time
}

func NewTrackingService(
	pageViewRepo *repository.PageViewRepository,
	quoteRepo *repository.QuoteRepository,
	countries CountryResolver,
	appHost string,
	logger *zap.Logger,
) *TrackingService {
	return &TrackingService{
		pageViewRepo: pageViewRepo,
		quoteRepo:    quoteRepo,
		countries:    countries,
		appHost:      normalizeHost(appHost),
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// ============================================================================
// Ingestion
// ============================================================================

// Record stores an analytics event. It returns false without persisting
// when the path belongs to the admin area.
func (s *TrackingService) Record(ctx context.Context, req *domain.TrackPageViewRequest, meta RequestMeta) (bool, error) {
	path := NormalizePath(req.Path)
	if isAdminPath(path) {
		return false, nil
	}

	eventType := domain.PageViewEventView
	if req.EventType != nil && *req.EventType == string(domain.PageViewEventEngagement) {
		eventType = domain.PageViewEventEngagement
	}

	var duration *int
	if eventType == domain.PageViewEventEngagement {
		d := 0
		if req.DurationSeconds != nil {
			d = *req.DurationSeconds
		}
		duration = &d
	}

	view := &domain.PageView{
		AnonymousID:     SanitizeAnonymousID(req.AnonymousID),
		PageKey:         strings.TrimSpace(req.PageKey),
		Path:            path,
		EventType:       eventType,
		DurationSeconds: duration,
		Referrer:        NormalizeReferrer(req.Referrer, s.appHost, meta.Host),
		CountryCode:     s.countries.Resolve(ctx, meta.Header, meta.IP),
		UserAgent:       truncatedOrNil(meta.UserAgent, maxUserAgentLength),
		ViewedAt:        s.now(),
	}

	if err := s.pageViewRepo.Create(ctx, view); err != nil {
		return false, fmt.Errorf("failed to record page view: %w", err)
	}
	return true, nil
}

// NormalizePath trims the path, forces a leading slash and drops a
// trailing one. An empty path is the root.
func NormalizePath(raw string) string {
	path := strings.TrimSpace(raw)
	if path == "" || path == "/" {
		return "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	path = strings.TrimRight(path, "/")
	if path == "" {
		return "/"
	}
	return path
}

func isAdminPath(path string) bool {
	return path == "/admin" || strings.HasPrefix(path, "/admin/")
}

// SanitizeAnonymousID cleans a client supplied visitor id, generating a
// fresh one when nothing usable remains
func SanitizeAnonymousID(raw string) string {
	cleaned := sanitizeAnonymousID(raw)
	if cleaned == "" {
		return "anon-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
	}
	return cleaned
}

// NormalizeReferrer reduces a referrer to its external host. Relative
// referrers and referrals from the site itself are dropped.
func NormalizeReferrer(raw *string, selfHosts ...string) *string {
	if raw == nil {
		return nil
	}
	value := strings.TrimSpace(*raw)
	if value == "" || strings.HasPrefix(value, "/") {
		return nil
	}

	if !strings.Contains(value, "://") {
		value = "https://" + value
	}
	parsed, err := url.Parse(value)
	if err != nil {
		return nil
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil
	}

	host := normalizeHost(parsed.Hostname())
	if host == "" {
		return nil
	}
	for _, self := range selfHosts {
		self = normalizeHost(hostOnly(self))
		if self != "" && (host == self || strings.HasSuffix(host, "."+self)) {
			return nil
		}
	}

	host = truncateRunes(host, maxReferrerLength)
	return &host
}

func normalizeHost(host string) string {
	host = strings.Trim(strings.ToLower(strings.TrimSpace(host)), ".")
	return strings.TrimPrefix(host, "www.")
}

// hostOnly strips a port from a Host header value
func hostOnly(hostport string) string {
	if u, err := url.Parse("//" + hostport); err == nil && u.Hostname() != "" {
		return u.Hostname()
	}
	return hostport
}

func truncatedOrNil(value string, limit int) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	value = truncateRunes(value, limit)
	return &value
}

// truncateRunes cuts value to at most limit characters, never splitting a
// multibyte character
func truncateRunes(value string, limit int) string {
	if utf8.RuneCountInString(value) <= limit {
		return value
	}
	return string([]rune(value)[:limit])
}

// ============================================================================
// Aggregation
// ============================================================================

// Stats builds the analytics report. days limits the overview and top
// lists to a trailing window; nil means all time. Rolling counters and
// daily views are always relative to now.
func (s *TrackingService) Stats(ctx context.Context, days *int) (*domain.TrackingStats, error) {
	now := s.now()
	var from *time.Time
	if days != nil && *days > 0 {
		t := now.AddDate(0, 0, -*days)
		from = &t
	}

	overview, err := s.overview(ctx, now, from)
	if err != nil {
		return nil, err
	}

	countries, err := s.pageViewRepo.TopCountries(ctx, from, topListLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to count views by country: %w", err)
	}
	pages, err := s.pageViewRepo.TopPages(ctx, from, topListLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to count views by page: %w", err)
	}
	referrers, err := s.pageViewRepo.TopReferrers(ctx, from, topListLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to count views by referrer: %w", err)
	}

	daily, err := s.dailyViews(ctx, now)
	if err != nil {
		return nil, err
	}

	funnel, err := s.funnel(ctx, from)
	if err != nil {
		return nil, err
	}

	quoteRows, err := s.quoteTracking(ctx)
	if err != nil {
		return nil, err
	}
	for _, row := range quoteRows {
		if row.HasTracking {
			overview.QuotesWithTracking++
		}
	}

	stats := &domain.TrackingStats{
		Overview:      *overview,
		CountryViews:  nonNil(countries),
		PageViews:     nonNil(pages),
		ReferrerViews: nonNil(referrers),
		DailyViews:    daily,
		Funnel:        *funnel,
		QuoteTracking: quoteRows,
		GeneratedAt:   now,
	}
	if from != nil {
		stats.WindowDays = days
	}
	return stats, nil
}

func (s *TrackingService) overview(ctx context.Context, now time.Time, from *time.Time) (*domain.TrackingOverview, error) {
	var (
		o   domain.TrackingOverview
		err error
	)

	if o.TotalPageViews, err = s.pageViewRepo.CountViews(ctx, from, ""); err != nil {
		return nil, fmt.Errorf("failed to count page views: %w", err)
	}
	if o.UniqueVisitors, err = s.pageViewRepo.CountVisitors(ctx, from); err != nil {
		return nil, fmt.Errorf("failed to count visitors: %w", err)
	}
	if o.GalleryViews, err = s.pageViewRepo.CountViews(ctx, from, domain.PageKeyGallery); err != nil {
		return nil, fmt.Errorf("failed to count gallery views: %w", err)
	}
	if o.DesignViews, err = s.pageViewRepo.CountViews(ctx, from, domain.PageKeyDesigns); err != nil {
		return nil, fmt.Errorf("failed to count design views: %w", err)
	}

	rolling := []struct {
		since time.Time
		dst   *int64
	}{
		{now.Add(-24 * time.Hour), &o.ViewsLast24h},
		{now.AddDate(0, 0, -7), &o.ViewsLast7d},
		{now.AddDate(0, 0, -30), &o.ViewsLast30d},
	}
	for _, r := range rolling {
		since := r.since
		if *r.dst, err = s.pageViewRepo.CountViews(ctx, &since, ""); err != nil {
			return nil, fmt.Errorf("failed to count recent views: %w", err)
		}
	}

	if o.TotalTimeSeconds, err = s.pageViewRepo.TotalEngagementSeconds(ctx, from); err != nil {
		return nil, fmt.Errorf("failed to sum engagement: %w", err)
	}
	if o.UniqueVisitors > 0 {
		o.AverageTimePerVisitorSeconds = math.Round(float64(o.TotalTimeSeconds)/float64(o.UniqueVisitors)*10) / 10
	}
	return &o, nil
}

// dailyViews returns zero-filled view counts for today and the previous
// 13 days, oldest first
func (s *TrackingService) dailyViews(ctx context.Context, now time.Time) ([]domain.DailyViewCount, error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	start := today.AddDate(0, 0, -(dailyViewDays - 1))

	times, err := s.pageViewRepo.ViewTimes(ctx, start)
	if err != nil {
		return nil, fmt.Errorf("failed to load daily views: %w", err)
	}

	counts := make(map[string]int64, dailyViewDays)
	for _, t := range times {
		counts[t.UTC().Format(domain.DateLayout)]++
	}

	daily := make([]domain.DailyViewCount, 0, dailyViewDays)
	for i := 0; i < dailyViewDays; i++ {
		day := start.AddDate(0, 0, i).Format(domain.DateLayout)
		daily = append(daily, domain.DailyViewCount{Date: day, Views: counts[day]})
	}
	return daily, nil
}

func (s *TrackingService) funnel(ctx context.Context, from *time.Time) (*domain.FunnelStats, error) {
	steps := make([]domain.FunnelStep, 0, len(FunnelPageKeys))
	for _, key := range FunnelPageKeys {
		visitors, err := s.pageViewRepo.CountVisitorsOnPage(ctx, from, key)
		if err != nil {
			return nil, fmt.Errorf("failed to count funnel step %s: %w", key, err)
		}
		steps = append(steps, domain.FunnelStep{PageKey: key, Visitors: visitors})
	}

	funnel := &domain.FunnelStats{Steps: steps}
	if first := steps[0].Visitors; first > 0 {
		last := steps[len(steps)-1].Visitors
		funnel.ConversionRate = math.Round(float64(last)/float64(first)*1000) / 10
	}
	return funnel, nil
}

// quoteTracking joins the latest quotes with their visitor's events.
// Quotes without any matching event are listed with HasTracking false.
func (s *TrackingService) quoteTracking(ctx context.Context) ([]domain.QuoteTrackingRow, error) {
	quotes, err := s.quoteRepo.ListWithAnonymousID(ctx, quoteTrackingLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list tracked quotes: %w", err)
	}

	ids := make([]string, 0, len(quotes))
	for _, q := range quotes {
		ids = append(ids, *q.AnonymousID)
	}
	events, err := s.pageViewRepo.ListByAnonymousIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load visitor events: %w", err)
	}

	byVisitor := make(map[string][]domain.PageView, len(ids))
	for _, e := range events {
		byVisitor[e.AnonymousID] = append(byVisitor[e.AnonymousID], e)
	}

	rows := make([]domain.QuoteTrackingRow, 0, len(quotes))
	for _, q := range quotes {
		row := domain.QuoteTrackingRow{
			QuoteID:        q.ID,
			Name:           q.Name,
			Email:          q.Email,
			EventType:      q.EventType,
			AnonymousID:    *q.AnonymousID,
			QuoteCreatedAt: q.CreatedAt,
		}
		for _, e := range byVisitor[row.AnonymousID] {
			if e.EventType == domain.PageViewEventEngagement {
				if e.DurationSeconds != nil {
					row.TotalTimeSeconds += int64(*e.DurationSeconds)
				}
				continue
			}
			row.PageViews++
			switch e.PageKey {
			case domain.PageKeyGallery:
				row.GalleryViews++
			case domain.PageKeyDesigns:
				row.DesignViews++
			}
			viewedAt := e.ViewedAt
			if row.FirstViewedAt == nil || viewedAt.Before(*row.FirstViewedAt) {
				row.FirstViewedAt = &viewedAt
			}
			if row.LastViewedAt == nil || viewedAt.After(*row.LastViewedAt) {
				row.LastViewedAt = &viewedAt
			}
		}
		row.HasTracking = row.PageViews > 0
		rows = append(rows, row)
	}
	return rows, nil
}

func nonNil[T any](rows []T) []T {
	if rows == nil {
		return []T{}
	}
	return rows
}
