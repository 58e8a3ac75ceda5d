package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sprinkle-fairydust/site-api/internal/config"
	"github.com/sprinkle-fairydust/site-api/internal/domain"
	"github.com/sprinkle-fairydust/site-api/internal/http/handler"
	"github.com/sprinkle-fairydust/site-api/internal/notification"
	"github.com/sprinkle-fairydust/site-api/internal/repository"
	"github.com/sprinkle-fairydust/site-api/internal/service"
	"github.com/sprinkle-fairydust/site-api/internal/signedlink"
	"github.com/sprinkle-fairydust/site-api/internal/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const testBaseURL = "https://sprinkle.test"

type recordingMailer struct {
	mu   sync.Mutex
	sent []notification.Message
}

func (m *recordingMailer) Name() string { return "recording" }

func (m *recordingMailer) Send(_ context.Context, msg notification.Message) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return "msg-" + msg.To, nil
}

func (m *recordingMailer) sentTo(addr string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, msg := range m.sent {
		if msg.To == addr {
			n++
		}
	}
	return n
}

type fixedCountry string

func (c fixedCountry) Resolve(_ context.Context, _ http.Header, _ string) string {
	return string(c)
}

type handlerFixture struct {
	db        *gorm.DB
	quoteRepo *repository.QuoteRepository
	mailer    *recordingMailer
	links     *signedlink.Issuer
	mux       http.Handler
}

func setupHandlers(t *testing.T, mailCfg *config.MailConfig) *handlerFixture {
	t.Helper()
	logger := zap.NewNop()

	db := testutil.SetupTestDB(t)
	quoteRepo := repository.NewQuoteRepository(db)
	pageViewRepo := repository.NewPageViewRepository(db)
	testimonialRepo := repository.NewTestimonialRepository(db)

	cfg := config.MailConfig{FromAddress: "hello@sprinkle.test", FromName: "Sprinkle Fairydust"}
	if mailCfg != nil {
		cfg = *mailCfg
	}
	mailer := &recordingMailer{}
	renderer, err := notification.NewTemplateRenderer()
	require.NoError(t, err)
	dispatcher := notification.NewDispatcher(
		mailer,
		renderer,
		cfg,
		config.NotificationsConfig{
			QuoteNotificationEmail:       "quotes@sprinkle.test",
			TestimonialNotificationEmail: "quotes@sprinkle.test",
		},
		testBaseURL,
		logger,
	)
	links := signedlink.NewIssuer(testBaseURL, "test-secret", 24*time.Hour)

	quoteService := service.NewQuoteService(quoteRepo, dispatcher, links, logger)
	trackingService := service.NewTrackingService(pageViewRepo, quoteRepo, fixedCountry("AU"), "sprinkle.test", logger)
	testimonialService := service.NewTestimonialService(testimonialRepo, dispatcher, logger)

	pages, err := handler.NewPageRenderer(testBaseURL, logger)
	require.NoError(t, err)

	quotes := handler.NewQuoteHandler(quoteService, logger)
	signed := handler.NewSignedLinkHandler(quoteService, links, pages, logger)
	tracking := handler.NewTrackingHandler(trackingService, logger)
	testimonials := handler.NewTestimonialHandler(testimonialService, logger)

	r := chi.NewRouter()
	r.Post("/api/quotes", quotes.Submit)
	r.Post("/api/tracking/page-views", tracking.TrackPageView)
	r.Get("/api/testimonials", testimonials.ListApproved)
	r.Post("/api/testimonials", testimonials.Submit)

	r.Get("/quotes/{id}/confirm", signed.Confirm)
	r.Get("/quotes/{id}/open", signed.Open)
	r.Get("/quotes/{id}/suggest-time", signed.SuggestTimeForm)
	r.Post("/quotes/{id}/suggest-time", signed.SuggestTimeSubmit)

	r.Get("/admin/quotes/list", quotes.List)
	r.Post("/admin/quotes", quotes.Create)
	r.Get("/admin/quotes/{id}", quotes.GetByID)
	r.Put("/admin/quotes/{id}", quotes.Update)
	r.Delete("/admin/quotes/{id}", quotes.Delete)
	r.Put("/admin/quotes/{id}/pricing", quotes.UpdatePricing)
	r.Post("/admin/quotes/{id}/send-email", quotes.SendEmail)
	r.Post("/admin/quotes/{id}/decline", quotes.Decline)
	r.Get("/admin/tracking/stats", tracking.Stats)
	r.Get("/admin/testimonials/list", testimonials.List)
	r.Post("/admin/testimonials", testimonials.Create)
	r.Put("/admin/testimonials/{id}", testimonials.Update)
	r.Delete("/admin/testimonials/{id}", testimonials.Delete)

	return &handlerFixture{
		db:        db,
		quoteRepo: quoteRepo,
		mailer:    mailer,
		links:     links,
		mux:       r,
	}
}

func (f *handlerFixture) do(t *testing.T, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	f.mux.ServeHTTP(rr, req)
	return rr
}

func (f *handlerFixture) postForm(t *testing.T, target string, form map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	values := make([]string, 0, len(form))
	for k, v := range form {
		values = append(values, k+"="+v)
	}
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(strings.Join(values, "&")))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	f.mux.ServeHTTP(rr, req)
	return rr
}

func (f *handlerFixture) signed(t *testing.T, action signedlink.Action, id uint) string {
	t.Helper()
	u, err := f.links.Issue(action, id)
	require.NoError(t, err)
	return u
}

func (f *handlerFixture) reload(t *testing.T, id uint) *domain.Quote {
	t.Helper()
	q, err := f.quoteRepo.GetByID(context.Background(), id)
	require.NoError(t, err)
	return q
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v))
	return v
}
