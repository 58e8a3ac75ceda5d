package service_test

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/sprinkle-fairydust/site-api/internal/config"
	"github.com/sprinkle-fairydust/site-api/internal/domain"
	"github.com/sprinkle-fairydust/site-api/internal/notification"
	"github.com/sprinkle-fairydust/site-api/internal/repository"
	"github.com/sprinkle-fairydust/site-api/internal/service"
	"github.com/sprinkle-fairydust/site-api/internal/signedlink"
	"github.com/sprinkle-fairydust/site-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const testBaseURL = "https://sprinkle.test"

// recordingMailer keeps every message it is asked to send
type recordingMailer struct {
	mu   sync.Mutex
	sent []notification.Message
	err  error
}

func (m *recordingMailer) Name() string { return "recording" }

func (m *recordingMailer) Send(_ context.Context, msg notification.Message) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	m.sent = append(m.sent, msg)
	return "msg-" + msg.To, nil
}

func (m *recordingMailer) countSubjectPrefix(prefix string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, msg := range m.sent {
		if len(msg.Subject) >= len(prefix) && msg.Subject[:len(prefix)] == prefix {
			n++
		}
	}
	return n
}

type quoteFixture struct {
	db      *gorm.DB
	svc     *service.QuoteService
	repo    *repository.QuoteRepository
	mailer  *recordingMailer
	links   *signedlink.Issuer
	mailCfg config.MailConfig
}

func setupQuoteService(t *testing.T, mailCfg *config.MailConfig) *quoteFixture {
	t.Helper()

	db := testutil.SetupTestDB(t)
	repo := repository.NewQuoteRepository(db)
	mailer := &recordingMailer{}
	renderer, err := notification.NewTemplateRenderer()
	require.NoError(t, err)

	cfg := config.MailConfig{FromAddress: "hello@sprinkle.test", FromName: "Sprinkle Fairydust"}
	if mailCfg != nil {
		cfg = *mailCfg
	}
	dispatcher := notification.NewDispatcher(
		mailer,
		renderer,
		cfg,
		config.NotificationsConfig{
			QuoteNotificationEmail: "quotes@sprinkle.test",
			QuoteAdminCopyEmail:    "admin@sprinkle.test",
		},
		testBaseURL,
		zap.NewNop(),
	)
	links := signedlink.NewIssuer(testBaseURL, "test-secret", 24*time.Hour)

	return &quoteFixture{
		db:      db,
		svc:     service.NewQuoteService(repo, dispatcher, links, zap.NewNop()),
		repo:    repo,
		mailer:  mailer,
		links:   links,
		mailCfg: cfg,
	}
}

func (f *quoteFixture) reload(t *testing.T, id uint) *domain.Quote {
	t.Helper()
	q, err := f.repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	return q
}

// ============================================================================
// Submit
// ============================================================================

func TestQuoteService_Submit(t *testing.T) {
	f := setupQuoteService(t, nil)
	ctx := context.Background()

	quote, err := f.svc.Submit(ctx, &domain.SubmitQuoteRequest{
		Name:          "Jamie",
		Email:         "jamie@x.test",
		AnonymousID:   testutil.Ptr("visitor<1>"),
		Event:         testutil.Ptr("Birthday Party"),
		Date:          testutil.Ptr("2026-12-05"),
		StartTime:     testutil.Ptr("10:00"),
		EndTime:       testutil.Ptr("13:00"),
		Details:       testutil.Ptr("Face painting for 20 kids"),
		TermsAccepted: true,
	})
	require.NoError(t, err)

	saved := f.reload(t, quote.ID)
	assert.Equal(t, domain.QuoteStateSubmitted, saved.State)
	require.NotNil(t, saved.TotalHours)
	assert.Equal(t, 3.0, *saved.TotalHours)
	require.NotNil(t, saved.AnonymousID)
	assert.Equal(t, "visitor1", *saved.AnonymousID)
	require.NotNil(t, saved.Notes)
	assert.Equal(t, "Face painting for 20 kids", *saved.Notes)
	assert.NotNil(t, saved.TermsAcceptedAt)
	assert.Equal(t, "2026-12-05", saved.EventDateString())

	require.Len(t, f.mailer.sent, 1)
	assert.Equal(t, "quotes@sprinkle.test", f.mailer.sent[0].To)
	assert.Equal(t, "New Quote Request: Birthday Party from Jamie", f.mailer.sent[0].Subject)
}

func TestQuoteService_SubmitTimeValidation(t *testing.T) {
	f := setupQuoteService(t, nil)
	ctx := context.Background()

	tests := []struct {
		name  string
		start string
		end   string
		err   error
	}{
		{"end before start", "13:00", "10:00", service.ErrInvalidTimeRange},
		{"end equals start", "10:00", "10:00", service.ErrInvalidTimeRange},
		{"shorter than an hour", "10:00", "10:45", service.ErrDurationTooShort},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Submit(ctx, &domain.SubmitQuoteRequest{
				Name:      "Jamie",
				Email:     "jamie@x.test",
				StartTime: testutil.Ptr(tt.start),
				EndTime:   testutil.Ptr(tt.end),
			})
			assert.ErrorIs(t, err, tt.err)
		})
	}

	count, err := f.repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestQuoteService_SubmitSucceedsWhenStaffMailFails(t *testing.T) {
	f := setupQuoteService(t, nil)
	f.mailer.err = errors.New("smtp down")

	quote, err := f.svc.Submit(context.Background(), &domain.SubmitQuoteRequest{Name: "Jamie", Email: "jamie@x.test"})
	require.NoError(t, err)
	assert.NotZero(t, quote.ID)
	assert.Nil(t, quote.AnonymousID)
}

func TestQuoteService_TotalHoursRounded(t *testing.T) {
	f := setupQuoteService(t, nil)

	quote, err := f.svc.Submit(context.Background(), &domain.SubmitQuoteRequest{
		Name:      "Jamie",
		Email:     "jamie@x.test",
		StartTime: testutil.Ptr("10:00"),
		EndTime:   testutil.Ptr("11:20"),
	})
	require.NoError(t, err)
	require.NotNil(t, quote.TotalHours)
	assert.Equal(t, 1.33, *quote.TotalHours)
}

// ============================================================================
// Admin CRUD
// ============================================================================

func TestQuoteService_CreateAndUpdate(t *testing.T) {
	f := setupQuoteService(t, nil)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, &domain.AdminQuoteRequest{
		Name:      "Sam",
		Email:     "sam@x.test",
		StartTime: testutil.Ptr("09:00"),
		EndTime:   testutil.Ptr("11:30"),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.QuoteStateSubmitted, created.State)
	require.NotNil(t, created.TotalHours)
	assert.Equal(t, 2.5, *created.TotalHours)

	updated, err := f.svc.Update(ctx, created.ID, &domain.AdminQuoteRequest{
		Name:       "Sam",
		Email:      "sam@x.test",
		StartTime:  testutil.Ptr("09:00"),
		EndTime:    testutil.Ptr("11:30"),
		TotalHours: testutil.Ptr(3.0),
		QuotePricingRequest: domain.QuotePricingRequest{
			CalcPaymentType: testutil.Ptr("hourly"),
			CalcTotalAmount: testutil.Ptr(450.0),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.QuoteStatePriced, updated.State)
	assert.Equal(t, 3.0, *updated.TotalHours)
	require.NotNil(t, updated.CalcPaymentType)
	assert.Equal(t, domain.PaymentTypeHourly, *updated.CalcPaymentType)

	_, err = f.svc.Create(ctx, &domain.AdminQuoteRequest{
		Name:      "Sam",
		Email:     "sam@x.test",
		StartTime: testutil.Ptr("11:00"),
		EndTime:   testutil.Ptr("09:00"),
	})
	assert.ErrorIs(t, err, service.ErrInvalidTimeRange)
}

func TestQuoteService_UpdateConfirmedPricingRejected(t *testing.T) {
	f := setupQuoteService(t, nil)
	quote := testutil.CreateQuote(t, f.db, func(q *domain.Quote) {
		q.State = domain.QuoteStateConfirmed
		now := time.Now().UTC()
		q.ClientConfirmedAt = &now
	})

	_, err := f.svc.Update(context.Background(), quote.ID, &domain.AdminQuoteRequest{
		Name:                "Jamie",
		Email:               "jamie@x.test",
		QuotePricingRequest: domain.QuotePricingRequest{CalcTotalAmount: testutil.Ptr(100.0)},
	})
	assert.ErrorIs(t, err, service.ErrQuoteAlreadyConfirmed)
}

func TestQuoteService_UpdateKeepsConcurrentLifecycle(t *testing.T) {
	confirmBeforeWrite := func(t *testing.T, f *quoteFixture, id uint) {
		fired := false
		require.NoError(t, f.db.Callback().Update().Before("gorm:update").Register("test:confirm_before_write", func(tx *gorm.DB) {
			if fired || tx.Statement.Table != "quotes" {
				return
			}
			fired = true
			_, err := tx.Statement.ConnPool.ExecContext(tx.Statement.Context,
				"UPDATE quotes SET state = 'confirmed', client_confirmed_at = ?, email_open_count = 5 WHERE id = ?", time.Now().UTC(), id)
			require.NoError(t, err)
		}))
	}

	t.Run("details only", func(t *testing.T) {
		f := setupQuoteService(t, nil)
		quote := testutil.CreateQuote(t, f.db, func(q *domain.Quote) { q.State = domain.QuoteStatePriced })
		confirmBeforeWrite(t, f, quote.ID)

		updated, err := f.svc.Update(context.Background(), quote.ID, &domain.AdminQuoteRequest{
			Name:  "Jamie Lee",
			Email: "jamie@x.test",
			Notes: testutil.Ptr("Gate code 1234"),
		})
		require.NoError(t, err)
		assert.Equal(t, "Jamie Lee", updated.Name)

		saved := f.reload(t, quote.ID)
		assert.Equal(t, domain.QuoteStateConfirmed, saved.State)
		assert.NotNil(t, saved.ClientConfirmedAt)
		assert.Equal(t, 5, saved.EmailOpenCount)
		require.NotNil(t, saved.Notes)
		assert.Equal(t, "Gate code 1234", *saved.Notes)
	})

	t.Run("with pricing", func(t *testing.T) {
		f := setupQuoteService(t, nil)
		quote := testutil.CreateQuote(t, f.db, func(q *domain.Quote) { q.State = domain.QuoteStatePriced })
		confirmBeforeWrite(t, f, quote.ID)

		_, err := f.svc.Update(context.Background(), quote.ID, &domain.AdminQuoteRequest{
			Name:                "Jamie Lee",
			Email:               "jamie@x.test",
			QuotePricingRequest: domain.QuotePricingRequest{CalcTotalAmount: testutil.Ptr(100.0)},
		})
		assert.ErrorIs(t, err, service.ErrQuoteAlreadyConfirmed)

		saved := f.reload(t, quote.ID)
		assert.Equal(t, domain.QuoteStateConfirmed, saved.State)
		assert.Equal(t, "Jamie", saved.Name)
		assert.Nil(t, saved.CalcTotalAmount)
		assert.Equal(t, 5, saved.EmailOpenCount)
	})

	t.Run("unknown quote", func(t *testing.T) {
		f := setupQuoteService(t, nil)
		_, err := f.svc.Update(context.Background(), 999, &domain.AdminQuoteRequest{Name: "x", Email: "x@x.test"})
		assert.ErrorIs(t, err, service.ErrQuoteNotFound)
	})
}

func TestQuoteService_GetListDelete(t *testing.T) {
	f := setupQuoteService(t, nil)
	ctx := context.Background()
	first := testutil.CreateQuote(t, f.db, nil)
	testutil.CreateQuote(t, f.db, nil)

	quotes, err := f.svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, quotes, 2)

	got, err := f.svc.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jamie", got.Name)

	require.NoError(t, f.svc.Delete(ctx, first.ID))
	assert.ErrorIs(t, f.svc.Delete(ctx, first.ID), service.ErrQuoteNotFound)

	_, err = f.svc.GetByID(ctx, first.ID)
	assert.ErrorIs(t, err, service.ErrQuoteNotFound)
}

// ============================================================================
// Lifecycle
// ============================================================================

func TestQuoteService_EndToEnd(t *testing.T) {
	f := setupQuoteService(t, nil)
	ctx := context.Background()

	quote, err := f.svc.Submit(ctx, &domain.SubmitQuoteRequest{
		Name:      "Jamie",
		Email:     "jamie@x.test",
		Event:     testutil.Ptr("Birthday Party"),
		StartTime: testutil.Ptr("10:00"),
		EndTime:   testutil.Ptr("13:00"),
	})
	require.NoError(t, err)
	require.NotNil(t, quote.TotalHours)
	assert.Equal(t, 3.0, *quote.TotalHours)

	priced, err := f.svc.Price(ctx, quote.ID, &domain.QuotePricingRequest{
		CalcPaymentType: testutil.Ptr("hourly"),
		CalcTotalAmount: testutil.Ptr(511.75),
		CalcGSTAmount:   testutil.Ptr(66.75),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.QuoteStatePriced, priced.State)

	sent, err := f.svc.SendPricedEmail(ctx, quote.ID)
	require.NoError(t, err)
	require.NotNil(t, sent.EmailSendStatus)
	assert.Equal(t, domain.EmailSendStatusSent, *sent.EmailSendStatus)
	require.NotNil(t, sent.EmailSendResponse)
	assert.True(t, sent.EmailSendResponse.OK)
	require.NotNil(t, sent.EmailSendResponse.BCC)
	assert.Equal(t, "admin@sprinkle.test", *sent.EmailSendResponse.BCC)

	pricedMail := f.mailer.sent[len(f.mailer.sent)-1]
	assert.Equal(t, "jamie@x.test", pricedMail.To)
	assert.Contains(t, pricedMail.Text, "$66.75")
	assert.Contains(t, pricedMail.HTML, "/quotes/1/confirm?signature=")

	confirmed, already, err := f.svc.Confirm(ctx, quote.ID)
	require.NoError(t, err)
	assert.False(t, already)
	assert.Equal(t, domain.QuoteStateConfirmed, confirmed.State)
	require.NotNil(t, confirmed.ClientConfirmedAt)
	firstConfirmedAt := *confirmed.ClientConfirmedAt

	again, already, err := f.svc.Confirm(ctx, quote.ID)
	require.NoError(t, err)
	assert.True(t, already)
	assert.True(t, firstConfirmedAt.Equal(*again.ClientConfirmedAt))

	assert.Equal(t, 1, f.mailer.countSubjectPrefix("Quote Confirmed:"))
	assert.Equal(t, 1, f.mailer.countSubjectPrefix("Your Sprinkle Fairydust booking is confirmed"))
}

func TestQuoteService_SendPricedEmailFailures(t *testing.T) {
	t.Run("missing sender", func(t *testing.T) {
		f := setupQuoteService(t, &config.MailConfig{})
		quote := testutil.CreateQuote(t, f.db, nil)

		_, err := f.svc.SendPricedEmail(context.Background(), quote.ID)
		assert.ErrorIs(t, err, service.ErrMailNotConfigured)
	})

	t.Run("missing email", func(t *testing.T) {
		f := setupQuoteService(t, nil)
		quote := testutil.CreateQuote(t, f.db, func(q *domain.Quote) { q.Email = "" })

		_, err := f.svc.SendPricedEmail(context.Background(), quote.ID)
		assert.ErrorIs(t, err, service.ErrQuoteEmailMissing)
	})

	t.Run("transport failure is recorded", func(t *testing.T) {
		f := setupQuoteService(t, nil)
		f.mailer.err = errors.New("connection refused")
		quote := testutil.CreateQuote(t, f.db, nil)

		_, err := f.svc.SendPricedEmail(context.Background(), quote.ID)
		assert.ErrorIs(t, err, service.ErrDeliveryFailed)

		saved := f.reload(t, quote.ID)
		require.NotNil(t, saved.EmailSendStatus)
		assert.Equal(t, domain.EmailSendStatusFailed, *saved.EmailSendStatus)
		assert.NotNil(t, saved.EmailSendAttemptedAt)
		assert.Contains(t, string(saved.EmailSendResponse), "connection refused")
	})

	t.Run("unknown quote", func(t *testing.T) {
		f := setupQuoteService(t, nil)
		_, err := f.svc.SendPricedEmail(context.Background(), 404)
		assert.ErrorIs(t, err, service.ErrQuoteNotFound)
	})
}

func TestQuoteService_PriceConfirmedRejected(t *testing.T) {
	f := setupQuoteService(t, nil)
	quote := testutil.CreateQuote(t, f.db, func(q *domain.Quote) {
		q.State = domain.QuoteStateConfirmed
		now := time.Now().UTC()
		q.ClientConfirmedAt = &now
	})

	_, err := f.svc.Price(context.Background(), quote.ID, &domain.QuotePricingRequest{CalcTotalAmount: testutil.Ptr(1.0)})
	assert.ErrorIs(t, err, service.ErrQuoteAlreadyConfirmed)

	_, err = f.svc.Price(context.Background(), 999, &domain.QuotePricingRequest{CalcTotalAmount: testutil.Ptr(1.0)})
	assert.ErrorIs(t, err, service.ErrQuoteNotFound)
}

func TestQuoteService_DeclineGuard(t *testing.T) {
	f := setupQuoteService(t, nil)
	quote := testutil.CreateQuote(t, f.db, func(q *domain.Quote) {
		q.State = domain.QuoteStateConfirmed
		now := time.Now().UTC()
		q.ClientConfirmedAt = &now
	})

	_, err := f.svc.Decline(context.Background(), quote.ID, nil)
	assert.ErrorIs(t, err, service.ErrQuoteAlreadyConfirmed)

	saved := f.reload(t, quote.ID)
	assert.Nil(t, saved.ArtistDeclinedAt)
	assert.Empty(t, f.mailer.sent)
}

func TestQuoteService_DeclineClearsSuggestion(t *testing.T) {
	f := setupQuoteService(t, nil)
	quote := testutil.CreateQuote(t, f.db, func(q *domain.Quote) {
		now := time.Now().UTC()
		q.State = domain.QuoteStateTimeSuggested
		q.ClientSuggestedTimeAt = &now
		q.ClientSuggestedStartTime = testutil.Ptr("14:00")
		q.ClientSuggestedEndTime = testutil.Ptr("16:00")
		q.ClientSuggestedTimeNotes = testutil.Ptr("Afternoon please")
	})

	declined, err := f.svc.Decline(context.Background(), quote.ID, testutil.Ptr("   "))
	require.NoError(t, err)
	assert.Equal(t, domain.QuoteStateDeclined, declined.State)
	require.NotNil(t, declined.ArtistDeclineReason)
	assert.Equal(t, service.DefaultDeclineReason, *declined.ArtistDeclineReason)

	saved := f.reload(t, quote.ID)
	assert.Nil(t, saved.ClientSuggestedTimeAt)
	assert.Nil(t, saved.ClientSuggestedStartTime)
	assert.Nil(t, saved.ClientSuggestedEndTime)
	assert.Nil(t, saved.ClientSuggestedTimeNotes)
	assert.NotNil(t, saved.ArtistDeclinedAt)

	require.Len(t, f.mailer.sent, 1)
	assert.Equal(t, "About your Sprinkle Fairydust quote", f.mailer.sent[0].Subject)
	assert.Contains(t, f.mailer.sent[0].HTML, "/quotes/1/suggest-time?signature=")
}

func TestQuoteService_SuggestTime(t *testing.T) {
	f := setupQuoteService(t, nil)
	ctx := context.Background()
	quote := testutil.CreateQuote(t, f.db, func(q *domain.Quote) {
		q.State = domain.QuoteStateDeclined
		q.EventDate, _ = domain.ParseDate("2026-12-05")
	})

	form, err := f.svc.SuggestTimeForm(ctx, quote.ID)
	require.NoError(t, err)
	assert.Equal(t, "2026-12-05", form.Prefill.EventDate)
	assert.Equal(t, "10:00", form.Prefill.StartTime)
	assert.Equal(t, "13:00", form.Prefill.EndTime)

	submitURL, err := url.Parse(form.SubmitURL)
	require.NoError(t, err)
	require.NoError(t, f.links.VerifyAction(submitURL, signedlink.ActionSuggestTimeSubmit, quote.ID))

	_, err = f.svc.SubmitTimeSuggestion(ctx, quote.ID, &domain.SuggestTimeRequest{
		EventDate: "2026-12-06",
		StartTime: "15:00",
		EndTime:   "14:00",
	})
	assert.ErrorIs(t, err, service.ErrInvalidTimeRange)

	updated, err := f.svc.SubmitTimeSuggestion(ctx, quote.ID, &domain.SuggestTimeRequest{
		EventDate: "2026-12-06",
		StartTime: "14:00",
		EndTime:   "16:00",
		Notes:     "Afternoon works better",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.QuoteStateTimeSuggested, updated.State)
	assert.Equal(t, "2026-12-06", updated.SuggestedDateString())
	assert.NotNil(t, updated.ClientSuggestedTimeAt)

	// Staff gets the suggestion and the client gets a receipt
	assert.Equal(t, 1, f.mailer.countSubjectPrefix("New Time Suggested:"))
	assert.Equal(t, 1, f.mailer.countSubjectPrefix("We received your suggested time"))

	form, err = f.svc.SuggestTimeForm(ctx, quote.ID)
	require.NoError(t, err)
	assert.Equal(t, "2026-12-06", form.Prefill.EventDate)
	assert.Equal(t, "14:00", form.Prefill.StartTime)
	assert.Equal(t, "Afternoon works better", form.Prefill.Notes)
}

func TestQuoteService_SuggestTimeAfterConfirmRejected(t *testing.T) {
	f := setupQuoteService(t, nil)
	ctx := context.Background()
	quote := testutil.CreateQuote(t, f.db, func(q *domain.Quote) {
		q.State = domain.QuoteStateConfirmed
		now := time.Now().UTC()
		q.ClientConfirmedAt = &now
	})

	_, err := f.svc.SuggestTimeForm(ctx, quote.ID)
	assert.ErrorIs(t, err, service.ErrQuoteAlreadyConfirmed)

	_, err = f.svc.SubmitTimeSuggestion(ctx, quote.ID, &domain.SuggestTimeRequest{
		EventDate: "2026-12-06",
		StartTime: "14:00",
		EndTime:   "16:00",
	})
	assert.ErrorIs(t, err, service.ErrQuoteAlreadyConfirmed)

	saved := f.reload(t, quote.ID)
	assert.Nil(t, saved.ClientSuggestedTimeAt)
	assert.Nil(t, saved.ClientSuggestedStartTime)
}

func TestQuoteService_TrackOpen(t *testing.T) {
	f := setupQuoteService(t, nil)
	ctx := context.Background()
	quote := testutil.CreateQuote(t, f.db, nil)

	f.svc.TrackOpen(ctx, quote.ID)
	first := f.reload(t, quote.ID)
	require.NotNil(t, first.EmailOpenedAt)

	f.svc.TrackOpen(ctx, quote.ID)
	f.svc.TrackOpen(ctx, quote.ID)
	f.svc.TrackOpen(ctx, 999)

	saved := f.reload(t, quote.ID)
	assert.Equal(t, 3, saved.EmailOpenCount)
	assert.True(t, first.EmailOpenedAt.Equal(*saved.EmailOpenedAt))
	assert.False(t, saved.EmailLastOpenedAt.Before(*saved.EmailOpenedAt))
}
