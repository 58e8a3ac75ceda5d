package repository_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/sprinkle-fairydust/site-api/internal/domain"
	"github.com/sprinkle-fairydust/site-api/internal/repository"
	"github.com/sprinkle-fairydust/site-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuoteRepository_CreateAndGet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewQuoteRepository(db)

	date, err := domain.ParseDate("2026-12-05")
	require.NoError(t, err)

	quote := &domain.Quote{
		Name:              "Jamie",
		Email:             "jamie@x.test",
		State:             domain.QuoteStateSubmitted,
		EventDate:         date,
		ServicesRequested: []string{"face painting", "glitter"},
	}
	require.NoError(t, repo.Create(context.Background(), quote))
	assert.NotZero(t, quote.ID)

	found, err := repo.GetByID(context.Background(), quote.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jamie", found.Name)
	assert.Equal(t, "2026-12-05", found.EventDateString())
	assert.Equal(t, []string{"face painting", "glitter"}, []string(found.ServicesRequested))
}

func TestQuoteRepository_ListLatestFirst(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewQuoteRepository(db)

	older := testutil.CreateQuote(t, db, func(q *domain.Quote) {
		q.CreatedAt = time.Now().UTC().Add(-time.Hour)
	})
	newer := testutil.CreateQuote(t, db, nil)

	quotes, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, quotes, 2)
	assert.Equal(t, newer.ID, quotes[0].ID)
	assert.Equal(t, older.ID, quotes[1].ID)
}

func TestQuoteRepository_Delete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewQuoteRepository(db)
	quote := testutil.CreateQuote(t, db, nil)

	deleted, err := repo.Delete(context.Background(), quote.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repo.Delete(context.Background(), quote.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestQuoteRepository_TransitionGuard(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewQuoteRepository(db)
	quote := testutil.CreateQuote(t, db, nil)
	now := time.Now().UTC()

	applied, err := repo.Transition(context.Background(), quote.ID, domain.QuoteEventConfirm, map[string]interface{}{
		"state":               domain.QuoteStateConfirmed,
		"client_confirmed_at": now,
	})
	require.NoError(t, err)
	assert.True(t, applied)

	// confirmed is terminal
	applied, err = repo.Transition(context.Background(), quote.ID, domain.QuoteEventDecline, map[string]interface{}{
		"state": domain.QuoteStateDeclined,
	})
	require.NoError(t, err)
	assert.False(t, applied)

	found, err := repo.GetByID(context.Background(), quote.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.QuoteStateConfirmed, found.State)
	assert.NotNil(t, found.ClientConfirmedAt)
}

func TestQuoteRepository_TransitionMissingQuote(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewQuoteRepository(db)

	applied, err := repo.Transition(context.Background(), 999, domain.QuoteEventConfirm, map[string]interface{}{
		"state": domain.QuoteStateConfirmed,
	})
	require.NoError(t, err)
	assert.False(t, applied)
}

func TestQuoteRepository_ApplyPricing(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewQuoteRepository(db)

	t.Run("submitted becomes priced", func(t *testing.T) {
		quote := testutil.CreateQuote(t, db, nil)
		applied, err := repo.ApplyPricing(context.Background(), quote.ID, map[string]interface{}{
			"calc_total_amount": 450.0,
		})
		require.NoError(t, err)
		assert.True(t, applied)

		found, err := repo.GetByID(context.Background(), quote.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.QuoteStatePriced, found.State)
		require.NotNil(t, found.CalcTotalAmount)
		assert.InDelta(t, 450.0, *found.CalcTotalAmount, 0.001)
	})

	t.Run("time suggested keeps its state", func(t *testing.T) {
		quote := testutil.CreateQuote(t, db, func(q *domain.Quote) {
			q.State = domain.QuoteStateTimeSuggested
		})
		applied, err := repo.ApplyPricing(context.Background(), quote.ID, map[string]interface{}{
			"calc_total_amount": 300.0,
		})
		require.NoError(t, err)
		assert.True(t, applied)

		found, err := repo.GetByID(context.Background(), quote.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.QuoteStateTimeSuggested, found.State)
	})

	t.Run("confirmed is rejected", func(t *testing.T) {
		quote := testutil.CreateQuote(t, db, func(q *domain.Quote) {
			q.State = domain.QuoteStateConfirmed
			q.ClientConfirmedAt = testutil.Ptr(time.Now().UTC())
		})
		applied, err := repo.ApplyPricing(context.Background(), quote.ID, map[string]interface{}{
			"calc_total_amount": 300.0,
		})
		require.NoError(t, err)
		assert.False(t, applied)
	})
}

func TestQuoteRepository_RecordEmailSend(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewQuoteRepository(db)
	quote := testutil.CreateQuote(t, db, nil)

	err := repo.RecordEmailSend(context.Background(), quote.ID, domain.EmailSendStatusSent, time.Now().UTC(), []byte(`{"ok":true,"mailer":"log"}`))
	require.NoError(t, err)

	found, err := repo.GetByID(context.Background(), quote.ID)
	require.NoError(t, err)
	require.NotNil(t, found.EmailSendStatus)
	assert.Equal(t, domain.EmailSendStatusSent, *found.EmailSendStatus)
	assert.NotNil(t, found.EmailSendAttemptedAt)
	assert.JSONEq(t, `{"ok":true,"mailer":"log"}`, string(found.EmailSendResponse))
}

func TestQuoteRepository_RecordOpenConcurrent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewQuoteRepository(db)
	quote := testutil.CreateQuote(t, db, nil)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.RecordOpen(context.Background(), quote.ID, time.Now().UTC())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	found, err := repo.GetByID(context.Background(), quote.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, found.EmailOpenCount)
	require.NotNil(t, found.EmailOpenedAt)
	require.NotNil(t, found.EmailLastOpenedAt)
	assert.False(t, found.EmailLastOpenedAt.Before(*found.EmailOpenedAt))
}

func TestQuoteRepository_RecordOpenMissing(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewQuoteRepository(db)

	found, err := repo.RecordOpen(context.Background(), 42, time.Now().UTC())
	require.NoError(t, err)
	assert.False(t, found)
}

func TestQuoteRepository_ListWithAnonymousID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewQuoteRepository(db)

	testutil.CreateQuote(t, db, nil)
	tracked := testutil.CreateQuote(t, db, func(q *domain.Quote) {
		q.AnonymousID = testutil.Ptr("anon-1")
	})

	quotes, err := repo.ListWithAnonymousID(context.Background(), 30)
	require.NoError(t, err)
	require.Len(t, quotes, 1)
	assert.Equal(t, tracked.ID, quotes[0].ID)
}
