package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/sprinkle-fairydust/site-api/internal/domain"
	"github.com/sprinkle-fairydust/site-api/internal/repository"
	"github.com/sprinkle-fairydust/site-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeoIPCacheRepository_SetGetUpsert(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewGeoIPCacheRepository(db)
	ctx := context.Background()

	_, ok, err := repo.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.Set(ctx, "k", "AU", time.Hour))
	require.NoError(t, repo.Set(ctx, "k", "NZ", time.Hour))

	country, ok, err := repo.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "NZ", country)
}

func TestGeoIPCacheRepository_Prune(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewGeoIPCacheRepository(db)
	ctx := context.Background()

	require.NoError(t, db.Create(&domain.GeoIPCacheEntry{
		CacheKey:    "expired",
		CountryCode: "AU",
		ExpiresAt:   time.Now().UTC().Add(-time.Minute),
	}).Error)
	require.NoError(t, repo.Set(ctx, "fresh", "NZ", time.Hour))

	_, ok, err := repo.Get(ctx, "expired")
	require.NoError(t, err)
	assert.False(t, ok)

	removed, err := repo.Prune(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	_, ok, err = repo.Get(ctx, "fresh")
	require.NoError(t, err)
	assert.True(t, ok)
}
