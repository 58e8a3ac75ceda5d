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

func TestTestimonialRepository_ListApproved(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewTestimonialRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(ctx, &domain.Testimonial{
			Name:        "Client",
			Testimonial: "Wonderful",
			IsApproved:  true,
			ApprovedAt:  &now,
			CreatedAt:   now.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, repo.Create(ctx, &domain.Testimonial{Name: "Pending", Testimonial: "Hidden"}))

	page, total, err := repo.ListApproved(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, page, 2)
	assert.True(t, page[0].CreatedAt.After(page[1].CreatedAt))

	page, _, err = repo.ListApproved(ctx, 2, 2)
	require.NoError(t, err)
	assert.Len(t, page, 1)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestTestimonialRepository_UpdateAndDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewTestimonialRepository(db)
	ctx := context.Background()

	testimonial := &domain.Testimonial{Name: "Sam", Testimonial: "Great", URLs: []string{"https://example.com/a.jpg"}}
	require.NoError(t, repo.Create(ctx, testimonial))

	testimonial.IsApproved = true
	require.NoError(t, repo.Update(ctx, testimonial))

	found, err := repo.GetByID(ctx, testimonial.ID)
	require.NoError(t, err)
	assert.True(t, found.IsApproved)
	assert.Equal(t, []string{"https://example.com/a.jpg"}, []string(found.URLs))

	deleted, err := repo.Delete(ctx, testimonial.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	_, err = repo.GetByID(ctx, testimonial.ID)
	assert.Error(t, err)
}
