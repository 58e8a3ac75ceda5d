package service_test

import (
	"context"
	"testing"

	"github.com/sprinkle-fairydust/site-api/internal/config"
	"github.com/sprinkle-fairydust/site-api/internal/domain"
	"github.com/sprinkle-fairydust/site-api/internal/notification"
	"github.com/sprinkle-fairydust/site-api/internal/repository"
	"github.com/sprinkle-fairydust/site-api/internal/service"
	"github.com/sprinkle-fairydust/site-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTestimonialService(t *testing.T) (*service.TestimonialService, *recordingMailer) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	mailer := &recordingMailer{}
	renderer, err := notification.NewTemplateRenderer()
	require.NoError(t, err)

	dispatcher := notification.NewDispatcher(
		mailer,
		renderer,
		config.MailConfig{FromAddress: "hello@sprinkle.test"},
		config.NotificationsConfig{TestimonialNotificationEmail: "reviews@sprinkle.test"},
		testBaseURL,
		zap.NewNop(),
	)
	return service.NewTestimonialService(repository.NewTestimonialRepository(db), dispatcher, zap.NewNop()), mailer
}

func TestTestimonialService_SubmitNotifiesStaff(t *testing.T) {
	svc, mailer := setupTestimonialService(t)

	dto, err := svc.Submit(context.Background(), &domain.SubmitTestimonialRequest{
		Name:        " Alex ",
		Testimonial: "The kids loved it!",
		URLs:        []string{"https://example.com/photo.jpg", " "},
	})
	require.NoError(t, err)
	assert.Equal(t, "Alex", dto.Name)
	assert.False(t, dto.IsApproved)
	assert.Equal(t, []string{"https://example.com/photo.jpg"}, dto.URLs)

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "reviews@sprinkle.test", mailer.sent[0].To)
	assert.Equal(t, "New Testimonial Submission from Alex", mailer.sent[0].Subject)
}

func TestTestimonialService_ApprovalLifecycle(t *testing.T) {
	svc, _ := setupTestimonialService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, &domain.AdminTestimonialRequest{
		Name:        "Alex",
		Testimonial: "Wonderful",
		IsApproved:  testutil.Ptr(true),
	})
	require.NoError(t, err)
	require.NotNil(t, created.ApprovedAt)
	approvedAt := *created.ApprovedAt

	// Re-approving keeps the original timestamp
	updated, err := svc.Update(ctx, created.ID, &domain.AdminTestimonialRequest{
		Name:        "Alex",
		Testimonial: "Wonderful!",
		IsApproved:  testutil.Ptr(true),
	})
	require.NoError(t, err)
	require.NotNil(t, updated.ApprovedAt)
	assert.True(t, approvedAt.Equal(*updated.ApprovedAt))

	// Omitting the flag leaves approval untouched
	updated, err = svc.Update(ctx, created.ID, &domain.AdminTestimonialRequest{Name: "Alex", Testimonial: "Wonderful!"})
	require.NoError(t, err)
	assert.True(t, updated.IsApproved)

	updated, err = svc.Update(ctx, created.ID, &domain.AdminTestimonialRequest{
		Name:        "Alex",
		Testimonial: "Wonderful!",
		IsApproved:  testutil.Ptr(false),
	})
	require.NoError(t, err)
	assert.False(t, updated.IsApproved)
	assert.Nil(t, updated.ApprovedAt)

	_, err = svc.Update(ctx, 999, &domain.AdminTestimonialRequest{Name: "x", Testimonial: "y"})
	assert.ErrorIs(t, err, service.ErrTestimonialNotFound)

	require.NoError(t, svc.Delete(ctx, created.ID))
	assert.ErrorIs(t, svc.Delete(ctx, created.ID), service.ErrTestimonialNotFound)
}

func TestTestimonialService_ListApprovedPagination(t *testing.T) {
	svc, _ := setupTestimonialService(t)
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		_, err := svc.Create(ctx, &domain.AdminTestimonialRequest{
			Name:        "Client",
			Testimonial: "Great",
			IsApproved:  testutil.Ptr(i != 0),
		})
		require.NoError(t, err)
	}

	page, err := svc.ListApproved(ctx, 1, 0)
	require.NoError(t, err)
	assert.Len(t, page.Data, service.DefaultTestimonialPageSize)
	assert.Equal(t, int64(6), page.Meta.Total)
	assert.True(t, page.Meta.HasMore)

	page, err = svc.ListApproved(ctx, 2, 5)
	require.NoError(t, err)
	assert.Len(t, page.Data, 1)
	assert.False(t, page.Meta.HasMore)

	page, err = svc.ListApproved(ctx, 0, 100)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Meta.Page)
	assert.Equal(t, service.MaxTestimonialPageSize, page.Meta.Limit)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 7)
}
