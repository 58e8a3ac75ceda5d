package handler_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/sprinkle-fairydust/site-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTestimonialHandler_SubmitAndApprove(t *testing.T) {
	f := setupHandlers(t, nil)

	rr := f.do(t, http.MethodPost, "/api/testimonials", map[string]interface{}{
		"name":        "Priya",
		"testimonial": "The kids loved every design!",
		"urls":        []string{"https://photos.example.com/party"},
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	resp := decode[domain.SuccessResponse](t, rr)
	assert.Equal(t, "Thank you! Your testimonial will appear once it has been reviewed.", resp.Message)
	assert.Equal(t, 1, f.mailer.sentTo("quotes@sprinkle.test"))

	rr = f.do(t, http.MethodGet, "/api/testimonials", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	page := decode[domain.PaginatedTestimonials](t, rr)
	assert.Empty(t, page.Data, "unapproved testimonials stay hidden")

	rr = f.do(t, http.MethodGet, "/admin/testimonials/list", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "no-cache", rr.Header().Get("Cache-Control"))
	all := decode[[]domain.TestimonialDTO](t, rr)
	require.Len(t, all, 1)

	approved := true
	rr = f.do(t, http.MethodPut, fmt.Sprintf("/admin/testimonials/%d", all[0].ID), domain.AdminTestimonialRequest{
		Name:        all[0].Name,
		Testimonial: all[0].Testimonial,
		URLs:        all[0].URLs,
		IsApproved:  &approved,
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	updated := decode[domain.TestimonialDTO](t, rr)
	assert.True(t, updated.IsApproved)
	assert.NotNil(t, updated.ApprovedAt)

	rr = f.do(t, http.MethodGet, "/api/testimonials?page=1&limit=5", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	page = decode[domain.PaginatedTestimonials](t, rr)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "Priya", page.Data[0].Name)
	assert.Equal(t, int64(1), page.Meta.Total)
	assert.False(t, page.Meta.HasMore)
}

func TestTestimonialHandler_Validation(t *testing.T) {
	f := setupHandlers(t, nil)

	rr := f.do(t, http.MethodPost, "/api/testimonials", map[string]interface{}{
		"name": "Priya",
		"urls": []string{"not a url"},
	})

	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	apiErr := decode[domain.APIError](t, rr)
	assert.Contains(t, apiErr.Errors, "testimonial")
}

func TestTestimonialHandler_AdminCRUD(t *testing.T) {
	f := setupHandlers(t, nil)

	rr := f.do(t, http.MethodPost, "/admin/testimonials", map[string]interface{}{
		"name":        "Sam",
		"testimonial": "Brilliant at the school fair.",
		"is_approved": true,
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	created := decode[domain.TestimonialDTO](t, rr)
	assert.True(t, created.IsApproved)

	rr = f.do(t, http.MethodPut, "/admin/testimonials/9999", map[string]interface{}{
		"name":        "Sam",
		"testimonial": "Updated",
	})
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = f.do(t, http.MethodDelete, fmt.Sprintf("/admin/testimonials/%d", created.ID), nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = f.do(t, http.MethodDelete, fmt.Sprintf("/admin/testimonials/%d", created.ID), nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
