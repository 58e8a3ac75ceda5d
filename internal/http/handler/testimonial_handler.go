package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sprinkle-fairydust/site-api/internal/domain"
	"github.com/sprinkle-fairydust/site-api/internal/service"
	"go.uber.org/zap"
)

type TestimonialHandler struct {
	testimonialService *service.TestimonialService
	logger             *zap.Logger
}

func NewTestimonialHandler(testimonialService *service.TestimonialService, logger *zap.Logger) *TestimonialHandler {
	return &TestimonialHandler{
		testimonialService: testimonialService,
		logger:             logger,
	}
}

// ListApproved godoc
// @Summary List approved testimonials
// @Tags Testimonials
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size (max 20)" default(5)
// @Success 200 {object} domain.PaginatedTestimonials
// @Failure 500 {object} domain.APIError "Internal server error"
// @Router /api/testimonials [get]
func (h *TestimonialHandler) ListApproved(w http.ResponseWriter, r *http.Request) {
	page := parseIntQuery(r, "page", 1)
	limit := parseIntQuery(r, "limit", service.DefaultTestimonialPageSize)

	result, err := h.testimonialService.ListApproved(r.Context(), page, limit)
	if err != nil {
		h.logger.Error("failed to list testimonials", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list testimonials")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// Submit godoc
// @Summary Submit a testimonial
// @Description Stored unapproved until staff review it.
// @Tags Testimonials
// @Accept json
// @Produce json
// @Param request body domain.SubmitTestimonialRequest true "Testimonial"
// @Success 201 {object} domain.SuccessResponse
// @Failure 400 {object} domain.APIError "Invalid request body"
// @Failure 422 {object} domain.APIError "Validation failed"
// @Router /api/testimonials [post]
func (h *TestimonialHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req domain.SubmitTestimonialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	if _, err := h.testimonialService.Submit(r.Context(), &req); err != nil {
		h.handleTestimonialError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, domain.SuccessResponse{
		Success: true,
		Message: "Thank you! Your testimonial will appear once it has been reviewed.",
	})
}

// List godoc
// @Summary List all testimonials
// @Tags Admin Testimonials
// @Produce json
// @Success 200 {array} domain.TestimonialDTO
// @Security ApiKeyAuth
// @Security BearerAuth
// @Router /admin/testimonials/list [get]
func (h *TestimonialHandler) List(w http.ResponseWriter, r *http.Request) {
	testimonials, err := h.testimonialService.List(r.Context())
	if err != nil {
		h.handleTestimonialError(w, err)
		return
	}

	w.Header().Set("Cache-Control", "no-cache")
	respondJSON(w, http.StatusOK, testimonials)
}

// Create godoc
// @Summary Create testimonial
// @Tags Admin Testimonials
// @Accept json
// @Produce json
// @Param request body domain.AdminTestimonialRequest true "Testimonial"
// @Success 201 {object} domain.TestimonialDTO
// @Failure 422 {object} domain.APIError "Validation failed"
// @Security ApiKeyAuth
// @Security BearerAuth
// @Router /admin/testimonials [post]
func (h *TestimonialHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.AdminTestimonialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	testimonial, err := h.testimonialService.Create(r.Context(), &req)
	if err != nil {
		h.handleTestimonialError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, testimonial)
}

// Update godoc
// @Summary Update testimonial
// @Description Approving sets approved_at on first approval; un-approving clears it.
// @Tags Admin Testimonials
// @Accept json
// @Produce json
// @Param id path int true "Testimonial ID"
// @Param request body domain.AdminTestimonialRequest true "Testimonial"
// @Success 200 {object} domain.TestimonialDTO
// @Failure 404 {object} domain.APIError "Testimonial not found"
// @Failure 422 {object} domain.APIError "Validation failed"
// @Security ApiKeyAuth
// @Security BearerAuth
// @Router /admin/testimonials/{id} [put]
func (h *TestimonialHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid testimonial ID")
		return
	}

	var req domain.AdminTestimonialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	testimonial, err := h.testimonialService.Update(r.Context(), id, &req)
	if err != nil {
		h.handleTestimonialError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, testimonial)
}

// Delete godoc
// @Summary Delete testimonial
// @Tags Admin Testimonials
// @Param id path int true "Testimonial ID"
// @Success 204
// @Failure 404 {object} domain.APIError "Testimonial not found"
// @Security ApiKeyAuth
// @Security BearerAuth
// @Router /admin/testimonials/{id} [delete]
func (h *TestimonialHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid testimonial ID")
		return
	}

	if err := h.testimonialService.Delete(r.Context(), id); err != nil {
		h.handleTestimonialError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *TestimonialHandler) handleTestimonialError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrTestimonialNotFound):
		respondWithError(w, http.StatusNotFound, "Testimonial not found")
	default:
		h.logger.Error("testimonial request failed", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
