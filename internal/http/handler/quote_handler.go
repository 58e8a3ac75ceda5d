package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/sprinkle-fairydust/site-api/internal/domain"
	"github.com/sprinkle-fairydust/site-api/internal/service"
	"go.uber.org/zap"
)

type QuoteHandler struct {
	quoteService *service.QuoteService
	logger       *zap.Logger
}

func NewQuoteHandler(quoteService *service.QuoteService, logger *zap.Logger) *QuoteHandler {
	return &QuoteHandler{
		quoteService: quoteService,
		logger:       logger,
	}
}

// Submit godoc
// @Summary Submit a quote request
// @Description Public booking form. Staff are notified by email; a failed notification does not fail the request.
// @Tags Quotes
// @Accept json
// @Produce json
// @Param request body domain.SubmitQuoteRequest true "Quote request"
// @Success 200 {object} domain.SuccessResponse
// @Failure 400 {object} domain.APIError "Invalid request body"
// @Failure 422 {object} domain.APIError "Validation failed or booking shorter than one hour"
// @Failure 500 {object} domain.APIError "Internal server error"
// @Router /api/quotes [post]
func (h *QuoteHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req domain.SubmitQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	if _, err := h.quoteService.Submit(r.Context(), &req); err != nil {
		h.handleQuoteError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, domain.SuccessResponse{
		Success: true,
		Message: "Quote saved and email sent successfully!",
	})
}

// List godoc
// @Summary List quotes
// @Tags Admin Quotes
// @Produce json
// @Success 200 {array} domain.QuoteDTO
// @Failure 403 {string} string "Forbidden"
// @Failure 500 {object} domain.APIError "Internal server error"
// @Security ApiKeyAuth
// @Security BearerAuth
// @Router /admin/quotes/list [get]
func (h *QuoteHandler) List(w http.ResponseWriter, r *http.Request) {
	quotes, err := h.quoteService.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list quotes", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list quotes")
		return
	}

	w.Header().Set("Cache-Control", "no-cache")
	respondJSON(w, http.StatusOK, quotes)
}

// GetByID godoc
// @Summary Get quote
// @Tags Admin Quotes
// @Produce json
// @Param id path int true "Quote ID"
// @Success 200 {object} domain.QuoteDTO
// @Failure 400 {object} domain.APIError "Invalid quote ID"
// @Failure 404 {object} domain.APIError "Quote not found"
// @Security ApiKeyAuth
// @Security BearerAuth
// @Router /admin/quotes/{id} [get]
func (h *QuoteHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid quote ID")
		return
	}

	quote, err := h.quoteService.GetByID(r.Context(), id)
	if err != nil {
		h.handleQuoteError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, quote)
}

// Create godoc
// @Summary Create quote
// @Description Creates a quote from the back office. Supplying any pricing field marks it priced.
// @Tags Admin Quotes
// @Accept json
// @Produce json
// @Param request body domain.AdminQuoteRequest true "Quote"
// @Success 201 {object} domain.QuoteMutationResponse
// @Failure 400 {object} domain.APIError "Invalid request body"
// @Failure 422 {object} domain.APIError "Validation failed"
// @Security ApiKeyAuth
// @Security BearerAuth
// @Router /admin/quotes [post]
func (h *QuoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.AdminQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	quote, err := h.quoteService.Create(r.Context(), &req)
	if err != nil {
		h.handleQuoteError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, domain.QuoteMutationResponse{Success: true, Quote: quote})
}

// Update godoc
// @Summary Update quote
// @Description Replaces the intake fields. Supplying any pricing field reprices the quote.
// @Tags Admin Quotes
// @Accept json
// @Produce json
// @Param id path int true "Quote ID"
// @Param request body domain.AdminQuoteRequest true "Quote"
// @Success 200 {object} domain.QuoteMutationResponse
// @Failure 400 {object} domain.APIError "Invalid quote ID or request body"
// @Failure 404 {object} domain.APIError "Quote not found"
// @Failure 422 {object} domain.APIError "Validation failed or quote already confirmed"
// @Security ApiKeyAuth
// @Security BearerAuth
// @Router /admin/quotes/{id} [put]
func (h *QuoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid quote ID")
		return
	}

	var req domain.AdminQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	quote, err := h.quoteService.Update(r.Context(), id, &req)
	if err != nil {
		h.handleQuoteError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, domain.QuoteMutationResponse{Success: true, Quote: quote})
}

// UpdatePricing godoc
// @Summary Price quote
// @Description Stores the pricing snapshot. A submitted quote becomes priced.
// @Tags Admin Quotes
// @Accept json
// @Produce json
// @Param id path int true "Quote ID"
// @Param request body domain.QuotePricingRequest true "Pricing"
// @Success 200 {object} domain.QuoteMutationResponse
// @Failure 400 {object} domain.APIError "Invalid quote ID or request body"
// @Failure 404 {object} domain.APIError "Quote not found"
// @Failure 422 {object} domain.APIError "Validation failed or quote already confirmed"
// @Security ApiKeyAuth
// @Security BearerAuth
// @Router /admin/quotes/{id}/pricing [put]
func (h *QuoteHandler) UpdatePricing(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid quote ID")
		return
	}

	var req domain.QuotePricingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	quote, err := h.quoteService.Price(r.Context(), id, &req)
	if err != nil {
		h.handleQuoteError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, domain.QuoteMutationResponse{Success: true, Quote: quote})
}

// Delete godoc
// @Summary Delete quote
// @Tags Admin Quotes
// @Param id path int true "Quote ID"
// @Success 204
// @Failure 400 {object} domain.APIError "Invalid quote ID"
// @Failure 404 {object} domain.APIError "Quote not found"
// @Security ApiKeyAuth
// @Security BearerAuth
// @Router /admin/quotes/{id} [delete]
func (h *QuoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid quote ID")
		return
	}

	if err := h.quoteService.Delete(r.Context(), id); err != nil {
		h.handleQuoteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SendEmail godoc
// @Summary Send priced quote email
// @Description Emails the priced quote with signed confirm and open-tracking links. The delivery outcome is stored on the quote even when sending fails.
// @Tags Admin Quotes
// @Produce json
// @Param id path int true "Quote ID"
// @Success 200 {object} domain.QuoteMutationResponse
// @Failure 404 {object} domain.APIError "Quote not found"
// @Failure 422 {object} domain.APIError "Email address missing or sender not configured"
// @Failure 500 {object} domain.APIError "Delivery failed"
// @Security ApiKeyAuth
// @Security BearerAuth
// @Router /admin/quotes/{id}/send-email [post]
func (h *QuoteHandler) SendEmail(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid quote ID")
		return
	}

	quote, err := h.quoteService.SendPricedEmail(r.Context(), id)
	if err != nil {
		h.handleQuoteError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, struct {
		domain.SuccessResponse
		Quote *domain.QuoteDTO `json:"quote"`
	}{
		SuccessResponse: domain.SuccessResponse{Success: true, Message: "Quote email sent successfully."},
		Quote:           quote,
	})
}

// Decline godoc
// @Summary Decline quote
// @Description Declines the booking and emails the client a signed link to suggest another time.
// @Tags Admin Quotes
// @Accept json
// @Produce json
// @Param id path int true "Quote ID"
// @Param request body domain.DeclineQuoteRequest false "Decline reason"
// @Success 200 {object} domain.QuoteMutationResponse
// @Failure 404 {object} domain.APIError "Quote not found"
// @Failure 422 {object} domain.APIError "Quote already confirmed"
// @Security ApiKeyAuth
// @Security BearerAuth
// @Router /admin/quotes/{id}/decline [post]
func (h *QuoteHandler) Decline(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid quote ID")
		return
	}

	var req domain.DeclineQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	quote, err := h.quoteService.Decline(r.Context(), id, req.Reason)
	if err != nil {
		h.handleQuoteError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, domain.QuoteMutationResponse{Success: true, Quote: quote})
}

func (h *QuoteHandler) handleQuoteError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrQuoteNotFound):
		respondWithError(w, http.StatusNotFound, "Quote not found")
	case errors.Is(err, service.ErrQuoteAlreadyConfirmed):
		respondGuardError(w, "This quote has already been confirmed.")
	case errors.Is(err, service.ErrInvalidTimeRange):
		respondFieldErrors(w, map[string]string{"end_time": "End time must be after start time."})
	case errors.Is(err, service.ErrDurationTooShort):
		respondFieldErrors(w, map[string]string{"end_time": "End time must be at least 1 hour after start time."})
	case errors.Is(err, service.ErrQuoteEmailMissing):
		respondGuardError(w, "Quote email address is missing.")
	case errors.Is(err, service.ErrMailNotConfigured):
		respondGuardError(w, "Email is not configured. Set MAIL_FROM_ADDRESS.")
	case errors.Is(err, service.ErrDeliveryFailed):
		respondWithError(w, http.StatusInternalServerError, "Failed to send quote email.")
	default:
		h.logger.Error("quote request failed", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
