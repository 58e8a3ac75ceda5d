package handler

// This file contains the handlers behind the links embedded in quote
// emails. Every route requires a valid signature and answers with HTML
// (or the tracking pixel), never JSON.

import (
	"encoding/base64"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/sprinkle-fairydust/site-api/internal/domain"
	"github.com/sprinkle-fairydust/site-api/internal/service"
	"github.com/sprinkle-fairydust/site-api/internal/signedlink"
	"go.uber.org/zap"
)

var trackingPixel, _ = base64.StdEncoding.DecodeString("R0lGODlhAQABAPAAAP///wAAACH5BAAAAAAALAAAAAABAAEAAAICRAEAOw==")

// LinkVerifier checks a signed link against the route it was followed to
type LinkVerifier interface {
	VerifyAction(u *url.URL, action signedlink.Action, quoteID uint) error
}

type SignedLinkHandler struct {
	quoteService *service.QuoteService
	verifier     LinkVerifier
	pages        *PageRenderer
	logger       *zap.Logger
}

func NewSignedLinkHandler(quoteService *service.QuoteService, verifier LinkVerifier, pages *PageRenderer, logger *zap.Logger) *SignedLinkHandler {
	return &SignedLinkHandler{
		quoteService: quoteService,
		verifier:     verifier,
		pages:        pages,
		logger:       logger,
	}
}

// verified returns the quote id when the request carries a valid
// signature for action. It writes a bare 403 otherwise.
func (h *SignedLinkHandler) verified(w http.ResponseWriter, r *http.Request, action signedlink.Action) (uint, bool) {
	id, ok := parseID(r)
	if ok {
		if err := h.verifier.VerifyAction(r.URL, action, id); err == nil {
			return id, true
		}
	}
	h.logger.Info("signed link rejected",
		zap.String("action", string(action)),
		zap.String("path", r.URL.Path),
	)
	forbidden(w)
	return 0, false
}

// Confirm godoc
// @Summary Confirm a priced quote
// @Description Signed link from the priced-quote email. Confirming twice is harmless.
// @Tags Quote Links
// @Produce html
// @Param id path int true "Quote ID"
// @Param signature query string true "Link signature"
// @Success 200 {string} string "Confirmation page"
// @Failure 403 {string} string "Forbidden"
// @Failure 404 {string} string "Quote not found page"
// @Router /quotes/{id}/confirm [get]
func (h *SignedLinkHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	id, ok := h.verified(w, r, signedlink.ActionConfirm)
	if !ok {
		return
	}

	quote, alreadyConfirmed, err := h.quoteService.Confirm(r.Context(), id)
	if err != nil {
		h.handlePageError(w, err, id)
		return
	}

	if alreadyConfirmed {
		h.pages.Status(w, http.StatusOK, "Quote Confirmation", "Already Confirmed",
			"This quote has already been confirmed. Thank you for choosing Sprinkle Fairydust.")
		return
	}
	h.pages.Status(w, http.StatusOK, "Quote Confirmation", "Quote Confirmed",
		"Your quote for "+eventName(deref(quote.EventType))+" is now confirmed. Thank you for booking with Sprinkle Fairydust.")
}

// Open godoc
// @Summary Email open tracking pixel
// @Tags Quote Links
// @Produce image/gif
// @Param id path int true "Quote ID"
// @Param signature query string true "Link signature"
// @Success 200 {file} binary "1x1 GIF"
// @Failure 403 {string} string "Forbidden"
// @Router /quotes/{id}/open [get]
func (h *SignedLinkHandler) Open(w http.ResponseWriter, r *http.Request) {
	id, ok := h.verified(w, r, signedlink.ActionOpen)
	if !ok {
		return
	}

	h.quoteService.TrackOpen(r.Context(), id)

	w.Header().Set("Content-Type", "image/gif")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate, max-age=0")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(trackingPixel)
}

// SuggestTimeForm godoc
// @Summary Suggest-time form
// @Description Signed link from the decline email. Prefilled with the last suggestion or the original booking.
// @Tags Quote Links
// @Produce html
// @Param id path int true "Quote ID"
// @Param signature query string true "Link signature"
// @Success 200 {string} string "Form page"
// @Failure 403 {string} string "Forbidden"
// @Failure 422 {string} string "Quote already confirmed page"
// @Router /quotes/{id}/suggest-time [get]
func (h *SignedLinkHandler) SuggestTimeForm(w http.ResponseWriter, r *http.Request) {
	id, ok := h.verified(w, r, signedlink.ActionSuggestTimeForm)
	if !ok {
		return
	}

	form, err := h.quoteService.SuggestTimeForm(r.Context(), id)
	if err != nil {
		h.handlePageError(w, err, id)
		return
	}

	h.pages.SuggestTimeForm(w, http.StatusOK, deref(form.Quote.EventType), form.SubmitURL, suggestPrefill(form.Prefill), nil)
}

// SuggestTimeSubmit godoc
// @Summary Submit a suggested time
// @Tags Quote Links
// @Accept x-www-form-urlencoded
// @Produce html
// @Param id path int true "Quote ID"
// @Param signature query string true "Link signature"
// @Param event_date formData string true "Date (YYYY-MM-DD)"
// @Param start_time formData string true "Start time (HH:MM)"
// @Param end_time formData string true "End time (HH:MM)"
// @Param notes formData string false "Notes"
// @Success 200 {string} string "Thank you page"
// @Failure 403 {string} string "Forbidden"
// @Failure 422 {string} string "Form with errors, or quote already confirmed page"
// @Router /quotes/{id}/suggest-time [post]
func (h *SignedLinkHandler) SuggestTimeSubmit(w http.ResponseWriter, r *http.Request) {
	id, ok := h.verified(w, r, signedlink.ActionSuggestTimeSubmit)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		h.pages.Status(w, http.StatusBadRequest, "Suggest a Different Time", "Something Went Wrong",
			"We could not read your suggestion. Please try the link in your email again.")
		return
	}

	req := domain.SuggestTimeRequest{
		EventDate: strings.TrimSpace(r.PostForm.Get("event_date")),
		StartTime: strings.TrimSpace(r.PostForm.Get("start_time")),
		EndTime:   strings.TrimSpace(r.PostForm.Get("end_time")),
		Notes:     strings.TrimSpace(r.PostForm.Get("notes")),
	}
	posted := suggestPrefill{EventDate: req.EventDate, StartTime: req.StartTime, EndTime: req.EndTime, Notes: req.Notes}

	if err := validate.Struct(req); err != nil {
		h.redisplayForm(w, r, id, posted, validationErrors(err))
		return
	}

	quote, err := h.quoteService.SubmitTimeSuggestion(r.Context(), id, &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidTimeRange) {
			h.redisplayForm(w, r, id, posted, map[string]string{"end_time": "End time must be after start time."})
			return
		}
		h.handlePageError(w, err, id)
		return
	}

	h.pages.Status(w, http.StatusOK, "Suggest a Different Time", "Thank You",
		"We received your suggested time for "+eventName(deref(quote.EventType))+". We will be in touch soon to confirm the details.")
}

// redisplayForm renders the form again with the posted values and errors
func (h *SignedLinkHandler) redisplayForm(w http.ResponseWriter, r *http.Request, id uint, posted suggestPrefill, fieldErrors map[string]string) {
	form, err := h.quoteService.SuggestTimeForm(r.Context(), id)
	if err != nil {
		h.handlePageError(w, err, id)
		return
	}
	h.pages.SuggestTimeForm(w, http.StatusUnprocessableEntity, deref(form.Quote.EventType), form.SubmitURL, posted, fieldErrors)
}

func (h *SignedLinkHandler) handlePageError(w http.ResponseWriter, err error, id uint) {
	switch {
	case errors.Is(err, service.ErrQuoteNotFound):
		h.pages.Status(w, http.StatusNotFound, "Quote", "Quote Not Found",
			"We could not find this quote. Please get in touch and we will sort it out.")
	case errors.Is(err, service.ErrQuoteAlreadyConfirmed):
		h.pages.Status(w, http.StatusUnprocessableEntity, "Suggest a Different Time", "Already Confirmed",
			"This quote has already been confirmed, so a new time can no longer be suggested. Please contact us if your plans have changed.")
	default:
		h.logger.Error("signed link request failed", zap.Uint("quote_id", id), zap.Error(err))
		h.pages.Status(w, http.StatusInternalServerError, "Quote", "Something Went Wrong",
			"We could not complete your request. Please try again shortly.")
	}
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
