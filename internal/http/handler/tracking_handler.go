package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/sprinkle-fairydust/site-api/internal/domain"
	"github.com/sprinkle-fairydust/site-api/internal/http/middleware"
	"github.com/sprinkle-fairydust/site-api/internal/service"
	"go.uber.org/zap"
)

type TrackingHandler struct {
	trackingService *service.TrackingService
	logger          *zap.Logger
}

func NewTrackingHandler(trackingService *service.TrackingService, logger *zap.Logger) *TrackingHandler {
	return &TrackingHandler{
		trackingService: trackingService,
		logger:          logger,
	}
}

// TrackPageView godoc
// @Summary Record a page view or engagement event
// @Description Events on admin paths are acknowledged but never stored.
// @Tags Tracking
// @Accept json
// @Produce json
// @Param request body domain.TrackPageViewRequest true "Event"
// @Success 201 {object} domain.TrackPageViewResponse "Stored"
// @Success 202 {object} domain.TrackPageViewResponse "Ignored admin path"
// @Failure 400 {object} domain.APIError "Invalid request body"
// @Failure 422 {object} domain.APIError "Validation failed"
// @Failure 429 {string} string "Too many requests"
// @Router /api/tracking/page-views [post]
func (h *TrackingHandler) TrackPageView(w http.ResponseWriter, r *http.Request) {
	var req domain.TrackPageViewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	tracked, err := h.trackingService.Record(r.Context(), &req, service.RequestMeta{
		Header:    r.Header,
		IP:        middleware.ClientIP(r),
		Host:      r.Host,
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		h.logger.Error("failed to track page view", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to track page view")
		return
	}

	if !tracked {
		respondJSON(w, http.StatusAccepted, domain.TrackPageViewResponse{Success: true, Tracked: &tracked})
		return
	}
	respondJSON(w, http.StatusCreated, domain.TrackPageViewResponse{Success: true})
}

// Stats godoc
// @Summary Analytics report
// @Description Overview, top lists, daily views, quote funnel and per-quote visitor history.
// @Tags Admin Tracking
// @Produce json
// @Param days query int false "Limit the overview and top lists to the last N days"
// @Success 200 {object} domain.TrackingStats
// @Failure 400 {object} domain.APIError "Invalid days"
// @Failure 500 {object} domain.APIError "Internal server error"
// @Security ApiKeyAuth
// @Security BearerAuth
// @Router /admin/tracking/stats [get]
func (h *TrackingHandler) Stats(w http.ResponseWriter, r *http.Request) {
	var days *int
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 3650 {
			respondWithError(w, http.StatusBadRequest, "days must be between 1 and 3650")
			return
		}
		days = &n
	}

	stats, err := h.trackingService.Stats(r.Context(), days)
	if err != nil {
		h.logger.Error("failed to build tracking stats", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to build tracking stats")
		return
	}

	w.Header().Set("Cache-Control", "no-cache")
	respondJSON(w, http.StatusOK, stats)
}
