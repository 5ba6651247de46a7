package analytics

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/richxcame/urban-mobility/pkg/common"
)

// Handler handles HTTP requests for trip analytics
type Handler struct {
	service *Service
}

// NewHandler creates a new analytics handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// GetKPISummary returns the headline metrics
// GET /api/v1/analytics/summary
func (h *Handler) GetKPISummary(c *gin.Context) {
	summary, err := h.service.GetKPISummary(c.Request.Context())
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to load summary")
		return
	}
	common.SuccessResponse(c, summary)
}

// GetHourlyProfile returns demand by hour of day
// GET /api/v1/analytics/hourly
func (h *Handler) GetHourlyProfile(c *gin.Context) {
	profile, err := h.service.GetHourlyProfile(c.Request.Context())
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to load hourly profile")
		return
	}
	common.SuccessResponse(c, profile)
}

// GetWeekHeatmap returns the hour-by-weekday demand matrix
// GET /api/v1/analytics/heatmap
func (h *Handler) GetWeekHeatmap(c *gin.Context) {
	cells, err := h.service.GetWeekHeatmap(c.Request.Context())
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to load heatmap")
		return
	}
	common.SuccessResponse(c, cells)
}

// GetPassengerDistribution returns trip counts by passenger count
// GET /api/v1/analytics/passengers
func (h *Handler) GetPassengerDistribution(c *gin.Context) {
	dist, err := h.service.GetPassengerDistribution(c.Request.Context())
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to load passenger distribution")
		return
	}
	common.SuccessResponse(c, dist)
}

// GetDurationHistogram returns the trip duration distribution
// GET /api/v1/analytics/durations
func (h *Handler) GetDurationHistogram(c *gin.Context) {
	hist, err := h.service.GetDurationHistogram(c.Request.Context())
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to load duration histogram")
		return
	}
	common.SuccessResponse(c, hist)
}
