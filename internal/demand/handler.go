package demand

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/richxcame/urban-mobility/pkg/common"
)

// Handler handles HTTP requests for the demand pipeline artifacts
type Handler struct {
	service *Service
}

// NewHandler creates a new demand handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// GetSeries returns the hourly demand series
// GET /api/v1/demand/series
func (h *Handler) GetSeries(c *gin.Context) {
	series, err := h.service.GetDemandSeries(c.Request.Context())
	if err != nil {
		respondError(c, err, "failed to build demand series")
		return
	}
	common.SuccessResponse(c, gin.H{
		"series":  series,
		"buckets": len(series),
	})
}

// GetForecast fits and returns a fresh forecast
// GET /api/v1/demand/forecast?horizon_hours=720
func (h *Handler) GetForecast(c *gin.Context) {
	horizon, err := strconv.Atoi(c.DefaultQuery("horizon_hours", strconv.Itoa(h.service.cfg.ForecastHorizonHours)))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "horizon_hours must be an integer")
		return
	}

	result, err := h.service.GetForecast(c.Request.Context(), horizon)
	if err != nil {
		respondError(c, err, "failed to compute forecast")
		return
	}
	common.SuccessResponse(c, result)
}

// GetLatestForecast returns the last persisted pipeline forecast
// GET /api/v1/demand/forecast/latest
func (h *Handler) GetLatestForecast(c *gin.Context) {
	result, err := h.service.GetLatestForecast(c.Request.Context())
	if err != nil {
		respondError(c, err, "failed to load forecast")
		return
	}
	common.SuccessResponse(c, result)
}

// GetSample returns a bounded random subset of pickup coordinates
// GET /api/v1/demand/sample?size=5000&seed=42
func (h *Handler) GetSample(c *gin.Context) {
	size, seed, ok := sampleParams(c)
	if !ok {
		return
	}

	sample, err := h.service.GetSample(c.Request.Context(), size, seed)
	if err != nil {
		respondError(c, err, "failed to draw sample")
		return
	}
	common.SuccessResponse(c, gin.H{
		"points": sample,
		"count":  len(sample),
	})
}

// GetHotspots returns sampled pickups aggregated into H3 cells
// GET /api/v1/demand/hotspots?size=5000&seed=42
func (h *Handler) GetHotspots(c *gin.Context) {
	size, seed, ok := sampleParams(c)
	if !ok {
		return
	}

	cells, err := h.service.GetHotspots(c.Request.Context(), size, seed)
	if err != nil {
		respondError(c, err, "failed to aggregate hotspots")
		return
	}
	common.SuccessResponse(c, gin.H{
		"cells": cells,
		"count": len(cells),
	})
}

// sampleParams parses the shared size/seed query parameters. It writes the
// error response itself when parsing fails.
func sampleParams(c *gin.Context) (size int, seed int64, ok bool) {
	size, err := strconv.Atoi(c.DefaultQuery("size", "0"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "size must be an integer")
		return 0, 0, false
	}

	seed = time.Now().UnixNano()
	if raw := c.Query("seed"); raw != "" {
		seed, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			common.ErrorResponse(c, http.StatusBadRequest, "seed must be an integer")
			return 0, 0, false
		}
	}
	return size, seed, true
}

func respondError(c *gin.Context, err error, fallback string) {
	if appErr, ok := err.(*common.AppError); ok {
		common.AppErrorResponse(c, appErr)
		return
	}
	common.ErrorResponse(c, http.StatusInternalServerError, fallback)
}
