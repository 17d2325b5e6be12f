package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"rideengine/internal/service"
)

// HubHandler serves the operations hub views.
type HubHandler struct {
	rideService    *service.RideService
	heatmapService *service.HeatmapService
	log            *slog.Logger
}

// NewHubHandler creates a new HubHandler. heatmapService may be nil when no
// geo index is configured.
func NewHubHandler(rideService *service.RideService, heatmapService *service.HeatmapService, log *slog.Logger) *HubHandler {
	return &HubHandler{
		rideService:    rideService,
		heatmapService: heatmapService,
		log:            log,
	}
}

// RecentRejections handles GET /v1/hub/rejections
func (h *HubHandler) RecentRejections(c *gin.Context) {
	var q struct {
		Limit int `form:"limit"`
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBadRequest(c, "invalid query parameters")
		return
	}

	rejections, err := h.rideService.RecentRejections(c.Request.Context(), q.Limit)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondJSON(c, http.StatusOK, gin.H{"rejections": toRejectionResponses(rejections)})
}

type heatmapQuery struct {
	Lat      *float64 `form:"lat" binding:"required"`
	Lng      *float64 `form:"lng" binding:"required"`
	RadiusKm float64  `form:"radius_km"`
}

// HeatCellResponse is one geohash bucket.
type HeatCellResponse struct {
	Geohash string  `json:"geohash"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Count   int     `json:"count"`
}

// MarkerResponse is one ride request point.
type MarkerResponse struct {
	RideID string  `json:"ride_id"`
	Lat    float64 `json:"lat"`
	Lng    float64 `json:"lng"`
}

// Heatmap handles GET /v1/hub/heatmap
func (h *HubHandler) Heatmap(c *gin.Context) {
	if h.heatmapService == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: codeUnavailable, Message: "heatmap index is not configured"})
		return
	}

	var q heatmapQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBadRequest(c, "lat and lng are required")
		return
	}

	heatmap, err := h.heatmapService.Nearby(c.Request.Context(), *q.Lat, *q.Lng, q.RadiusKm)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	cells := make([]HeatCellResponse, 0, len(heatmap.Cells))
	for _, cell := range heatmap.Cells {
		cells = append(cells, HeatCellResponse(cell))
	}
	markers := make([]MarkerResponse, 0, len(heatmap.Markers))
	for _, m := range heatmap.Markers {
		markers = append(markers, MarkerResponse{RideID: m.RideID, Lat: m.Lat, Lng: m.Lng})
	}
	respondJSON(c, http.StatusOK, gin.H{"cells": cells, "markers": markers})
}
