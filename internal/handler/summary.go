package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rideengine/internal/domain"
	"rideengine/internal/service"
)

// PriceBreakdownResponse is the fare split of a ride.
type PriceBreakdownResponse struct {
	DistanceKm      float64 `json:"distance_km"`
	BasePrice       float64 `json:"base_price"`
	SurgeMultiplier float64 `json:"surge_multiplier"`
	SurgeAmount     float64 `json:"surge_amount"`
	Total           float64 `json:"total"`
	Estimated       bool    `json:"estimated"`
	Currency        string  `json:"currency"`
}

// TimingResponse holds lifecycle gaps in whole minutes.
type TimingResponse struct {
	TimeToAcceptMin *int `json:"time_to_accept_min"`
	TimeToArriveMin *int `json:"time_to_arrive_min"`
	TripDurationMin *int `json:"trip_duration_min"`
}

// RejectionResponse is the HTTP representation of a rejection.
type RejectionResponse struct {
	ID        string  `json:"id"`
	RideID    string  `json:"ride_id"`
	DriverID  string  `json:"driver_id"`
	Reason    string  `json:"reason"`
	Notes     *string `json:"notes"`
	CreatedAt string  `json:"created_at"`
}

// CancellationResponse is the HTTP representation of a cancellation.
type CancellationResponse struct {
	CancelledBy    string  `json:"cancelled_by"`
	PenaltyApplied float64 `json:"penalty_applied"`
	CreatedAt      string  `json:"created_at"`
}

// SummaryResponse is the HTTP response for a ride summary.
type SummaryResponse struct {
	Ride         RideResponse           `json:"ride"`
	Price        PriceBreakdownResponse `json:"price"`
	Timing       TimingResponse         `json:"timing"`
	Rejections   []RejectionResponse    `json:"rejections"`
	Cancellation *CancellationResponse  `json:"cancellation"`
}

func toRejectionResponses(rejections []*domain.Rejection) []RejectionResponse {
	out := make([]RejectionResponse, 0, len(rejections))
	for _, r := range rejections {
		out = append(out, RejectionResponse{
			ID:        r.ID,
			RideID:    r.RideID,
			DriverID:  r.DriverID,
			Reason:    string(r.Reason),
			Notes:     r.Notes,
			CreatedAt: formatTime(r.CreatedAt),
		})
	}
	return out
}

func toSummaryResponse(s *service.RideSummary) SummaryResponse {
	resp := SummaryResponse{
		Ride: toRideResponse(s.Ride),
		Price: PriceBreakdownResponse{
			DistanceKm:      s.Price.DistanceKm,
			BasePrice:       s.Price.BasePrice,
			SurgeMultiplier: s.Price.SurgeMultiplier,
			SurgeAmount:     s.Price.SurgeAmount,
			Total:           s.Price.Total,
			Estimated:       s.Price.Estimated,
			Currency:        s.Price.Currency,
		},
		Timing: TimingResponse{
			TimeToAcceptMin: s.Timing.TimeToAcceptMin,
			TimeToArriveMin: s.Timing.TimeToArriveMin,
			TripDurationMin: s.Timing.TripDurationMin,
		},
		Rejections: toRejectionResponses(s.Rejections),
	}
	if s.Cancellation != nil {
		resp.Cancellation = &CancellationResponse{
			CancelledBy:    string(s.Cancellation.CancelledBy),
			PenaltyApplied: s.Cancellation.PenaltyApplied,
			CreatedAt:      formatTime(s.Cancellation.CreatedAt),
		}
	}
	return resp
}

// GetSummary handles GET /v1/rides/:id/summary
func (h *RideHandler) GetSummary(c *gin.Context) {
	summary, err := h.rideService.Summary(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondJSON(c, http.StatusOK, toSummaryResponse(summary))
}

// ListRejections handles GET /v1/rides/:id/rejections
func (h *RideHandler) ListRejections(c *gin.Context) {
	rejections, err := h.rideService.ListRejections(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondJSON(c, http.StatusOK, gin.H{"rejections": toRejectionResponses(rejections)})
}
