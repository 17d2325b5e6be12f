package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"rideengine/internal/domain"
	"rideengine/internal/service"
)

// RideHandler handles HTTP requests for rides.
type RideHandler struct {
	rideService *service.RideService
	log         *slog.Logger
}

// NewRideHandler creates a new RideHandler.
func NewRideHandler(rideService *service.RideService, log *slog.Logger) *RideHandler {
	return &RideHandler{
		rideService: rideService,
		log:         log,
	}
}

// CreateRideRequest is the HTTP request body for creating a ride.
type CreateRideRequest struct {
	RiderID        string   `json:"rider_id"`
	PickupLat      *float64 `json:"pickup_lat" binding:"required"`
	PickupLng      *float64 `json:"pickup_lng" binding:"required"`
	PickupAddress  string   `json:"pickup_address"`
	DropoffLat     *float64 `json:"dropoff_lat" binding:"required"`
	DropoffLng     *float64 `json:"dropoff_lng" binding:"required"`
	DropoffAddress string   `json:"dropoff_address"`
}

// QuoteRequest is the HTTP request body for a price quote.
type QuoteRequest struct {
	PickupLat  *float64 `json:"pickup_lat" binding:"required"`
	PickupLng  *float64 `json:"pickup_lng" binding:"required"`
	DropoffLat *float64 `json:"dropoff_lat" binding:"required"`
	DropoffLng *float64 `json:"dropoff_lng" binding:"required"`
}

// RideResponse is the HTTP representation of a ride.
type RideResponse struct {
	ID              string   `json:"id"`
	RiderID         string   `json:"rider_id"`
	DriverID        *string  `json:"driver_id"`
	PickupLat       float64  `json:"pickup_lat"`
	PickupLng       float64  `json:"pickup_lng"`
	PickupAddress   string   `json:"pickup_address"`
	DropoffLat      float64  `json:"dropoff_lat"`
	DropoffLng      float64  `json:"dropoff_lng"`
	DropoffAddress  string   `json:"dropoff_address"`
	BasePrice       float64  `json:"base_price"`
	SurgeMultiplier float64  `json:"surge_multiplier"`
	FinalPrice      *float64 `json:"final_price"`
	Status          string   `json:"status"`
	RequestedAt     string   `json:"requested_at"`
	AcceptedAt      *string  `json:"accepted_at"`
	DriverArrivedAt *string  `json:"driver_arrived_at"`
	StartedAt       *string  `json:"started_at"`
	CompletedAt     *string  `json:"completed_at"`
	CancelledAt     *string  `json:"cancelled_at"`
	UpdatedAt       string   `json:"updated_at"`
}

// QuoteResponse is the HTTP response for a price quote.
type QuoteResponse struct {
	DistanceKm      float64 `json:"distance_km"`
	BasePrice       float64 `json:"base_price"`
	SurgeMultiplier float64 `json:"surge_multiplier"`
	SurgeActive     bool    `json:"surge_active"`
	EstimatedPrice  float64 `json:"estimated_price"`
	Currency        string  `json:"currency"`
	QuotedAt        string  `json:"quoted_at"`
}

func toRideResponse(ride *domain.Ride) RideResponse {
	return RideResponse{
		ID:              ride.ID,
		RiderID:         ride.RiderID,
		DriverID:        stringOrNil(ride.DriverID),
		PickupLat:       ride.PickupLat,
		PickupLng:       ride.PickupLng,
		PickupAddress:   ride.PickupAddress,
		DropoffLat:      ride.DropoffLat,
		DropoffLng:      ride.DropoffLng,
		DropoffAddress:  ride.DropoffAddress,
		BasePrice:       ride.BasePrice,
		SurgeMultiplier: ride.SurgeMultiplier,
		FinalPrice:      ride.FinalPrice,
		Status:          string(ride.Status),
		RequestedAt:     formatTime(ride.RequestedAt),
		AcceptedAt:      formatTimePtr(ride.AcceptedAt),
		DriverArrivedAt: formatTimePtr(ride.DriverArrivedAt),
		StartedAt:       formatTimePtr(ride.StartedAt),
		CompletedAt:     formatTimePtr(ride.CompletedAt),
		CancelledAt:     formatTimePtr(ride.CancelledAt),
		UpdatedAt:       formatTime(ride.UpdatedAt),
	}
}

// CreateRide handles POST /v1/rides
func (h *RideHandler) CreateRide(c *gin.Context) {
	var req CreateRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body: pickup and dropoff coordinates are required")
		return
	}

	ride, err := h.rideService.CreateRide(c.Request.Context(), service.CreateRideRequest{
		RiderID:        req.RiderID,
		PickupLat:      *req.PickupLat,
		PickupLng:      *req.PickupLng,
		PickupAddress:  req.PickupAddress,
		DropoffLat:     *req.DropoffLat,
		DropoffLng:     *req.DropoffLng,
		DropoffAddress: req.DropoffAddress,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	respondJSON(c, http.StatusCreated, toRideResponse(ride))
}

// GetRide handles GET /v1/rides/:id
func (h *RideHandler) GetRide(c *gin.Context) {
	ride, err := h.rideService.GetRide(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondJSON(c, http.StatusOK, toRideResponse(ride))
}

type listRidesQuery struct {
	RiderID  string `form:"rider_id"`
	DriverID string `form:"driver_id"`
	Status   string `form:"status"`
	Limit    int    `form:"limit"`
}

// ListRides handles GET /v1/rides
func (h *RideHandler) ListRides(c *gin.Context) {
	var q listRidesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBadRequest(c, "invalid query parameters")
		return
	}

	rides, err := h.rideService.ListRides(c.Request.Context(), service.ListRidesRequest{
		RiderID:  q.RiderID,
		DriverID: q.DriverID,
		Status:   q.Status,
		Limit:    q.Limit,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	out := make([]RideResponse, 0, len(rides))
	for _, ride := range rides {
		out = append(out, toRideResponse(ride))
	}
	respondJSON(c, http.StatusOK, gin.H{"rides": out, "count": len(out)})
}

// Quote handles POST /v1/quotes
func (h *RideHandler) Quote(c *gin.Context) {
	var req QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body: pickup and dropoff coordinates are required")
		return
	}

	q, err := h.rideService.Quote(c.Request.Context(), service.QuoteRequest{
		PickupLat:  *req.PickupLat,
		PickupLng:  *req.PickupLng,
		DropoffLat: *req.DropoffLat,
		DropoffLng: *req.DropoffLng,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	respondJSON(c, http.StatusOK, QuoteResponse{
		DistanceKm:      q.DistanceKm,
		BasePrice:       q.BasePrice,
		SurgeMultiplier: q.SurgeMultiplier,
		SurgeActive:     q.SurgeMultiplier > 1.0,
		EstimatedPrice:  q.EstimatedPrice,
		Currency:        q.Currency,
		QuotedAt:        formatTime(q.QuotedAt),
	})
}
