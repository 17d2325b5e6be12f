package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"rideengine/internal/domain"
	"rideengine/internal/service"
)

// AcceptRideRequest is the HTTP request body for accepting a ride.
type AcceptRideRequest struct {
	DriverID string `json:"driver_id"`
}

// RejectRideRequest is the HTTP request body for rejecting a ride.
type RejectRideRequest struct {
	DriverID string `json:"driver_id"`
	Reason   string `json:"reason"`
	Notes    string `json:"notes,omitempty"`
}

// CancelRideRequest is the HTTP request body for cancelling a ride.
type CancelRideRequest struct {
	CancelledBy string `json:"cancelled_by"`
}

// AcceptRide handles POST /v1/rides/:id/accept
func (h *RideHandler) AcceptRide(c *gin.Context) {
	var req AcceptRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	h.respondTransition(c, func(ctx context.Context) (*domain.Ride, error) {
		return h.rideService.AcceptRide(ctx, c.Param("id"), req.DriverID)
	})
}

// RejectRide handles POST /v1/rides/:id/reject
func (h *RideHandler) RejectRide(c *gin.Context) {
	var req RejectRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	h.respondTransition(c, func(ctx context.Context) (*domain.Ride, error) {
		return h.rideService.RejectRide(ctx, service.RejectRideRequest{
			RideID:   c.Param("id"),
			DriverID: req.DriverID,
			Reason:   domain.RejectionReason(req.Reason),
			Notes:    req.Notes,
		})
	})
}

// DriverArrived handles POST /v1/rides/:id/arrive
func (h *RideHandler) DriverArrived(c *gin.Context) {
	h.respondTransition(c, func(ctx context.Context) (*domain.Ride, error) {
		return h.rideService.DriverArrived(ctx, c.Param("id"))
	})
}

// StartRide handles POST /v1/rides/:id/start
func (h *RideHandler) StartRide(c *gin.Context) {
	h.respondTransition(c, func(ctx context.Context) (*domain.Ride, error) {
		return h.rideService.StartRide(ctx, c.Param("id"))
	})
}

// CompleteRide handles POST /v1/rides/:id/complete
func (h *RideHandler) CompleteRide(c *gin.Context) {
	h.respondTransition(c, func(ctx context.Context) (*domain.Ride, error) {
		return h.rideService.CompleteRide(ctx, c.Param("id"))
	})
}

// CancelRide handles POST /v1/rides/:id/cancel
func (h *RideHandler) CancelRide(c *gin.Context) {
	var req CancelRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	h.respondTransition(c, func(ctx context.Context) (*domain.Ride, error) {
		return h.rideService.CancelRide(ctx, c.Param("id"), domain.CancelledBy(req.CancelledBy))
	})
}

func (h *RideHandler) respondTransition(c *gin.Context, fn func(ctx context.Context) (*domain.Ride, error)) {
	ride, err := fn(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondJSON(c, http.StatusOK, toRideResponse(ride))
}
