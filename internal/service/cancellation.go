package service

import "rideengine/internal/domain"

// Cancellation fees. Informational only; billing settles them elsewhere.
const (
	PenaltyRiderEarly = 5.0
	PenaltyRiderLate  = 15.0
	PenaltyDriver     = 0.0
	PenaltySystem     = 0.0
)

// CancellationPenalty returns the fee recorded when cancelledBy cancels a
// ride currently in status current. Riders pay the early fee only while no
// driver has committed.
func CancellationPenalty(cancelledBy domain.CancelledBy, current domain.RideStatus) float64 {
	switch cancelledBy {
	case domain.CancelledByRider:
		if current == domain.RideStatusRequested {
			return PenaltyRiderEarly
		}
		return PenaltyRiderLate
	case domain.CancelledByDriver:
		return PenaltyDriver
	default:
		return PenaltySystem
	}
}
