package domain

import "time"

// RejectionReason is the enumerated reason a driver gives when rejecting.
type RejectionReason string

const (
	RejectionReasonTraffic      RejectionReason = "traffic"
	RejectionReasonTooFar       RejectionReason = "too_far"
	RejectionReasonVehicleIssue RejectionReason = "vehicle_issue"
	RejectionReasonPersonal     RejectionReason = "personal"
	RejectionReasonOther        RejectionReason = "other"
)

// Valid reports whether r is one of the known reasons.
func (r RejectionReason) Valid() bool {
	switch r {
	case RejectionReasonTraffic, RejectionReasonTooFar, RejectionReasonVehicleIssue,
		RejectionReasonPersonal, RejectionReasonOther:
		return true
	}
	return false
}

// Rejection is an immutable record of a driver declining a ride.
type Rejection struct {
	ID        string
	RideID    string
	DriverID  string
	Reason    RejectionReason
	Notes     *string
	CreatedAt time.Time
}

// CancelledBy identifies the party that cancelled a ride.
type CancelledBy string

const (
	CancelledByRider  CancelledBy = "rider"
	CancelledByDriver CancelledBy = "driver"
	CancelledBySystem CancelledBy = "system"
)

// Valid reports whether c is a known party.
func (c CancelledBy) Valid() bool {
	switch c {
	case CancelledByRider, CancelledByDriver, CancelledBySystem:
		return true
	}
	return false
}

// Cancellation records who cancelled a ride and the informational penalty.
type Cancellation struct {
	ID             string
	RideID         string
	CancelledBy    CancelledBy
	PenaltyApplied float64
	CreatedAt      time.Time
}

// GeoMarker is a ride request pickup point kept for heatmaps.
type GeoMarker struct {
	RideID    string
	Lat       float64
	Lng       float64
	CreatedAt time.Time
}

// RideEvent describes a committed status change. From is empty on creation.
type RideEvent struct {
	RideID     string     `json:"ride_id"`
	RiderID    string     `json:"rider_id"`
	DriverID   string     `json:"driver_id,omitempty"`
	From       RideStatus `json:"from,omitempty"`
	To         RideStatus `json:"to"`
	OccurredAt time.Time  `json:"occurred_at"`
}
