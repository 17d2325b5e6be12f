package domain

import "time"

// RideStatus represents the current status of a ride.
type RideStatus string

const (
	RideStatusRequested     RideStatus = "requested"
	RideStatusAccepted      RideStatus = "accepted"
	RideStatusDriverArrived RideStatus = "driver_arrived"
	RideStatusInProgress    RideStatus = "in_progress"
	RideStatusCompleted     RideStatus = "completed"
	RideStatusCancelled     RideStatus = "cancelled"
	RideStatusRejected      RideStatus = "rejected"
)

// AllowedTransitions is the ride state machine. Terminal states have no entry.
var AllowedTransitions = map[RideStatus][]RideStatus{
	RideStatusRequested:     {RideStatusAccepted, RideStatusRejected, RideStatusCancelled},
	RideStatusAccepted:      {RideStatusDriverArrived, RideStatusCancelled},
	RideStatusDriverArrived: {RideStatusInProgress, RideStatusCancelled},
	RideStatusInProgress:    {RideStatusCompleted, RideStatusCancelled},
}

// CanTransition reports whether a ride in status from may move to status to.
func CanTransition(from, to RideStatus) bool {
	for _, s := range AllowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves s.
func (s RideStatus) IsTerminal() bool {
	_, ok := AllowedTransitions[s]
	return !ok
}

// Valid reports whether s is a known status.
func (s RideStatus) Valid() bool {
	switch s {
	case RideStatusRequested, RideStatusAccepted, RideStatusDriverArrived,
		RideStatusInProgress, RideStatusCompleted, RideStatusCancelled, RideStatusRejected:
		return true
	}
	return false
}

// Ride is one rider-to-driver engagement from request to terminal outcome.
type Ride struct {
	ID       string
	RiderID  string
	DriverID string // empty until accepted

	PickupLat      float64
	PickupLng      float64
	PickupAddress  string
	DropoffLat     float64
	DropoffLng     float64
	DropoffAddress string

	BasePrice       float64
	SurgeMultiplier float64
	FinalPrice      *float64 // frozen at acceptance

	Status RideStatus

	RequestedAt     time.Time
	AcceptedAt      *time.Time
	DriverArrivedAt *time.Time
	StartedAt       *time.Time
	CompletedAt     *time.Time
	CancelledAt     *time.Time
	UpdatedAt       time.Time
}

// Clone returns a deep copy so callers never share timestamp or price pointers.
func (r *Ride) Clone() *Ride {
	if r == nil {
		return nil
	}
	c := *r
	c.FinalPrice = cloneFloat(r.FinalPrice)
	c.AcceptedAt = cloneTime(r.AcceptedAt)
	c.DriverArrivedAt = cloneTime(r.DriverArrivedAt)
	c.StartedAt = cloneTime(r.StartedAt)
	c.CompletedAt = cloneTime(r.CompletedAt)
	c.CancelledAt = cloneTime(r.CancelledAt)
	return &c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}
