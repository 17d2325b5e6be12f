package domain

import (
	"testing"
	"time"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to RideStatus
		want     bool
	}{
		{RideStatusRequested, RideStatusAccepted, true},
		{RideStatusRequested, RideStatusRejected, true},
		{RideStatusRequested, RideStatusCancelled, true},
		{RideStatusRequested, RideStatusInProgress, false},
		{RideStatusAccepted, RideStatusDriverArrived, true},
		{RideStatusAccepted, RideStatusRejected, false},
		{RideStatusAccepted, RideStatusCancelled, true},
		{RideStatusDriverArrived, RideStatusInProgress, true},
		{RideStatusDriverArrived, RideStatusCancelled, true},
		{RideStatusInProgress, RideStatusCompleted, true},
		{RideStatusInProgress, RideStatusCancelled, true},
		{RideStatusCompleted, RideStatusCompleted, false},
		{RideStatusCompleted, RideStatusCancelled, false},
		{RideStatusCancelled, RideStatusRequested, false},
		{RideStatusRejected, RideStatusAccepted, false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(string(tc.from)+"->"+string(tc.to), func(t *testing.T) {
			t.Parallel()
			if got := CanTransition(tc.from, tc.to); got != tc.want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
			}
		})
	}
}

func TestRideStatus_IsTerminal(t *testing.T) {
	terminal := map[RideStatus]bool{
		RideStatusRequested:     false,
		RideStatusAccepted:      false,
		RideStatusDriverArrived: false,
		RideStatusInProgress:    false,
		RideStatusCompleted:     true,
		RideStatusCancelled:     true,
		RideStatusRejected:      true,
	}
	for s, want := range terminal {
		if got := s.IsTerminal(); got != want {
			t.Errorf("%s.IsTerminal() = %v, want %v", s, got, want)
		}
		if !s.Valid() {
			t.Errorf("%s.Valid() = false", s)
		}
	}
	if RideStatus("REQUESTED").Valid() {
		t.Error("upper-case status should not be valid")
	}
}

func TestRide_CloneDoesNotSharePointers(t *testing.T) {
	price := 12.5
	at := time.Date(2024, 1, 4, 8, 0, 0, 0, time.UTC)
	r := &Ride{ID: "r1", FinalPrice: &price, AcceptedAt: &at}

	c := r.Clone()
	*c.FinalPrice = 99
	*c.AcceptedAt = at.Add(time.Hour)

	if *r.FinalPrice != 12.5 {
		t.Errorf("original FinalPrice changed to %v", *r.FinalPrice)
	}
	if !r.AcceptedAt.Equal(at) {
		t.Errorf("original AcceptedAt changed to %v", *r.AcceptedAt)
	}
	if (*Ride)(nil).Clone() != nil {
		t.Error("nil Clone should be nil")
	}
}

func TestEnumsValid(t *testing.T) {
	for _, r := range []RejectionReason{"traffic", "too_far", "vehicle_issue", "personal", "other"} {
		if !r.Valid() {
			t.Errorf("RejectionReason(%q).Valid() = false", r)
		}
	}
	if RejectionReason("weather").Valid() {
		t.Error(`RejectionReason("weather").Valid() = true`)
	}
	for _, c := range []CancelledBy{"rider", "driver", "system"} {
		if !c.Valid() {
			t.Errorf("CancelledBy(%q).Valid() = false", c)
		}
	}
	if CancelledBy("admin").Valid() {
		t.Error(`CancelledBy("admin").Valid() = true`)
	}
}
