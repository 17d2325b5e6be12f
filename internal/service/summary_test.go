package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"rideengine/internal/domain"
	"rideengine/internal/service"
)

func TestSummary_CompletedRide(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ride := f.createRide(t)

	f.clock.Advance(3*time.Minute + 40*time.Second)
	mustRide(t)(f.svc.AcceptRide(ctx, ride.ID, "driver-1"))
	f.clock.Advance(7 * time.Minute)
	mustRide(t)(f.svc.DriverArrived(ctx, ride.ID))
	f.clock.Advance(time.Minute)
	mustRide(t)(f.svc.StartRide(ctx, ride.ID))
	f.clock.Advance(18*time.Minute + 59*time.Second)
	mustRide(t)(f.svc.CompleteRide(ctx, ride.ID))

	s, err := f.svc.Summary(ctx, ride.ID)
	if err != nil {
		t.Fatalf("Summary() error = %v", err)
	}

	if s.Price.Estimated {
		t.Error("price is still an estimate after acceptance")
	}
	if s.Price.Total != 16.45 || s.Price.BasePrice != 13.16 || s.Price.SurgeAmount != 3.29 {
		t.Errorf("price = %+v, want total 16.45 base 13.16 surge 3.29", s.Price)
	}
	if s.Price.Currency != "SAR" {
		t.Errorf("Currency = %q", s.Price.Currency)
	}

	checkMinutes(t, "TimeToAccept", s.Timing.TimeToAcceptMin, 3)
	checkMinutes(t, "TimeToArrive", s.Timing.TimeToArriveMin, 7)
	checkMinutes(t, "TripDuration", s.Timing.TripDurationMin, 18)

	if s.Cancellation != nil {
		t.Errorf("Cancellation = %+v on a completed ride", s.Cancellation)
	}
}

func TestSummary_RequestedRideIsEstimate(t *testing.T) {
	f := newFixture(t)
	ride := f.createRide(t)

	s, err := f.svc.Summary(context.Background(), ride.ID)
	if err != nil {
		t.Fatalf("Summary() error = %v", err)
	}
	if !s.Price.Estimated || s.Price.Total != 16.45 {
		t.Errorf("price = %+v, want estimated 16.45", s.Price)
	}
	if s.Timing.TimeToAcceptMin != nil || s.Timing.TimeToArriveMin != nil || s.Timing.TripDurationMin != nil {
		t.Errorf("timing = %+v, want all nil", s.Timing)
	}
}

func TestSummary_NotFound(t *testing.T) {
	f := newFixture(t)
	if _, err := f.svc.Summary(context.Background(), "nope"); !errors.Is(err, service.ErrNotFound) {
		t.Errorf("Summary(nope) error = %v, want ErrNotFound", err)
	}
	if _, err := f.svc.ListRejections(context.Background(), "nope"); !errors.Is(err, service.ErrNotFound) {
		t.Errorf("ListRejections(nope) error = %v, want ErrNotFound", err)
	}
}

func TestRecentRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, reason := range []domain.RejectionReason{domain.RejectionReasonTraffic, domain.RejectionReasonVehicleIssue} {
		ride := f.createRide(t)
		f.clock.Advance(time.Minute)
		if _, err := f.svc.RejectRide(ctx, service.RejectRideRequest{RideID: ride.ID, DriverID: "d", Reason: reason}); err != nil {
			t.Fatalf("RejectRide: %v", err)
		}
	}

	recent, err := f.svc.RecentRejections(ctx, 10)
	if err != nil {
		t.Fatalf("RecentRejections() error = %v", err)
	}
	if len(recent) != 2 || recent[0].Reason != domain.RejectionReasonVehicleIssue {
		t.Errorf("recent = %+v, want newest first", recent)
	}
}

func mustRide(t *testing.T) func(*domain.Ride, error) *domain.Ride {
	t.Helper()
	return func(r *domain.Ride, err error) *domain.Ride {
		t.Helper()
		if err != nil {
			t.Fatalf("transition failed: %v", err)
		}
		return r
	}
}

func checkMinutes(t *testing.T, name string, got *int, want int) {
	t.Helper()
	if got == nil {
		t.Errorf("%s = nil, want %d", name, want)
		return
	}
	if *got != want {
		t.Errorf("%s = %d, want %d", name, *got, want)
	}
}
