package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"rideengine/internal/clock"
	"rideengine/internal/domain"
	"rideengine/internal/logger"
	"rideengine/internal/repository/memory"
	"rideengine/internal/service"
)

// ──────────────────────────────────────────────
// TEST DOUBLES
// ──────────────────────────────────────────────

var errMockPublish = errors.New("mock: broker unavailable")

// recordingEvents is an EventPublisher that keeps every event.
type recordingEvents struct {
	mu     sync.Mutex
	events []domain.RideEvent
	err    error
}

func (r *recordingEvents) PublishRideEvent(ctx context.Context, e domain.RideEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return r.err
}

func (r *recordingEvents) all() []domain.RideEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.RideEvent(nil), r.events...)
}

// recordingMarkers is a synchronous MarkerPublisher.
type recordingMarkers struct {
	mu      sync.Mutex
	markers []domain.GeoMarker
}

func (r *recordingMarkers) Publish(ctx context.Context, m domain.GeoMarker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.markers = append(r.markers, m)
}

func (r *recordingMarkers) all() []domain.GeoMarker {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.GeoMarker(nil), r.markers...)
}

// ──────────────────────────────────────────────
// FIXTURE
// ──────────────────────────────────────────────

// Thursday 4 January 2024, 08:00 UTC: weekday peak.
var thursdayPeak = time.Date(2024, 1, 4, 8, 0, 0, 0, time.UTC)

type fixture struct {
	svc     *service.RideService
	store   *memory.Store
	clock   *clock.Fake
	events  *recordingEvents
	markers *recordingMarkers
}

func newFixture(t *testing.T, opts ...service.RideServiceOption) *fixture {
	t.Helper()

	f := &fixture{
		store:   memory.NewStore(),
		clock:   clock.NewFake(thursdayPeak),
		events:  &recordingEvents{},
		markers: &recordingMarkers{},
	}

	base := []service.RideServiceOption{
		service.WithClock(f.clock),
		service.WithLocation(time.UTC),
		service.WithEventPublisher(f.events),
		service.WithMarkerPublisher(f.markers),
		service.WithLogger(logger.Discard()),
	}
	f.svc = service.NewRideService(
		f.store.Rides(),
		f.store.Rejections(),
		f.store.Cancellations(),
		f.store.UnitOfWork(),
		append(base, opts...)...,
	)
	return f
}

func validCreateRequest() service.CreateRideRequest {
	return service.CreateRideRequest{
		RiderID:        "rider-1",
		PickupLat:      24.7136,
		PickupLng:      46.6753,
		PickupAddress:  "Olaya St, Riyadh",
		DropoffLat:     24.7243,
		DropoffLng:     46.7054,
		DropoffAddress: "King Fahd Rd, Riyadh",
	}
}

func (f *fixture) createRide(t *testing.T) *domain.Ride {
	t.Helper()
	ride, err := f.svc.CreateRide(context.Background(), validCreateRequest())
	if err != nil {
		t.Fatalf("CreateRide: %v", err)
	}
	return ride
}

// rideIn creates a ride and walks it to status.
func (f *fixture) rideIn(t *testing.T, status domain.RideStatus) *domain.Ride {
	t.Helper()
	ctx := context.Background()
	ride := f.createRide(t)

	steps := []struct {
		reach domain.RideStatus
		run   func() (*domain.Ride, error)
	}{
		{domain.RideStatusAccepted, func() (*domain.Ride, error) { return f.svc.AcceptRide(ctx, ride.ID, "driver-1") }},
		{domain.RideStatusDriverArrived, func() (*domain.Ride, error) { return f.svc.DriverArrived(ctx, ride.ID) }},
		{domain.RideStatusInProgress, func() (*domain.Ride, error) { return f.svc.StartRide(ctx, ride.ID) }},
		{domain.RideStatusCompleted, func() (*domain.Ride, error) { return f.svc.CompleteRide(ctx, ride.ID) }},
	}

	if status == domain.RideStatusRequested {
		return ride
	}
	for _, step := range steps {
		var err error
		ride, err = step.run()
		if err != nil {
			t.Fatalf("moving ride to %s: %v", step.reach, err)
		}
		if step.reach == status {
			return ride
		}
	}
	t.Fatalf("rideIn: unsupported status %s", status)
	return nil
}
