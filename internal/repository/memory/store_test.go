package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"rideengine/internal/domain"
	"rideengine/internal/repository"
)

var t0 = time.Date(2024, 1, 4, 8, 0, 0, 0, time.UTC)

func newRide(id, rider string, at time.Time) *domain.Ride {
	return &domain.Ride{
		ID:          id,
		RiderID:     rider,
		Status:      domain.RideStatusRequested,
		BasePrice:   10,
		RequestedAt: at,
		UpdatedAt:   at,
	}
}

func TestRideRepository_GetReturnsCopy(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	if err := s.Rides().Create(ctx, newRide("r1", "u1", t0)); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := s.Rides().GetByID(ctx, "r1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	got.Status = domain.RideStatusCompleted

	again, _ := s.Rides().GetByID(ctx, "r1")
	if again.Status != domain.RideStatusRequested {
		t.Errorf("stored ride mutated through returned copy: %s", again.Status)
	}

	if _, err := s.Rides().GetByID(ctx, "missing"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("GetByID(missing) error = %v, want ErrNotFound", err)
	}
	if err := s.Rides().Create(ctx, newRide("r1", "u1", t0)); !errors.Is(err, repository.ErrDuplicate) {
		t.Errorf("duplicate Create error = %v, want ErrDuplicate", err)
	}
}

func TestRideRepository_UpdateIfStatus(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	_ = s.Rides().Create(ctx, newRide("r1", "u1", t0))

	ride, _ := s.Rides().GetByID(ctx, "r1")
	ride.Status = domain.RideStatusAccepted
	if err := s.Rides().UpdateIfStatus(ctx, ride, domain.RideStatusRequested); err != nil {
		t.Fatalf("first update: %v", err)
	}

	ride.Status = domain.RideStatusRejected
	err := s.Rides().UpdateIfStatus(ctx, ride, domain.RideStatusRequested)
	if !errors.Is(err, repository.ErrStatusConflict) {
		t.Fatalf("stale update error = %v, want ErrStatusConflict", err)
	}

	stored, _ := s.Rides().GetByID(ctx, "r1")
	if stored.Status != domain.RideStatusAccepted {
		t.Errorf("status = %s, want accepted", stored.Status)
	}
}

func TestRideRepository_ConcurrentConditionalUpdates(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	_ = s.Rides().Create(ctx, newRide("r1", "u1", t0))

	const workers = 20
	start := make(chan struct{})
	var wg sync.WaitGroup
	errs := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			ride, err := s.Rides().GetByID(ctx, "r1")
			if err != nil {
				errs <- err
				return
			}
			ride.Status = domain.RideStatusAccepted
			errs <- s.Rides().UpdateIfStatus(ctx, ride, domain.RideStatusRequested)
		}()
	}
	close(start)
	wg.Wait()
	close(errs)

	wins := 0
	for err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, repository.ErrStatusConflict):
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if wins != 1 {
		t.Errorf("winners = %d, want 1", wins)
	}
}

func TestRideRepository_List(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	_ = s.Rides().Create(ctx, newRide("old", "u1", t0))
	_ = s.Rides().Create(ctx, newRide("new", "u1", t0.Add(time.Minute)))
	_ = s.Rides().Create(ctx, newRide("other", "u2", t0.Add(2*time.Minute)))

	accepted := newRide("acc", "u1", t0.Add(3*time.Minute))
	accepted.Status = domain.RideStatusAccepted
	accepted.DriverID = "d1"
	_ = s.Rides().Create(ctx, accepted)

	tests := []struct {
		name   string
		filter repository.RideFilter
		want   []string
	}{
		{"by rider newest first", repository.RideFilter{RiderID: "u1"}, []string{"acc", "new", "old"}},
		{"by driver", repository.RideFilter{DriverID: "d1"}, []string{"acc"}},
		{"requested only", repository.RideFilter{Statuses: []domain.RideStatus{domain.RideStatusRequested}}, []string{"other", "new", "old"}},
		{"limit", repository.RideFilter{RiderID: "u1", Limit: 1}, []string{"acc"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rides, err := s.Rides().List(ctx, tc.filter)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if len(rides) != len(tc.want) {
				t.Fatalf("got %d rides, want %d", len(rides), len(tc.want))
			}
			for i, id := range tc.want {
				if rides[i].ID != id {
					t.Errorf("rides[%d] = %s, want %s", i, rides[i].ID, id)
				}
			}
		})
	}
}

func TestUnitOfWork_RollbackOnError(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	_ = s.Rides().Create(ctx, newRide("r1", "u1", t0))

	boom := errors.New("boom")
	err := s.UnitOfWork().WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		ride, _ := repos.Rides.GetByID(ctx, "r1")
		ride.Status = domain.RideStatusCancelled
		if err := repos.Rides.UpdateIfStatus(ctx, ride, domain.RideStatusRequested); err != nil {
			return err
		}
		if err := repos.Cancellations.Create(ctx, &domain.Cancellation{ID: "c1", RideID: "r1"}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithinTx error = %v, want boom", err)
	}

	ride, _ := s.Rides().GetByID(ctx, "r1")
	if ride.Status != domain.RideStatusRequested {
		t.Errorf("status = %s after rollback, want requested", ride.Status)
	}
	if _, err := s.Cancellations().GetByRide(ctx, "r1"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("cancellation persisted after rollback: %v", err)
	}
}

func TestUnitOfWork_CommitRechecksStatus(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	_ = s.Rides().Create(ctx, newRide("r1", "u1", t0))

	err := s.UnitOfWork().WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		ride, _ := repos.Rides.GetByID(ctx, "r1")
		ride.Status = domain.RideStatusRejected
		if err := repos.Rides.UpdateIfStatus(ctx, ride, domain.RideStatusRequested); err != nil {
			return err
		}
		if err := repos.Rejections.Create(ctx, &domain.Rejection{ID: "x", RideID: "r1"}); err != nil {
			return err
		}

		// A competing writer commits first.
		other, _ := s.Rides().GetByID(ctx, "r1")
		other.Status = domain.RideStatusAccepted
		return s.Rides().UpdateIfStatus(ctx, other, domain.RideStatusRequested)
	})
	if !errors.Is(err, repository.ErrStatusConflict) {
		t.Fatalf("WithinTx error = %v, want ErrStatusConflict", err)
	}

	rejections, _ := s.Rejections().ListByRide(ctx, "r1")
	if len(rejections) != 0 {
		t.Errorf("rejections = %d, want 0", len(rejections))
	}
}

func TestStore_InjectErrorAndCalls(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	boom := errors.New("db down")

	s.InjectError(OpMarkerCreate, boom)
	if err := s.GeoMarkers().Create(ctx, &domain.GeoMarker{RideID: "r1"}); !errors.Is(err, boom) {
		t.Fatalf("Create error = %v, want injected", err)
	}
	s.InjectError(OpMarkerCreate, nil)
	if err := s.GeoMarkers().Create(ctx, &domain.GeoMarker{RideID: "r1"}); err != nil {
		t.Fatalf("Create after clearing: %v", err)
	}

	if got := s.Calls(OpMarkerCreate); got != 2 {
		t.Errorf("Calls(OpMarkerCreate) = %d, want 2", got)
	}
	if got := len(s.Markers()); got != 1 {
		t.Errorf("markers = %d, want 1", got)
	}
}

func TestRejectionRepository_ListRecent(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		_ = s.Rejections().Create(ctx, &domain.Rejection{ID: id, RideID: "r-" + id})
	}

	recent, err := s.Rejections().ListRecent(ctx, 2)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(recent) != 2 || recent[0].ID != "c" || recent[1].ID != "b" {
		t.Errorf("ListRecent(2) = %v, want [c b]", ids(recent))
	}
}

func ids(rs []*domain.Rejection) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.ID
	}
	return out
}
