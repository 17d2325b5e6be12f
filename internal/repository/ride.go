package repository

import (
	"context"

	"rideengine/internal/domain"
)

// RideFilter narrows ride listings. Zero values match everything.
type RideFilter struct {
	RiderID  string
	DriverID string
	Statuses []domain.RideStatus
	Limit    int
}

// RideRepository defines the persistence operations for rides.
type RideRepository interface {
	// Create persists a new ride.
	Create(ctx context.Context, ride *domain.Ride) error

	// GetByID retrieves a ride by ID.
	GetByID(ctx context.Context, id string) (*domain.Ride, error)

	// List returns rides matching the filter, newest request first.
	List(ctx context.Context, filter RideFilter) ([]*domain.Ride, error)

	// UpdateIfStatus writes ride only while the stored status still equals
	// expected. It returns ErrStatusConflict when no row matched.
	UpdateIfStatus(ctx context.Context, ride *domain.Ride, expected domain.RideStatus) error
}

// RejectionRepository stores driver rejections. Rows are append only.
type RejectionRepository interface {
	Create(ctx context.Context, rejection *domain.Rejection) error
	ListByRide(ctx context.Context, rideID string) ([]*domain.Rejection, error)
	ListRecent(ctx context.Context, limit int) ([]*domain.Rejection, error)
}

// CancellationRepository stores ride cancellations, at most one per ride.
type CancellationRepository interface {
	Create(ctx context.Context, cancellation *domain.Cancellation) error
	GetByRide(ctx context.Context, rideID string) (*domain.Cancellation, error)
}

// GeoMarkerRepository stores ride request pickup points.
type GeoMarkerRepository interface {
	Create(ctx context.Context, marker *domain.GeoMarker) error
}

// Repositories groups the repositories that take part in one transaction.
type Repositories struct {
	Rides         RideRepository
	Rejections    RejectionRepository
	Cancellations CancellationRepository
}

// UnitOfWork runs fn with repositories bound to a single transaction. The
// transaction commits when fn returns nil and rolls back otherwise.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}
