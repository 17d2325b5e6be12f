package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"rideengine/internal/domain"
	"rideengine/internal/repository"
)

const rideColumns = `id, rider_id, driver_id,
	pickup_lat, pickup_lng, pickup_address, dropoff_lat, dropoff_lng, dropoff_address,
	base_price, surge_multiplier, final_price, status,
	requested_at, accepted_at, driver_arrived_at, started_at, completed_at, cancelled_at, updated_at`

const (
	defaultListLimit = 50
	maxListLimit     = 100
)

// RideRepository is a PostgreSQL implementation of repository.RideRepository.
type RideRepository struct {
	q Querier
}

var _ repository.RideRepository = (*RideRepository)(nil)

// NewRideRepository creates a new PostgreSQL ride repository.
func NewRideRepository(db *sql.DB) *RideRepository {
	return &RideRepository{q: db}
}

// NewRideRepositoryWithTx creates a ride repository using a transaction.
func NewRideRepositoryWithTx(tx *sql.Tx) *RideRepository {
	return &RideRepository{q: tx}
}

// Create persists a new ride.
func (r *RideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	query := `INSERT INTO rides (` + rideColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`

	_, err := r.q.ExecContext(ctx, query,
		ride.ID,
		ride.RiderID,
		nullString(ride.DriverID),
		ride.PickupLat,
		ride.PickupLng,
		ride.PickupAddress,
		ride.DropoffLat,
		ride.DropoffLng,
		ride.DropoffAddress,
		ride.BasePrice,
		ride.SurgeMultiplier,
		nullFloat(ride.FinalPrice),
		ride.Status,
		ride.RequestedAt,
		nullTime(ride.AcceptedAt),
		nullTime(ride.DriverArrivedAt),
		nullTime(ride.StartedAt),
		nullTime(ride.CompletedAt),
		nullTime(ride.CancelledAt),
		ride.UpdatedAt,
	)
	return mapError(err)
}

// GetByID retrieves a ride by ID.
func (r *RideRepository) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE id = $1`

	ride, err := scanRide(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError(err)
	}
	return ride, nil
}

// List returns rides matching the filter, newest request first.
func (r *RideRepository) List(ctx context.Context, filter repository.RideFilter) ([]*domain.Ride, error) {
	var (
		conds []string
		args  []any
	)
	if filter.RiderID != "" {
		args = append(args, filter.RiderID)
		conds = append(conds, fmt.Sprintf("rider_id = $%d", len(args)))
	}
	if filter.DriverID != "" {
		args = append(args, filter.DriverID)
		conds = append(conds, fmt.Sprintf("driver_id = $%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		args = append(args, pq.Array(statuses))
		conds = append(conds, fmt.Sprintf("status = ANY($%d)", len(args)))
	}

	query := `SELECT ` + rideColumns + ` FROM rides`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	args = append(args, clampLimit(filter.Limit))
	query += fmt.Sprintf(` ORDER BY requested_at DESC LIMIT $%d`, len(args))

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rides []*domain.Ride
	for rows.Next() {
		ride, err := scanRide(rows)
		if err != nil {
			return nil, err
		}
		rides = append(rides, ride)
	}
	return rides, rows.Err()
}

// UpdateIfStatus writes the mutable ride columns guarded by the expected status.
func (r *RideRepository) UpdateIfStatus(ctx context.Context, ride *domain.Ride, expected domain.RideStatus) error {
	query := `
		UPDATE rides
		SET driver_id = $1, final_price = $2, status = $3,
			accepted_at = $4, driver_arrived_at = $5, started_at = $6,
			completed_at = $7, cancelled_at = $8, updated_at = $9
		WHERE id = $10 AND status = $11
	`

	result, err := r.q.ExecContext(ctx, query,
		nullString(ride.DriverID),
		nullFloat(ride.FinalPrice),
		ride.Status,
		nullTime(ride.AcceptedAt),
		nullTime(ride.DriverArrivedAt),
		nullTime(ride.StartedAt),
		nullTime(ride.CompletedAt),
		nullTime(ride.CancelledAt),
		ride.UpdatedAt,
		ride.ID,
		expected,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return repository.ErrStatusConflict
	}
	return nil
}

func scanRide(s scanner) (*domain.Ride, error) {
	var (
		ride       domain.Ride
		driverID   sql.NullString
		finalPrice sql.NullFloat64
		acceptedAt sql.NullTime
		arrivedAt  sql.NullTime
		startedAt  sql.NullTime
		doneAt     sql.NullTime
		cancelAt   sql.NullTime
	)
	err := s.Scan(
		&ride.ID,
		&ride.RiderID,
		&driverID,
		&ride.PickupLat,
		&ride.PickupLng,
		&ride.PickupAddress,
		&ride.DropoffLat,
		&ride.DropoffLng,
		&ride.DropoffAddress,
		&ride.BasePrice,
		&ride.SurgeMultiplier,
		&finalPrice,
		&ride.Status,
		&ride.RequestedAt,
		&acceptedAt,
		&arrivedAt,
		&startedAt,
		&doneAt,
		&cancelAt,
		&ride.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	ride.DriverID = driverID.String
	ride.FinalPrice = floatPtr(finalPrice)
	ride.AcceptedAt = timePtr(acceptedAt)
	ride.DriverArrivedAt = timePtr(arrivedAt)
	ride.StartedAt = timePtr(startedAt)
	ride.CompletedAt = timePtr(doneAt)
	ride.CancelledAt = timePtr(cancelAt)
	return &ride, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}
