package postgres

import (
	"context"
	"database/sql"

	"rideengine/internal/domain"
	"rideengine/internal/repository"
)

// CancellationRepository is a PostgreSQL implementation of repository.CancellationRepository.
type CancellationRepository struct {
	q Querier
}

var _ repository.CancellationRepository = (*CancellationRepository)(nil)

// NewCancellationRepository creates a new PostgreSQL cancellation repository.
func NewCancellationRepository(db *sql.DB) *CancellationRepository {
	return &CancellationRepository{q: db}
}

// NewCancellationRepositoryWithTx creates a cancellation repository using a transaction.
func NewCancellationRepositoryWithTx(tx *sql.Tx) *CancellationRepository {
	return &CancellationRepository{q: tx}
}

// Create inserts the cancellation row. ride_id is unique, so a second
// cancellation for the same ride yields repository.ErrDuplicate.
func (r *CancellationRepository) Create(ctx context.Context, c *domain.Cancellation) error {
	query := `
		INSERT INTO ride_cancellations (id, ride_id, cancelled_by, penalty_applied, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.q.ExecContext(ctx, query, c.ID, c.RideID, c.CancelledBy, c.PenaltyApplied, c.CreatedAt)
	return mapError(err)
}

// GetByRide returns the cancellation of a ride.
func (r *CancellationRepository) GetByRide(ctx context.Context, rideID string) (*domain.Cancellation, error) {
	query := `
		SELECT id, ride_id, cancelled_by, penalty_applied, created_at
		FROM ride_cancellations WHERE ride_id = $1
	`

	var c domain.Cancellation
	err := r.q.QueryRowContext(ctx, query, rideID).Scan(&c.ID, &c.RideID, &c.CancelledBy, &c.PenaltyApplied, &c.CreatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return &c, nil
}
