package postgres

import (
	"context"
	"database/sql"

	"rideengine/internal/domain"
	"rideengine/internal/repository"
)

const rejectionColumns = `id, ride_id, driver_id, reason, notes, created_at`

// RejectionRepository is a PostgreSQL implementation of repository.RejectionRepository.
type RejectionRepository struct {
	q Querier
}

var _ repository.RejectionRepository = (*RejectionRepository)(nil)

// NewRejectionRepository creates a new PostgreSQL rejection repository.
func NewRejectionRepository(db *sql.DB) *RejectionRepository {
	return &RejectionRepository{q: db}
}

// NewRejectionRepositoryWithTx creates a rejection repository using a transaction.
func NewRejectionRepositoryWithTx(tx *sql.Tx) *RejectionRepository {
	return &RejectionRepository{q: tx}
}

// Create inserts a rejection row.
func (r *RejectionRepository) Create(ctx context.Context, rejection *domain.Rejection) error {
	query := `INSERT INTO ride_rejections (` + rejectionColumns + `) VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.q.ExecContext(ctx, query,
		rejection.ID,
		rejection.RideID,
		rejection.DriverID,
		rejection.Reason,
		nullStringPtr(rejection.Notes),
		rejection.CreatedAt,
	)
	return mapError(err)
}

// ListByRide returns the rejections of one ride, oldest first.
func (r *RejectionRepository) ListByRide(ctx context.Context, rideID string) ([]*domain.Rejection, error) {
	query := `SELECT ` + rejectionColumns + ` FROM ride_rejections WHERE ride_id = $1 ORDER BY created_at ASC`
	return r.list(ctx, query, rideID)
}

// ListRecent returns the latest rejections across all rides.
func (r *RejectionRepository) ListRecent(ctx context.Context, limit int) ([]*domain.Rejection, error) {
	query := `SELECT ` + rejectionColumns + ` FROM ride_rejections ORDER BY created_at DESC LIMIT $1`
	return r.list(ctx, query, clampLimit(limit))
}

func (r *RejectionRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Rejection, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rejections []*domain.Rejection
	for rows.Next() {
		var (
			rej   domain.Rejection
			notes sql.NullString
		)
		if err := rows.Scan(&rej.ID, &rej.RideID, &rej.DriverID, &rej.Reason, &notes, &rej.CreatedAt); err != nil {
			return nil, err
		}
		rej.Notes = stringPtr(notes)
		rejections = append(rejections, &rej)
	}
	return rejections, rows.Err()
}
