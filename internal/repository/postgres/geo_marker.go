package postgres

import (
	"context"
	"database/sql"

	"rideengine/internal/domain"
	"rideengine/internal/repository"
)

// GeoMarkerRepository writes ride request markers to ride_requests_geo.
type GeoMarkerRepository struct {
	q Querier
}

var _ repository.GeoMarkerRepository = (*GeoMarkerRepository)(nil)

// NewGeoMarkerRepository creates a new PostgreSQL geo-marker repository.
func NewGeoMarkerRepository(db *sql.DB) *GeoMarkerRepository {
	return &GeoMarkerRepository{q: db}
}

// Create inserts a marker. Replays of the same ride are ignored.
func (r *GeoMarkerRepository) Create(ctx context.Context, m *domain.GeoMarker) error {
	query := `
		INSERT INTO ride_requests_geo (ride_id, lat, lng, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (ride_id) DO NOTHING
	`
	_, err := r.q.ExecContext(ctx, query, m.RideID, m.Lat, m.Lng, m.CreatedAt)
	return err
}
