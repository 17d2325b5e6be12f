package redis

import (
	"context"
	"time"

	"rideengine/internal/domain"
	"rideengine/internal/repository"
)

// HeatmapStoreInterface defines the ride request geo index operations.
type HeatmapStoreInterface interface {
	Create(ctx context.Context, m *domain.GeoMarker) error
	Nearby(ctx context.Context, lat, lng, radiusKm float64, limit int) ([]domain.GeoMarker, error)
}

// IdempotencyStoreInterface defines the response replay store.
type IdempotencyStoreInterface interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error
}

// Ensure concrete types implement interfaces.
var (
	_ HeatmapStoreInterface          = (*HeatmapStore)(nil)
	_ IdempotencyStoreInterface      = (*IdempotencyStore)(nil)
	_ repository.GeoMarkerRepository = (*HeatmapStore)(nil)
)
