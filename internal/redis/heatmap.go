package redis

import (
	"context"

	"github.com/redis/go-redis/v9"

	"rideengine/internal/domain"
)

const rideRequestsKey = "heatmap:ride_requests"

// HeatmapStore indexes ride request pickup points with GEOADD so demand can be
// queried by radius.
type HeatmapStore struct {
	client *redis.Client
	key    string
}

// NewHeatmapStore creates a new HeatmapStore.
func NewHeatmapStore(client *redis.Client) *HeatmapStore {
	return &HeatmapStore{client: client, key: rideRequestsKey}
}

// Create adds the marker under its ride id. Re-adding a ride moves its point.
func (s *HeatmapStore) Create(ctx context.Context, m *domain.GeoMarker) error {
	return s.client.GeoAdd(ctx, s.key, &redis.GeoLocation{
		Name:      m.RideID,
		Longitude: m.Lng,
		Latitude:  m.Lat,
	}).Err()
}

// Nearby returns up to limit markers within radiusKm, closest first.
func (s *HeatmapStore) Nearby(ctx context.Context, lat, lng, radiusKm float64, limit int) ([]domain.GeoMarker, error) {
	results, err := s.client.GeoRadius(ctx, s.key, lng, lat, &redis.GeoRadiusQuery{
		Radius:    radiusKm,
		Unit:      "km",
		WithCoord: true,
		Sort:      "ASC",
		Count:     limit,
	}).Result()
	if err != nil {
		return nil, err
	}

	markers := make([]domain.GeoMarker, 0, len(results))
	for _, r := range results {
		markers = append(markers, domain.GeoMarker{
			RideID: r.Name,
			Lat:    r.Latitude,
			Lng:    r.Longitude,
		})
	}
	return markers, nil
}
