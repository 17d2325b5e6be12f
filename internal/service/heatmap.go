package service

import (
	"context"
	"sort"

	"github.com/mmcloughlin/geohash"

	"rideengine/internal/domain"
)

// HeatmapIndex answers radius queries over ride request markers.
type HeatmapIndex interface {
	Nearby(ctx context.Context, lat, lng, radiusKm float64, limit int) ([]domain.GeoMarker, error)
}

// HeatCell is a geohash cell with the number of requests inside it.
type HeatCell struct {
	Geohash string
	Lat     float64
	Lng     float64
	Count   int
}

// Heatmap is the demand picture around a point.
type Heatmap struct {
	Markers []domain.GeoMarker
	Cells   []HeatCell
}

// HeatmapService buckets ride requests into geohash cells.
type HeatmapService struct {
	index     HeatmapIndex
	precision uint
}

// NewHeatmapService creates a HeatmapService. precision is the geohash length
// of a cell; 6 is roughly 1.2km by 0.6km.
func NewHeatmapService(index HeatmapIndex, precision uint) *HeatmapService {
	if precision == 0 || precision > 12 {
		precision = 6
	}
	return &HeatmapService{index: index, precision: precision}
}

const (
	defaultHeatmapRadiusKm = 10.0
	maxHeatmapRadiusKm     = 50.0
	maxHeatmapMarkers      = 1000
	maxHeatCells           = 50
)

// Nearby returns markers within radiusKm of the point and their cell counts,
// busiest cell first.
func (s *HeatmapService) Nearby(ctx context.Context, lat, lng, radiusKm float64) (*Heatmap, error) {
	if !validCoordinates(lat, lng) {
		return nil, ErrInvalidLocation
	}
	if radiusKm <= 0 {
		radiusKm = defaultHeatmapRadiusKm
	}
	if radiusKm > maxHeatmapRadiusKm {
		radiusKm = maxHeatmapRadiusKm
	}

	markers, err := s.index.Nearby(ctx, lat, lng, radiusKm, maxHeatmapMarkers)
	if err != nil {
		return nil, err
	}

	return &Heatmap{Markers: markers, Cells: s.bucket(markers)}, nil
}

func (s *HeatmapService) bucket(markers []domain.GeoMarker) []HeatCell {
	counts := make(map[string]int)
	for _, m := range markers {
		counts[geohash.EncodeWithPrecision(m.Lat, m.Lng, s.precision)]++
	}

	cells := make([]HeatCell, 0, len(counts))
	for hash, n := range counts {
		lat, lng := geohash.DecodeCenter(hash)
		cells = append(cells, HeatCell{Geohash: hash, Lat: lat, Lng: lng, Count: n})
	}
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].Count != cells[j].Count {
			return cells[i].Count > cells[j].Count
		}
		return cells[i].Geohash < cells[j].Geohash
	})

	if len(cells) > maxHeatCells {
		cells = cells[:maxHeatCells]
	}
	return cells
}
