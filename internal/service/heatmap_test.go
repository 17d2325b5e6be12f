package service_test

import (
	"context"
	"errors"
	"testing"

	"rideengine/internal/domain"
	"rideengine/internal/service"
)

type fakeIndex struct {
	markers   []domain.GeoMarker
	err       error
	gotRadius float64
}

func (f *fakeIndex) Nearby(ctx context.Context, lat, lng, radiusKm float64, limit int) ([]domain.GeoMarker, error) {
	f.gotRadius = radiusKm
	return f.markers, f.err
}

func TestHeatmapService_BucketsByGeohash(t *testing.T) {
	index := &fakeIndex{markers: []domain.GeoMarker{
		{RideID: "a", Lat: 24.7130, Lng: 46.6760},
		{RideID: "b", Lat: 24.7128, Lng: 46.6762},
		{RideID: "c", Lat: 24.7132, Lng: 46.6758},
		{RideID: "d", Lat: 21.4858, Lng: 39.1925},
	}}
	svc := service.NewHeatmapService(index, 6)

	hm, err := svc.Nearby(context.Background(), 24.7, 46.7, 0)
	if err != nil {
		t.Fatalf("Nearby() error = %v", err)
	}
	if index.gotRadius != 10 {
		t.Errorf("radius = %v, want default 10", index.gotRadius)
	}
	if len(hm.Markers) != 4 {
		t.Errorf("markers = %d, want 4", len(hm.Markers))
	}
	if len(hm.Cells) != 2 {
		t.Fatalf("cells = %+v, want 2", hm.Cells)
	}
	if hm.Cells[0].Count != 3 || hm.Cells[1].Count != 1 {
		t.Errorf("cell counts = %d,%d, want 3,1", hm.Cells[0].Count, hm.Cells[1].Count)
	}
	if len(hm.Cells[0].Geohash) != 6 {
		t.Errorf("geohash %q has wrong precision", hm.Cells[0].Geohash)
	}
}

func TestHeatmapService_Errors(t *testing.T) {
	boom := errors.New("redis down")
	svc := service.NewHeatmapService(&fakeIndex{err: boom}, 0)

	if _, err := svc.Nearby(context.Background(), 120, 0, 5); !errors.Is(err, service.ErrValidation) {
		t.Errorf("bad latitude error = %v, want validation", err)
	}
	if _, err := svc.Nearby(context.Background(), 24.7, 46.7, 5); !errors.Is(err, boom) {
		t.Errorf("index error = %v, want %v", err, boom)
	}
}

func TestHeatmapService_ClampsRadius(t *testing.T) {
	index := &fakeIndex{}
	svc := service.NewHeatmapService(index, 6)
	if _, err := svc.Nearby(context.Background(), 24.7, 46.7, 500); err != nil {
		t.Fatalf("Nearby() error = %v", err)
	}
	if index.gotRadius != 50 {
		t.Errorf("radius = %v, want clamped to 50", index.gotRadius)
	}
}
