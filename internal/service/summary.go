package service

import (
	"context"
	"errors"
	"time"

	"rideengine/internal/domain"
	"rideengine/internal/repository"
)

// PriceBreakdown splits a ride's fare into its parts.
type PriceBreakdown struct {
	DistanceKm      float64
	BasePrice       float64
	SurgeMultiplier float64
	SurgeAmount     float64
	Total           float64
	// Estimated is true while no driver has frozen the final price.
	Estimated bool
	Currency  string
}

// TimeAnalytics holds whole-minute gaps between lifecycle timestamps. A field
// is nil until both ends exist.
type TimeAnalytics struct {
	TimeToAcceptMin *int
	TimeToArriveMin *int
	TripDurationMin *int
}

// RideSummary is the ride with its price breakdown, timings and audit rows.
type RideSummary struct {
	Ride         *domain.Ride
	Price        PriceBreakdown
	Timing       TimeAnalytics
	Rejections   []*domain.Rejection
	Cancellation *domain.Cancellation
}

// Summary builds the summary of one ride.
func (s *RideService) Summary(ctx context.Context, rideID string) (*RideSummary, error) {
	ride, err := s.GetRide(ctx, rideID)
	if err != nil {
		return nil, err
	}

	summary := &RideSummary{
		Ride:   ride,
		Price:  priceBreakdown(ride),
		Timing: timeAnalytics(ride),
	}

	summary.Rejections, err = s.rejections.ListByRide(ctx, ride.ID)
	if err != nil {
		return nil, err
	}

	if ride.Status == domain.RideStatusCancelled {
		c, err := s.cancellations.GetByRide(ctx, ride.ID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		summary.Cancellation = c
	}

	return summary, nil
}

// ListRejections returns the rejections recorded against a ride.
func (s *RideService) ListRejections(ctx context.Context, rideID string) ([]*domain.Rejection, error) {
	if _, err := s.GetRide(ctx, rideID); err != nil {
		return nil, err
	}
	return s.rejections.ListByRide(ctx, rideID)
}

// RecentRejections returns the latest rejections across all rides.
func (s *RideService) RecentRejections(ctx context.Context, limit int) ([]*domain.Rejection, error) {
	return s.rejections.ListRecent(ctx, limit)
}

func priceBreakdown(ride *domain.Ride) PriceBreakdown {
	p := PriceBreakdown{
		DistanceKm:      Round2(DistanceKm(ride.PickupLat, ride.PickupLng, ride.DropoffLat, ride.DropoffLng)),
		BasePrice:       ride.BasePrice,
		SurgeMultiplier: ride.SurgeMultiplier,
		Currency:        Currency,
	}
	if ride.FinalPrice != nil {
		p.Total = *ride.FinalPrice
	} else {
		p.Total = FinalPrice(ride.BasePrice, ride.SurgeMultiplier)
		p.Estimated = true
	}
	p.SurgeAmount = Round2(p.Total - ride.BasePrice)
	return p
}

func timeAnalytics(ride *domain.Ride) TimeAnalytics {
	requested := ride.RequestedAt
	return TimeAnalytics{
		TimeToAcceptMin: minutesBetween(&requested, ride.AcceptedAt),
		TimeToArriveMin: minutesBetween(ride.AcceptedAt, ride.DriverArrivedAt),
		TripDurationMin: minutesBetween(ride.StartedAt, ride.CompletedAt),
	}
}

func minutesBetween(from, to *time.Time) *int {
	if from == nil || to == nil || from.IsZero() {
		return nil
	}
	m := int(to.Sub(*from) / time.Minute)
	return &m
}
