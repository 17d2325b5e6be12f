package service

import (
	"math"
	"time"
)

const earthRadiusKm = 6371.0

// Currency is the ISO code every price is expressed in.
const Currency = "SAR"

// HourWindow is an inclusive range of local hours.
type HourWindow struct {
	From int
	To   int
}

func (w HourWindow) contains(hour int) bool {
	return hour >= w.From && hour <= w.To
}

// PricingPolicy holds the fare and surge constants.
type PricingPolicy struct {
	BaseFare        float64
	PerKmRate       float64
	PeakWindows     []HourWindow
	WeekendDays     []time.Weekday
	PeakMultiplier  float64
	PeakWeekendRate float64
}

// DefaultPricingPolicy returns the production fare table.
func DefaultPricingPolicy() PricingPolicy {
	return PricingPolicy{
		BaseFare:  5,
		PerKmRate: 2.5,
		PeakWindows: []HourWindow{
			{From: 7, To: 9},
			{From: 17, To: 20},
		},
		// Gulf weekend.
		WeekendDays:     []time.Weekday{time.Friday, time.Saturday},
		PeakMultiplier:  1.25,
		PeakWeekendRate: 1.5,
	}
}

var defaultPolicy = DefaultPricingPolicy()

// CalculateBasePrice returns the distance fare between two points under the
// default policy. Coordinates are not validated.
func CalculateBasePrice(pickupLat, pickupLng, dropoffLat, dropoffLng float64) float64 {
	return defaultPolicy.BasePrice(pickupLat, pickupLng, dropoffLat, dropoffLng)
}

// SurgeMultiplier returns the default policy's multiplier at now. Hour and
// weekday are read in now's location.
func SurgeMultiplier(now time.Time) float64 {
	return defaultPolicy.SurgeMultiplier(now)
}

// BasePrice is baseFare + distanceKm * perKmRate, rounded to cents.
func (p PricingPolicy) BasePrice(pickupLat, pickupLng, dropoffLat, dropoffLng float64) float64 {
	km := DistanceKm(pickupLat, pickupLng, dropoffLat, dropoffLng)
	return Round2(p.BaseFare + km*p.PerKmRate)
}

// SurgeMultiplier returns PeakWeekendRate at weekend peaks, PeakMultiplier at
// other peaks and 1 otherwise.
func (p PricingPolicy) SurgeMultiplier(now time.Time) float64 {
	peak := false
	for _, w := range p.PeakWindows {
		if w.contains(now.Hour()) {
			peak = true
			break
		}
	}
	if !peak {
		return 1
	}

	for _, d := range p.WeekendDays {
		if now.Weekday() == d {
			return p.PeakWeekendRate
		}
	}
	return p.PeakMultiplier
}

// FinalPrice is the surge-adjusted fare frozen at acceptance.
func FinalPrice(basePrice, surge float64) float64 {
	return Round2(basePrice * surge)
}

// DistanceKm is the haversine great-circle distance.
func DistanceKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLng := toRadians(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// Round2 rounds half-up to two decimal places.
func Round2(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
