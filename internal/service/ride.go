package service

import (
	"context"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"rideengine/internal/clock"
	"rideengine/internal/domain"
	"rideengine/internal/logger"
	"rideengine/internal/repository"
)

// RideService owns ride creation, pricing and the ride state machine.
type RideService struct {
	rides         repository.RideRepository
	rejections    repository.RejectionRepository
	cancellations repository.CancellationRepository
	uow           repository.UnitOfWork

	policy   PricingPolicy
	clock    clock.Clock
	location *time.Location
	markers  MarkerPublisher
	events   EventPublisher
	log      *slog.Logger
}

// RideServiceOption customises a RideService.
type RideServiceOption func(*RideService)

// WithClock sets the time source.
func WithClock(c clock.Clock) RideServiceOption {
	return func(s *RideService) { s.clock = c }
}

// WithLocation sets the zone peak hours are evaluated in.
func WithLocation(loc *time.Location) RideServiceOption {
	return func(s *RideService) { s.location = loc }
}

// WithPricingPolicy overrides the default fare table.
func WithPricingPolicy(p PricingPolicy) RideServiceOption {
	return func(s *RideService) { s.policy = p }
}

// WithMarkerPublisher sets where ride request geo-markers go.
func WithMarkerPublisher(p MarkerPublisher) RideServiceOption {
	return func(s *RideService) { s.markers = p }
}

// WithEventPublisher sets where status change events go.
func WithEventPublisher(p EventPublisher) RideServiceOption {
	return func(s *RideService) { s.events = p }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) RideServiceOption {
	return func(s *RideService) { s.log = l }
}

// NewRideService creates a new RideService.
func NewRideService(
	rides repository.RideRepository,
	rejections repository.RejectionRepository,
	cancellations repository.CancellationRepository,
	uow repository.UnitOfWork,
	opts ...RideServiceOption,
) *RideService {
	s := &RideService{
		rides:         rides,
		rejections:    rejections,
		cancellations: cancellations,
		uow:           uow,
		policy:        DefaultPricingPolicy(),
		clock:         clock.System{},
		location:      time.Local,
		log:           slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateRideRequest contains the parameters for creating a ride.
type CreateRideRequest struct {
	RiderID        string
	PickupLat      float64
	PickupLng      float64
	PickupAddress  string
	DropoffLat     float64
	DropoffLng     float64
	DropoffAddress string
}

// CreateRide prices and persists a new ride in the requested state, then
// hands the pickup point to the marker outbox.
func (s *RideService) CreateRide(ctx context.Context, req CreateRideRequest) (*domain.Ride, error) {
	if err := validateCreateRequest(req); err != nil {
		return nil, err
	}

	now := s.now()
	ride := &domain.Ride{
		ID:              uuid.New().String(),
		RiderID:         strings.TrimSpace(req.RiderID),
		PickupLat:       req.PickupLat,
		PickupLng:       req.PickupLng,
		PickupAddress:   strings.TrimSpace(req.PickupAddress),
		DropoffLat:      req.DropoffLat,
		DropoffLng:      req.DropoffLng,
		DropoffAddress:  strings.TrimSpace(req.DropoffAddress),
		BasePrice:       s.policy.BasePrice(req.PickupLat, req.PickupLng, req.DropoffLat, req.DropoffLng),
		SurgeMultiplier: s.policy.SurgeMultiplier(now.In(s.location)),
		Status:          domain.RideStatusRequested,
		RequestedAt:     now,
		UpdatedAt:       now,
	}

	if err := s.rides.Create(ctx, ride); err != nil {
		return nil, err
	}

	ctx = logger.WithRideID(ctx, ride.ID)
	logger.Info(ctx, s.log, "ride_created", "ride requested",
		"rider_id", ride.RiderID,
		"base_price", ride.BasePrice,
		"surge_multiplier", ride.SurgeMultiplier,
	)

	if s.markers != nil {
		s.markers.Publish(ctx, domain.GeoMarker{
			RideID:    ride.ID,
			Lat:       ride.PickupLat,
			Lng:       ride.PickupLng,
			CreatedAt: now,
		})
	}
	s.publish(ctx, newRideEvent(ride, ""))

	return ride, nil
}

// GetRide re-reads a ride from the store.
func (s *RideService) GetRide(ctx context.Context, rideID string) (*domain.Ride, error) {
	if strings.TrimSpace(rideID) == "" {
		return nil, ErrInvalidRideID
	}
	return s.rides.GetByID(ctx, rideID)
}

// ListRidesRequest filters ride listings.
type ListRidesRequest struct {
	RiderID  string
	DriverID string
	Status   string
	Limit    int
}

// ListRides returns rides newest first. Drivers looking for work list with
// Status "requested".
func (s *RideService) ListRides(ctx context.Context, req ListRidesRequest) ([]*domain.Ride, error) {
	filter := repository.RideFilter{
		RiderID:  req.RiderID,
		DriverID: req.DriverID,
		Limit:    req.Limit,
	}
	if req.Status != "" {
		status := domain.RideStatus(req.Status)
		if !status.Valid() {
			return nil, ErrInvalidStatusFilter
		}
		filter.Statuses = []domain.RideStatus{status}
	}
	return s.rides.List(ctx, filter)
}

// QuoteRequest holds the trip to price.
type QuoteRequest struct {
	PickupLat  float64
	PickupLng  float64
	DropoffLat float64
	DropoffLng float64
}

// Quote is a fare estimate. It is not stored and not binding.
type Quote struct {
	DistanceKm      float64
	BasePrice       float64
	SurgeMultiplier float64
	EstimatedPrice  float64
	Currency        string
	QuotedAt        time.Time
}

// Quote prices a trip at the current time without creating a ride.
func (s *RideService) Quote(ctx context.Context, req QuoteRequest) (*Quote, error) {
	if !validCoordinates(req.PickupLat, req.PickupLng) {
		return nil, ErrInvalidPickupLocation
	}
	if !validCoordinates(req.DropoffLat, req.DropoffLng) {
		return nil, ErrInvalidDropoffLocation
	}

	now := s.now()
	base := s.policy.BasePrice(req.PickupLat, req.PickupLng, req.DropoffLat, req.DropoffLng)
	surge := s.policy.SurgeMultiplier(now.In(s.location))

	return &Quote{
		DistanceKm:      Round2(DistanceKm(req.PickupLat, req.PickupLng, req.DropoffLat, req.DropoffLng)),
		BasePrice:       base,
		SurgeMultiplier: surge,
		EstimatedPrice:  FinalPrice(base, surge),
		Currency:        Currency,
		QuotedAt:        now,
	}, nil
}

func (s *RideService) now() time.Time {
	return s.clock.Now().UTC()
}

// publish sends a ride event. Failures are logged and swallowed.
func (s *RideService) publish(ctx context.Context, event domain.RideEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishRideEvent(ctx, event); err != nil {
		logger.Error(ctx, s.log, "ride_event_publish", "failed to publish ride event", err,
			"to", string(event.To),
		)
	}
}

func validateCreateRequest(req CreateRideRequest) error {
	if strings.TrimSpace(req.RiderID) == "" {
		return ErrInvalidRiderID
	}
	if strings.TrimSpace(req.PickupAddress) == "" {
		return ErrInvalidPickupAddress
	}
	if strings.TrimSpace(req.DropoffAddress) == "" {
		return ErrInvalidDropoffAddress
	}
	if !validCoordinates(req.PickupLat, req.PickupLng) {
		return ErrInvalidPickupLocation
	}
	if !validCoordinates(req.DropoffLat, req.DropoffLng) {
		return ErrInvalidDropoffLocation
	}
	return nil
}

func validCoordinates(lat, lng float64) bool {
	return isValidLatitude(lat) && isValidLongitude(lng)
}

func isValidLatitude(lat float64) bool {
	return !math.IsNaN(lat) && lat >= -90 && lat <= 90
}

func isValidLongitude(lng float64) bool {
	return !math.IsNaN(lng) && lng >= -180 && lng <= 180
}
