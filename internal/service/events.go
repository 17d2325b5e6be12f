package service

import (
	"context"
	"log/slog"

	"rideengine/internal/domain"
	"rideengine/internal/logger"
)

// EventPublisher announces committed ride status changes.
type EventPublisher interface {
	PublishRideEvent(ctx context.Context, event domain.RideEvent) error
}

// LogEventPublisher writes ride events to the structured log. Used when no
// broker is configured.
type LogEventPublisher struct {
	log *slog.Logger
}

// NewLogEventPublisher creates a LogEventPublisher.
func NewLogEventPublisher(log *slog.Logger) *LogEventPublisher {
	return &LogEventPublisher{log: log}
}

// PublishRideEvent logs the event.
func (p *LogEventPublisher) PublishRideEvent(ctx context.Context, event domain.RideEvent) error {
	logger.Info(ctx, p.log, "ride_event", "ride status changed",
		"ride_id", event.RideID,
		"rider_id", event.RiderID,
		"driver_id", event.DriverID,
		"from", string(event.From),
		"to", string(event.To),
		"occurred_at", event.OccurredAt,
	)
	return nil
}

func newRideEvent(ride *domain.Ride, from domain.RideStatus) domain.RideEvent {
	return domain.RideEvent{
		RideID:     ride.ID,
		RiderID:    ride.RiderID,
		DriverID:   ride.DriverID,
		From:       from,
		To:         ride.Status,
		OccurredAt: ride.UpdatedAt,
	}
}
