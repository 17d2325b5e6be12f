package app

import (
	"context"
	"log/slog"

	"rideengine/internal/config"
	"rideengine/internal/rabbitmq"
	"rideengine/internal/service"
)

// NewEventPublisher connects the ride event publisher. With RabbitMQ disabled
// events go to the structured log. The returned close func is never nil.
func NewEventPublisher(ctx context.Context, cfg config.RabbitMQConfig, log *slog.Logger) (service.EventPublisher, func(), error) {
	if !cfg.Enabled {
		return service.NewLogEventPublisher(log), func() {}, nil
	}

	client, err := rabbitmq.Connect(ctx, cfg, log)
	if err != nil {
		return nil, func() {}, err
	}
	return rabbitmq.NewPublisher(client), client.Close, nil
}
