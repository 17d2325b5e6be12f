package rabbitmq

import (
	"context"
	"encoding/json"

	"rideengine/internal/domain"
)

// RoutingKey returns the routing key for a ride moving into status to.
func RoutingKey(to domain.RideStatus) string {
	return "ride.status." + string(to)
}

// Publisher sends ride events through a Client.
type Publisher struct {
	client interface {
		publish(ctx context.Context, routingKey string, body []byte) error
	}
}

// NewPublisher creates a Publisher over client.
func NewPublisher(client *Client) *Publisher {
	return &Publisher{client: client}
}

// PublishRideEvent encodes event as JSON and publishes it under
// ride.status.<to>.
func (p *Publisher) PublishRideEvent(ctx context.Context, event domain.RideEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.client.publish(ctx, RoutingKey(event.To), body)
}
