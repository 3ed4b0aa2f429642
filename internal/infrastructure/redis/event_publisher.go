package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/Faisal-Sha/eco-product-task/internal/domain"
)

// EventPublisherImpl publishes product events on the ingest channel.
// The CRUD service uses it after each persistence write commits.
type EventPublisherImpl struct {
	client  *redis.Client
	channel string
}

func NewEventPublisher(client *redis.Client, channel string) *EventPublisherImpl {
	return &EventPublisherImpl{client: client, channel: channel}
}

func (p *EventPublisherImpl) PublishProductEvent(ctx context.Context, event *domain.ProductEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal product event: %w", err)
	}

	return p.client.Publish(ctx, p.channel, payload).Err()
}
