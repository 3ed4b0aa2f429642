package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/Faisal-Sha/eco-product-task/internal/domain"
	"github.com/Faisal-Sha/eco-product-task/pkg/logger"
)

// RedisEventSubscriber consumes the product-event ingest channel and
// hands each event to a handler. A bad payload or a handler error is
// logged and the loop keeps consuming.
type RedisEventSubscriber struct {
	client  *redis.Client
	channel string
	log     logger.Logger
}

func NewRedisEventSubscriber(client *redis.Client, channel string, log logger.Logger) *RedisEventSubscriber {
	return &RedisEventSubscriber{
		client:  client,
		channel: channel,
		log:     log,
	}
}

func (s *RedisEventSubscriber) SubscribeToProductEvents(ctx context.Context, handler domain.ProductEventHandler) error {
	pubsub := s.client.Subscribe(ctx, s.channel)
	defer pubsub.Close()

	ch := pubsub.Channel()

	s.log.Info("Subscribed to product events", "channel", s.channel)

	for {
		select {
		case msg := <-ch:
			event, err := s.parseEvent(msg.Payload)
			if err != nil {
				s.log.Error("Failed to parse event", "payload", msg.Payload, "error", err)
				continue
			}

			if err := handler(event); err != nil {
				s.log.Error("Failed to handle event", "kind", event.Kind, "error", err)
			}

		case <-ctx.Done():
			s.log.Info("Event subscriber stopped")
			return ctx.Err()
		}
	}
}

func (s *RedisEventSubscriber) parseEvent(payload string) (*domain.ProductEvent, error) {
	var event domain.ProductEvent
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		return nil, fmt.Errorf("invalid event payload: %w", err)
	}
	if event.Kind == "" {
		return nil, fmt.Errorf("event payload missing kind")
	}
	return &event, nil
}
