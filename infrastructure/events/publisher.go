package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Publisher delivers room lifecycle events. Delivery is best effort.
type Publisher interface {
	Publish(ctx context.Context, event *Event) error
	Close() error
}

// EventPublisher publishes events on a Redis Pub/Sub channel
type EventPublisher struct {
	client  *redis.Client
	channel string
}

func NewEventPublisher(client *redis.Client, channel string) *EventPublisher {
	return &EventPublisher{
		client:  client,
		channel: channel,
	}
}

func (ep *EventPublisher) Publish(ctx context.Context, event *Event) error {
	if event.ID == "" {
		event.ID = generateEventID()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	eventJSON, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := ep.client.Publish(ctx, ep.channel, eventJSON).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}

func (ep *EventPublisher) Close() error {
	return ep.client.Close()
}

// NopPublisher drops every event. Used when Redis is disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, *Event) error { return nil }

func (NopPublisher) Close() error { return nil }

func NewRoomEvent(eventType EventType, roomID, userID string, data map[string]any) *Event {
	return &Event{
		ID:        generateEventID(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		RoomID:    roomID,
		UserID:    userID,
		Data:      data,
	}
}

func generateEventID() string {
	return "evt_" + uuid.NewString()
}
