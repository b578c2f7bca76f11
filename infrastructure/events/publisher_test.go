package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventPublisher_Publish(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	sub := client.Subscribe(ctx, "rooms")
	t.Cleanup(func() { _ = sub.Close() })
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	publisher := NewEventPublisher(client, "rooms")
	event := NewRoomEvent(EventRoomJoined, "10", "5", map[string]any{"players": 1})
	require.NoError(t, publisher.Publish(ctx, event))

	select {
	case msg := <-sub.Channel():
		var got Event
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
		assert.Equal(t, EventRoomJoined, got.Type)
		assert.Equal(t, "10", got.RoomID)
		assert.Equal(t, "5", got.UserID)
		assert.Equal(t, event.ID, got.ID)
		assert.Contains(t, got.ID, "evt_")
	case <-time.After(2 * time.Second):
		t.Fatal("event was not delivered")
	}
}

func TestEventPublisher_FillsMissingFields(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	event := &Event{Type: EventRoomDisbanded, RoomID: "1"}
	require.NoError(t, NewEventPublisher(client, "rooms").Publish(context.Background(), event))

	assert.NotEmpty(t, event.ID)
	assert.False(t, event.Timestamp.IsZero())
}
