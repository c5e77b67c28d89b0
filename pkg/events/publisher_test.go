package events

import (
	"encoding/json"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	now := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	msg, err := encode(RoomDeleted, map[string]string{"id": "room-1"}, now)
	require.NoError(t, err)

	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	assert.Equal(t, RoomDeleted, msg.Type)
	assert.Equal(t, now, msg.Timestamp)

	var env struct {
		ID      string            `json:"id"`
		Type    string            `json:"type"`
		Payload map[string]string `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(msg.Body, &env))
	assert.Equal(t, msg.MessageId, env.ID)
	assert.Equal(t, "room-1", env.Payload["id"])
}

func TestEncodeRejectsUnmarshalable(t *testing.T) {
	_, err := encode(BookingCreated, make(chan int), time.Now())
	assert.Error(t, err)
}
