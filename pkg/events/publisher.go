package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/noah-isme/roomplan-api/pkg/config"
)

// Routing keys published on the events exchange.
const (
	BuildingCreated = "building.created"
	BuildingUpdated = "building.updated"
	BuildingDeleted = "building.deleted"
	RoomCreated     = "room.created"
	RoomUpdated     = "room.updated"
	RoomDeleted     = "room.deleted"
	TeacherCreated  = "teacher.created"
	TeacherUpdated  = "teacher.updated"
	TeacherDeleted  = "teacher.deleted"
	BookingCreated  = "booking.created"
	BookingUpdated  = "booking.updated"
	BookingDeleted  = "booking.deleted"
)

// Envelope wraps every published payload.
type Envelope struct {
	ID         string      `json:"id"`
	Type       string      `json:"type"`
	OccurredAt time.Time   `json:"occurred_at"`
	Payload    interface{} `json:"payload"`
}

// AMQPPublisher publishes domain events to a durable topic exchange.
type AMQPPublisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
	logger   *zap.Logger
	mu       sync.Mutex
}

// NewAMQPPublisher dials the broker and declares the exchange.
func NewAMQPPublisher(cfg config.EventsConfig, logger *zap.Logger) (*AMQPPublisher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open amqp channel: %w", err)
	}
	if err := ch.ExchangeDeclare(cfg.Exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", cfg.Exchange, err)
	}
	return &AMQPPublisher{conn: conn, ch: ch, exchange: cfg.Exchange, logger: logger}, nil
}

// Publish sends payload under routingKey. Channels are not safe for concurrent use, hence the lock.
func (p *AMQPPublisher) Publish(ctx context.Context, routingKey string, payload interface{}) error {
	msg, err := encode(routingKey, payload, time.Now().UTC())
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.ch.PublishWithContext(ctx, p.exchange, routingKey, false, false, msg); err != nil {
		return fmt.Errorf("publish %s: %w", routingKey, err)
	}
	p.logger.Debug("event published", zap.String("type", routingKey), zap.String("message_id", msg.MessageId))
	return nil
}

// Close releases the channel and connection.
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.ch.Close(); err != nil {
		_ = p.conn.Close()
		return err
	}
	return p.conn.Close()
}

func encode(routingKey string, payload interface{}, now time.Time) (amqp.Publishing, error) {
	env := Envelope{ID: uuid.NewString(), Type: routingKey, OccurredAt: now, Payload: payload}
	body, err := json.Marshal(env)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("marshal %s event: %w", routingKey, err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    env.ID,
		Type:         routingKey,
		Timestamp:    now,
		Body:         body,
	}, nil
}
