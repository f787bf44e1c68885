package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/frahmantamala/budget-ledger/internal/core/events"
)

const publishTimeout = 5 * time.Second

// Channel is the subset of *amqp.Channel the publisher uses.
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type Message struct {
	EventID    string      `json:"event_id"`
	EventType  string      `json:"event_type"`
	UserID     int64       `json:"user_id"`
	OccurredAt time.Time   `json:"occurred_at"`
	Data       interface{} `json:"data"`
}

func NewMessage(event events.Event) Message {
	msg := Message{
		EventID:    event.EventID(),
		EventType:  event.EventType(),
		OccurredAt: event.OccurredAt().UTC(),
		Data:       event.Payload(),
	}
	if owned, ok := event.(events.UserEvent); ok {
		msg.UserID = owned.OwnerID()
	}
	return msg
}

type AMQPPublisher struct {
	conn       *amqp.Connection
	channel    Channel
	exchange   string
	routingKey string
	logger     *slog.Logger
}

// Dial connects to the broker and declares a durable topic exchange.
func Dial(url, exchange, routingKey string, logger *slog.Logger) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	p, err := NewAMQPPublisher(ch, exchange, routingKey, logger)
	if err != nil {
		conn.Close()
		return nil, err
	}
	p.conn = conn
	return p, nil
}

func NewAMQPPublisher(ch Channel, exchange, routingKey string, logger *slog.Logger) (*AMQPPublisher, error) {
	err := ch.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		ch.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	return &AMQPPublisher{
		channel:    ch,
		exchange:   exchange,
		routingKey: routingKey,
		logger:     logger,
	}, nil
}

// Subscribe forwards ledger events from the bus to the broker.
func (p *AMQPPublisher) Subscribe(bus *events.EventBus) {
	bus.Subscribe(events.EventTypeBudgetRecalculated, p.Handle)
	bus.Subscribe(events.EventTypeBudgetReset, p.Handle)
}

func (p *AMQPPublisher) Handle(ctx context.Context, event events.Event) error {
	msg := NewMessage(event)
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = p.channel.PublishWithContext(
		ctx,
		p.exchange,
		p.routingKey+"."+msg.EventType,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    msg.EventID,
			Type:         msg.EventType,
			Timestamp:    msg.OccurredAt,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}

	p.logger.DebugContext(ctx, "published budget event",
		"event_type", msg.EventType,
		"event_id", msg.EventID,
		"user_id", msg.UserID,
		"exchange", p.exchange)
	return nil
}

func (p *AMQPPublisher) Close() error {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
