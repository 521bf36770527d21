package events

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"foodorder/internal/model"
	"foodorder/internal/service"
)

const (
	DefaultExchange       = "order_events"
	defaultPublishTimeout = 5 * time.Second
)

type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// RabbitPublisher sends events to a topic exchange. The routing key is the
// event type, e.g. "order.paid".
type RabbitPublisher struct {
	conn     *amqp.Connection
	channel  amqpChannel
	exchange string
	timeout  time.Duration
}

var _ service.EventPublisher = (*RabbitPublisher)(nil)

func DialRabbitMQ(url, exchange string, timeout time.Duration) (*RabbitPublisher, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}

	p := newRabbitPublisher(ch, exchange)
	p.conn = conn
	if timeout > 0 {
		p.timeout = timeout
	}
	return p, nil
}

func newRabbitPublisher(ch amqpChannel, exchange string) *RabbitPublisher {
	return &RabbitPublisher{channel: ch, exchange: exchange, timeout: defaultPublishTimeout}
}

func (p *RabbitPublisher) PublishOrderEvent(ctx context.Context, event model.OrderEvent) error {
	body, err := encode(event)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	err = p.channel.PublishWithContext(ctx, p.exchange, event.Type, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.OrderID + ":" + string(event.Status),
		Timestamp:    event.OccurredAt,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish to %s: %w", p.exchange, err)
	}

	slog.Debug("order event published",
		"broker", "rabbitmq",
		"exchange", p.exchange,
		"type", event.Type,
		"order_id", event.OrderID,
	)
	return nil
}

func (p *RabbitPublisher) Close() error {
	err := p.channel.Close()
	if p.conn != nil {
		if cerr := p.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
