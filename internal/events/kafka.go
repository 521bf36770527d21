package events

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/IBM/sarama"

	"foodorder/internal/model"
	"foodorder/internal/service"
)

const (
	DefaultKafkaTopic   = "order.events"
	defaultKafkaTimeout = 5 * time.Second
)

// KafkaPublisher writes events keyed by order id, so every transition of one
// order lands on the same partition in order.
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
}

var _ service.EventPublisher = (*KafkaPublisher)(nil)

func NewKafkaPublisher(producer sarama.SyncProducer, topic string) *KafkaPublisher {
	if topic == "" {
		topic = DefaultKafkaTopic
	}
	return &KafkaPublisher{producer: producer, topic: topic}
}

// DialKafka connects a synchronous producer. timeout bounds each network
// round trip, so a slow broker cannot hold a publishing caller for long.
func DialKafka(brokers []string, topic string, timeout time.Duration) (*KafkaPublisher, error) {
	producer, err := sarama.NewSyncProducer(brokers, newKafkaConfig(timeout))
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}
	return NewKafkaPublisher(producer, topic), nil
}

func newKafkaConfig(timeout time.Duration) *sarama.Config {
	if timeout <= 0 {
		timeout = defaultKafkaTimeout
	}

	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Timeout = timeout
	config.Producer.Retry.Max = 1
	config.Producer.Retry.Backoff = 100 * time.Millisecond
	config.Producer.Return.Successes = true
	config.Producer.Idempotent = true
	config.Metadata.Retry.Max = 1
	config.Net.MaxOpenRequests = 1
	config.Net.DialTimeout = timeout
	config.Net.ReadTimeout = timeout
	config.Net.WriteTimeout = timeout
	config.Version = sarama.V2_6_0_0
	return config
}

func (p *KafkaPublisher) PublishOrderEvent(_ context.Context, event model.OrderEvent) error {
	body, err := encode(event)
	if err != nil {
		return err
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.OrderID),
		Value: sarama.ByteEncoder(body),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event-type"), Value: []byte(event.Type)},
		},
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("send to kafka: %w", err)
	}

	slog.Debug("order event published",
		"broker", "kafka",
		"topic", p.topic,
		"partition", partition,
		"offset", offset,
		"type", event.Type,
		"order_id", event.OrderID,
	)
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}
