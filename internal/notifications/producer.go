package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/IBM/sarama"

	"eventpass/pkg/logger"
)

// Publisher emits lifecycle events. Publishing happens after the state change
// commits, so a failure is logged by callers and never rolls anything back.
type Publisher interface {
	Publish(ctx context.Context, event *LifecycleEvent) error
	Close() error
}

// KafkaProducerConfig contains configuration for the Kafka lifecycle producer
type KafkaProducerConfig struct {
	Brokers          []string
	Topic            string
	ClientID         string
	RetryMax         int
	TimeoutMs        int
	RequiredAcks     sarama.RequiredAcks
	CompressionType  sarama.CompressionCodec
	IdempotentWrites bool
	MaxMessageBytes  int
}

// DefaultKafkaProducerConfig returns a default producer configuration
func DefaultKafkaProducerConfig() *KafkaProducerConfig {
	return &KafkaProducerConfig{
		Brokers:          []string{"localhost:9092"},
		Topic:            "reservation-events",
		ClientID:         "eventpass",
		RetryMax:         3,
		TimeoutMs:        10000,
		RequiredAcks:     sarama.WaitForAll,
		CompressionType:  sarama.CompressionSnappy,
		IdempotentWrites: true,
		MaxMessageBytes:  1000000,
	}
}

// NewSaramaConfig builds the producer settings shared by real and mock producers
func NewSaramaConfig(config *KafkaProducerConfig) *sarama.Config {
	saramaConfig := sarama.NewConfig()
	saramaConfig.ClientID = config.ClientID

	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.RequiredAcks = config.RequiredAcks
	saramaConfig.Producer.Compression = config.CompressionType
	saramaConfig.Producer.Retry.Max = config.RetryMax
	saramaConfig.Producer.Timeout = time.Duration(config.TimeoutMs) * time.Millisecond
	saramaConfig.Producer.Idempotent = config.IdempotentWrites
	saramaConfig.Producer.MaxMessageBytes = config.MaxMessageBytes

	// Idempotent producers require a single in-flight request
	if config.IdempotentWrites {
		saramaConfig.Net.MaxOpenRequests = 1
	}

	// Hash partitioner keeps one event's changes in order
	saramaConfig.Producer.Partitioner = sarama.NewHashPartitioner

	return saramaConfig
}

// KafkaPublisher publishes lifecycle events to Kafka
type KafkaPublisher struct {
	producer sarama.SyncProducer
	config   *KafkaProducerConfig
	log      *logger.Logger
}

// NewKafkaPublisher dials the brokers and returns a publisher
func NewKafkaPublisher(config *KafkaProducerConfig, log *logger.Logger) (*KafkaPublisher, error) {
	producer, err := sarama.NewSyncProducer(config.Brokers, NewSaramaConfig(config))
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}
	return NewKafkaPublisherWithProducer(producer, config, log), nil
}

// NewKafkaPublisherWithProducer wraps an existing producer
func NewKafkaPublisherWithProducer(producer sarama.SyncProducer, config *KafkaProducerConfig, log *logger.Logger) *KafkaPublisher {
	if log == nil {
		log = logger.GetDefault()
	}
	return &KafkaPublisher{producer: producer, config: config, log: log}
}

// Publish sends one lifecycle event keyed by event id
func (kp *KafkaPublisher) Publish(ctx context.Context, event *LifecycleEvent) error {
	messageBytes, err := event.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal lifecycle event: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic:     kp.config.Topic,
		Key:       sarama.StringEncoder(event.GetPartitionKey()),
		Value:     sarama.ByteEncoder(messageBytes),
		Headers:   kp.createHeaders(event),
		Timestamp: event.OccurredAt,
	}

	partition, offset, err := kp.producer.SendMessage(message)
	if err != nil {
		return fmt.Errorf("failed to send lifecycle event to Kafka: %w", err)
	}

	kp.log.DebugContext(ctx, "Lifecycle event published",
		"topic", kp.config.Topic,
		"partition", partition,
		"offset", offset,
		"type", event.Type,
		"event_id", event.EventID,
	)
	return nil
}

// createHeaders creates Kafka headers for lifecycle events
func (kp *KafkaPublisher) createHeaders(event *LifecycleEvent) []sarama.RecordHeader {
	headers := []sarama.RecordHeader{
		{Key: []byte("lifecycle_id"), Value: []byte(event.ID)},
		{Key: []byte("lifecycle_type"), Value: []byte(event.Type)},
		{Key: []byte("event_id"), Value: []byte(event.EventID)},
		{Key: []byte("producer"), Value: []byte("eventpass")},
	}
	if event.ReservationID != "" {
		headers = append(headers, sarama.RecordHeader{
			Key:   []byte("reservation_id"),
			Value: []byte(event.ReservationID),
		})
	}
	return headers
}

// Close closes the Kafka producer
func (kp *KafkaPublisher) Close() error {
	if kp.producer != nil {
		if err := kp.producer.Close(); err != nil {
			return fmt.Errorf("failed to close Kafka producer: %w", err)
		}
	}
	return nil
}

// NoopPublisher drops events; used when Kafka is disabled
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, *LifecycleEvent) error { return nil }

func (NoopPublisher) Close() error { return nil }
