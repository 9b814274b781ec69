package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventpass/pkg/logger"
)

func newTestPublisher(t *testing.T) (*KafkaPublisher, *mocks.SyncProducer) {
	cfg := DefaultKafkaProducerConfig()
	cfg.IdempotentWrites = false
	producer := mocks.NewSyncProducer(t, NewSaramaConfig(cfg))
	return NewKafkaPublisherWithProducer(producer, cfg, logger.NewWithWriter(io.Discard, "error")), producer
}

func TestPublishKeysByEvent(t *testing.T) {
	publisher, producer := newTestPublisher(t)

	event := NewLifecycleEvent(LifecycleReservationCreated, "e1")
	event.ReservationID = "r1"
	event.HeadcountDelta = 2

	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		key, err := msg.Key.Encode()
		if err != nil {
			return err
		}
		if string(key) != "e1" {
			return errors.New("partition key must be the event id")
		}
		value, err := msg.Value.Encode()
		if err != nil {
			return err
		}
		var decoded LifecycleEvent
		if err := json.Unmarshal(value, &decoded); err != nil {
			return err
		}
		if decoded.HeadcountDelta != 2 || decoded.Type != LifecycleReservationCreated {
			return errors.New("unexpected payload")
		}
		return nil
	})

	require.NoError(t, publisher.Publish(context.Background(), event))
	require.NoError(t, publisher.Close())
}

func TestPublishSurfacesBrokerError(t *testing.T) {
	publisher, producer := newTestPublisher(t)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	err := publisher.Publish(context.Background(), NewLifecycleEvent(LifecycleReservationCancelled, "e1"))
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, publisher.Close())
}

func TestNoopPublisher(t *testing.T) {
	var p Publisher = NoopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), NewLifecycleEvent(LifecycleReservationCreated, "e1")))
	assert.NoError(t, p.Close())
}
