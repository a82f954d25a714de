package config

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
)

// NewKafkaWriter returns an asynchronous writer for user change events.
// WriteMessages only enqueues; delivery failures are reported through the
// Completion callback and logged.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{}, // events of one user keep their order
		BatchTimeout:           10 * time.Millisecond,
		Async:                  true,
		AllowAutoTopicCreation: true,
		Completion:             logDeliveryFailure,
	}
}

func logDeliveryFailure(messages []kafka.Message, err error) {
	if err == nil {
		return
	}
	for _, m := range messages {
		log.Error().Err(err).Str("topic", m.Topic).Msgf("Error delivering event %s", m.Key)
	}
}
