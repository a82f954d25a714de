// Package events publishes user change notifications to Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"user-directory-service/internal/entity"
)

const (
	UserCreated = "created"
	UserUpdated = "updated"
	UserDeleted = "deleted"
)

// UserEvent is the JSON value of every message.
type UserEvent struct {
	Type       string      `json:"type"`
	User       entity.User `json:"user"`
	OccurredAt time.Time   `json:"occurred_at"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer messageWriter
	now    func() time.Time
}

func NewKafkaPublisher(writer *kafka.Writer) *KafkaPublisher {
	return &KafkaPublisher{writer: writer, now: time.Now}
}

// Publish writes one message keyed "user-<event>-<id>", so all events of a
// user land on the same partition.
func (p *KafkaPublisher) Publish(ctx context.Context, event string, user *entity.User) error {
	value, err := json.Marshal(UserEvent{Type: event, User: *user, OccurredAt: p.now().UTC()})
	if err != nil {
		return err
	}

	// user-created-1 or user-deleted-1
	msg := kafka.Message{
		Key:   []byte(fmt.Sprintf("user-%s-%d", event, user.ID)),
		Value: value,
	}

	return p.writer.WriteMessages(ctx, msg)
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
