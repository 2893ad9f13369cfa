// Package kafka publishes session events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"parking/internal/core/ports"
	"parking/internal/pkg/errs"

	"github.com/segmentio/kafka-go"
)

const eventTypeHeader = "event-type"

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// SessionEventPublisher implements ports.EventPublisher. Messages are keyed
// by session id so every event of one session lands on the same partition.
type SessionEventPublisher struct {
	writer messageWriter
	topic  string
}

var _ ports.EventPublisher = (*SessionEventPublisher)(nil)

// NewSessionEventPublisher creates a publisher writing to topic on broker.
func NewSessionEventPublisher(broker, topic string) (*SessionEventPublisher, error) {
	if broker == "" {
		return nil, errs.NewValueIsRequiredError("broker")
	}
	if topic == "" {
		return nil, errs.NewValueIsRequiredError("topic")
	}

	return newSessionEventPublisher(&kafka.Writer{
		Addr:                   kafka.TCP(broker),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}, topic), nil
}

func newSessionEventPublisher(writer messageWriter, topic string) *SessionEventPublisher {
	return &SessionEventPublisher{writer: writer, topic: topic}
}

// Publish serializes event as JSON and writes it synchronously.
func (p *SessionEventPublisher) Publish(ctx context.Context, event ports.SessionEvent) error {
	if event.SessionID == "" {
		return errs.NewValueIsRequiredError("sessionId")
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", event.Type, err)
	}

	msg := kafka.Message{
		Key:   []byte(event.SessionID),
		Value: payload,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: eventTypeHeader, Value: []byte(event.Type)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s event to %s: %w", event.Type, p.topic, err)
	}
	return nil
}

// Close flushes pending writes and releases the connection.
func (p *SessionEventPublisher) Close() error {
	if err := p.writer.Close(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
