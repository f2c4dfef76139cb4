package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"censusdesk/internal/platform/kafka/producer"
)

// DefaultTopic receives census audit events.
const DefaultTopic = "censusdesk.audit"

// MessageProducer is the subset of the Kafka producer the sink needs.
type MessageProducer interface {
	Produce(ctx context.Context, msg *producer.Message) error
}

// KafkaSink forwards events as JSON, keyed by actor so one actor's events stay ordered.
type KafkaSink struct {
	producer MessageProducer
	topic    string
}

func NewKafkaSink(p MessageProducer, topic string) *KafkaSink {
	if topic == "" {
		topic = DefaultTopic
	}
	return &KafkaSink{producer: p, topic: topic}
}

func (s *KafkaSink) Append(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	headers := map[string]string{"event_type": event.Action}
	if event.RequestID != "" {
		headers["request_id"] = event.RequestID
	}
	return s.producer.Produce(ctx, &producer.Message{
		Topic:   s.topic,
		Key:     []byte(event.ActorID),
		Value:   payload,
		Headers: headers,
	})
}
