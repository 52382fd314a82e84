package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/maastricht-university/clinote/logger"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Kafka struct {
	writer messageWriter
	topic  string
}

func NewKafka(brokers []string, topic string) *Kafka {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireAll,
		Async:        false,
		BatchSize:    1,
		BatchTimeout: 10 * time.Millisecond,
	}
	return &Kafka{writer: writer, topic: topic}
}

func (k *Kafka) Publish(ctx context.Context, e Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	message := kafka.Message{
		Key:   []byte(e.RunID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(e.Type)},
			{Key: "source", Value: []byte(e.Source)},
		},
	}

	log := logger.WithFields(map[string]interface{}{
		"event_id":   e.ID,
		"event_type": e.Type,
		"run_id":     e.RunID,
		"topic":      k.topic,
	})
	if err := k.writer.WriteMessages(ctx, message); err != nil {
		log.WithError(err).Error("Failed to publish event")
		return err
	}
	log.Info("Event published")
	return nil
}

func (k *Kafka) Close() error {
	return k.writer.Close()
}
