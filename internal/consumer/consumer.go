// Package consumer provides Kafka consumer functionality for the
// readings.raw topic.
package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/segmentio/kafka-go"

	"github.com/Fredev01/water-quality-alert-engine/internal/events"
	kafkautil "github.com/Fredev01/water-quality-alert-engine/internal/kafka"
)

// Consumer wraps a Kafka reader and provides a simple interface for
// consuming sensor readings.
type Consumer struct {
	reader *kafka.Reader
	topic  string
}

// NewConsumer creates a new Kafka consumer with the specified brokers,
// topic, and group ID. The consumer is configured for at-least-once
// delivery semantics.
func NewConsumer(brokers string, topic string, groupID string) (*Consumer, error) {
	if brokers == "" {
		return nil, fmt.Errorf("brokers cannot be empty")
	}
	if topic == "" {
		return nil, fmt.Errorf("topic cannot be empty")
	}
	if groupID == "" {
		return nil, fmt.Errorf("groupID cannot be empty")
	}

	brokerList := kafkautil.ParseBrokers(brokers)

	slog.Info("Initializing Kafka consumer",
		"brokers", brokerList,
		"topic", topic,
		"group_id", groupID,
	)

	// Readings for one meter are keyed by meter_id, so a partition
	// delivers them in arrival order. StartOffset only applies when no
	// committed offset exists for the consumer group.
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokerList,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       10e3, // 10KB
		MaxBytes:       10e6, // 10MB
		MaxWait:        kafkautil.ReadTimeout,
		CommitInterval: kafkautil.CommitInterval,
		StartOffset:    kafka.FirstOffset,
	})

	return &Consumer{
		reader: reader,
		topic:  topic,
	}, nil
}

// ReadMessage reads the next message from Kafka and deserializes it as a
// ReadingReceived event. Returns an error if reading, deserialization, or
// validation fails.
func (c *Consumer) ReadMessage(ctx context.Context) (*events.ReadingReceived, *kafka.Message, error) {
	msg, err := c.reader.ReadMessage(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read message from Kafka: %w", err)
	}

	var reading events.ReadingReceived
	if err := json.Unmarshal(msg.Value, &reading); err != nil {
		return nil, &msg, fmt.Errorf("failed to unmarshal reading: %w", err)
	}
	if err := reading.Validate(); err != nil {
		return nil, &msg, fmt.Errorf("invalid reading event: %w", err)
	}

	return &reading, &msg, nil
}

// Close gracefully closes the Kafka reader and releases resources.
func (c *Consumer) Close() error {
	slog.Info("Closing Kafka consumer", "topic", c.topic)
	if err := c.reader.Close(); err != nil {
		slog.Error("Error closing Kafka consumer", "error", err)
		return err
	}
	return nil
}
