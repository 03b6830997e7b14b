// Package processor provides the ingestion loop: it consumes reading events
// and routes each to a per-meter worker so one meter's readings are handled
// strictly in arrival order while distinct meters run in parallel.
package processor

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Fredev01/water-quality-alert-engine/internal/dispatcher"
	"github.com/Fredev01/water-quality-alert-engine/internal/events"
	"github.com/Fredev01/water-quality-alert-engine/internal/model"
)

// MessageReader reads reading events from a message queue.
type MessageReader interface {
	// ReadMessage reads the next message and returns the parsed
	// ReadingReceived event. Returns the raw message for offset tracking.
	ReadMessage(ctx context.Context) (*events.ReadingReceived, *kafka.Message, error)

	// Close closes the reader and releases resources.
	Close() error
}

// ReadingDispatcher processes one classified reading for a meter.
type ReadingDispatcher interface {
	OnReading(ctx context.Context, meterID string, reading model.SensorReading) (*dispatcher.Summary, error)
}

// MetricsRecorder records processing outcomes.
type MetricsRecorder interface {
	RecordReceived()
	RecordProcessed(latency time.Duration)
	RecordSent()
	RecordError()
}

// NopMetrics is a MetricsRecorder that discards everything.
type NopMetrics struct{}

func (NopMetrics) RecordReceived()                  {}
func (NopMetrics) RecordProcessed(_ time.Duration)  {}
func (NopMetrics) RecordSent()                      {}
func (NopMetrics) RecordError()                     {}
