package processor

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Fredev01/water-quality-alert-engine/internal/dispatcher"
	"github.com/Fredev01/water-quality-alert-engine/internal/events"
	"github.com/Fredev01/water-quality-alert-engine/internal/model"
)

// readResult is one scripted outcome for FakeReader.ReadMessage.
type readResult struct {
	reading *events.ReadingReceived
	err     error
}

// FakeReader replays a scripted sequence of read results, then blocks until
// the context is cancelled.
type FakeReader struct {
	mu      sync.Mutex
	results []readResult
	idx     int
	closed  bool
}

func (f *FakeReader) Push(reading *events.ReadingReceived, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results = append(f.results, readResult{reading: reading, err: err})
}

func (f *FakeReader) ReadMessage(ctx context.Context) (*events.ReadingReceived, *kafka.Message, error) {
	f.mu.Lock()
	if f.idx < len(f.results) {
		r := f.results[f.idx]
		f.idx++
		f.mu.Unlock()
		return r.reading, &kafka.Message{}, r.err
	}
	f.mu.Unlock()

	<-ctx.Done()
	return nil, nil, ctx.Err()
}

func (f *FakeReader) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// FakeDispatcher records which meters it saw and in what order.
type FakeDispatcher struct {
	mu      sync.Mutex
	byMeter map[string][]model.SensorReading
	order   []string

	Summary *dispatcher.Summary
	Err     error
	Delay   time.Duration
}

func NewFakeDispatcher() *FakeDispatcher {
	return &FakeDispatcher{
		byMeter: make(map[string][]model.SensorReading),
		Summary: &dispatcher.Summary{},
	}
}

func (f *FakeDispatcher) OnReading(ctx context.Context, meterID string, reading model.SensorReading) (*dispatcher.Summary, error) {
	if f.Delay > 0 {
		time.Sleep(f.Delay)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.byMeter[meterID] = append(f.byMeter[meterID], reading)
	f.order = append(f.order, meterID)

	if f.Err != nil {
		return nil, f.Err
	}
	return f.Summary, nil
}

func (f *FakeDispatcher) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.order)
}

func (f *FakeDispatcher) ReadingsFor(meterID string) []model.SensorReading {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.SensorReading, len(f.byMeter[meterID]))
	copy(out, f.byMeter[meterID])
	return out
}

// FakeMetrics counts recorder calls.
type FakeMetrics struct {
	Received  atomic.Int64
	Processed atomic.Int64
	Sent      atomic.Int64
	Errors    atomic.Int64
}

func (f *FakeMetrics) RecordReceived()                 { f.Received.Add(1) }
func (f *FakeMetrics) RecordProcessed(_ time.Duration) { f.Processed.Add(1) }
func (f *FakeMetrics) RecordSent()                     { f.Sent.Add(1) }
func (f *FakeMetrics) RecordError()                    { f.Errors.Add(1) }
