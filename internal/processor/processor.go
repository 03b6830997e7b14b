package processor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Fredev01/water-quality-alert-engine/internal/events"
)

const (
	// DefaultDispatchTimeout bounds the registry/store/gateway I/O for
	// one reading. A timeout abandons the reading; a later one recomputes
	// state correctly.
	DefaultDispatchTimeout = 15 * time.Second

	// defaultWorkerBuffer is the per-meter channel depth. A full channel
	// blocks the read loop, which preserves per-meter ordering under
	// backpressure.
	defaultWorkerBuffer = 64
)

// Processor orchestrates reading ingestion and dispatch.
type Processor struct {
	consumer        MessageReader
	dispatcher      ReadingDispatcher
	metrics         MetricsRecorder
	dispatchTimeout time.Duration

	mu      sync.Mutex
	workers map[string]chan *events.ReadingReceived
	wg      sync.WaitGroup
}

// NewProcessor creates a new reading processor.
func NewProcessor(consumer MessageReader, disp ReadingDispatcher, metrics MetricsRecorder) *Processor {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &Processor{
		consumer:        consumer,
		dispatcher:      disp,
		metrics:         metrics,
		dispatchTimeout: DefaultDispatchTimeout,
		workers:         make(map[string]chan *events.ReadingReceived),
	}
}

// SetDispatchTimeout overrides the per-reading dispatch timeout.
func (p *Processor) SetDispatchTimeout(d time.Duration) {
	p.dispatchTimeout = d
}

// Run continuously reads reading events and routes them to per-meter
// workers until the context is cancelled. It returns after all in-flight
// workers have drained.
func (p *Processor) Run(ctx context.Context) error {
	slog.Info("Starting reading processing loop")

	for {
		select {
		case <-ctx.Done():
			slog.Info("Reading processing loop stopped")
			p.shutdown()
			return nil
		default:
			reading, _, err := p.consumer.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					p.shutdown()
					return nil
				}
				slog.Error("Failed to read reading event", "error", err)
				p.metrics.RecordError()
				// Continue processing other messages
				continue
			}

			p.metrics.RecordReceived()
			p.route(ctx, reading)
		}
	}
}

// route hands the event to the meter's worker, creating the worker on first
// touch. The send blocks when the worker's buffer is full so arrival order
// per meter is never violated.
func (p *Processor) route(ctx context.Context, reading *events.ReadingReceived) {
	ch := p.workerFor(ctx, reading.MeterID)
	select {
	case ch <- reading:
	case <-ctx.Done():
	}
}

// workerFor returns the meter's input channel, spawning the worker
// goroutine lazily.
func (p *Processor) workerFor(ctx context.Context, meterID string) chan *events.ReadingReceived {
	p.mu.Lock()
	defer p.mu.Unlock()

	ch, ok := p.workers[meterID]
	if ok {
		return ch
	}

	ch = make(chan *events.ReadingReceived, defaultWorkerBuffer)
	p.workers[meterID] = ch

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		for reading := range ch {
			p.handle(ctx, reading)
		}
	}()

	slog.Debug("Started meter worker", "meter_id", meterID)
	return ch
}

// handle dispatches one reading under the bounded timeout. Failures abandon
// the reading: the stream continues and a later reading recomputes state.
func (p *Processor) handle(ctx context.Context, reading *events.ReadingReceived) {
	dctx, cancel := context.WithTimeout(ctx, p.dispatchTimeout)
	defer cancel()

	start := time.Now()
	summary, err := p.dispatcher.OnReading(dctx, reading.MeterID, reading.ToSensorReading())
	if err != nil {
		slog.Error("Failed to process reading",
			"meter_id", reading.MeterID,
			"event_ts", reading.EventTS,
			"error", err,
		)
		p.metrics.RecordError()
		return
	}

	p.metrics.RecordProcessed(time.Since(start))
	for i := 0; i < summary.NotificationsSent; i++ {
		p.metrics.RecordSent()
	}

	slog.Debug("Reading processed",
		"meter_id", reading.MeterID,
		"level", summary.Level,
		"matched", summary.Matched,
		"notifications_sent", summary.NotificationsSent,
	)
}

// shutdown closes all worker channels and waits for in-flight readings.
func (p *Processor) shutdown() {
	p.mu.Lock()
	for _, ch := range p.workers {
		close(ch)
	}
	p.workers = make(map[string]chan *events.ReadingReceived)
	p.mu.Unlock()
	p.wg.Wait()
}
