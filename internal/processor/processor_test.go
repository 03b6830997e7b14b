package processor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Fredev01/water-quality-alert-engine/internal/dispatcher"
	"github.com/Fredev01/water-quality-alert-engine/internal/events"
)

func newReading(meterID string, ph float64) *events.ReadingReceived {
	return &events.ReadingReceived{
		SchemaVersion: events.SchemaVersion,
		MeterID:       meterID,
		EventTS:       time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC).Unix(),
		PH:            &ph,
	}
}

// waitFor polls until cond is true or the deadline passes.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestNewProcessor(t *testing.T) {
	reader := &FakeReader{}
	disp := NewFakeDispatcher()

	p := NewProcessor(reader, disp, nil)

	if p == nil {
		t.Fatal("NewProcessor() returned nil")
	}
	if p.dispatchTimeout != DefaultDispatchTimeout {
		t.Errorf("dispatchTimeout = %v, want %v", p.dispatchTimeout, DefaultDispatchTimeout)
	}
	if _, ok := p.metrics.(NopMetrics); !ok {
		t.Error("NewProcessor() with nil metrics should fall back to NopMetrics")
	}
}

func TestRun_ProcessesReadings(t *testing.T) {
	reader := &FakeReader{}
	reader.Push(newReading("meter-1", 7.0), nil)
	reader.Push(newReading("meter-1", 7.1), nil)
	reader.Push(newReading("meter-1", 7.2), nil)

	disp := NewFakeDispatcher()
	metrics := &FakeMetrics{}
	p := NewProcessor(reader, disp, metrics)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	waitFor(t, 2*time.Second, func() bool { return disp.Count() == 3 })
	cancel()

	if err := <-done; err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	readings := disp.ReadingsFor("meter-1")
	if len(readings) != 3 {
		t.Fatalf("dispatcher received %d readings, want 3", len(readings))
	}
	// Per-meter order follows arrival order.
	for i, want := range []float64{7.0, 7.1, 7.2} {
		if readings[i].PH != want {
			t.Errorf("reading %d PH = %v, want %v", i, readings[i].PH, want)
		}
	}

	if got := metrics.Received.Load(); got != 3 {
		t.Errorf("RecordReceived calls = %d, want 3", got)
	}
	if got := metrics.Processed.Load(); got != 3 {
		t.Errorf("RecordProcessed calls = %d, want 3", got)
	}
	if got := metrics.Errors.Load(); got != 0 {
		t.Errorf("RecordError calls = %d, want 0", got)
	}
}

func TestRun_ReadErrorContinues(t *testing.T) {
	reader := &FakeReader{}
	reader.Push(nil, errors.New("failed to unmarshal reading"))
	reader.Push(newReading("meter-1", 7.0), nil)

	disp := NewFakeDispatcher()
	metrics := &FakeMetrics{}
	p := NewProcessor(reader, disp, metrics)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	waitFor(t, 2*time.Second, func() bool { return disp.Count() == 1 })
	cancel()
	<-done

	if got := metrics.Errors.Load(); got != 1 {
		t.Errorf("RecordError calls = %d, want 1", got)
	}
	if got := metrics.Processed.Load(); got != 1 {
		t.Errorf("RecordProcessed calls = %d, want 1", got)
	}
}

func TestRun_DispatchErrorRecordsError(t *testing.T) {
	reader := &FakeReader{}
	reader.Push(newReading("meter-1", 7.0), nil)

	disp := NewFakeDispatcher()
	disp.Err = errors.New("alert lookup failed")
	metrics := &FakeMetrics{}
	p := NewProcessor(reader, disp, metrics)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	waitFor(t, 2*time.Second, func() bool { return metrics.Errors.Load() == 1 })
	cancel()
	<-done

	if got := metrics.Processed.Load(); got != 0 {
		t.Errorf("RecordProcessed calls = %d, want 0", got)
	}
}

func TestRun_CountsNotificationsSent(t *testing.T) {
	reader := &FakeReader{}
	reader.Push(newReading("meter-1", 7.0), nil)

	disp := NewFakeDispatcher()
	disp.Summary = &dispatcher.Summary{NotificationsSent: 2}
	metrics := &FakeMetrics{}
	p := NewProcessor(reader, disp, metrics)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	waitFor(t, 2*time.Second, func() bool { return metrics.Sent.Load() == 2 })
	cancel()
	<-done
}

func TestRun_PerMeterOrdering(t *testing.T) {
	reader := &FakeReader{}
	reader.Push(newReading("meter-a", 1.0), nil)
	reader.Push(newReading("meter-b", 10.0), nil)
	reader.Push(newReading("meter-a", 2.0), nil)
	reader.Push(newReading("meter-b", 11.0), nil)
	reader.Push(newReading("meter-a", 3.0), nil)

	disp := NewFakeDispatcher()
	disp.Delay = time.Millisecond
	p := NewProcessor(reader, disp, &FakeMetrics{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	waitFor(t, 2*time.Second, func() bool { return disp.Count() == 5 })
	cancel()
	<-done

	aReadings := disp.ReadingsFor("meter-a")
	for i, want := range []float64{1.0, 2.0, 3.0} {
		if aReadings[i].PH != want {
			t.Errorf("meter-a reading %d PH = %v, want %v", i, aReadings[i].PH, want)
		}
	}
	bReadings := disp.ReadingsFor("meter-b")
	for i, want := range []float64{10.0, 11.0} {
		if bReadings[i].PH != want {
			t.Errorf("meter-b reading %d PH = %v, want %v", i, bReadings[i].PH, want)
		}
	}
}

func TestRun_ContextCancellation(t *testing.T) {
	reader := &FakeReader{}
	p := NewProcessor(reader, NewFakeDispatcher(), &FakeMetrics{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v, want nil on cancellation", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not return after context cancellation")
	}
}
