// Package dispatcher orchestrates per-reading alert processing: it loads the
// meter's alert configuration, classifies the reading, and drives the
// debounce controller for every affected alert.
package dispatcher

import (
	"context"

	"github.com/Fredev01/water-quality-alert-engine/internal/model"
)

// AlertRegistry looks up alert configuration.
type AlertRegistry interface {
	// ListByMeter returns the alerts configured on the meter. An empty
	// slice (not an error) means nothing is configured.
	ListByMeter(ctx context.Context, meterID string) ([]model.Alert, error)
}

// StreakController is the debounce state machine driven per alert.
type StreakController interface {
	// Advance records one qualifying cycle for the alert and reports
	// whether a notification was dispatched.
	Advance(ctx context.Context, alert *model.Alert) (bool, error)

	// Reset clears the alert's validation streak.
	Reset(ctx context.Context, alertID string) error
}
