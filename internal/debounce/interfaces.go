// Package debounce implements the per-alert notification debounce state
// machine: a notification fires only after a sustained streak of qualifying
// readings, at most once per alert per calendar day.
package debounce

import (
	"context"
	"time"

	"github.com/Fredev01/water-quality-alert-engine/internal/model"
)

// ControlStore persists per-alert debounce state. Implementations must
// linearize mutations for the same alert ID; UpdateValidation must be an
// atomic increment so concurrent duplicate deliveries cannot both
// read-modify-write the streak.
type ControlStore interface {
	// Get returns the debounce state for the alert, creating and
	// persisting the initial state (count 0, never sent) if absent.
	Get(ctx context.Context, alertID string) (*model.DebounceState, error)

	// UpdateValidation atomically increments the validation streak by one
	// and returns the new count.
	UpdateValidation(ctx context.Context, alertID string) (int64, error)

	// ResetValidation sets the validation streak back to zero.
	// It does not touch the last-sent timestamp.
	ResetValidation(ctx context.Context, alertID string) error

	// UpdateLastSent records the time of the last notification send.
	UpdateLastSent(ctx context.Context, alertID string, sentAt time.Time) error
}

// NotificationGateway delivers a notification to the alert owner.
// Delivery is at-most-once, best-effort.
type NotificationGateway interface {
	Send(ctx context.Context, record *model.NotificationRecord) error
}

// AuditLog appends notification history entries.
type AuditLog interface {
	// Create appends the record and returns its generated ID.
	Create(ctx context.Context, record *model.NotificationRecord) (string, error)
}
