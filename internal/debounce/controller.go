package debounce

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Fredev01/water-quality-alert-engine/internal/model"
)

// DefaultThreshold is the streak length required before a notification
// fires: five consecutive qualifying dispatch cycles.
const DefaultThreshold = 5

// Controller drives the per-alert debounce state machine. All mutable state
// lives in the ControlStore, so a Controller is stateless and safe to share
// across goroutines.
type Controller struct {
	store     ControlStore
	gateway   NotificationGateway
	audit     AuditLog
	threshold int64
	loc       *time.Location
	now       func() time.Time
}

// Option configures a Controller.
type Option func(*Controller)

// WithThreshold overrides the default notify threshold.
func WithThreshold(n int64) Option {
	return func(c *Controller) {
		c.threshold = n
	}
}

// WithLocation sets the timezone used for the daily-cap calendar boundary.
func WithLocation(loc *time.Location) Option {
	return func(c *Controller) {
		c.loc = loc
	}
}

// WithClock overrides the time source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

// NewController creates a debounce controller over the given collaborators.
// The daily cap defaults to UTC calendar days and the threshold to
// DefaultThreshold.
func NewController(store ControlStore, gateway NotificationGateway, audit AuditLog, opts ...Option) *Controller {
	c := &Controller{
		store:     store,
		gateway:   gateway,
		audit:     audit,
		threshold: DefaultThreshold,
		loc:       time.UTC,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Advance records one qualifying dispatch cycle for the alert.
//
// If a notification already went out today (by the configured timezone's
// calendar), the call is a no-op: the counter is left untouched and no
// further send happens until the next day. Otherwise the streak is
// atomically incremented; when it reaches the threshold, a notification is
// built and sent, the last-sent timestamp is recorded, the streak is reset,
// and an audit entry is appended.
//
// Delivery is fire-and-forget: a gateway failure is logged but the
// sent-today transition is committed regardless, so the alert stays
// suppressed for the rest of the day.
//
// Returns true when a notification was dispatched on this cycle.
func (c *Controller) Advance(ctx context.Context, alert *model.Alert) (bool, error) {
	state, err := c.store.Get(ctx, alert.ID)
	if err != nil {
		return false, fmt.Errorf("failed to load debounce state for alert %s: %w", alert.ID, err)
	}

	now := c.now().In(c.loc)

	if state.LastSent != nil && sameCalendarDay(state.LastSent.In(c.loc), now) {
		slog.Debug("Notification already sent today, skipping",
			"alert_id", alert.ID,
			"last_sent", state.LastSent,
		)
		return false, nil
	}

	count, err := c.store.UpdateValidation(ctx, alert.ID)
	if err != nil {
		return false, fmt.Errorf("failed to increment validation streak for alert %s: %w", alert.ID, err)
	}

	if count < c.threshold {
		slog.Debug("Validation streak advanced",
			"alert_id", alert.ID,
			"streak", count,
			"threshold", c.threshold,
		)
		return false, nil
	}

	record := c.buildRecord(alert, now)

	if err := c.gateway.Send(ctx, record); err != nil {
		// Fire-and-forget: the debounce transition is committed below
		// even when delivery fails, trading a possibly lost
		// notification for at-most-once behavior.
		slog.Warn("Notification delivery failed",
			"alert_id", alert.ID,
			"owner_id", alert.OwnerID,
			"error", err,
		)
	}

	if err := c.store.UpdateLastSent(ctx, alert.ID, now); err != nil {
		return false, fmt.Errorf("failed to record last sent for alert %s: %w", alert.ID, err)
	}
	if err := c.store.ResetValidation(ctx, alert.ID); err != nil {
		return false, fmt.Errorf("failed to reset validation streak for alert %s: %w", alert.ID, err)
	}

	auditID, err := c.audit.Create(ctx, record)
	if err != nil {
		return false, fmt.Errorf("failed to append audit record for alert %s: %w", alert.ID, err)
	}

	slog.Info("Notification dispatched",
		"alert_id", alert.ID,
		"owner_id", alert.OwnerID,
		"severity", alert.SeverityLevel,
		"notification_id", auditID,
	)

	return true, nil
}

// Reset clears the alert's validation streak after a non-qualifying
// reading. The last-sent timestamp is deliberately left alone: an alert
// that already fired today stays suppressed even if it starts matching
// again later.
func (c *Controller) Reset(ctx context.Context, alertID string) error {
	if err := c.store.ResetValidation(ctx, alertID); err != nil {
		return fmt.Errorf("failed to reset validation streak for alert %s: %w", alertID, err)
	}
	return nil
}

// buildRecord renders the notification for the alert.
func (c *Controller) buildRecord(alert *model.Alert, now time.Time) *model.NotificationRecord {
	title := alert.Title
	if title == "" {
		title = "Water quality alert"
	}
	return &model.NotificationRecord{
		Title:     title,
		Body:      fmt.Sprintf("Water quality on meter %s has stayed at %s level across consecutive readings.", alert.MeterID, alert.SeverityLevel),
		UserID:    alert.OwnerID,
		Timestamp: now,
	}
}

// sameCalendarDay reports whether a and b fall on the same calendar date.
// Both times must already be in the daily-cap timezone.
func sameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
