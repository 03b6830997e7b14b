package dispatcher

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/Fredev01/water-quality-alert-engine/internal/classifier"
	"github.com/Fredev01/water-quality-alert-engine/internal/model"
)

// Summary reports the actions taken for one reading.
type Summary struct {
	AlertsEvaluated   int
	Level             model.SeverityLevel
	Matched           bool
	StreaksAdvanced   int
	StreaksReset      int
	NotificationsSent int
}

// Dispatcher fans a classified reading out over a meter's configured alerts.
// It holds no mutable state and is safe for concurrent use across meters;
// within one meter, callers must feed readings one at a time in arrival
// order, since a non-matching reading resets streaks.
type Dispatcher struct {
	registry   AlertRegistry
	controller StreakController
}

// NewDispatcher creates a dispatcher over the given registry and controller.
func NewDispatcher(registry AlertRegistry, controller StreakController) *Dispatcher {
	return &Dispatcher{
		registry:   registry,
		controller: controller,
	}
}

// OnReading processes one reading for a meter.
//
// The meter's alerts define the classification universe: their distinct
// severity levels, ordered ascending (worst first), and each level's
// parameter bands. A reading that classifies into a level advances the
// streak of every alert on that level and resets the rest; a reading that
// classifies into nothing resets every streak.
//
// Any registry or store failure aborts the reading and surfaces as a
// retryable error. The reading's contribution to the streak is simply lost;
// a later reading recomputes state correctly.
func (d *Dispatcher) OnReading(ctx context.Context, meterID string, reading model.SensorReading) (*Summary, error) {
	alerts, err := d.registry.ListByMeter(ctx, meterID)
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts for meter %s: %w", meterID, err)
	}

	summary := &Summary{AlertsEvaluated: len(alerts)}

	if len(alerts) == 0 {
		// Nothing configured on this meter. Not an error.
		slog.Debug("No alerts configured for meter", "meter_id", meterID)
		return summary, nil
	}

	levels, bands := buildBands(alerts)

	level, matched := classifier.Classify(reading, levels, bands)
	summary.Level = level
	summary.Matched = matched

	for i := range alerts {
		alert := &alerts[i]
		if matched && alert.SeverityLevel == level {
			sent, err := d.controller.Advance(ctx, alert)
			if err != nil {
				return summary, fmt.Errorf("failed to advance alert %s: %w", alert.ID, err)
			}
			summary.StreaksAdvanced++
			if sent {
				summary.NotificationsSent++
			}
		} else {
			if err := d.controller.Reset(ctx, alert.ID); err != nil {
				return summary, fmt.Errorf("failed to reset alert %s: %w", alert.ID, err)
			}
			summary.StreaksReset++
		}
	}

	slog.Debug("Reading dispatched",
		"meter_id", meterID,
		"level", level,
		"matched", matched,
		"advanced", summary.StreaksAdvanced,
		"reset", summary.StreaksReset,
		"sent", summary.NotificationsSent,
	)

	return summary, nil
}

// buildBands derives the classification inputs from a meter's alerts: the
// distinct severity levels in ascending order (the documented tie-break
// order) and each level's parameter bands. An alert fully determines the
// bands for its own level on the meter.
func buildBands(alerts []model.Alert) ([]model.SeverityLevel, map[model.SeverityLevel]model.ParameterBands) {
	bands := make(map[model.SeverityLevel]model.ParameterBands, len(alerts))
	levels := make([]model.SeverityLevel, 0, len(alerts))
	for _, alert := range alerts {
		if _, seen := bands[alert.SeverityLevel]; !seen {
			levels = append(levels, alert.SeverityLevel)
		}
		bands[alert.SeverityLevel] = alert.ParameterBands
	}
	sort.Slice(levels, func(i, j int) bool {
		return levels[i].Rank() < levels[j].Rank()
	})
	return levels, bands
}
