// Package events defines the event structures for the readings.raw topic.
package events

import (
	"fmt"
	"math"

	"github.com/Fredev01/water-quality-alert-engine/internal/model"
)

// SchemaVersion is the current readings.raw schema version.
const SchemaVersion = 1

// ReadingReceived represents one sensor sample from the readings.raw topic.
// Parameter fields are pointers so a sensor that failed to report a channel
// can omit it; an omitted parameter abstains from classification.
type ReadingReceived struct {
	SchemaVersion int      `json:"schema_version"`
	MeterID       string   `json:"meter_id"`
	EventTS       int64    `json:"event_ts"`
	Temperature   *float64 `json:"temperature,omitempty"`
	TDS           *float64 `json:"tds,omitempty"`
	Conductivity  *float64 `json:"conductivity,omitempty"`
	PH            *float64 `json:"ph,omitempty"`
	Turbidity     *float64 `json:"turbidity,omitempty"`
}

// Validate checks the event carries the fields the pipeline requires.
func (e *ReadingReceived) Validate() error {
	if e.MeterID == "" {
		return fmt.Errorf("meter_id cannot be empty")
	}
	return nil
}

// ToSensorReading converts the event to the domain reading, carrying NaN
// for omitted parameters.
func (e *ReadingReceived) ToSensorReading() model.SensorReading {
	return model.SensorReading{
		Temperature:  deref(e.Temperature),
		TDS:          deref(e.TDS),
		Conductivity: deref(e.Conductivity),
		PH:           deref(e.PH),
		Turbidity:    deref(e.Turbidity),
	}
}

func deref(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}
