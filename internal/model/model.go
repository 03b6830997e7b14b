// Package model defines the core domain types for water-quality alerting:
// severity levels, parameter bands, alerts, sensor readings, and the
// per-alert debounce state.
package model

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// SeverityLevel is an ordered water-quality classification.
// Levels are ordered by increasing desirability: DANGEROUS is the worst,
// EXCELLENT the best.
type SeverityLevel string

const (
	SeverityDangerous SeverityLevel = "DANGEROUS"
	SeverityPoor      SeverityLevel = "POOR"
	SeverityModerate  SeverityLevel = "MODERATE"
	SeverityGood      SeverityLevel = "GOOD"
	SeverityExcellent SeverityLevel = "EXCELLENT"
)

// severityRank maps each level to its position in the ascending order.
var severityRank = map[SeverityLevel]int{
	SeverityDangerous: 0,
	SeverityPoor:      1,
	SeverityModerate:  2,
	SeverityGood:      3,
	SeverityExcellent: 4,
}

// Levels returns all severity levels in ascending order
// (DANGEROUS first, EXCELLENT last).
func Levels() []SeverityLevel {
	return []SeverityLevel{
		SeverityDangerous,
		SeverityPoor,
		SeverityModerate,
		SeverityGood,
		SeverityExcellent,
	}
}

// Rank returns the position of the level in the ascending severity order,
// or -1 for an unknown level.
func (s SeverityLevel) Rank() int {
	rank, ok := severityRank[s]
	if !ok {
		return -1
	}
	return rank
}

// Valid reports whether the level is one of the five defined levels.
func (s SeverityLevel) Valid() bool {
	_, ok := severityRank[s]
	return ok
}

// ParseSeverity parses a severity level string.
// Returns an error for unknown values.
func ParseSeverity(s string) (SeverityLevel, error) {
	level := SeverityLevel(s)
	if !level.Valid() {
		return "", fmt.Errorf("unknown severity level: %q", s)
	}
	return level, nil
}

// Parameter names one of the five measured water-quality parameters.
type Parameter string

const (
	ParamPH           Parameter = "ph"
	ParamTDS          Parameter = "tds"
	ParamTemperature  Parameter = "temperature"
	ParamConductivity Parameter = "conductivity"
	ParamTurbidity    Parameter = "turbidity"
)

// Parameters returns the five measured parameters in their canonical order.
func Parameters() []Parameter {
	return []Parameter{
		ParamPH,
		ParamTDS,
		ParamTemperature,
		ParamConductivity,
		ParamTurbidity,
	}
}

// RangeValue is a half-open numeric range [Min, Max).
// The topmost band for a parameter uses Max = +Inf, serialized as JSON null.
type RangeValue struct {
	Min float64
	Max float64
}

// Contains reports whether v falls inside the half-open range [Min, Max).
// A value exactly equal to Min belongs to this range.
func (r RangeValue) Contains(v float64) bool {
	return v >= r.Min && v < r.Max
}

// rangeValueJSON is the wire form of RangeValue. A null max means unbounded.
type rangeValueJSON struct {
	Min float64  `json:"min"`
	Max *float64 `json:"max"`
}

// MarshalJSON serializes the range, emitting null for an unbounded max.
func (r RangeValue) MarshalJSON() ([]byte, error) {
	out := rangeValueJSON{Min: r.Min}
	if !math.IsInf(r.Max, 1) {
		max := r.Max
		out.Max = &max
	}
	return json.Marshal(out)
}

// UnmarshalJSON deserializes the range, mapping a null or absent max to +Inf.
func (r *RangeValue) UnmarshalJSON(data []byte) error {
	var in rangeValueJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	r.Min = in.Min
	if in.Max != nil {
		r.Max = *in.Max
	} else {
		r.Max = math.Inf(1)
	}
	return nil
}

// ParameterBands maps each measured parameter to the range qualifying as one
// severity level for one alert.
type ParameterBands map[Parameter]RangeValue

// Alert is the operator-defined configuration tying a meter to a severity
// level and its parameter bands. The engine only reads alerts; lifecycle is
// managed elsewhere.
type Alert struct {
	ID             string         `json:"alert_id"`
	MeterID        string         `json:"meter_id"`
	OwnerID        string         `json:"owner_id"`
	Title          string         `json:"title"`
	SeverityLevel  SeverityLevel  `json:"severity_level"`
	ParameterBands ParameterBands `json:"parameter_bands"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// SensorReading is one sample from a meter. A missing parameter is carried
// as NaN and abstains from classification voting.
type SensorReading struct {
	Temperature  float64
	TDS          float64
	Conductivity float64
	PH           float64
	Turbidity    float64
}

// Value returns the reading's value for the given parameter.
// ok is false when the parameter is missing (NaN) or unknown.
func (r SensorReading) Value(p Parameter) (float64, bool) {
	var v float64
	switch p {
	case ParamPH:
		v = r.PH
	case ParamTDS:
		v = r.TDS
	case ParamTemperature:
		v = r.Temperature
	case ParamConductivity:
		v = r.Conductivity
	case ParamTurbidity:
		v = r.Turbidity
	default:
		return 0, false
	}
	if math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// DebounceState is the persisted per-alert streak state.
// ValidationCount is the number of consecutive qualifying dispatch cycles
// since the last reset or send; LastSent is nil until the first notification.
type DebounceState struct {
	AlertID         string
	ValidationCount int64
	LastSent        *time.Time
}

// NotificationRecord is the inbox/audit entry created for each delivery
// attempt that passes the debounce gate.
type NotificationRecord struct {
	ID        string    `json:"notification_id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	UserID    string    `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
	Read      bool      `json:"read"`
}
