package domain

import (
	"bytes"
	"encoding/json"
	"time"
)

// EventTypeSensorGlucose is the event type of a sensor glucose reading.
const EventTypeSensorGlucose = 1

// GlucoseEvent is one raw event from the sensor glucose endpoint. Fields the
// API may omit are pointers or raw JSON.
type GlucoseEvent struct {
	EventDate   *string         `json:"EventDate,omitempty"`
	EventTypeID *int            `json:"EventTypeID,omitempty"`
	Deleted     json.RawMessage `json:"Deleted,omitempty"`
	Value       *float64        `json:"Value,omitempty"`
}

// IsSensorReading reports whether e is a live sensor glucose reading. Only a
// literal JSON false in Deleted admits the event.
func (e GlucoseEvent) IsSensorReading() bool {
	if e.EventTypeID == nil || *e.EventTypeID != EventTypeSensorGlucose {
		return false
	}
	return bytes.Equal(bytes.TrimSpace(e.Deleted), []byte("false"))
}

// Reading is a normalized sensor glucose reading.
type Reading struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// FilterReadings keeps the sensor readings of events in their original order.
func FilterReadings(events []GlucoseEvent) []GlucoseEvent {
	out := make([]GlucoseEvent, 0, len(events))
	for _, e := range events {
		if e.IsSensorReading() {
			out = append(out, e)
		}
	}
	return out
}

// Range is the coarse glucose range category.
type Range string

// Range categories, split at LowThreshold and HighThreshold.
const (
	RangeLow     Range = "LOW"
	RangeInRange Range = "IN_RANGE"
	RangeHigh    Range = "HIGH"
)

// Range thresholds in mg/dL.
const (
	LowThreshold  = 80
	HighThreshold = 130
)

// Classify returns the range category of a glucose value in mg/dL.
func Classify(value float64) Range {
	switch {
	case value < LowThreshold:
		return RangeLow
	case value > HighThreshold:
		return RangeHigh
	default:
		return RangeInRange
	}
}
