package client

import (
	"context"
	"fmt"
	"time"

	"cdr.dev/slog/v3"

	"github.com/naveenspark/eversense/pkg/domain"
)

const glucosePath = "/api/care/GetFollowingUserSensorGlucose"

// glucoseRequest is the window sent to the sensor glucose endpoint.
type glucoseRequest struct {
	UserID    domain.UserID `json:"UserID"`
	StartDate string        `json:"startDate"`
	EndDate   string        `json:"endDate"`
}

// FormatWindowTime formats t as the UTC, millisecond-zero timestamp the
// glucose endpoint expects, e.g. 2024-05-01T08:00:00.000Z.
func FormatWindowTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05") + ".000Z"
}

// FetchGlucose returns the sensor glucose readings of user between from and
// to, in the order the API returns them. Timestamps are in the client's
// location.
func (c *Client) FetchGlucose(ctx context.Context, user domain.UserID, from, to time.Time) ([]domain.Reading, error) {
	c.logger.Debug(ctx, "fetching glucose data",
		slog.F("user_id", user.String()),
		slog.F("from", from),
		slog.F("to", to),
	)

	readings, err := c.fetchGlucose(ctx, user, from, to)
	if err != nil {
		c.logger.Error(ctx, "glucose fetch failed", slog.Error(err))
		return nil, fmt.Errorf("client.FetchGlucose: %w", err)
	}
	c.metrics.addReadings(len(readings))
	return readings, nil
}

func (c *Client) fetchGlucose(ctx context.Context, user domain.UserID, from, to time.Time) ([]domain.Reading, error) {
	req := glucoseRequest{
		UserID:    user,
		StartDate: FormatWindowTime(from),
		EndDate:   FormatWindowTime(to),
	}
	var events []domain.GlucoseEvent
	err := c.get(ctx, glucosePath, req, &events)
	c.metrics.request("glucose", err)
	if err != nil {
		return nil, err
	}
	return NormalizeEvents(events, c.location)
}

// NormalizeEvents converts raw glucose events into readings. Every event date
// is parsed and moved to loc; only sensor readings are kept, in input order.
// A kept event without a date or value makes the whole payload malformed.
func NormalizeEvents(events []domain.GlucoseEvent, loc *time.Location) ([]domain.Reading, error) {
	readings := make([]domain.Reading, 0, len(events))
	for i, e := range events {
		var ts time.Time
		if e.EventDate != nil {
			t, err := ParseEventDate(*e.EventDate, loc)
			if err != nil {
				return nil, fmt.Errorf("event %d: %w: %w", i, ErrMalformedEvent, err)
			}
			ts = t
		}
		if !e.IsSensorReading() {
			continue
		}
		if e.EventDate == nil {
			return nil, fmt.Errorf("event %d: %w: EventDate", i, ErrMalformedEvent)
		}
		if e.Value == nil {
			return nil, fmt.Errorf("event %d: %w: Value", i, ErrMalformedEvent)
		}
		readings = append(readings, domain.Reading{Timestamp: ts, Value: *e.Value})
	}
	return readings, nil
}

var eventDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
}

// Layouts without a UTC offset are read in the output location.
var localEventDateLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// ParseEventDate parses an upstream event date and returns the same instant
// expressed in loc.
func ParseEventDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range eventDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC().In(loc), nil
		}
	}
	for _, layout := range localEventDateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t.UTC().In(loc), nil
		}
	}
	return time.Time{}, fmt.Errorf("parse event date %q", s)
}
