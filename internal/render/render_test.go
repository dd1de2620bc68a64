package render

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/naveenspark/eversense/pkg/domain"
)

func ptr[T any](v T) *T { return &v }

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatText, false},
		{"text", FormatText, false},
		{"JSON", FormatJSON, false},
		{"yaml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestHistoryText(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, FormatText)
	loc := time.FixedZone("CEST", 2*60*60)
	err := p.History([]domain.Reading{
		{Timestamp: time.Date(2024, 5, 1, 10, 0, 0, 0, loc), Value: 72},
		{Timestamp: time.Date(2024, 5, 1, 10, 5, 0, 0, loc), Value: 125},
		{Timestamp: time.Date(2024, 5, 1, 10, 10, 0, 0, loc), Value: 181.5},
	})
	if err != nil {
		t.Fatalf("History() error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3:\n%s", len(lines), buf.String())
	}
	wants := []string{
		"2024-05-01 10:00:00 +02:00  72 mg/dL  LOW",
		"2024-05-01 10:05:00 +02:00  125 mg/dL  IN_RANGE",
		"2024-05-01 10:10:00 +02:00  181.5 mg/dL  HIGH",
	}
	for i, want := range wants {
		if lines[i] != want {
			t.Errorf("line %d = %q, want %q", i, lines[i], want)
		}
	}
}

func TestCurrentText(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name  string
		state domain.CurrentState
		want  []string
	}{
		{
			name: "full snapshot",
			state: domain.CurrentState{
				CurrentGlucose:         ptr(142.0),
				GlucoseTrend:           domain.TrendRising,
				IsTransmitterConnected: ptr(true),
			},
			want: []string{"142 mg/dL", "↗ RISING", "transmitter connected"},
		},
		{
			name:  "empty snapshot",
			state: domain.CurrentState{GlucoseTrend: domain.TrendUnknown},
			want:  []string{"--", "? UNKNOWN", "transmitter unknown"},
		},
		{
			name: "disconnected",
			state: domain.CurrentState{
				CurrentGlucose:         ptr(60.0),
				GlucoseTrend:           domain.TrendFallingRapid,
				IsTransmitterConnected: ptr(false),
			},
			want: []string{"60 mg/dL", "FALLING_RAPID", "transmitter disconnected"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			p := New(&buf, FormatText)
			if err := p.Current(at, domain.Identity{UserID: domain.NewUserID("1"), State: tt.state}); err != nil {
				t.Fatalf("Current() error: %v", err)
			}
			got := buf.String()
			if !strings.HasPrefix(got, "2024-05-01 12:00:00 +00:00") {
				t.Errorf("output = %q, want timestamp prefix", got)
			}
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("output = %q, want it to contain %q", got, w)
				}
			}
		})
	}
}

func TestJSONLines(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, FormatJSON)
	ts := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	if err := p.History([]domain.Reading{{Timestamp: ts, Value: 101}}); err != nil {
		t.Fatalf("History() error: %v", err)
	}
	id := domain.Identity{
		UserID: domain.NewUserID("4711"),
		State:  domain.CurrentState{CurrentGlucose: ptr(99.0), GlucoseTrend: domain.TrendFlat},
	}
	if err := p.Current(ts, id); err != nil {
		t.Fatalf("Current() error: %v", err)
	}

	dec := json.NewDecoder(&buf)
	var reading map[string]any
	if err := dec.Decode(&reading); err != nil {
		t.Fatalf("decode reading: %v", err)
	}
	if reading["type"] != "reading" || reading["value"] != 101.0 || reading["timestamp"] != "2024-05-01T10:00:00Z" {
		t.Errorf("reading = %v", reading)
	}

	var cur map[string]any
	if err := dec.Decode(&cur); err != nil {
		t.Fatalf("decode current: %v", err)
	}
	if cur["type"] != "current" || cur["userId"] != "4711" || cur["glucoseTrend"] != "FLAT" || cur["currentGlucose"] != 99.0 {
		t.Errorf("current = %v", cur)
	}
	if v, ok := cur["isTransmitterConnected"]; !ok || v != nil {
		t.Errorf("isTransmitterConnected = %v, want explicit null", v)
	}
}
