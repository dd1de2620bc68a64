package render

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/naveenspark/eversense/pkg/domain"
)

const timestampLayout = "2006-01-02 15:04:05 -07:00"

type styles struct {
	dim     lipgloss.Style
	normal  lipgloss.Style
	label   lipgloss.Style
	ranges  map[domain.Range]lipgloss.Style
	online  lipgloss.Style
	offline lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		dim:    r.NewStyle().Foreground(lipgloss.Color("#8890a0")),
		normal: r.NewStyle().Foreground(lipgloss.Color("#c0c4d0")),
		label:  r.NewStyle().Foreground(lipgloss.Color("#505868")),
		ranges: map[domain.Range]lipgloss.Style{
			domain.RangeLow:     r.NewStyle().Foreground(lipgloss.Color("#e06060")).Bold(true),
			domain.RangeInRange: r.NewStyle().Foreground(lipgloss.Color("#4ade80")),
			domain.RangeHigh:    r.NewStyle().Foreground(lipgloss.Color("#f59e0b")).Bold(true),
		},
		online:  r.NewStyle().Foreground(lipgloss.Color("#34d474")),
		offline: r.NewStyle().Foreground(lipgloss.Color("#b45555")),
	}
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + " mg/dL"
}

// reading renders "2024-05-01 10:05:00 +02:00  125 mg/dL  IN_RANGE".
func (s styles) reading(r domain.Reading) string {
	rng := domain.Classify(r.Value)
	return fmt.Sprintf("%s  %s  %s",
		s.dim.Render(r.Timestamp.Format(timestampLayout)),
		s.ranges[rng].Render(formatValue(r.Value)),
		s.label.Render(string(rng)),
	)
}

// current renders the live snapshot. Absent fields print as "--".
func (s styles) current(at time.Time, st domain.CurrentState) string {
	value := s.dim.Render("--")
	if st.CurrentGlucose != nil {
		rng := domain.Classify(*st.CurrentGlucose)
		value = s.ranges[rng].Render(formatValue(*st.CurrentGlucose))
	}

	transmitter := s.dim.Render("transmitter unknown")
	if st.IsTransmitterConnected != nil {
		if *st.IsTransmitterConnected {
			transmitter = s.online.Render("transmitter connected")
		} else {
			transmitter = s.offline.Render("transmitter disconnected")
		}
	}

	return fmt.Sprintf("%s  %s  %s %s  %s",
		s.dim.Render(at.Format(timestampLayout)),
		value,
		s.normal.Render(st.GlucoseTrend.Arrow()),
		s.label.Render(string(st.GlucoseTrend)),
		transmitter,
	)
}
