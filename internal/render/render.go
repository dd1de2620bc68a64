// Package render writes normalized glucose records, either as styled text
// lines or as JSON lines.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/naveenspark/eversense/pkg/domain"
)

// Format selects the output encoding.
type Format string

// Supported output formats.
const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatText, "":
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text or json)", s)
	}
}

// Printer writes history readings and current-state snapshots to w.
type Printer struct {
	mu     sync.Mutex
	w      io.Writer
	format Format
	styles styles
}

// New creates a printer. Colours are only emitted when w is a terminal.
func New(w io.Writer, format Format) *Printer {
	return &Printer{
		w:      w,
		format: format,
		styles: newStyles(lipgloss.NewRenderer(w)),
	}
}

// History writes one line per reading.
func (p *Printer) History(readings []domain.Reading) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, r := range readings {
		var err error
		if p.format == FormatJSON {
			err = p.writeJSON(readingRecord{Type: "reading", Timestamp: r.Timestamp, Value: r.Value})
		} else {
			_, err = fmt.Fprintln(p.w, p.styles.reading(r))
		}
		if err != nil {
			return fmt.Errorf("write reading: %w", err)
		}
	}
	return nil
}

// Current writes one line for the live snapshot taken at at.
func (p *Printer) Current(at time.Time, id domain.Identity) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	var err error
	if p.format == FormatJSON {
		err = p.writeJSON(currentRecord{
			Type:         "current",
			At:           at,
			UserID:       id.UserID.String(),
			CurrentState: id.State,
		})
	} else {
		_, err = fmt.Fprintln(p.w, p.styles.current(at, id.State))
	}
	if err != nil {
		return fmt.Errorf("write current state: %w", err)
	}
	return nil
}

type readingRecord struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

type currentRecord struct {
	Type   string    `json:"type"`
	At     time.Time `json:"at"`
	UserID string    `json:"userId"`
	domain.CurrentState
}

func (p *Printer) writeJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = p.w.Write(data)
	return err
}
