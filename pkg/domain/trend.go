package domain

import (
	"encoding/json"
	"math"
)

// Trend is the decoded glucose rate-of-change direction.
type Trend string

// Trend values reported by the follower API. RaisingRapid keeps the
// upstream spelling.
const (
	TrendStale        Trend = "STALE"
	TrendFallingFast  Trend = "FALLING_FAST"
	TrendFalling      Trend = "FALLING"
	TrendFlat         Trend = "FLAT"
	TrendRising       Trend = "RISING"
	TrendRisingFast   Trend = "RISING_FAST"
	TrendFallingRapid Trend = "FALLING_RAPID"
	TrendRaisingRapid Trend = "RAISING_RAPID"
	TrendUnknown      Trend = "UNKNOWN"
)

// trendCodes is indexed by the upstream integer code.
var trendCodes = []Trend{
	TrendStale,
	TrendFallingFast,
	TrendFalling,
	TrendFlat,
	TrendRising,
	TrendRisingFast,
	TrendFallingRapid,
	TrendRaisingRapid,
}

// DecodeTrend maps an upstream trend code to a Trend. Out-of-range codes
// decode to TrendUnknown.
func DecodeTrend(code int) Trend {
	if code < 0 || code >= len(trendCodes) {
		return TrendUnknown
	}
	return trendCodes[code]
}

// DecodeTrendJSON decodes a raw GlucoseTrend field. Whole numbers such as
// 4 or 4.0 are looked up; absent, null or fractional values decode to
// TrendUnknown.
func DecodeTrendJSON(raw json.RawMessage) Trend {
	if len(raw) == 0 || string(raw) == "null" {
		return TrendUnknown
	}
	var code float64
	if err := json.Unmarshal(raw, &code); err != nil {
		return TrendUnknown
	}
	if code != math.Trunc(code) || code < math.MinInt32 || code > math.MaxInt32 {
		return TrendUnknown
	}
	return DecodeTrend(int(code))
}

// Direction collapses a trend to rising, falling or stable.
type Direction string

// Coarse trend directions.
const (
	DirectionRising  Direction = "rising"
	DirectionFalling Direction = "falling"
	DirectionStable  Direction = "stable"
)

// Direction returns the coarse direction of t. Unknown trends are stable.
func (t Trend) Direction() Direction {
	switch t {
	case TrendRising, TrendRisingFast, TrendRaisingRapid:
		return DirectionRising
	case TrendFalling, TrendFallingFast, TrendFallingRapid:
		return DirectionFalling
	default:
		return DirectionStable
	}
}

// Arrow returns a single-glyph arrow for t.
func (t Trend) Arrow() string {
	switch t {
	case TrendRisingFast, TrendRaisingRapid:
		return "⇈"
	case TrendRising:
		return "↗"
	case TrendFallingFast, TrendFallingRapid:
		return "⇊"
	case TrendFalling:
		return "↘"
	case TrendFlat:
		return "→"
	default:
		return "?"
	}
}
