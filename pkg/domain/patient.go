package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// UserID is the opaque identifier of a followed patient. The raw JSON form
// is kept so it is sent back to the API exactly as received.
type UserID struct {
	raw json.RawMessage
}

// NewUserID builds a UserID from its string form. Numeric strings are
// encoded as JSON numbers.
func NewUserID(s string) UserID {
	if _, err := strconv.ParseInt(s, 10, 64); err == nil {
		return UserID{raw: json.RawMessage(s)}
	}
	b, _ := json.Marshal(s) //nolint:errcheck // marshaling a string cannot fail
	return UserID{raw: b}
}

// IsZero reports whether the id is absent.
func (u UserID) IsZero() bool {
	return len(u.raw) == 0 || bytes.Equal(u.raw, []byte("null")) || bytes.Equal(u.raw, []byte(`""`))
}

func (u UserID) String() string {
	var s string
	if json.Unmarshal(u.raw, &s) == nil {
		return s
	}
	return string(u.raw)
}

// MarshalJSON implements json.Marshaler.
func (u UserID) MarshalJSON() ([]byte, error) {
	if len(u.raw) == 0 {
		return []byte("null"), nil
	}
	return u.raw, nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (u *UserID) UnmarshalJSON(data []byte) error {
	u.raw = append(u.raw[:0], data...)
	return nil
}

// PatientRecord is one entry of the followed-patient list.
type PatientRecord struct {
	UserID                 UserID          `json:"UserID"`
	FirstName              string          `json:"FirstName,omitempty"`
	LastName               string          `json:"LastName,omitempty"`
	CurrentGlucose         *float64        `json:"CurrentGlucose"`
	GlucoseTrend           json.RawMessage `json:"GlucoseTrend"`
	IsTransmitterConnected *bool           `json:"IsTransmitterConnected"`
}

// CurrentState is the live snapshot derived from the latest patient record.
type CurrentState struct {
	CurrentGlucose         *float64 `json:"currentGlucose"`
	GlucoseTrend           Trend    `json:"glucoseTrend"`
	IsTransmitterConnected *bool    `json:"isTransmitterConnected"`
}

// State decodes the live snapshot of the record.
func (p PatientRecord) State() CurrentState {
	return CurrentState{
		CurrentGlucose:         p.CurrentGlucose,
		GlucoseTrend:           DecodeTrendJSON(p.GlucoseTrend),
		IsTransmitterConnected: p.IsTransmitterConnected,
	}
}

// Identity is the tracked patient and their live snapshot.
type Identity struct {
	UserID UserID       `json:"userId"`
	State  CurrentState `json:"state"`
}
