package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Timestamp is a UTC instant serialised as RFC 3339 with nanoseconds.
// Decoding also accepts the zone-less ISO-8601 form written by older
// recorders, which is read as UTC.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// NewTimestamp normalises t to UTC and strips the monotonic reading so
// timestamps compare equal after a round trip.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{t.UTC().Round(0)}
}

// ParseTimestamp parses any of the accepted layouts.
func ParseTimestamp(s string) (Timestamp, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return NewTimestamp(t), nil
		}
	}
	return Timestamp{}, fmt.Errorf("unrecognised timestamp %q", s)
}

// RFC3339 formats t as stored.
func (t Timestamp) RFC3339() string {
	return t.UTC().Format(time.RFC3339Nano)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.RFC3339())
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
