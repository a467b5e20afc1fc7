package transport

import (
	"encoding/json"
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// OptionalDate accepts "2026-11-30", a full RFC 3339 timestamp, null or an
// empty string. Set reports whether the field was present at all.
type OptionalDate struct {
	Value *time.Time
	Set   bool
}

func (o OptionalDate) IsZero() bool {
	return !o.Set
}

func (o *OptionalDate) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	if raw == "" {
		o.Value = nil
		return nil
	}

	if parsed, err := time.Parse(dateLayout, raw); err == nil {
		o.Value = &parsed
		return nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return fmt.Errorf("invalid date %q", raw)
	}
	day := time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC)
	o.Value = &day
	return nil
}

// FormatDate renders a calendar date for responses.
func FormatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}
