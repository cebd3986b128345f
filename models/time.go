package models

import (
	"fmt"
	"strings"
	"time"
)

// ISOLayout is the literal format used for every time value that crosses a boundary
// (NLU slots, action inputs and outputs, HTTP bodies).
const ISOLayout = "2006-01-02T15:04"

// DateLayout is the day format used for day-granular inputs.
const DateLayout = "2006-01-02"

// Civil times carry the wall clock of the single implicit local zone. They are stored in
// time.UTC so that every backend round-trips them unchanged.

// ParseISO parses a YYYY-MM-DDTHH:MM literal.
func ParseISO(s string) (time.Time, error) {
	t, err := time.Parse(ISOLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, &DomainError{
			Code:    InvalidRequest,
			Message: fmt.Sprintf("시간 형식이 올바르지 않습니다 (YYYY-MM-DDTHH:MM): %q", s),
		}
	}
	return t, nil
}

// FormatISO renders t in ISOLayout.
func FormatISO(t time.Time) string {
	return t.Format(ISOLayout)
}

// Civil strips the location from t, keeping its wall clock.
func Civil(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

// DayStart returns 00:00 of the civil day containing t.
func DayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// At returns the given wall-clock time on the civil day containing day.
func At(day time.Time, hour, minute int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, time.UTC)
}

// TimeRange is a half-open interval [Start, End).
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// Duration returns End - Start.
func (r TimeRange) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

// Overlaps reports whether two half-open intervals intersect.
func (r TimeRange) Overlaps(o TimeRange) bool {
	return r.Start.Before(o.End) && o.Start.Before(r.End)
}

// Slot is the wire shape of a TimeRange.
type Slot struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// ToSlot formats r for the wire.
func (r TimeRange) ToSlot() Slot {
	return Slot{Start: FormatISO(r.Start), End: FormatISO(r.End)}
}
