package core

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const (
	isoDate   = "2006-01-02"
	isoMonth  = "2006-01"
	nullToken = "null"
)

// Date is a calendar day with no time component, always stored at UTC midnight.
type Date struct {
	time.Time
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates a timestamp to its calendar day in the timestamp's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseDate parses an ISO 8601 "YYYY-MM-DD" date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(isoDate, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

// ValidCalendarDate reports whether day/month/year name a real day,
// rejecting values time.Date would silently normalise (31/02 and friends).
func ValidCalendarDate(year, month, day int) bool {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return false
	}
	d := NewDate(year, month, day)
	return d.Day() == day && int(d.Month()) == month && d.Year() == year
}

// String renders the ISO form, or "" for the zero date.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(isoDate)
}

// MonthToken renders the "YYYY-MM" month the date falls in.
func (d Date) MonthToken() string {
	return d.Format(isoMonth)
}

// MonthToken renders the "YYYY-MM" token for a timestamp.
func MonthToken(t time.Time) string {
	return t.Format(isoMonth)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if string(data) == nullToken {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidDate, data)
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
