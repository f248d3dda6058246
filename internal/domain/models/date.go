package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the calendar date format used on the wire and on disk.
const DateLayout = "2006-01-02"

// Date is a calendar day in UTC.
type Date struct {
	time.Time
}

// NewDate builds a Date at midnight UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// timestampLayouts are accepted for older records that stored a full timestamp.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// ParseDate accepts YYYY-MM-DD and, for older records, a full timestamp. The
// calendar day is taken as written, before any zone conversion.
func ParseDate(value string) (Date, error) {
	if len(value) == len(DateLayout) {
		t, err := time.Parse(DateLayout, value)
		if err != nil {
			return Date{}, fmt.Errorf("parse date %q: %w", value, err)
		}
		return DateOf(t), nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return DateOf(t), nil
		}
	}
	return Date{}, fmt.Errorf("parse date %q: expected %s or a timestamp", value, DateLayout)
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
