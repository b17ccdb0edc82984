package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// Date is a calendar day without a time component, always held at UTC
// midnight.
type Date struct {
	t time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates tm to its calendar day in tm's own location.
func DateOf(tm time.Time) Date {
	y, m, d := tm.Date()
	return NewDate(y, m, d)
}

// ParseDate accepts "2006-01-02" or a full RFC 3339 timestamp.
func ParseDate(raw string) (Date, error) {
	trimmed := strings.TrimSpace(raw)
	if tm, err := time.Parse(DateLayout, trimmed); err == nil {
		return Date{t: tm}, nil
	}
	tm, err := time.Parse(time.RFC3339Nano, trimmed)
	if err != nil {
		return Date{}, fmt.Errorf("model: invalid date %q", raw)
	}
	return DateOf(tm.UTC()), nil
}

func DatePtr(d Date) *Date {
	return &d
}

func (d Date) IsZero() bool { return d.t.IsZero() }

func (d Date) Time() time.Time { return d.t }

func (d Date) String() string {
	if d.t.IsZero() {
		return ""
	}
	return d.t.Format(DateLayout)
}

func (d Date) Before(other Date) bool { return d.t.Before(other.t) }

func (d Date) After(other Date) bool { return d.t.After(other.t) }

// DaysUntil rounds up like a calendar countdown: a date later today is 1.
func (d Date) DaysUntil(now time.Time) int {
	diff := d.t.Sub(now)
	return int(math.Ceil(diff.Hours() / 24))
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*d = Date{}
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("model: date must be a string: %w", err)
	}
	if strings.TrimSpace(raw) == "" {
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

func (d *Date) clone() *Date {
	if d == nil {
		return nil
	}
	out := *d
	return &out
}
