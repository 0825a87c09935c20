package model

import (
	"fmt"
	"time"
)

// DayLayout renders a Day as an ISO 8601 calendar date. Every rendered Day
// is exactly DayWidth bytes, which key prefix matching depends on.
const (
	DayLayout = "2006-01-02"
	DayWidth  = len(DayLayout)
)

// Day is a calendar date without a time of day or location.
// The zero value is not a valid date; use DayOf or ParseDay.
type Day struct {
	Year  int
	Month time.Month
	Day   int
}

// DayOf returns the calendar date of t in t's location.
func DayOf(t time.Time) Day {
	y, m, d := t.Date()
	return Day{Year: y, Month: m, Day: d}
}

// ParseDay parses a canonical YYYY-MM-DD string. Non-canonical spellings
// (missing zero padding, out-of-range days) are rejected so that
// ParseDay(s).String() == s always holds.
func ParseDay(s string) (Day, error) {
	if len(s) != DayWidth {
		return Day{}, fmt.Errorf("parse day %q: want %s", s, DayLayout)
	}
	t, err := time.Parse(DayLayout, s)
	if err != nil {
		return Day{}, fmt.Errorf("parse day %q: %w", s, err)
	}
	d := DayOf(t)
	if d.String() != s {
		return Day{}, fmt.Errorf("parse day %q: not canonical", s)
	}
	return d, nil
}

// Time returns midnight UTC of d.
func (d Day) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// AddDays returns d shifted by n calendar days.
func (d Day) AddDays(n int) Day {
	return DayOf(d.Time().AddDate(0, 0, n))
}

func (d Day) Weekday() time.Weekday { return d.Time().Weekday() }

// Representable reports whether d renders in exactly DayWidth bytes, which
// holds for years 0000 through 9999.
func (d Day) Representable() bool { return d.Year >= 0 && d.Year <= 9999 }

// Before reports whether d is strictly earlier than o.
func (d Day) Before(o Day) bool {
	if d.Year != o.Year {
		return d.Year < o.Year
	}
	if d.Month != o.Month {
		return d.Month < o.Month
	}
	return d.Day < o.Day
}

func (d Day) String() string { return d.Time().Format(DayLayout) }

// Short renders d the way the week view labels its rows, e.g. "06/01".
func (d Day) Short() string { return d.Time().Format("01/02") }

func (d Day) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *Day) UnmarshalText(b []byte) error {
	p, err := ParseDay(string(b))
	if err != nil {
		return err
	}
	*d = p
	return nil
}
