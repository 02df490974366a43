package schedule

import (
	"time"
)

// =============================================================================
// DATE - Calendar day (installments are due on days, not instants)
// =============================================================================

type Date struct {
	Time time.Time
}

const DateLayout = "2006-01-02"

// Constructors
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf drops the clock part of t, keeping its calendar day.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

func Today() Date {
	return DateOf(time.Now())
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, err
	}
	return DateOf(t), nil
}

// Comparison
func (d Date) Before(other Date) bool { return d.Time.Before(other.Time) }
func (d Date) Equal(other Date) bool  { return d.Time.Equal(other.Time) }
func (d Date) After(other Date) bool  { return d.Time.After(other.Time) }

// Arithmetic
func (d Date) AddDays(n int) Date   { return Date{Time: d.Time.AddDate(0, 0, n)} }
func (d Date) AddMonths(n int) Date { return Date{Time: d.Time.AddDate(0, n, 0)} }

// EndOfMonth returns the last day of d's month.
func (d Date) EndOfMonth() Date {
	return EndOfMonth(d.Year(), d.Month())
}

// EndOfNextMonth returns the last day of the month following d's month.
func (d Date) EndOfNextMonth() Date {
	return EndOfMonth(d.Year(), d.Month()+1)
}

// Properties
func (d Date) Year() int         { return d.Time.Year() }
func (d Date) Month() time.Month { return d.Time.Month() }
func (d Date) Day() int          { return d.Time.Day() }
func (d Date) IsZero() bool      { return d.Time.IsZero() }

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Time.Format(DateLayout)
}

// Format renders the day with a caller layout; zero dates render empty.
func (d Date) Format(layout string) string {
	if d.IsZero() {
		return ""
	}
	return d.Time.Format(layout)
}

// =============================================================================
// TIME UTILITIES
// =============================================================================

// EndOfMonth normalises month overflow, so EndOfMonth(2024, 13) is 2025-01-31.
func EndOfMonth(year int, month time.Month) Date {
	return Date{Time: time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC)}
}
