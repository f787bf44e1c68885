// Package calendar holds the date arithmetic shared by the ledger, the
// expense validator and the reset scheduler. A date is a time.Time at
// 00:00 UTC; the wall-clock is only consulted through a Clock.
package calendar

import (
	"fmt"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

type Clock interface {
	Now() time.Time
}

// SystemClock reads the process clock and interprets it in Location.
type SystemClock struct {
	Location *time.Location
}

func (c SystemClock) Now() time.Time {
	loc := c.Location
	if loc == nil {
		loc = time.UTC
	}
	return time.Now().In(loc)
}

// FixedClock always reports the same instant.
type FixedClock struct {
	At time.Time
}

func (c FixedClock) Now() time.Time {
	return c.At
}

// Today returns the calendar day the clock is currently in.
func Today(clock Clock) time.Time {
	return DateOf(clock.Now())
}

// DateOf drops the time of day, keeping the year/month/day as seen in t's
// own location.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func StartOfMonth(d time.Time) time.Time {
	y, m, _ := d.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

// NextMonthStart is the first day of the month following d's month.
func NextMonthStart(d time.Time) time.Time {
	return StartOfMonth(d).AddDate(0, 1, 0)
}

// Period is a half-open date interval [Start, End).
type Period struct {
	Start time.Time
	End   time.Time
}

func (p Period) Contains(d time.Time) bool {
	d = DateOf(d)
	return !d.Before(p.Start) && d.Before(p.End)
}

func (p Period) String() string {
	return fmt.Sprintf("[%s, %s)", p.Start.Format(DateLayout), p.End.Format(DateLayout))
}

// MonthOf returns the calendar month containing d.
func MonthOf(d time.Time) Period {
	start := StartOfMonth(d)
	return Period{Start: start, End: start.AddDate(0, 1, 0)}
}

// ParseDate accepts YYYY-MM-DD and returns the date at 00:00 UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}

// StartOfWeek returns the Monday on or before d.
func StartOfWeek(d time.Time) time.Time {
	d = DateOf(d)
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}
