package calendar

import "time"

// BusinessDayCutoff is the local hour before which a moment still belongs to
// the previous business day.
const BusinessDayCutoff = 7

// Clock supplies the current time. Components take a Clock instead of
// calling time.Now so "today" can be pinned in tests.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in a fixed location.
type SystemClock struct {
	Location *time.Location
}

// Now returns the current time in the clock's location (Local if unset).
func (c SystemClock) Now() time.Time {
	if c.Location == nil {
		return time.Now()
	}
	return time.Now().In(c.Location)
}

// FixedClock always returns the same instant.
type FixedClock time.Time

func (c FixedClock) Now() time.Time { return time.Time(c) }

// BusinessDate returns now's calendar date in now's location, or the previous
// date when the local hour is before BusinessDayCutoff.
func BusinessDate(now time.Time) Date {
	d := FromTime(now)
	if now.Hour() < BusinessDayCutoff {
		return d.AddDays(-1)
	}
	return d
}

// Today is BusinessDate applied to the clock's current time.
func Today(c Clock) Date { return BusinessDate(c.Now()) }
