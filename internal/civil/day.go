// Package civil converts UTC instants to calendar days in the business's
// fixed timezone. The salon operates in a single timezone, so a fixed
// offset is used instead of a DST-aware location; the conversion itself is
// exact (instant shifted, then the calendar date read off), never a naive
// slice of an RFC 3339 string.
package civil

import "time"

// Day is a calendar date in "YYYY-MM-DD" form. Zero-padded ISO dates
// compare correctly as strings, so Day supports ordered comparison.
type Day string

// Location builds the fixed business timezone from a whole-hour UTC offset.
func Location(offsetHours int) *time.Location {
	return time.FixedZone("business", offsetHours*3600)
}

// DayOf returns the civil day the instant falls on in loc.
func DayOf(t time.Time, loc *time.Location) Day {
	return Day(t.In(loc).Format("2006-01-02"))
}

// Today returns the current civil day in loc.
func Today(now time.Time, loc *time.Location) Day {
	return DayOf(now, loc)
}

// Before reports whether d is strictly earlier than other.
func (d Day) Before(other Day) bool {
	return d < other
}

// After reports whether d is strictly later than other.
func (d Day) After(other Day) bool {
	return d > other
}

// IsZero reports whether the day is unset.
func (d Day) IsZero() bool {
	return d == ""
}
