package booking

import "time"

// DateOnly truncates a timestamp to a calendar date at UTC midnight. All
// booking dates are stored and compared in this form.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Nights returns the number of billable nights between two dates, never less
// than one.
func Nights(checkIn, checkOut time.Time) int64 {
	nights := int64(DateOnly(checkOut).Sub(DateOnly(checkIn)).Hours() / 24)
	if nights < 1 {
		return 1
	}
	return nights
}

// Overlaps reports whether two half-open date ranges [aStart, aEnd) and
// [bStart, bEnd) intersect. Adjacent ranges sharing only an endpoint do not
// overlap: a checkout on day N and a check-in on day N are compatible.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}
