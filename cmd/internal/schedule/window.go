package schedule

import "time"

// Availability is a recurring weekly booking window: on each weekday in
// Days, the window opens EarliestMinutes after midnight and stays open for
// DurationMinutes. EarliestMinutes + DurationMinutes may exceed one day, in
// which case the window runs past midnight and its tail lands on the
// following calendar day.
type Availability struct {
	Days            Days
	EarliestMinutes int
	DurationMinutes int
}

// Valid reports whether the window parameters are in range. A zero
// DurationMinutes is allowed and means the owner accepts no meetings.
func (a Availability) Valid() bool {
	return a.Days.Valid() &&
		a.EarliestMinutes >= 0 && a.EarliestMinutes < minutesPerDay &&
		a.DurationMinutes >= 0
}

// Contains reports whether the half-open interval [startSec, endSec) on the
// given weekday lies entirely inside the availability window. All rollover
// arithmetic lives here: when the window crosses midnight, the segment after
// midnight belongs to the previous availability day, so an early-morning
// interval on weekday w passes if w-1 is an available day and the interval
// fits the rolled-over tail.
func (a Availability) Contains(w time.Weekday, startSec, endSec int) bool {
	open := a.EarliestMinutes * 60
	until := open + a.DurationMinutes*60

	if until <= secondsPerDay {
		return a.Days.Has(w) && startSec >= open && endSec <= until
	}

	// Window rolls over midnight: [open, 24h) on the available day itself,
	// [0, until-24h) on the day after.
	if a.Days.Has(w) && startSec >= open && endSec <= secondsPerDay {
		return true
	}
	previous := (w + 6) % 7
	return a.Days.Has(previous) && endSec <= until-secondsPerDay
}
