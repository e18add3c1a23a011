package schedule

import "errors"

// Every booking and cancellation failure is deterministic input validation;
// the service layer maps these onto API error responses.
var (
	ErrSelfBooking         = errors.New("cannot book a meeting with yourself")
	ErrInvalidInterval     = errors.New("meeting must start before it ends")
	ErrOutsideAvailability = errors.New("interval is outside the availability window")
	ErrOverlap             = errors.New("interval overlaps an existing meeting")
	ErrMeetingNotFound     = errors.New("no meeting matches the given date and times")
	ErrNotAttendee         = errors.New("meeting was booked by a different attendee")
)

// Interval is a half-open [StartSeconds, EndSeconds) slice of one day.
type Interval struct {
	StartSeconds int
	EndSeconds   int
}

// Overlaps reports whether two half-open intervals intersect. Intervals that
// merely touch ([9,10) and [10,11)) do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && bStart < aEnd
}

// CheckBooking validates a proposed meeting [start, end) on date for owner's
// calendar, requested by attendee, against the owner's availability and the
// meetings already booked on that date. It returns nil when the slot may be
// appended, otherwise the first failing rule in order: self-booking, interval
// sanity, availability containment, overlap.
func CheckBooking(ownerID, attendeeID int, avail Availability, date Date, start, end TimeOfDay, booked []Interval) error {
	if attendeeID == ownerID {
		return ErrSelfBooking
	}

	s, e := start.SecondsOfDay(), end.SecondsOfDay()
	if s >= e {
		return ErrInvalidInterval
	}

	if !avail.Contains(date.Weekday(), s, e) {
		return ErrOutsideAvailability
	}

	for _, iv := range booked {
		if Overlaps(s, e, iv.StartSeconds, iv.EndSeconds) {
			return ErrOverlap
		}
	}
	return nil
}

// CheckCancellation validates that a cancellation may proceed: the exact
// (date, start, end) tuple resolved to a meeting, and the caller is the
// attendee who booked it.
func CheckCancellation(callerID, meetingAttendeeID int, found bool) error {
	if !found {
		return ErrMeetingNotFound
	}
	if meetingAttendeeID != callerID {
		return ErrNotAttendee
	}
	return nil
}
