package schedule

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	minutesPerDay = 24 * 60
	secondsPerDay = 24 * 60 * 60
)

// TimeOfDay is a wall-clock time within one day. The wire format is
// "HH:MM" or "HH:MM:SS"; seconds default to zero.
type TimeOfDay struct {
	Hour   int
	Minute int
	Second int
}

// ParseTimeOfDay parses "HH:MM" or "HH:MM:SS".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return TimeOfDay{}, fmt.Errorf("invalid time of day %q", s)
	}

	var fields [3]int
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			return TimeOfDay{}, fmt.Errorf("invalid time of day %q", s)
		}
		fields[i] = n
	}

	t := TimeOfDay{Hour: fields[0], Minute: fields[1], Second: fields[2]}
	if !t.Valid() {
		return TimeOfDay{}, fmt.Errorf("time of day %q out of range", s)
	}
	return t, nil
}

// FromSecondsOfDay is the inverse of SecondsOfDay.
func FromSecondsOfDay(sec int) TimeOfDay {
	return TimeOfDay{
		Hour:   sec / 3600,
		Minute: sec / 60 % 60,
		Second: sec % 60,
	}
}

func (t TimeOfDay) Valid() bool {
	return t.Hour >= 0 && t.Hour < 24 &&
		t.Minute >= 0 && t.Minute < 60 &&
		t.Second >= 0 && t.Second < 60
}

func (t TimeOfDay) SecondsOfDay() int {
	return t.Hour*3600 + t.Minute*60 + t.Second
}

func (t TimeOfDay) String() string {
	if t.Second == 0 {
		return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
	}
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}

// Date is a caller-supplied calendar date. The engine never derives dates;
// it only validates them and asks for their weekday.
type Date struct {
	Year  int
	Month int
	Day   int
}

// Validate rejects impossible dates (month 13, February 30, ...) by
// round-tripping through time.Date, which normalizes out-of-range components.
func (d Date) Validate() error {
	if d.Year < 1 || d.Month < 1 || d.Month > 12 || d.Day < 1 || d.Day > 31 {
		return errors.New("invalid date")
	}
	t := time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC)
	if t.Year() != d.Year || int(t.Month()) != d.Month || t.Day() != d.Day {
		return errors.New("invalid date")
	}
	return nil
}

func (d Date) Weekday() time.Weekday {
	return time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC).Weekday()
}
