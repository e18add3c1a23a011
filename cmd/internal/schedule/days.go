package schedule

import (
	"strings"
	"time"
)

// Days is a weekday set packed into a bitmask, Sunday = 1 << 0 through
// Saturday = 1 << 6. Any subset is valid, including None and All.
type Days uint8

const (
	Sunday Days = 1 << iota
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday

	None Days = 0
	All       = Sunday | Monday | Tuesday | Wednesday | Thursday | Friday | Saturday
)

var dayNames = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// Valid reports whether no bits outside the seven weekdays are set.
func (d Days) Valid() bool {
	return d <= All
}

// Has reports whether the given weekday is in the set. time.Weekday numbers
// Sunday as 0, which lines up with the Sunday = 1 << 0 encoding.
func (d Days) Has(w time.Weekday) bool {
	return d&(1<<uint(w)) != 0
}

func (d Days) String() string {
	if d == None {
		return "none"
	}
	var names []string
	for i := 0; i < 7; i++ {
		if d&(1<<uint(i)) != 0 {
			names = append(names, dayNames[i])
		}
	}
	return strings.Join(names, ",")
}
