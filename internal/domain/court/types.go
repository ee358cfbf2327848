package court

import (
	"errors"
	"fmt"
	"time"
)

type Status string

const (
	StatusActive      Status = "active"
	StatusMaintenance Status = "maintenance"
	StatusInactive    Status = "inactive"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusMaintenance, StatusInactive:
		return true
	default:
		return false
	}
}

var ErrInvalidTimeOfDay = errors.New("invalid time of day")

// TimeOfDay is minutes since midnight, in [0, 1440].
// 1440 is allowed so a window can end exactly at midnight.
type TimeOfDay int

func NewTimeOfDay(hour, minute int) (TimeOfDay, error) {
	if hour < 0 || hour > 24 || minute < 0 || minute > 59 || (hour == 24 && minute != 0) {
		return 0, ErrInvalidTimeOfDay
	}
	return TimeOfDay(hour*60 + minute), nil
}

func TimeOfDayFrom(t time.Time) TimeOfDay {
	return TimeOfDay(t.Hour()*60 + t.Minute())
}

func (t TimeOfDay) Minutes() int {
	return int(t)
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// Weekdays is a day-of-week set encoded as a bitmask (bit 0 = Sunday).
type Weekdays uint8

func NewWeekdays(days ...time.Weekday) Weekdays {
	var w Weekdays
	for _, d := range days {
		w |= 1 << uint(d)
	}
	return w
}

func (w Weekdays) Contains(d time.Weekday) bool {
	return w&(1<<uint(d)) != 0
}

func (w Weekdays) IsEmpty() bool {
	return w == 0
}
