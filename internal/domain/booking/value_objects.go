package booking

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidSlot  = errors.New("start time must be before end time")
	ErrSlotInPast   = errors.New("slot cannot start in the past")
	ErrSlotTooShort = errors.New("slot is shorter than the minimum duration")
)

const MinSlotDuration = 30 * time.Minute

type Slot struct {
	start time.Time
	end   time.Time
}

func NewSlot(start, end time.Time) (Slot, error) {
	if !start.Before(end) {
		return Slot{}, ErrInvalidSlot
	}
	if end.Sub(start) < MinSlotDuration {
		return Slot{}, ErrSlotTooShort
	}
	return Slot{start: start, end: end}, nil
}

// ValidateNotPast rejects slots already started at the given instant.
func (s Slot) ValidateNotPast(now time.Time) error {
	if s.start.Before(now) {
		return ErrSlotInPast
	}
	return nil
}

func (s Slot) Start() time.Time {
	return s.start
}

func (s Slot) End() time.Time {
	return s.end
}

func (s Slot) Duration() time.Duration {
	return s.end.Sub(s.start)
}

// Overlaps uses half-open interval semantics: [a, b) and [b, c) do not clash.
func (s Slot) Overlaps(other Slot) bool {
	return s.start.Before(other.end) && s.end.After(other.start)
}

func (s Slot) ToTstzrange() string {
	return fmt.Sprintf("[%s,%s)", s.start.Format(time.RFC3339), s.end.Format(time.RFC3339))
}

type Note struct {
	value string
}

func NewNote(value string) Note {
	return Note{value: value}
}

func (n Note) String() string {
	return n.value
}

func (n Note) IsEmpty() bool {
	return n.value == ""
}
