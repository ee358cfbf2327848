package booking

// Status is the lifecycle state of a booking.
type Status string

const (
	StatusBooked     Status = "booked"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusBooked, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// bookingTransitions is the only source of truth for legal booking moves.
var bookingTransitions = map[Status][]Status{
	StatusBooked:     {StatusInProgress, StatusCompleted, StatusCancelled},
	StatusInProgress: {StatusCompleted},
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range bookingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// OccurrenceStatus is the lifecycle state of one concrete time slot.
type OccurrenceStatus string

const (
	OccurrenceScheduled  OccurrenceStatus = "scheduled"
	OccurrenceInProgress OccurrenceStatus = "in_progress"
	OccurrenceCompleted  OccurrenceStatus = "completed"
	OccurrenceCancelled  OccurrenceStatus = "cancelled"
)

func (s OccurrenceStatus) String() string {
	return string(s)
}

func (s OccurrenceStatus) IsValid() bool {
	switch s {
	case OccurrenceScheduled, OccurrenceInProgress, OccurrenceCompleted, OccurrenceCancelled:
		return true
	default:
		return false
	}
}

func (s OccurrenceStatus) IsTerminal() bool {
	return s == OccurrenceCompleted || s == OccurrenceCancelled
}

// A started occurrence can only be completed, never cancelled.
var occurrenceTransitions = map[OccurrenceStatus][]OccurrenceStatus{
	OccurrenceScheduled:  {OccurrenceInProgress, OccurrenceCompleted, OccurrenceCancelled},
	OccurrenceInProgress: {OccurrenceCompleted},
}

func (s OccurrenceStatus) CanTransitionTo(next OccurrenceStatus) bool {
	for _, allowed := range occurrenceTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}
