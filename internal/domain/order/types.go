package order

// Status is the financial lifecycle of a booking's order.
type Status string

const (
	StatusPending         Status = "pending"
	StatusAwaitingPayment Status = "awaiting_payment"
	StatusPaid            Status = "paid"
	StatusCancelled       Status = "cancelled"
	StatusExpired         Status = "expired"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusAwaitingPayment, StatusPaid, StatusCancelled, StatusExpired:
		return true
	default:
		return false
	}
}

func (s Status) IsTerminal() bool {
	switch s {
	case StatusPaid, StatusCancelled, StatusExpired:
		return true
	default:
		return false
	}
}

// AwaitingPayment -> Pending is the compensation path when the external
// payment hold cannot be created after settlement.
var orderTransitions = map[Status][]Status{
	StatusPending:         {StatusAwaitingPayment, StatusCancelled},
	StatusAwaitingPayment: {StatusPaid, StatusExpired, StatusPending},
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}
