package voucher

import (
	"time"

	"github.com/google/uuid"
)

// TimeRule gates redemption to a day (specific date or weekday) and a
// time-of-day window. Unset fields act as wildcards for that dimension.
type TimeRule struct {
	id           uuid.UUID
	dayOfWeek    *time.Weekday
	specificDate *time.Time
	startMinute  *int
	endMinute    *int
}

func NewTimeRule(id uuid.UUID, dayOfWeek *time.Weekday, specificDate *time.Time, startMinute, endMinute *int) TimeRule {
	return TimeRule{
		id:           id,
		dayOfWeek:    dayOfWeek,
		specificDate: specificDate,
		startMinute:  startMinute,
		endMinute:    endMinute,
	}
}

func (r TimeRule) ID() uuid.UUID            { return r.id }
func (r TimeRule) DayOfWeek() *time.Weekday { return r.dayOfWeek }
func (r TimeRule) SpecificDate() *time.Time { return r.specificDate }
func (r TimeRule) StartMinute() *int        { return r.startMinute }
func (r TimeRule) EndMinute() *int          { return r.endMinute }

// Matches checks the day dimension (specific date OR weekday, either
// suffices) and the inclusive time window.
func (r TimeRule) Matches(now time.Time) bool {
	dayOK := r.dayOfWeek == nil && r.specificDate == nil
	if r.specificDate != nil && sameDate(*r.specificDate, now) {
		dayOK = true
	}
	if r.dayOfWeek != nil && *r.dayOfWeek == now.Weekday() {
		dayOK = true
	}
	if !dayOK {
		return false
	}

	minute := now.Hour()*60 + now.Minute()
	if r.startMinute != nil && minute < *r.startMinute {
		return false
	}
	if r.endMinute != nil && minute > *r.endMinute {
		return false
	}
	return true
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.In(a.Location()).Date()
	return ay == by && am == bm && ad == bd
}

// UserRule gates redemption by customer attributes; a rule matches when any
// of its configured conditions holds.
type UserRule struct {
	id            uuid.UUID
	newCustomer   *bool
	membershipID  *uuid.UUID
	customerIDs   []uuid.UUID
}

func NewUserRule(id uuid.UUID, newCustomer *bool, membershipID *uuid.UUID, customerIDs []uuid.UUID) UserRule {
	return UserRule{
		id:           id,
		newCustomer:  newCustomer,
		membershipID: membershipID,
		customerIDs:  customerIDs,
	}
}

func (r UserRule) ID() uuid.UUID             { return r.id }
func (r UserRule) NewCustomer() *bool        { return r.newCustomer }
func (r UserRule) MembershipID() *uuid.UUID  { return r.membershipID }
func (r UserRule) CustomerIDs() []uuid.UUID  { return r.customerIDs }

func (r UserRule) Matches(customerID uuid.UUID, isNewCustomer bool, membershipID *uuid.UUID) bool {
	if r.newCustomer != nil && *r.newCustomer == isNewCustomer {
		return true
	}
	if r.membershipID != nil && membershipID != nil && *r.membershipID == *membershipID {
		return true
	}
	for _, id := range r.customerIDs {
		if id == customerID {
			return true
		}
	}
	return false
}
