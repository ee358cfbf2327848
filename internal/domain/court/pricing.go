package court

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"shuttlecourt/internal/domain/money"

	"github.com/google/uuid"
)

var (
	ErrNoMatchingRule = errors.New("no matching pricing rule")
	ErrAmbiguousRule  = errors.New("ambiguous pricing rule priority")
	ErrInvalidWindow  = errors.New("rule window start must be before end")
)

// PricingRule prices one time-of-day window on a set of weekdays.
// Priority breaks ties when several rules cover the same instant:
// the lowest value wins, equal lowest values are a configuration error.
type PricingRule struct {
	id          uuid.UUID
	days        Weekdays
	start       TimeOfDay
	end         TimeOfDay
	ratePerHour money.Money
	priority    int
}

func NewPricingRule(
	id uuid.UUID,
	days Weekdays,
	start, end TimeOfDay,
	ratePerHour money.Money,
	priority int,
) (PricingRule, error) {
	if start >= end {
		return PricingRule{}, ErrInvalidWindow
	}
	return PricingRule{
		id:          id,
		days:        days,
		start:       start,
		end:         end,
		ratePerHour: ratePerHour,
		priority:    priority,
	}, nil
}

func (r PricingRule) ID() uuid.UUID            { return r.id }
func (r PricingRule) Days() Weekdays           { return r.days }
func (r PricingRule) Start() TimeOfDay         { return r.start }
func (r PricingRule) End() TimeOfDay           { return r.end }
func (r PricingRule) RatePerHour() money.Money { return r.ratePerHour }
func (r PricingRule) Priority() int            { return r.priority }

func (r PricingRule) appliesOn(day time.Weekday) bool {
	return r.days.Contains(day)
}

// covers reports whether the rule window contains [from, to).
func (r PricingRule) covers(from, to TimeOfDay) bool {
	return r.start <= from && to <= r.end
}

// RateSegment is one priced sub-interval of a resolved slot.
type RateSegment struct {
	From        TimeOfDay
	To          TimeOfDay
	RatePerHour money.Money
}

// Charge bills the segment at its hourly rate, pro rata by minute.
func (s RateSegment) Charge() money.Money {
	minutes := int64(s.To - s.From)
	return money.Money(s.RatePerHour.Int64() * minutes / 60)
}

// ResolveRate resolves [from, to) on the given weekday against the court's
// rules. A slot spanning several rule windows is split into one segment per
// window; the caller sums the per-segment charges, never a blended rate.
// A sub-interval no rule covers fails with ErrNoMatchingRule, and two rules
// with the same lowest priority fail with ErrAmbiguousRule. Neither case is
// ever silently defaulted.
func (c *Court) ResolveRate(day time.Weekday, from, to TimeOfDay) ([]RateSegment, error) {
	if from >= to {
		return nil, fmt.Errorf("%w: %s-%s", ErrInvalidWindow, from, to)
	}

	candidates := make([]PricingRule, 0, len(c.rules))
	for _, r := range c.rules {
		if r.appliesOn(day) {
			candidates = append(candidates, r)
		}
	}

	cuts := boundaryCuts(candidates, from, to)

	segments := make([]RateSegment, 0, len(cuts)-1)
	for i := 0; i < len(cuts)-1; i++ {
		segFrom, segTo := cuts[i], cuts[i+1]

		rule, err := pickRule(candidates, segFrom, segTo)
		if err != nil {
			return nil, err
		}
		segments = append(segments, RateSegment{
			From:        segFrom,
			To:          segTo,
			RatePerHour: rule.ratePerHour,
		})
	}
	return segments, nil
}

// SlotCharge is the summed charge of all resolved segments.
func (c *Court) SlotCharge(day time.Weekday, from, to TimeOfDay) (money.Money, error) {
	segments, err := c.ResolveRate(day, from, to)
	if err != nil {
		return 0, err
	}
	var total money.Money
	for _, s := range segments {
		total = total.Add(s.Charge())
	}
	return total, nil
}

// boundaryCuts collects the elementary interval boundaries of [from, to):
// the query bounds plus every rule-window edge falling strictly inside.
func boundaryCuts(rules []PricingRule, from, to TimeOfDay) []TimeOfDay {
	cuts := []TimeOfDay{from, to}
	for _, r := range rules {
		for _, edge := range []TimeOfDay{r.start, r.end} {
			if edge > from && edge < to {
				cuts = append(cuts, edge)
			}
		}
	}
	sort.Slice(cuts, func(i, j int) bool { return cuts[i] < cuts[j] })

	deduped := cuts[:1]
	for _, c := range cuts[1:] {
		if c != deduped[len(deduped)-1] {
			deduped = append(deduped, c)
		}
	}
	return deduped
}

func pickRule(rules []PricingRule, from, to TimeOfDay) (PricingRule, error) {
	var best *PricingRule
	ambiguous := false
	for i := range rules {
		r := rules[i]
		if !r.covers(from, to) {
			continue
		}
		switch {
		case best == nil || r.priority < best.priority:
			best = &rules[i]
			ambiguous = false
		case r.priority == best.priority:
			ambiguous = true
		}
	}
	if best == nil {
		return PricingRule{}, fmt.Errorf("%w: uncovered interval %s-%s", ErrNoMatchingRule, from, to)
	}
	if ambiguous {
		return PricingRule{}, fmt.Errorf("%w: interval %s-%s at priority %d", ErrAmbiguousRule, from, to, best.priority)
	}
	return *best, nil
}
