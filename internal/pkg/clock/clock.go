// Package clock abstracts wall-clock reads so slot validation, late-fee
// math and sweep deadlines can run against a pinned instant in tests.
package clock

import "time"

type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func NewRealClock() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now()
}

// MockClock is a hand-adjustable Clock. Not safe for concurrent use.
type MockClock struct {
	now time.Time
}

func NewMockClock(start time.Time) *MockClock {
	return &MockClock{now: start}
}

func (c *MockClock) Now() time.Time {
	return c.now
}

func (c *MockClock) Set(t time.Time) {
	c.now = t
}

// Add advances the clock, e.g. to push a booking past its scheduled end.
func (c *MockClock) Add(d time.Duration) {
	c.now = c.now.Add(d)
}
