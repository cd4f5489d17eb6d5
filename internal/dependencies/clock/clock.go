package clock

import "time"

// Clock provides the current time; tests substitute a fixed clock
type Clock interface {
	Now() time.Time
}

// RealClock reads the system clock
type RealClock struct{}

// New creates a new RealClock
func New() *RealClock {
	return &RealClock{}
}

// Now returns the current time in UTC, without the monotonic reading,
// so timestamps compare equal after a JSON round trip through storage.
func (c *RealClock) Now() time.Time {
	return time.Now().UTC().Round(0)
}
