// Package aitime resolves relative dates and clock times for the action pipeline.
// Every value is computed against a caller-supplied "now" so results are reproducible.
package aitime

import "time"

// Clock supplies the reference instant of one pipeline run.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in a fixed location.
type SystemClock struct {
	Location *time.Location
}

// Now returns the current time in c.Location (time.Local when unset).
func (c SystemClock) Now() time.Time {
	if c.Location == nil {
		return time.Now()
	}
	return time.Now().In(c.Location)
}

// FixedClock always returns the same instant. Useful in tests.
type FixedClock struct {
	At time.Time
}

// Now returns c.At.
func (c FixedClock) Now() time.Time {
	return c.At
}

var (
	_ Clock = SystemClock{}
	_ Clock = FixedClock{}
)
