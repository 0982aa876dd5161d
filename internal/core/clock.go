package core

import "time"

// Clock supplies current time. The premium gate and the premium list
// filters take their notion of "now" from here so tests can pin it.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// FixedClock always returns the same instant. Test helper.
type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time { return c.T }
