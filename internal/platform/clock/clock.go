package clock

import "time"

// Clock abstracts time to keep the tracker deterministic in tests.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in the local zone. Period boundaries
// (midnight, Monday, the 1st) follow the user's calendar, not UTC.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().Round(0)
}

// Fixed always reports the same instant.
type Fixed time.Time

func (f Fixed) Now() time.Time {
	return time.Time(f)
}
