package utils

import "time"

// Clock abstracts time retrieval so business logic is deterministic in tests.
type Clock interface {
	Now() time.Time
}

// RealClock returns the actual current time.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// Today returns the current civil date of clock in loc.
func Today(clock Clock, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return CivilDate(clock.Now().In(loc))
}
