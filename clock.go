package multipageform

import "time"

// Clock supplies the creation timestamp for new records
type Clock interface {
	Now() time.Time
}

// SystemClock reports the wall clock in UTC
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// ClockFunc adapts a function to Clock
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time {
	return f().UTC()
}
