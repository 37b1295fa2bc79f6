package timezone

import (
	"fmt"
	"time"
)

// Clock reports "now" in the campus location.
type Clock struct {
	location *time.Location
	now      func() time.Time
}

func NewClock(zone string) (*Clock, error) {
	location, err := time.LoadLocation(zone)
	if err != nil {
		return nil, fmt.Errorf("load location %q: %w", zone, err)
	}
	return &Clock{
		location: location,
		now:      time.Now,
	}, nil
}

// Fixed returns a clock that always reports t, in t's location.
func Fixed(t time.Time) *Clock {
	return &Clock{
		location: t.Location(),
		now:      func() time.Time { return t },
	}
}

func (c *Clock) Location() *time.Location {
	return c.location
}

func (c *Clock) Now() time.Time {
	return c.now().In(c.location)
}

// MinutesSinceMidnight returns wall clock minutes of t.
func MinutesSinceMidnight(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// Date truncates t to its civil date, at midnight UTC.
func Date(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
