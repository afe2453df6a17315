package timetable

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Clock is a time of day on the single service day, in minutes since midnight.
type Clock int

func NewClock(hour, minute int) Clock {
	return Clock(hour*60 + minute)
}

// ParseClock accepts "15:04" or "1504".
func ParseClock(s string) (Clock, error) {
	raw := strings.ReplaceAll(strings.TrimSpace(s), ":", "")
	if len(raw) != 4 {
		return 0, fmt.Errorf("invalid time format: %q", s)
	}
	h, err := strconv.Atoi(raw[:2])
	if err != nil {
		return 0, fmt.Errorf("invalid hour in %q: %w", s, err)
	}
	m, err := strconv.Atoi(raw[2:])
	if err != nil {
		return 0, fmt.Errorf("invalid minute in %q: %w", s, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("time out of range: %q", s)
	}
	return NewClock(h, m), nil
}

// ClockOf drops the date, seconds and below from t.
func ClockOf(t time.Time) Clock {
	return NewClock(t.Hour(), t.Minute())
}

func (c Clock) Hour() int {
	return int(c) / 60
}

func (c Clock) Minute() int {
	return int(c) % 60
}

func (c Clock) Add(minutes int) Clock {
	return c + Clock(minutes)
}

// Sub returns c - other in minutes.
func (c Clock) Sub(other Clock) int {
	return int(c - other)
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

func (c Clock) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}
