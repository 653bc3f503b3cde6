package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the calendar-date form used for scheduled dates and deadlines.
const DateLayout = "2006-01-02"

var ErrInvalidClock = errors.New("model: invalid time of day")

const minutesPerDay = 24 * 60

// Clock is a time of day in minutes after midnight.
type Clock int

func NewClock(hour, minute int) Clock {
	return Clock(hour*60 + minute)
}

// ParseClock accepts "HH:MM" with a 24-hour clock.
func ParseClock(raw string) (Clock, error) {
	s := strings.TrimSpace(raw)
	h, m, ok := strings.Cut(s, ":")
	if !ok || len(m) != 2 || len(h) == 0 || len(h) > 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, raw)
	}
	hour, err := strconv.Atoi(h)
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, raw)
	}
	minute, err := strconv.Atoi(m)
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, raw)
	}
	return NewClock(hour, minute), nil
}

func MustClock(raw string) Clock {
	c, err := ParseClock(raw)
	if err != nil {
		panic(err)
	}
	return c
}

func (c Clock) IsValid() bool {
	return c >= 0 && c < minutesPerDay
}

func (c Clock) Hour() int   { return int(c) / 60 }
func (c Clock) Minute() int { return int(c) % 60 }

// Add wraps around midnight.
func (c Clock) Add(minutes int) Clock {
	v := (int(c) + minutes) % minutesPerDay
	if v < 0 {
		v += minutesPerDay
	}
	return Clock(v)
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

// In is the instant the clock reads on the calendar day of date, as a wall
// clock in loc. A nil loc means UTC.
func (c Clock) In(date time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, mo, d := date.Date()
	return time.Date(y, mo, d, c.Hour(), c.Minute(), 0, 0, loc)
}

func ClockOf(t time.Time) Clock {
	return NewClock(t.Hour(), t.Minute())
}

func (c Clock) MarshalText() ([]byte, error) {
	if !c.IsValid() {
		return nil, fmt.Errorf("%w: %d minutes", ErrInvalidClock, int(c))
	}
	return []byte(c.String()), nil
}

func (c *Clock) UnmarshalText(b []byte) error {
	v, err := ParseClock(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// DateOf is the calendar day of t in t's own location, as a UTC midnight
// value. Use Clock.In to turn a date back into an instant.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ParseDate(raw string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, &InvalidInputError{Field: "date", Reason: fmt.Sprintf("expected YYYY-MM-DD, got %q", raw), Err: err}
	}
	return t, nil
}

func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}
