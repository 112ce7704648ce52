// Package hours holds the shop's business-hours rule: which (date, time)
// pairs are bookable. Both the form validator and the booking service
// evaluate slots through the same Rules value.
package hours

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"

	DefaultOpening  = 9 * 60
	DefaultLastSlot = 17*60 + 30
	DefaultStep     = 30
)

var (
	ErrMalformedDate = errors.New("date must be in YYYY-MM-DD format")
	ErrMalformedTime = errors.New("time must be in HH:MM format")
	ErrPast          = errors.New("slot is not in the future")
	ErrClosedDay     = errors.New("shop is closed on this day")
	ErrOutsideHours  = errors.New("slot is outside business hours")
	ErrOffGrid       = errors.New("slot does not start on a booking boundary")
)

// Slot is a bookable (date, time-of-day) pair in canonical form.
type Slot struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

// Key is the uniqueness key of a slot.
func (s Slot) Key() string {
	return s.Date + "T" + s.Time
}

func (s Slot) String() string {
	return s.Date + " " + s.Time
}

// Rules describes opening hours in minutes after midnight.
type Rules struct {
	Location   *time.Location
	Opening    int
	LastSlot   int
	Step       int
	ClosedDays []time.Weekday
}

// Default returns Monday-Saturday, 09:00 to 17:30 (last slot start), every
// 30 minutes.
func Default(loc *time.Location) Rules {
	if loc == nil {
		loc = time.Local
	}
	return Rules{
		Location:   loc,
		Opening:    DefaultOpening,
		LastSlot:   DefaultLastSlot,
		Step:       DefaultStep,
		ClosedDays: []time.Weekday{time.Sunday},
	}
}

// ParseDate parses a calendar date at midnight in the rules' location.
func (r Rules) ParseDate(date string) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, strings.TrimSpace(date), r.Location)
	if err != nil {
		return time.Time{}, ErrMalformedDate
	}
	return d, nil
}

// ParseClock accepts "H:MM" or "HH:MM" on a 24-hour clock and returns the
// minutes after midnight.
func ParseClock(clock string) (int, error) {
	h, m, ok := strings.Cut(strings.TrimSpace(clock), ":")
	if !ok || len(h) < 1 || len(h) > 2 || len(m) != 2 || !digits(h) || !digits(m) {
		return 0, ErrMalformedTime
	}
	hour, err := strconv.Atoi(h)
	if err != nil || hour < 0 || hour > 23 {
		return 0, ErrMalformedTime
	}
	minute, err := strconv.Atoi(m)
	if err != nil || minute < 0 || minute > 59 {
		return 0, ErrMalformedTime
	}
	return hour*60 + minute, nil
}

func digits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// FormatClock renders minutes after midnight as "HH:MM".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// Label renders "HH:MM" as the 12-hour label shown to customers.
func Label(clock string) string {
	minutes, err := ParseClock(clock)
	if err != nil {
		return clock
	}
	hour, minute := minutes/60, minutes%60
	period := "AM"
	if hour >= 12 {
		period = "PM"
	}
	if hour > 12 {
		hour -= 12
	}
	return fmt.Sprintf("%d:%02d %s", hour, minute, period)
}

// Resolve parses a date and time into a canonical Slot and its instant.
func (r Rules) Resolve(date, clock string) (Slot, time.Time, error) {
	day, err := r.ParseDate(date)
	if err != nil {
		return Slot{}, time.Time{}, err
	}
	minutes, err := ParseClock(clock)
	if err != nil {
		return Slot{}, time.Time{}, err
	}
	at := time.Date(day.Year(), day.Month(), day.Day(), minutes/60, minutes%60, 0, 0, r.Location)
	return Slot{Date: day.Format(DateLayout), Time: FormatClock(minutes)}, at, nil
}

// Check reports why the instant is not bookable at now, or nil.
func (r Rules) Check(at, now time.Time) error {
	if !at.After(now) {
		return ErrPast
	}
	at = at.In(r.Location)
	if r.IsClosed(at.Weekday()) {
		return ErrClosedDay
	}
	minutes := at.Hour()*60 + at.Minute()
	if minutes < r.Opening || minutes > r.LastSlot {
		return ErrOutsideHours
	}
	if r.Step > 0 && (minutes-r.Opening)%r.Step != 0 {
		return ErrOffGrid
	}
	return nil
}

// Validate resolves and checks a slot in one step.
func (r Rules) Validate(date, clock string, now time.Time) (Slot, error) {
	slot, at, err := r.Resolve(date, clock)
	if err != nil {
		return Slot{}, err
	}
	if err := r.Check(at, now); err != nil {
		return slot, err
	}
	return slot, nil
}

func (r Rules) IsClosed(day time.Weekday) bool {
	for _, closed := range r.ClosedDays {
		if closed == day {
			return true
		}
	}
	return false
}

// Grid lists every slot start of an open day, in order.
func (r Rules) Grid() []string {
	step := r.Step
	if step <= 0 {
		step = DefaultStep
	}
	var grid []string
	for m := r.Opening; m <= r.LastSlot; m += step {
		grid = append(grid, FormatClock(m))
	}
	return grid
}

// StartOfDay truncates t to midnight in the rules' location.
func (r Rules) StartOfDay(t time.Time) time.Time {
	t = t.In(r.Location)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, r.Location)
}
