// Package form implements the checks the booking page runs before anything
// is sent to the server: first-failure field validation, the selectable time
// options for a date and the phone input mask.
package form

import (
	"regexp"
	"strings"
	"time"

	"barbershop/pkg/hours"
)

var (
	emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRegex = regexp.MustCompile(`^\(\d{3}\) \d{3}-\d{4}$`)
)

const (
	MsgName    = "Please enter your name"
	MsgEmail   = "Please enter a valid email address"
	MsgPhone   = "Please enter a valid phone number"
	MsgService = "Please select a service"
	MsgDate    = "Please select a date"
	MsgTime    = "Please select a time"

	MsgFutureDate = "Please select a future date"
	MsgSunday     = "We are closed on Sundays. Please select another day."

	MsgSlotUnavailable = "This time slot is no longer available. Please select another time."
)

// Fields is the raw content of the booking form.
type Fields struct {
	Name    string
	Email   string
	Phone   string
	Service string
	Date    string
	Time    string
}

// FieldError names the first field that failed.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return e.Message
}

// Validate returns the first failing check, or nil.
func Validate(f Fields) *FieldError {
	name := strings.TrimSpace(f.Name)
	email := strings.TrimSpace(f.Email)
	phone := strings.TrimSpace(f.Phone)

	switch {
	case name == "":
		return &FieldError{Field: "name", Message: MsgName}
	case !emailRegex.MatchString(email):
		return &FieldError{Field: "email", Message: MsgEmail}
	case !phoneRegex.MatchString(phone):
		return &FieldError{Field: "phone", Message: MsgPhone}
	case f.Service == "":
		return &FieldError{Field: "service", Message: MsgService}
	case f.Date == "":
		return &FieldError{Field: "date", Message: MsgDate}
	case f.Time == "":
		return &FieldError{Field: "time", Message: MsgTime}
	}
	return nil
}

// TimeOption is one entry of the time selector.
type TimeOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Times is the selector state for a chosen date. When Closed is set the
// selector is disabled and Message explains why.
type Times struct {
	Closed  bool
	Message string
	Options []TimeOption
}

// AvailableTimes computes the selectable times for date as seen at now.
// Only past calendar days and closed weekdays are rejected; individual slots
// of the current day are left to the server.
func AvailableTimes(rules hours.Rules, date string, now time.Time) (Times, error) {
	day, err := rules.ParseDate(date)
	if err != nil {
		return Times{}, err
	}
	if day.Before(rules.StartOfDay(now)) {
		return Times{Closed: true, Message: MsgFutureDate}, nil
	}
	if rules.IsClosed(day.Weekday()) {
		return Times{Closed: true, Message: MsgSunday}, nil
	}

	grid := rules.Grid()
	options := make([]TimeOption, 0, len(grid))
	for _, clock := range grid {
		options = append(options, TimeOption{Value: clock, Label: hours.Label(clock)})
	}
	return Times{Options: options}, nil
}

// FormatPhone applies the "(XXX) XXX-XXXX" mask to whatever has been typed
// so far. Non-digits are dropped and input beyond ten digits is cut.
func FormatPhone(input string) string {
	var b strings.Builder
	for _, r := range input {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) > 10 {
		digits = digits[:10]
	}

	switch {
	case len(digits) >= 6:
		return "(" + digits[:3] + ") " + digits[3:6] + "-" + digits[6:]
	case len(digits) >= 3:
		return "(" + digits[:3] + ") " + digits[3:]
	default:
		return digits
	}
}

// Status is the single inline message slot of the form. Each Show replaces
// whatever was there before.
type Status struct {
	message string
}

func (s *Status) Show(message string) {
	s.message = message
}

func (s *Status) Clear() {
	s.message = ""
}

func (s *Status) Message() string {
	return s.message
}

func (s *Status) Visible() bool {
	return s.message != ""
}

// Check validates f and updates the status slot accordingly.
func (s *Status) Check(f Fields) bool {
	if err := Validate(f); err != nil {
		s.Show(err.Message)
		return false
	}
	s.Clear()
	return true
}
