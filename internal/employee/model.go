package employee

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/appointly/appointment-backend/internal/pkg/apperror"
)

var (
	ErrNotFound         = apperror.New(http.StatusNotFound, "employee not found")
	ErrNameRequired     = apperror.New(http.StatusBadRequest, "employee name is required")
	ErrEmailRequired    = apperror.New(http.StatusBadRequest, "employee email is required")
	ErrInvalidSchedule  = apperror.New(http.StatusBadRequest, "invalid work schedule")
	ErrInvalidTimeRange = apperror.New(http.StatusBadRequest, "time range must be HH:MM-HH:MM with start before end")
)

// TimeRange is a [start, end) slice of a day in minutes from midnight.
// It marshals as "HH:MM-HH:MM".
type TimeRange struct {
	StartMinutes int
	EndMinutes   int
}

func (r TimeRange) String() string {
	return fmt.Sprintf("%02d:%02d-%02d:%02d",
		r.StartMinutes/60, r.StartMinutes%60, r.EndMinutes/60, r.EndMinutes%60)
}

func (r TimeRange) MarshalJSON() ([]byte, error) {
	return []byte(`"` + r.String() + `"`), nil
}

func (r *TimeRange) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	parsed, err := ParseTimeRange(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// ParseTimeRange parses "HH:MM-HH:MM" into a TimeRange.
func ParseTimeRange(s string) (TimeRange, error) {
	parts := strings.Split(s, "-")
	if len(parts) != 2 {
		return TimeRange{}, ErrInvalidTimeRange
	}
	start, err := parseMinuteOfDay(parts[0])
	if err != nil {
		return TimeRange{}, err
	}
	end, err := parseMinuteOfDay(parts[1])
	if err != nil {
		return TimeRange{}, err
	}
	if start >= end {
		return TimeRange{}, ErrInvalidTimeRange
	}
	return TimeRange{StartMinutes: start, EndMinutes: end}, nil
}

func parseMinuteOfDay(s string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(strings.TrimSpace(s), "%d:%d", &h, &m); err != nil {
		return 0, ErrInvalidTimeRange
	}
	if h < 0 || h > 24 || m < 0 || m > 59 || h*60+m > 24*60 {
		return 0, ErrInvalidTimeRange
	}
	return h*60 + m, nil
}

// Contains reports whether the minute-of-day falls within [start, end).
func (r TimeRange) Contains(minuteOfDay int) bool {
	return minuteOfDay >= r.StartMinutes && minuteOfDay < r.EndMinutes
}

// WorkSchedule maps a lowercase weekday name ("monday") to that day's
// working ranges. A day with no entry means the employee is off-shift all
// day; an entirely empty schedule means never on shift.
type WorkSchedule map[string][]TimeRange

// Validate checks weekday names and range ordering.
func (ws WorkSchedule) Validate() error {
	for day, ranges := range ws {
		if !validWeekday(day) {
			return fmt.Errorf("%w: unknown weekday %q", ErrInvalidSchedule, day)
		}
		for _, r := range ranges {
			if r.StartMinutes >= r.EndMinutes {
				return fmt.Errorf("%w: empty range %s on %s", ErrInvalidSchedule, r, day)
			}
		}
	}
	return nil
}

func validWeekday(day string) bool {
	switch day {
	case "sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday":
		return true
	}
	return false
}

// Employee represents a staff member who fulfills bookable services.
// AssignmentCount increases monotonically with every assignment and drives
// round-robin fairness; it is never decremented.
type Employee struct {
	ID              string
	Name            string
	Email           string
	ServiceIDs      []string
	Schedule        WorkSchedule
	AssignmentCount int
	CreatedAt       time.Time
}

// CanFulfill reports whether the employee's capability set covers the service.
func (e *Employee) CanFulfill(serviceID string) bool {
	for _, id := range e.ServiceIDs {
		if id == serviceID {
			return true
		}
	}
	return false
}

// IsAvailableAt reports whether the employee is on shift at the given
// instant. Weekday and minute-of-day are evaluated in UTC. An employee with
// no ranges for the slot's weekday is off shift; being on shift is opt-in.
func (e *Employee) IsAvailableAt(slot time.Time) bool {
	utc := slot.UTC()
	ranges, ok := e.Schedule[strings.ToLower(utc.Weekday().String())]
	if !ok {
		return false
	}
	minuteOfDay := utc.Hour()*60 + utc.Minute()
	for _, r := range ranges {
		if r.Contains(minuteOfDay) {
			return true
		}
	}
	return false
}

// Filter defines parameters for listing employees.
type Filter struct {
	ServiceID string
	Page      int
	PageSize  int
}
