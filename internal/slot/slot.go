package slot

import (
	"errors"
	"time"
)

var (
	ErrInvalidDuration = errors.New("slot duration must be a positive divisor of 60")
)

const minutesPerDay = 24 * 60

// ValidDuration reports whether durationMinutes produces hour-aligned slots.
// Durations that do not evenly divide 60 would drift across hour boundaries.
func ValidDuration(durationMinutes int) bool {
	return durationMinutes > 0 && 60%durationMinutes == 0
}

// Generate returns every slot start for the 24 hours of the given date,
// stepping by durationMinutes. Slots are anchored to the date's UTC midnight
// and returned in ascending order. The result is fully deterministic.
func Generate(date time.Time, durationMinutes int) ([]time.Time, error) {
	if !ValidDuration(durationMinutes) {
		return nil, ErrInvalidDuration
	}

	midnight := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)

	count := minutesPerDay / durationMinutes
	slots := make([]time.Time, 0, count)
	for i := 0; i < count; i++ {
		slots = append(slots, midnight.Add(time.Duration(i*durationMinutes)*time.Minute))
	}
	return slots, nil
}

// WithinGracePeriod reports whether the slot falls at or before the cutoff
// (cutoff = now + grace hours). Such slots start too soon to be booked.
// The predicate is kept separate from Generate so callers can cut the same
// generated day differently per request.
func WithinGracePeriod(slot, cutoff time.Time) bool {
	return !slot.After(cutoff)
}

// FilterBookable drops slots inside the grace window, preserving order.
// The grace period is the minimum lead time a booking requires.
func FilterBookable(slots []time.Time, cutoff time.Time) []time.Time {
	bookable := make([]time.Time, 0, len(slots))
	for _, s := range slots {
		if !WithinGracePeriod(s, cutoff) {
			bookable = append(bookable, s)
		}
	}
	return bookable
}
