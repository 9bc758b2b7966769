package http

import (
	"time"

	"github.com/appointly/appointment-backend/internal/availability"
)

type GetAvailabilityQuery struct {
	Date       time.Time `form:"date" binding:"required" time_format:"2006-01-02"`
	ServiceID  string    `form:"service_id" binding:"required,uuid"`
	GraceHours int       `form:"grace_hours" binding:"omitempty,min=1,max=168"`
}

type AvailabilityResponse struct {
	Date                string   `json:"date"`
	ServiceID           string   `json:"service_id"`
	SlotDurationMinutes int      `json:"slot_duration_minutes"`
	AvailableSlots      []string `json:"available_slots"`
	BookedSlots         []string `json:"booked_slots"`
	Warning             string   `json:"warning,omitempty"`
}

func ToAvailabilityResponse(date time.Time, serviceID string, result *availability.Result) AvailabilityResponse {
	return AvailabilityResponse{
		Date:                date.Format("2006-01-02"),
		ServiceID:           serviceID,
		SlotDurationMinutes: result.SlotDurationMinutes,
		AvailableSlots:      formatSlots(result.AvailableSlots),
		BookedSlots:         formatSlots(result.BookedSlots),
		Warning:             result.Warning,
	}
}

func formatSlots(slots []time.Time) []string {
	out := make([]string, 0, len(slots))
	for _, s := range slots {
		out = append(out, s.UTC().Format(time.RFC3339))
	}
	return out
}
