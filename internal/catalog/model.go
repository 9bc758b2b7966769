package catalog

import (
	"net/http"
	"time"

	"github.com/appointly/appointment-backend/internal/pkg/apperror"
)

var (
	ErrNotFound        = apperror.New(http.StatusNotFound, "service not found")
	ErrNameRequired    = apperror.New(http.StatusBadRequest, "service name is required")
	ErrInvalidDuration = apperror.New(http.StatusBadRequest, "slot duration must be a positive divisor of 60")
	ErrInvalidStrategy = apperror.New(http.StatusBadRequest, "invalid availability strategy")
)

// Strategy selects how availability is resolved for a service.
type Strategy string

const (
	// StrategyStandard composes working hours, the external calendar and
	// internal reservations.
	StrategyStandard Strategy = "standard"
	// StrategyExternal sources availability from the external calendar only,
	// bypassing the internal reservation check. Used for consultation-call
	// style services that are scheduled entirely in the external calendar.
	StrategyExternal Strategy = "external"
)

// Service represents a bookable service offering (e.g. a tutoring session).
// DurationMinutes drives slot generation for availability queries and must
// evenly divide 60.
type Service struct {
	ID              string
	Name            string
	Description     string
	DurationMinutes int
	Strategy        Strategy
	Active          bool
	CreatedAt       time.Time
}

// Filter defines parameters for listing services.
type Filter struct {
	Active   *bool
	Page     int
	PageSize int
}
