package availability

import (
	"context"
	"time"

	"github.com/appointly/appointment-backend/internal/catalog"
)

// strategy resolves availability for one service kind.
type strategy interface {
	Resolve(ctx context.Context, date time.Time, svc *catalog.Service, graceHours int) (*Result, error)
}

// standardStrategy composes working hours, internal reservations, and the
// external calendar.
type standardStrategy struct {
	r *resolver
}

func (s standardStrategy) Resolve(ctx context.Context, date time.Time, svc *catalog.Service, graceHours int) (*Result, error) {
	return s.r.resolveCommon(ctx, date, svc, graceHours, true)
}

// externalStrategy treats the external calendar as the source of truth and
// skips the internal reservation store.
type externalStrategy struct {
	r *resolver
}

func (s externalStrategy) Resolve(ctx context.Context, date time.Time, svc *catalog.Service, graceHours int) (*Result, error) {
	return s.r.resolveCommon(ctx, date, svc, graceHours, false)
}

func strategyFor(r *resolver, svc *catalog.Service) strategy {
	if svc.Strategy == catalog.StrategyExternal {
		return externalStrategy{r: r}
	}
	return standardStrategy{r: r}
}
