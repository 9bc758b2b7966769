package catalog

import (
	"context"
	"strings"

	"github.com/appointly/appointment-backend/internal/slot"
)

const DefaultDurationMinutes = 60

type CreateRequest struct {
	Name            string
	Description     string
	DurationMinutes int
	Strategy        string
}

type UpdateRequest struct {
	Name            *string
	Description     *string
	DurationMinutes *int
	Strategy        *string
	Active          *bool
}

type Manager interface {
	Create(ctx context.Context, req CreateRequest) (*Service, error)
	GetByID(ctx context.Context, id string) (*Service, error)
	List(ctx context.Context, filter Filter) ([]*Service, int, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*Service, error)
	Delete(ctx context.Context, id string) error
}

type manager struct {
	repo Repository
}

func NewManager(repo Repository) Manager {
	return &manager{repo: repo}
}

func parseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyStandard, StrategyExternal:
		return Strategy(s), nil
	case "":
		return StrategyStandard, nil
	default:
		return "", ErrInvalidStrategy
	}
}

func (m *manager) Create(ctx context.Context, req CreateRequest) (*Service, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, ErrNameRequired
	}

	duration := req.DurationMinutes
	if duration == 0 {
		duration = DefaultDurationMinutes
	}
	if !slot.ValidDuration(duration) {
		return nil, ErrInvalidDuration
	}

	strategy, err := parseStrategy(req.Strategy)
	if err != nil {
		return nil, err
	}

	svc := &Service{
		Name:            req.Name,
		Description:     req.Description,
		DurationMinutes: duration,
		Strategy:        strategy,
		Active:          true,
	}

	if err := m.repo.Create(ctx, svc); err != nil {
		return nil, err
	}
	return svc, nil
}

func (m *manager) GetByID(ctx context.Context, id string) (*Service, error) {
	return m.repo.GetByID(ctx, id)
}

func (m *manager) List(ctx context.Context, filter Filter) ([]*Service, int, error) {
	return m.repo.List(ctx, filter)
}

func (m *manager) Update(ctx context.Context, id string, req UpdateRequest) (*Service, error) {
	svc, err := m.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, ErrNameRequired
		}
		svc.Name = *req.Name
	}
	if req.Description != nil {
		svc.Description = *req.Description
	}
	if req.DurationMinutes != nil {
		if !slot.ValidDuration(*req.DurationMinutes) {
			return nil, ErrInvalidDuration
		}
		svc.DurationMinutes = *req.DurationMinutes
	}
	if req.Strategy != nil {
		strategy, err := parseStrategy(*req.Strategy)
		if err != nil {
			return nil, err
		}
		svc.Strategy = strategy
	}
	if req.Active != nil {
		svc.Active = *req.Active
	}

	if err := m.repo.Update(ctx, svc); err != nil {
		return nil, err
	}
	return svc, nil
}

func (m *manager) Delete(ctx context.Context, id string) error {
	if _, err := m.repo.GetByID(ctx, id); err != nil {
		return err
	}
	return m.repo.Delete(ctx, id)
}
