package employee

import (
	"context"
	"strings"
)

type CreateRequest struct {
	Name       string
	Email      string
	ServiceIDs []string
	Schedule   WorkSchedule
}

type UpdateRequest struct {
	Name       *string
	Email      *string
	ServiceIDs *[]string
	Schedule   *WorkSchedule
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Employee, error)
	GetByID(ctx context.Context, id string) (*Employee, error)
	List(ctx context.Context, filter Filter) ([]*Employee, int, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*Employee, error)
	Delete(ctx context.Context, id string) error

	// FindCapable returns all employees whose capability set includes the
	// service, in stable (creation) order.
	FindCapable(ctx context.Context, serviceID string) ([]*Employee, error)

	// IncrementAssignmentCount bumps the round-robin counter atomically.
	IncrementAssignmentCount(ctx context.Context, id string) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Employee, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, ErrNameRequired
	}
	if strings.TrimSpace(req.Email) == "" {
		return nil, ErrEmailRequired
	}

	schedule := req.Schedule
	if schedule == nil {
		schedule = WorkSchedule{}
	}
	if err := schedule.Validate(); err != nil {
		return nil, err
	}

	e := &Employee{
		Name:       req.Name,
		Email:      req.Email,
		ServiceIDs: req.ServiceIDs,
		Schedule:   schedule,
	}

	if err := s.repo.Create(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Employee, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Employee, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Update(ctx context.Context, id string, req UpdateRequest) (*Employee, error) {
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, ErrNameRequired
		}
		e.Name = *req.Name
	}
	if req.Email != nil {
		if strings.TrimSpace(*req.Email) == "" {
			return nil, ErrEmailRequired
		}
		e.Email = *req.Email
	}
	if req.ServiceIDs != nil {
		e.ServiceIDs = *req.ServiceIDs
	}
	if req.Schedule != nil {
		if err := req.Schedule.Validate(); err != nil {
			return nil, err
		}
		e.Schedule = *req.Schedule
	}

	if err := s.repo.Update(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *service) FindCapable(ctx context.Context, serviceID string) ([]*Employee, error) {
	return s.repo.FindCapable(ctx, serviceID)
}

func (s *service) IncrementAssignmentCount(ctx context.Context, id string) error {
	return s.repo.IncrementAssignmentCount(ctx, id)
}
