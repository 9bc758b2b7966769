package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepository struct {
	services map[string]*Service
	nextID   int
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{services: make(map[string]*Service)}
}

func (r *fakeRepository) Create(_ context.Context, svc *Service) error {
	r.nextID++
	svc.ID = string(rune('a' + r.nextID - 1))
	r.services[svc.ID] = svc
	return nil
}

func (r *fakeRepository) GetByID(_ context.Context, id string) (*Service, error) {
	svc, ok := r.services[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *svc
	return &copied, nil
}

func (r *fakeRepository) List(_ context.Context, filter Filter) ([]*Service, int, error) {
	var out []*Service
	for _, svc := range r.services {
		if filter.Active != nil && svc.Active != *filter.Active {
			continue
		}
		out = append(out, svc)
	}
	return out, len(out), nil
}

func (r *fakeRepository) Update(_ context.Context, svc *Service) error {
	if _, ok := r.services[svc.ID]; !ok {
		return ErrNotFound
	}
	r.services[svc.ID] = svc
	return nil
}

func (r *fakeRepository) Delete(_ context.Context, id string) error {
	if _, ok := r.services[id]; !ok {
		return ErrNotFound
	}
	delete(r.services, id)
	return nil
}

func TestCreateService(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults duration and strategy", func(t *testing.T) {
		m := NewManager(newFakeRepository())

		svc, err := m.Create(ctx, CreateRequest{Name: "Tutoring"})
		require.NoError(t, err)

		assert.Equal(t, DefaultDurationMinutes, svc.DurationMinutes)
		assert.Equal(t, StrategyStandard, svc.Strategy)
		assert.True(t, svc.Active)
	})

	t.Run("accepts divisor of sixty", func(t *testing.T) {
		m := NewManager(newFakeRepository())

		svc, err := m.Create(ctx, CreateRequest{Name: "Quick Call", DurationMinutes: 30})
		require.NoError(t, err)
		assert.Equal(t, 30, svc.DurationMinutes)
	})

	t.Run("rejects duration that does not divide an hour", func(t *testing.T) {
		m := NewManager(newFakeRepository())

		_, err := m.Create(ctx, CreateRequest{Name: "Odd", DurationMinutes: 45})
		assert.ErrorIs(t, err, ErrInvalidDuration)
	})

	t.Run("rejects blank name", func(t *testing.T) {
		m := NewManager(newFakeRepository())

		_, err := m.Create(ctx, CreateRequest{Name: "   "})
		assert.ErrorIs(t, err, ErrNameRequired)
	})

	t.Run("rejects unknown strategy", func(t *testing.T) {
		m := NewManager(newFakeRepository())

		_, err := m.Create(ctx, CreateRequest{Name: "Call", Strategy: "psychic"})
		assert.ErrorIs(t, err, ErrInvalidStrategy)
	})

	t.Run("external strategy is accepted", func(t *testing.T) {
		m := NewManager(newFakeRepository())

		svc, err := m.Create(ctx, CreateRequest{Name: "Consultation", Strategy: "external"})
		require.NoError(t, err)
		assert.Equal(t, StrategyExternal, svc.Strategy)
	})
}

func TestUpdateService(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (Manager, string) {
		t.Helper()
		m := NewManager(newFakeRepository())
		svc, err := m.Create(ctx, CreateRequest{Name: "Tutoring", DurationMinutes: 60})
		require.NoError(t, err)
		return m, svc.ID
	}

	t.Run("partial update keeps other fields", func(t *testing.T) {
		m, id := setup(t)

		duration := 20
		svc, err := m.Update(ctx, id, UpdateRequest{DurationMinutes: &duration})
		require.NoError(t, err)

		assert.Equal(t, 20, svc.DurationMinutes)
		assert.Equal(t, "Tutoring", svc.Name)
	})

	t.Run("invalid duration rejected", func(t *testing.T) {
		m, id := setup(t)

		duration := 7
		_, err := m.Update(ctx, id, UpdateRequest{DurationMinutes: &duration})
		assert.ErrorIs(t, err, ErrInvalidDuration)
	})

	t.Run("deactivation", func(t *testing.T) {
		m, id := setup(t)

		active := false
		svc, err := m.Update(ctx, id, UpdateRequest{Active: &active})
		require.NoError(t, err)
		assert.False(t, svc.Active)
	})

	t.Run("unknown id", func(t *testing.T) {
		m, _ := setup(t)

		name := "New"
		_, err := m.Update(ctx, "missing", UpdateRequest{Name: &name})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestDeleteService(t *testing.T) {
	ctx := context.Background()
	m := NewManager(newFakeRepository())

	svc, err := m.Create(ctx, CreateRequest{Name: "Tutoring"})
	require.NoError(t, err)

	require.NoError(t, m.Delete(ctx, svc.ID))

	_, err = m.GetByID(ctx, svc.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, m.Delete(ctx, svc.ID), ErrNotFound)
}
