package employee

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Create(ctx context.Context, e *Employee) error
	GetByID(ctx context.Context, id string) (*Employee, error)
	List(ctx context.Context, filter Filter) ([]*Employee, int, error)
	Update(ctx context.Context, e *Employee) error
	Delete(ctx context.Context, id string) error
	FindCapable(ctx context.Context, serviceID string) ([]*Employee, error)

	// IncrementAssignmentCount performs count = count + 1 server-side so
	// concurrent assignments never lose an increment.
	IncrementAssignmentCount(ctx context.Context, id string) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

const employeeColumns = "id, name, email, service_ids, work_schedule, assignment_count, created_at"

func (r *pgxRepository) Create(ctx context.Context, e *Employee) error {
	scheduleJSON, err := json.Marshal(e.Schedule)
	if err != nil {
		return fmt.Errorf("marshal work schedule failed: %w", err)
	}

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.employees").
		Columns("name", "email", "service_ids", "work_schedule").
		Values(e.Name, e.Email, e.ServiceIDs, scheduleJSON).
		Suffix("RETURNING id, assignment_count, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create employee query failed: %w", err)
	}

	err = r.pool.QueryRow(ctx, query, args...).
		Scan(&e.ID, &e.AssignmentCount, &e.CreatedAt)
	if err != nil {
		return fmt.Errorf("create employee failed: %w", err)
	}
	return nil
}

func scanEmployee(row pgx.Row) (*Employee, error) {
	var e Employee
	var scheduleJSON []byte
	if err := row.Scan(&e.ID, &e.Name, &e.Email, &e.ServiceIDs, &scheduleJSON, &e.AssignmentCount, &e.CreatedAt); err != nil {
		return nil, err
	}
	if len(scheduleJSON) > 0 {
		if err := json.Unmarshal(scheduleJSON, &e.Schedule); err != nil {
			return nil, fmt.Errorf("unmarshal work schedule failed: %w", err)
		}
	}
	if e.Schedule == nil {
		e.Schedule = WorkSchedule{}
	}
	return &e, nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Employee, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(employeeColumns).
		From("public.employees").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get employee query failed: %w", err)
	}

	e, err := scanEmployee(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get employee failed: %w", err)
	}
	return e, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Employee, int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	queryBuilder := psql.Select(
		"id", "name", "email", "service_ids", "work_schedule", "assignment_count", "created_at",
		"count(*) OVER() as total_count",
	).
		From("public.employees")

	if filter.ServiceID != "" {
		queryBuilder = queryBuilder.Where("service_ids @> ARRAY[?]::uuid[]", filter.ServiceID)
	}

	queryBuilder = queryBuilder.OrderBy("created_at ASC")

	// Pagination
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	offset := (filter.Page - 1) * filter.PageSize

	queryBuilder = queryBuilder.Limit(uint64(filter.PageSize)).Offset(uint64(offset))

	sql, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list employees query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list employees failed: %w", err)
	}
	defer rows.Close()

	var result []*Employee
	var total int

	for rows.Next() {
		var e Employee
		var scheduleJSON []byte
		if err := rows.Scan(
			&e.ID, &e.Name, &e.Email, &e.ServiceIDs, &scheduleJSON, &e.AssignmentCount, &e.CreatedAt, &total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan employee failed: %w", err)
		}
		if len(scheduleJSON) > 0 {
			if err := json.Unmarshal(scheduleJSON, &e.Schedule); err != nil {
				return nil, 0, fmt.Errorf("unmarshal work schedule failed: %w", err)
			}
		}
		if e.Schedule == nil {
			e.Schedule = WorkSchedule{}
		}
		result = append(result, &e)
	}

	return result, total, nil
}

func (r *pgxRepository) Update(ctx context.Context, e *Employee) error {
	scheduleJSON, err := json.Marshal(e.Schedule)
	if err != nil {
		return fmt.Errorf("marshal work schedule failed: %w", err)
	}

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.employees").
		Set("name", e.Name).
		Set("email", e.Email).
		Set("service_ids", e.ServiceIDs).
		Set("work_schedule", scheduleJSON).
		Where(squirrel.Eq{"id": e.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update employee query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update employee failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) Delete(ctx context.Context, id string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Delete("public.employees").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete employee query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete employee failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) FindCapable(ctx context.Context, serviceID string) ([]*Employee, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(employeeColumns).
		From("public.employees").
		Where("service_ids @> ARRAY[?]::uuid[]", serviceID).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build find capable employees query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find capable employees failed: %w", err)
	}
	defer rows.Close()

	var result []*Employee
	for rows.Next() {
		var e Employee
		var scheduleJSON []byte
		if err := rows.Scan(&e.ID, &e.Name, &e.Email, &e.ServiceIDs, &scheduleJSON, &e.AssignmentCount, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan employee failed: %w", err)
		}
		if len(scheduleJSON) > 0 {
			if err := json.Unmarshal(scheduleJSON, &e.Schedule); err != nil {
				return nil, fmt.Errorf("unmarshal work schedule failed: %w", err)
			}
		}
		if e.Schedule == nil {
			e.Schedule = WorkSchedule{}
		}
		result = append(result, &e)
	}

	return result, nil
}

func (r *pgxRepository) IncrementAssignmentCount(ctx context.Context, id string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.employees").
		Set("assignment_count", squirrel.Expr("assignment_count + 1")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build increment assignment count query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("increment assignment count failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
