package reservation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	// Create persists the order, its items and the decomposed slot claims in
	// one transaction. Stale holds colliding with the new claims are expired
	// inside the same transaction; a remaining unique-index collision maps to
	// ErrSlotConflict.
	Create(ctx context.Context, order *Order) error

	GetByID(ctx context.Context, id string) (*Order, error)
	List(ctx context.Context, filter Filter) ([]*Order, int, error)

	// FindConflicts returns the subset of pairs already claimed: confirmed by
	// anyone, or held live by a customer other than excludeCustomerID.
	FindConflicts(ctx context.Context, pairs []Pair, excludeCustomerID string, now time.Time) ([]Pair, error)

	// GetReservationsInRange returns live claims for the service keyed by the
	// slot's RFC3339 UTC timestamp.
	GetReservationsInRange(ctx context.Context, from, to time.Time, serviceID string, now time.Time) (map[string][]SlotReservation, error)

	// Confirm promotes a live hold to confirmed.
	Confirm(ctx context.Context, id string, now time.Time) (*Order, error)

	// ExpireStale transitions every overdue hold to expired and returns the
	// affected order ids.
	ExpireStale(ctx context.Context, now time.Time) ([]string, error)

	CountByStatus(ctx context.Context) (Stats, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

// SlotKey renders a slot timestamp the way reservation maps are keyed.
func SlotKey(slot time.Time) string {
	return slot.UTC().Format(time.RFC3339)
}

func pairConditions(pairs []Pair) squirrel.Or {
	conds := make(squirrel.Or, len(pairs))
	for i, p := range pairs {
		conds[i] = squirrel.Eq{"rs.employee_id": p.EmployeeID, "rs.slot_time": p.Slot}
	}
	return conds
}

func (r *pgxRepository) Create(ctx context.Context, order *Order) error {
	pairs, err := order.Pairs()
	if err != nil {
		return err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin reserve transaction failed: %w", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()
	if err := expireStaleForPairs(ctx, tx, pairs, now); err != nil {
		return err
	}

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.orders").
		Columns("customer_id", "status", "expires_at").
		Values(order.CustomerID, order.Status, order.ExpiresAt).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create order query failed: %w", err)
	}
	if err := tx.QueryRow(ctx, query, args...).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt); err != nil {
		return fmt.Errorf("create order failed: %w", err)
	}

	for position, item := range order.Items {
		query, args, err := psql.Insert("public.order_items").
			Columns("order_id", "position", "service_id", "slots", "employee_ids").
			Values(order.ID, position, item.ServiceID, item.Slots, item.EmployeeIDs).
			ToSql()
		if err != nil {
			return fmt.Errorf("build create order item query failed: %w", err)
		}
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("create order item failed: %w", err)
		}
	}

	insert := psql.Insert("public.reservation_slots").
		Columns("order_id", "service_id", "employee_id", "slot_time", "status")
	for _, p := range pairs {
		insert = insert.Values(order.ID, p.ServiceID, p.EmployeeID, p.Slot, order.Status)
	}
	query, args, err = insert.ToSql()
	if err != nil {
		return fmt.Errorf("build create reservation slots query failed: %w", err)
	}
	if _, err := tx.Exec(ctx, query, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return ErrSlotConflict
		}
		return fmt.Errorf("create reservation slots failed: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit reserve transaction failed: %w", err)
	}
	return nil
}

// expireStaleForPairs clears overdue holds that would otherwise trip the
// partial unique index for the claims about to be written.
func expireStaleForPairs(ctx context.Context, tx pgx.Tx, pairs []Pair, now time.Time) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	sub, subArgs, err := psql.Select("DISTINCT rs.order_id").
		From("public.reservation_slots rs").
		Where(squirrel.Eq{"rs.status": StatusReserved}).
		Where(pairConditions(pairs)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build stale hold subquery failed: %w", err)
	}

	query, args, err := psql.Update("public.orders").
		Set("status", StatusExpired).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"status": StatusReserved}).
		Where(squirrel.Lt{"expires_at": now}).
		Where("id IN ("+sub+")", subArgs...).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("build expire stale holds query failed: %w", err)
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("expire stale holds failed: %w", err)
	}
	ids, err := collectIDs(rows)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	return expireSlotRows(ctx, tx, ids)
}

func collectIDs(rows pgx.Rows) ([]string, error) {
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan order id failed: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func expireSlotRows(ctx context.Context, tx pgx.Tx, orderIDs []string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.reservation_slots").
		Set("status", StatusExpired).
		Where(squirrel.Eq{"order_id": orderIDs}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build expire slot rows query failed: %w", err)
	}
	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("expire slot rows failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) FindConflicts(ctx context.Context, pairs []Pair, excludeCustomerID string, now time.Time) ([]Pair, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	reservedCond := squirrel.And{
		squirrel.Eq{"rs.status": StatusReserved},
		squirrel.Gt{"o.expires_at": now},
	}
	if excludeCustomerID != "" {
		reservedCond = append(reservedCond, squirrel.NotEq{"o.customer_id": excludeCustomerID})
	}

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select("rs.service_id", "rs.employee_id", "rs.slot_time").
		From("public.reservation_slots rs").
		Join("public.orders o ON rs.order_id = o.id").
		Where(pairConditions(pairs)).
		Where(squirrel.Or{
			squirrel.Eq{"rs.status": StatusConfirmed},
			reservedCond,
		}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build find conflicts query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find conflicts failed: %w", err)
	}
	defer rows.Close()

	var conflicts []Pair
	for rows.Next() {
		var p Pair
		if err := rows.Scan(&p.ServiceID, &p.EmployeeID, &p.Slot); err != nil {
			return nil, fmt.Errorf("scan conflict failed: %w", err)
		}
		p.Slot = p.Slot.UTC()
		conflicts = append(conflicts, p)
	}
	return conflicts, rows.Err()
}

func (r *pgxRepository) GetReservationsInRange(ctx context.Context, from, to time.Time, serviceID string, now time.Time) (map[string][]SlotReservation, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select("rs.slot_time", "rs.employee_id", "rs.status", "o.expires_at").
		From("public.reservation_slots rs").
		Join("public.orders o ON rs.order_id = o.id").
		Where(squirrel.Eq{"rs.service_id": serviceID}).
		Where(squirrel.GtOrEq{"rs.slot_time": from}).
		Where(squirrel.Lt{"rs.slot_time": to}).
		Where(squirrel.Or{
			squirrel.Eq{"rs.status": StatusConfirmed},
			squirrel.And{
				squirrel.Eq{"rs.status": StatusReserved},
				squirrel.Gt{"o.expires_at": now},
			},
		}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build reservations in range query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("reservations in range failed: %w", err)
	}
	defer rows.Close()

	result := make(map[string][]SlotReservation)
	for rows.Next() {
		var slotTime time.Time
		var sr SlotReservation
		if err := rows.Scan(&slotTime, &sr.EmployeeID, &sr.Status, &sr.ExpiresAt); err != nil {
			return nil, fmt.Errorf("scan reservation failed: %w", err)
		}
		key := SlotKey(slotTime)
		result[key] = append(result[key], sr)
	}
	return result, rows.Err()
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Order, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select("id", "customer_id", "status", "expires_at", "created_at", "updated_at").
		From("public.orders").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get order query failed: %w", err)
	}

	var o Order
	if err := r.pool.QueryRow(ctx, query, args...).
		Scan(&o.ID, &o.CustomerID, &o.Status, &o.ExpiresAt, &o.CreatedAt, &o.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get order failed: %w", err)
	}

	items, err := r.loadItems(ctx, []string{o.ID})
	if err != nil {
		return nil, err
	}
	o.Items = items[o.ID]
	return &o, nil
}

func (r *pgxRepository) loadItems(ctx context.Context, orderIDs []string) (map[string][]Item, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select("order_id", "service_id", "slots", "employee_ids").
		From("public.order_items").
		Where(squirrel.Eq{"order_id": orderIDs}).
		OrderBy("order_id", "position").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build load order items query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("load order items failed: %w", err)
	}
	defer rows.Close()

	result := make(map[string][]Item)
	for rows.Next() {
		var orderID string
		var item Item
		if err := rows.Scan(&orderID, &item.ServiceID, &item.Slots, &item.EmployeeIDs); err != nil {
			return nil, fmt.Errorf("scan order item failed: %w", err)
		}
		for i := range item.Slots {
			item.Slots[i] = item.Slots[i].UTC()
		}
		result[orderID] = append(result[orderID], item)
	}
	return result, rows.Err()
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Order, int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	queryBuilder := psql.Select(
		"id", "customer_id", "status", "expires_at", "created_at", "updated_at",
		"count(*) OVER() as total_count",
	).
		From("public.orders")

	if filter.CustomerID != "" {
		queryBuilder = queryBuilder.Where(squirrel.Eq{"customer_id": filter.CustomerID})
	}
	if filter.Status != "" {
		queryBuilder = queryBuilder.Where(squirrel.Eq{"status": filter.Status})
	}

	queryBuilder = queryBuilder.OrderBy("created_at DESC")

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
		return nil, 0, fmt.Errorf("build list orders query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders failed: %w", err)
	}
	defer rows.Close()

	var orders []*Order
	var orderIDs []string
	var total int

	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.CustomerID, &o.Status, &o.ExpiresAt, &o.CreatedAt, &o.UpdatedAt, &total); err != nil {
			return nil, 0, fmt.Errorf("scan order failed: %w", err)
		}
		orders = append(orders, &o)
		orderIDs = append(orderIDs, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	if len(orderIDs) > 0 {
		items, err := r.loadItems(ctx, orderIDs)
		if err != nil {
			return nil, 0, err
		}
		for _, o := range orders {
			o.Items = items[o.ID]
		}
	}

	return orders, total, nil
}

func (r *pgxRepository) Confirm(ctx context.Context, id string, now time.Time) (*Order, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin confirm transaction failed: %w", err)
	}
	defer tx.Rollback(ctx)

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.orders").
		Set("status", StatusConfirmed).
		Set("expires_at", nil).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id, "status": StatusReserved}).
		Where(squirrel.Gt{"expires_at": now}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build confirm order query failed: %w", err)
	}

	ct, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("confirm order failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		// Distinguish why the promotion did not apply.
		existing, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if existing.Status == StatusReserved {
			return nil, ErrHoldExpired
		}
		return nil, ErrNotReserved
	}

	query, args, err = psql.Update("public.reservation_slots").
		Set("status", StatusConfirmed).
		Where(squirrel.Eq{"order_id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build confirm slot rows query failed: %w", err)
	}
	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("confirm slot rows failed: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit confirm transaction failed: %w", err)
	}

	return r.GetByID(ctx, id)
}

func (r *pgxRepository) ExpireStale(ctx context.Context, now time.Time) ([]string, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin expire transaction failed: %w", err)
	}
	defer tx.Rollback(ctx)

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.orders").
		Set("status", StatusExpired).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"status": StatusReserved}).
		Where(squirrel.Lt{"expires_at": now}).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build expire stale query failed: %w", err)
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("expire stale failed: %w", err)
	}
	ids, err := collectIDs(rows)
	if err != nil {
		return nil, err
	}

	if len(ids) > 0 {
		if err := expireSlotRows(ctx, tx, ids); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit expire transaction failed: %w", err)
	}
	return ids, nil
}

func (r *pgxRepository) CountByStatus(ctx context.Context) (Stats, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select("status", "count(*)").
		From("public.orders").
		GroupBy("status").
		ToSql()
	if err != nil {
		return Stats{}, fmt.Errorf("build count by status query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return Stats{}, fmt.Errorf("count by status failed: %w", err)
	}
	defer rows.Close()

	var stats Stats
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return Stats{}, fmt.Errorf("scan status count failed: %w", err)
		}
		stats.Total += count
		switch status {
		case StatusReserved:
			stats.Reserved = count
		case StatusConfirmed:
			stats.Confirmed = count
		case StatusExpired:
			stats.Expired = count
		}
	}
	return stats, rows.Err()
}
