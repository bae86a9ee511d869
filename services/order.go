package services

import (
	"context"
	"encoding/json"
	"fmt"

	"cafe-pos/db"
	"cafe-pos/models"
)

const (
	OrderStatusPending   = "pending"
	OrderStatusPreparing = "preparing"
	OrderStatusServed    = "served"
	OrderStatusCancelled = "cancelled"
)

const (
	TableStatusFree     = "Free"
	TableStatusOccupied = "Occupied"
)

// ValidStatusTransition reports whether an order may move between the two
// statuses. Cancellation is allowed until the order is served.
func ValidStatusTransition(from, to string) bool {
	switch from {
	case OrderStatusPending:
		return to == OrderStatusPreparing || to == OrderStatusCancelled
	case OrderStatusPreparing:
		return to == OrderStatusServed || to == OrderStatusCancelled
	default:
		return false
	}
}

// SubmitOrder records the order and marks its table occupied in a single
// transaction, so a failed table update can never leave an orphan order
// behind. The caller keeps the cart on error and retries manually.
func SubmitOrder(ctx context.Context, input models.CreateOrderInput) (int64, error) {
	itemsJSON, err := json.Marshal(input.Items)
	if err != nil {
		return 0, fmt.Errorf("marshal order items: %w", err)
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	var id int64
	err = tx.QueryRow(ctx, `
		INSERT INTO orders (
			session_id, table_id, items, subtotal, discount_pct,
			discount_amount, tax_amount, grand_total, status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 'pending', $9)
		RETURNING id`,
		input.SessionID, input.TableID, itemsJSON, input.Subtotal, input.DiscountPct,
		input.DiscountAmount, input.TaxAmount, input.GrandTotal, input.CreatedAt,
	).Scan(&id)
	if err != nil {
		return 0, err
	}

	_, err = tx.Exec(ctx, `
		UPDATE cafe_tables SET status = $1, updated_at = now() WHERE id = $2`,
		TableStatusOccupied, input.TableID,
	)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return id, nil
}

func GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	var o models.Order
	err := db.Pool.QueryRow(ctx, `
		SELECT id, session_id, table_id, status, subtotal, discount_pct, grand_total, created_at
		FROM orders WHERE id = $1`,
		id,
	).Scan(&o.ID, &o.SessionID, &o.TableID, &o.Status, &o.Subtotal, &o.DiscountPct, &o.GrandTotal, &o.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// SetOrderStatus applies a status change if the transition is valid.
// Serving or cancelling an order frees its table.
func SetOrderStatus(ctx context.Context, id int64, to string) error {
	o, err := GetOrder(ctx, id)
	if err != nil {
		return err
	}
	if !ValidStatusTransition(o.Status, to) {
		return fmt.Errorf("invalid status transition %s -> %s", o.Status, to)
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		UPDATE orders SET status = $1, updated_at = now() WHERE id = $2`,
		to, id,
	)
	if err != nil {
		return err
	}
	if to == OrderStatusServed || to == OrderStatusCancelled {
		_, err = tx.Exec(ctx, `
			UPDATE cafe_tables SET status = $1, updated_at = now() WHERE id = $2`,
			TableStatusFree, o.TableID,
		)
		if err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

type Table struct {
	ID     int64
	Name   string
	Status string
}

func ListTables(ctx context.Context) ([]Table, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, name, status FROM cafe_tables ORDER BY id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []Table
	for rows.Next() {
		var t Table
		if err := rows.Scan(&t.ID, &t.Name, &t.Status); err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, rows.Err()
}

func GetTable(ctx context.Context, id int64) (*Table, error) {
	var t Table
	err := db.Pool.QueryRow(ctx, `
		SELECT id, name, status FROM cafe_tables WHERE id = $1`,
		id,
	).Scan(&t.ID, &t.Name, &t.Status)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func SetTableStatus(ctx context.Context, id int64, status string) error {
	_, err := db.Pool.Exec(ctx, `
		UPDATE cafe_tables SET status = $1, updated_at = now() WHERE id = $2`,
		status, id,
	)
	return err
}

func GetDailyStats(ctx context.Context, date string) (*models.DailyStats, error) {
	var s models.DailyStats
	err := db.Pool.QueryRow(ctx, `
		SELECT
			COUNT(*)::int,
			COALESCE(SUM(subtotal), 0)::bigint,
			COALESCE(SUM(discount_amount), 0)::bigint,
			COALESCE(SUM(tax_amount), 0)::bigint,
			COALESCE(SUM(grand_total), 0)::bigint,
			COUNT(*) FILTER (WHERE discount_pct > 0)::int
		FROM orders
		WHERE created_at::date = $1::date AND status <> 'cancelled'`,
		date,
	).Scan(&s.OrdersCount, &s.ItemsRevenue, &s.DiscountGiven, &s.TaxCollected, &s.GrandRevenue, &s.DiscountedCount)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
