package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"foodorder/internal/model"
	"foodorder/internal/storage"
)

// Store is the Postgres implementation of the storage interfaces.
type Store struct {
	db *sql.DB
}

var (
	_ storage.OrderStore      = (*Store)(nil)
	_ storage.RestaurantStore = (*Store)(nil)
	_ storage.UserStore       = (*Store)(nil)
)

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) CreateOrder(ctx context.Context, order *model.Order) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	d := order.DeliveryDetails
	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, restaurant_id, user_id, status, delivery_email, delivery_name,
			delivery_address_line1, delivery_city, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		order.ID, order.RestaurantID, order.UserID, order.Status,
		d.Email, d.Name, d.AddressLine1, d.City, order.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("insert order: %w", err)
	}

	for i, item := range order.CartItems {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO order_items (order_id, position, menu_item_id, name, quantity) VALUES ($1, $2, $3, $4, $5)`,
			order.ID, i, item.MenuItemID, item.Name, item.Quantity,
		)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

const orderColumns = `id, restaurant_id, user_id, status, total_amount, delivery_email,
	delivery_name, delivery_address_line1, delivery_city, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (model.Order, error) {
	var o model.Order
	var total sql.NullInt64
	err := row.Scan(&o.ID, &o.RestaurantID, &o.UserID, &o.Status, &total,
		&o.DeliveryDetails.Email, &o.DeliveryDetails.Name,
		&o.DeliveryDetails.AddressLine1, &o.DeliveryDetails.City, &o.CreatedAt)
	if err != nil {
		return o, err
	}
	if total.Valid {
		v := total.Int64
		o.TotalAmount = &v
	}
	o.CreatedAt = o.CreatedAt.UTC()
	return o, nil
}

func (s *Store) GetOrder(ctx context.Context, id string) (*model.Order, error) {
	o, err := scanOrder(s.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	orders := []model.Order{o}
	if err := s.loadOrderItems(ctx, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

// UpdateOrderStatus is a compare-and-set on status; total_amount is only ever
// written together with the placed → paid step.
func (s *Store) UpdateOrderStatus(ctx context.Context, id string, from, to model.OrderStatus, totalAmount *int64) (bool, error) {
	var (
		res sql.Result
		err error
	)
	if totalAmount != nil {
		res, err = s.db.ExecContext(ctx,
			`UPDATE orders SET status = $1, total_amount = $2 WHERE id = $3 AND status = $4 AND total_amount IS NULL`,
			to, *totalAmount, id, from,
		)
	} else {
		res, err = s.db.ExecContext(ctx,
			`UPDATE orders SET status = $1 WHERE id = $2 AND status = $3`,
			to, id, from,
		)
	}
	if err != nil {
		return false, fmt.Errorf("update order: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n == 1, nil
}

func (s *Store) DeletePlacedOrder(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM orders WHERE id = $1 AND status = 'placed'`, id)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) DeletePlacedOrdersBefore(ctx context.Context, cutoff time.Time, limit int) (int, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM orders
		WHERE id IN (
			SELECT id FROM orders
			WHERE status = 'placed' AND created_at < $1
			ORDER BY created_at ASC
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		) AND status = 'placed'`,
		cutoff, limit,
	)
	if err != nil {
		return 0, fmt.Errorf("delete stale orders: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return int(n), nil
}

func (s *Store) ListOrdersByUser(ctx context.Context, userID string) ([]model.Order, error) {
	return s.listOrders(ctx, `SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`, userID)
}

func (s *Store) ListOrdersByRestaurant(ctx context.Context, restaurantID string) ([]model.Order, error) {
	return s.listOrders(ctx, `SELECT `+orderColumns+` FROM orders WHERE restaurant_id = $1 ORDER BY created_at DESC`, restaurantID)
}

func (s *Store) listOrders(ctx context.Context, query string, arg string) ([]model.Order, error) {
	rows, err := s.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	if err := s.loadOrderItems(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *Store) loadOrderItems(ctx context.Context, orders []model.Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]string, len(orders))
	index := make(map[string]int, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		index[o.ID] = i
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT order_id, menu_item_id, name, quantity
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, position`, ids)
	if err != nil {
		return fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var orderID string
		var item model.CartItem
		if err := rows.Scan(&orderID, &item.MenuItemID, &item.Name, &item.Quantity); err != nil {
			return fmt.Errorf("scan order item: %w", err)
		}
		i := index[orderID]
		orders[i].CartItems = append(orders[i].CartItems, item)
	}
	return rows.Err()
}
