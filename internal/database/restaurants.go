package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"foodorder/internal/model"
	"foodorder/internal/storage"
)

const restaurantColumns = `id, user_id, restaurant_name, city, country, delivery_price,
	estimated_delivery_time, cuisines, last_updated`

func scanRestaurant(row rowScanner) (model.Restaurant, error) {
	var r model.Restaurant
	var cuisines []byte
	err := row.Scan(&r.ID, &r.UserID, &r.RestaurantName, &r.City, &r.Country,
		&r.DeliveryPrice, &r.EstimatedDeliveryTime, &cuisines, &r.LastUpdated)
	if err != nil {
		return r, err
	}
	if err := json.Unmarshal(cuisines, &r.Cuisines); err != nil {
		return r, fmt.Errorf("decode cuisines: %w", err)
	}
	return r, nil
}

func (s *Store) CreateRestaurant(ctx context.Context, r *model.Restaurant) (err error) {
	cuisines, err := json.Marshal(r.Cuisines)
	if err != nil {
		return fmt.Errorf("encode cuisines: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO restaurants (`+restaurantColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		r.ID, r.UserID, r.RestaurantName, r.City, r.Country, r.DeliveryPrice,
		r.EstimatedDeliveryTime, string(cuisines), r.LastUpdated,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("insert restaurant: %w", err)
	}

	if err = insertMenuItems(ctx, tx, r); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (s *Store) UpdateRestaurant(ctx context.Context, r *model.Restaurant) (err error) {
	cuisines, err := json.Marshal(r.Cuisines)
	if err != nil {
		return fmt.Errorf("encode cuisines: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `
		UPDATE restaurants
		SET restaurant_name = $1, city = $2, country = $3, delivery_price = $4,
			estimated_delivery_time = $5, cuisines = $6, last_updated = $7
		WHERE id = $8`,
		r.RestaurantName, r.City, r.Country, r.DeliveryPrice,
		r.EstimatedDeliveryTime, string(cuisines), r.LastUpdated, r.ID,
	)
	if err != nil {
		return fmt.Errorf("update restaurant: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		err = storage.ErrNotFound
		return err
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM menu_items WHERE restaurant_id = $1`, r.ID); err != nil {
		return fmt.Errorf("clear menu: %w", err)
	}
	if err = insertMenuItems(ctx, tx, r); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func insertMenuItems(ctx context.Context, tx *sql.Tx, r *model.Restaurant) error {
	for i, mi := range r.MenuItems {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO menu_items (restaurant_id, id, position, name, price) VALUES ($1, $2, $3, $4, $5)`,
			r.ID, mi.ID, i, mi.Name, mi.Price,
		)
		if err != nil {
			return fmt.Errorf("insert menu item: %w", err)
		}
	}
	return nil
}

func (s *Store) GetRestaurant(ctx context.Context, id string) (*model.Restaurant, error) {
	return s.getRestaurant(ctx, `SELECT `+restaurantColumns+` FROM restaurants WHERE id = $1`, id)
}

func (s *Store) GetRestaurantByOwner(ctx context.Context, userID string) (*model.Restaurant, error) {
	return s.getRestaurant(ctx, `SELECT `+restaurantColumns+` FROM restaurants WHERE user_id = $1`, userID)
}

func (s *Store) getRestaurant(ctx context.Context, query, arg string) (*model.Restaurant, error) {
	r, err := scanRestaurant(s.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get restaurant: %w", err)
	}

	restaurants := []model.Restaurant{r}
	if err := s.loadMenus(ctx, restaurants); err != nil {
		return nil, err
	}
	return &restaurants[0], nil
}

func (s *Store) SearchRestaurants(ctx context.Context, f storage.RestaurantFilter) ([]model.Restaurant, int, error) {
	if f.Offset < 0 || f.Limit < 0 {
		return nil, 0, storage.ErrInvalidFilter
	}

	args := []any{f.City}
	where := []string{`LOWER(city) = LOWER($1)`}

	if len(f.Cuisines) > 0 {
		lowered := make([]string, len(f.Cuisines))
		for i, c := range f.Cuisines {
			lowered[i] = strings.ToLower(c)
		}
		args = append(args, lowered)
		where = append(where, fmt.Sprintf(
			`(SELECT COUNT(DISTINCT LOWER(c)) FROM jsonb_array_elements_text(cuisines) c WHERE LOWER(c) = ANY($%d)) = %d`,
			len(args), len(lowered)))
	}
	if f.Query != "" {
		args = append(args, "%"+f.Query+"%")
		n := len(args)
		where = append(where, fmt.Sprintf(
			`(restaurant_name ILIKE $%d OR EXISTS (SELECT 1 FROM jsonb_array_elements_text(cuisines) c WHERE c ILIKE $%d))`,
			n, n))
	}

	args = append(args, f.Limit, f.Offset)
	query := `SELECT ` + restaurantColumns + `, COUNT(*) OVER() FROM restaurants WHERE ` +
		strings.Join(where, " AND ") +
		fmt.Sprintf(` ORDER BY last_updated DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query restaurants: %w", err)
	}
	defer rows.Close()

	var (
		found []model.Restaurant
		total int
	)
	for rows.Next() {
		var r model.Restaurant
		var cuisines []byte
		if err := rows.Scan(&r.ID, &r.UserID, &r.RestaurantName, &r.City, &r.Country,
			&r.DeliveryPrice, &r.EstimatedDeliveryTime, &cuisines, &r.LastUpdated, &total); err != nil {
			return nil, 0, fmt.Errorf("scan restaurant: %w", err)
		}
		if err := json.Unmarshal(cuisines, &r.Cuisines); err != nil {
			return nil, 0, fmt.Errorf("decode cuisines: %w", err)
		}
		found = append(found, r)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows iteration failed: %w", err)
	}

	if len(found) == 0 && f.Offset > 0 {
		// Past the last page the window count is gone; count separately.
		countQuery := `SELECT COUNT(*) FROM restaurants WHERE ` + strings.Join(where, " AND ")
		if err := s.db.QueryRowContext(ctx, countQuery, args[:len(args)-2]...).Scan(&total); err != nil {
			return nil, 0, fmt.Errorf("count restaurants: %w", err)
		}
	}

	if err := s.loadMenus(ctx, found); err != nil {
		return nil, 0, err
	}
	return found, total, nil
}

func (s *Store) loadMenus(ctx context.Context, restaurants []model.Restaurant) error {
	if len(restaurants) == 0 {
		return nil
	}

	ids := make([]string, len(restaurants))
	index := make(map[string]int, len(restaurants))
	for i, r := range restaurants {
		ids[i] = r.ID
		index[r.ID] = i
		restaurants[i].MenuItems = []model.MenuItem{}
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT restaurant_id, id, name, price
		FROM menu_items
		WHERE restaurant_id = ANY($1)
		ORDER BY restaurant_id, position`, ids)
	if err != nil {
		return fmt.Errorf("query menu items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var restaurantID string
		var mi model.MenuItem
		if err := rows.Scan(&restaurantID, &mi.ID, &mi.Name, &mi.Price); err != nil {
			return fmt.Errorf("scan menu item: %w", err)
		}
		i := index[restaurantID]
		restaurants[i].MenuItems = append(restaurants[i].MenuItems, mi)
	}
	return rows.Err()
}
