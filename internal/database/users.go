package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"foodorder/internal/model"
	"foodorder/internal/storage"
)

const userColumns = `id, login, password_hash, name, address_line1, city, country, created_at`

func (s *Store) CreateUser(ctx context.Context, u *model.User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, login, password_hash, name, address_line1, city, country, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		u.ID, u.Login, u.PasswordHash, u.Name, u.AddressLine1, u.City, u.Country, u.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *Store) GetUser(ctx context.Context, id string) (*model.User, error) {
	return s.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (s *Store) GetUserByLogin(ctx context.Context, login string) (*model.User, error) {
	return s.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE login = $1`, login)
}

func (s *Store) getUser(ctx context.Context, query, arg string) (*model.User, error) {
	var user model.User
	err := s.db.QueryRowContext(ctx, query, arg).Scan(&user.ID, &user.Login, &user.PasswordHash,
		&user.Name, &user.AddressLine1, &user.City, &user.Country, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &user, nil
}

func (s *Store) UpdateUser(ctx context.Context, u *model.User) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET name = $1, address_line1 = $2, city = $3, country = $4 WHERE id = $5`,
		u.Name, u.AddressLine1, u.City, u.Country, u.ID,
	)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
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
