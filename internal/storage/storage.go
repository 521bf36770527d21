// Package storage declares the persistence contracts shared by the Postgres
// and in-memory backends.
package storage

import (
	"context"
	"errors"
	"time"

	"foodorder/internal/model"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record already exists")
	// ErrInvalidFilter rejects a search filter no backend can serve, such as
	// a negative offset.
	ErrInvalidFilter = errors.New("invalid filter")
)

type OrderStore interface {
	CreateOrder(ctx context.Context, order *model.Order) error
	GetOrder(ctx context.Context, id string) (*model.Order, error)
	// UpdateOrderStatus moves an order from one status to another only if it
	// is still in from. totalAmount, when non-nil, is written in the same
	// statement. It reports whether the row was changed.
	UpdateOrderStatus(ctx context.Context, id string, from, to model.OrderStatus, totalAmount *int64) (bool, error)
	DeletePlacedOrder(ctx context.Context, id string) error
	DeletePlacedOrdersBefore(ctx context.Context, cutoff time.Time, limit int) (int, error)
	ListOrdersByUser(ctx context.Context, userID string) ([]model.Order, error)
	ListOrdersByRestaurant(ctx context.Context, restaurantID string) ([]model.Order, error)
}

type RestaurantFilter struct {
	City     string
	Query    string
	Cuisines []string
	Limit    int
	Offset   int
}

type RestaurantStore interface {
	// CreateRestaurant fails with ErrConflict when the owner already has one.
	CreateRestaurant(ctx context.Context, r *model.Restaurant) error
	UpdateRestaurant(ctx context.Context, r *model.Restaurant) error
	GetRestaurant(ctx context.Context, id string) (*model.Restaurant, error)
	GetRestaurantByOwner(ctx context.Context, userID string) (*model.Restaurant, error)
	// SearchRestaurants returns one page of matches and the total match count.
	SearchRestaurants(ctx context.Context, f RestaurantFilter) ([]model.Restaurant, int, error)
}

type UserStore interface {
	// CreateUser fails with ErrConflict when the login is taken.
	CreateUser(ctx context.Context, u *model.User) error
	GetUser(ctx context.Context, id string) (*model.User, error)
	GetUserByLogin(ctx context.Context, login string) (*model.User, error)
	// UpdateUser replaces the profile fields; login and password are kept.
	UpdateUser(ctx context.Context, u *model.User) error
}
