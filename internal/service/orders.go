package service

import (
	"context"
	"errors"
	"fmt"

	"foodorder/internal/model"
	"foodorder/internal/storage"
)

// OrderQueries serves the read side: orders with their restaurant and user
// expanded for display.
type OrderQueries struct {
	ledger      *Ledger
	restaurants storage.RestaurantStore
	users       storage.UserStore
}

func NewOrderQueries(ledger *Ledger, restaurants storage.RestaurantStore, users storage.UserStore) *OrderQueries {
	return &OrderQueries{ledger: ledger, restaurants: restaurants, users: users}
}

func (q *OrderQueries) ForUser(ctx context.Context, userID string) ([]model.OrderDetails, error) {
	orders, err := q.ledger.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return q.expand(ctx, orders)
}

// ForOwner lists the orders placed against the owner's restaurant.
func (q *OrderQueries) ForOwner(ctx context.Context, ownerID string) ([]model.OrderDetails, error) {
	restaurant, err := q.restaurants.GetRestaurantByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrRestaurantNotFound
		}
		return nil, fmt.Errorf("get restaurant: %w", err)
	}

	orders, err := q.ledger.ListForRestaurant(ctx, restaurant.ID)
	if err != nil {
		return nil, err
	}
	return q.expand(ctx, orders)
}

// ByID returns a single order to its customer or to the owner of the
// restaurant it was placed with.
func (q *OrderQueries) ByID(ctx context.Context, userID, orderID string) (*model.OrderDetails, error) {
	order, err := q.ledger.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.UserID != userID {
		restaurant, err := q.restaurants.GetRestaurant(ctx, order.RestaurantID)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("get restaurant: %w", err)
		}
		if restaurant == nil || restaurant.UserID != userID {
			return nil, ErrForbidden
		}
	}

	details, err := q.expand(ctx, []model.Order{*order})
	if err != nil {
		return nil, err
	}
	return &details[0], nil
}

func (q *OrderQueries) expand(ctx context.Context, orders []model.Order) ([]model.OrderDetails, error) {
	restaurants := make(map[string]*model.Restaurant)
	users := make(map[string]*model.User)

	details := make([]model.OrderDetails, 0, len(orders))
	for _, o := range orders {
		d := model.OrderDetails{Order: o}

		r, ok := restaurants[o.RestaurantID]
		if !ok {
			var err error
			r, err = q.restaurants.GetRestaurant(ctx, o.RestaurantID)
			if err != nil && !errors.Is(err, storage.ErrNotFound) {
				return nil, fmt.Errorf("expand restaurant: %w", err)
			}
			restaurants[o.RestaurantID] = r
		}
		d.Restaurant = r

		u, ok := users[o.UserID]
		if !ok {
			var err error
			u, err = q.users.GetUser(ctx, o.UserID)
			if err != nil && !errors.Is(err, storage.ErrNotFound) {
				return nil, fmt.Errorf("expand user: %w", err)
			}
			users[o.UserID] = u
		}
		d.User = u

		details = append(details, d)
	}
	return details, nil
}
