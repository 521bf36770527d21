// Package memstore keeps orders, restaurants and users in process memory.
// It backs local runs without Postgres and the package tests.
package memstore

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"foodorder/internal/model"
	"foodorder/internal/storage"
)

type Store struct {
	mu          sync.RWMutex
	orders      map[string]model.Order
	restaurants map[string]model.Restaurant
	users       map[string]model.User
}

var (
	_ storage.OrderStore      = (*Store)(nil)
	_ storage.RestaurantStore = (*Store)(nil)
	_ storage.UserStore       = (*Store)(nil)
)

func New() *Store {
	return &Store{
		orders:      make(map[string]model.Order),
		restaurants: make(map[string]model.Restaurant),
		users:       make(map[string]model.User),
	}
}

func (s *Store) CreateOrder(ctx context.Context, order *model.Order) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[order.ID]; ok {
		return storage.ErrConflict
	}
	s.orders[order.ID] = cloneOrder(*order)
	return nil
}

func (s *Store) GetOrder(_ context.Context, id string) (*model.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	c := cloneOrder(o)
	return &c, nil
}

func (s *Store) UpdateOrderStatus(ctx context.Context, id string, from, to model.OrderStatus, totalAmount *int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok || o.Status != from {
		return false, nil
	}
	o.Status = to
	if totalAmount != nil {
		v := *totalAmount
		o.TotalAmount = &v
	}
	s.orders[id] = o
	return true, nil
}

func (s *Store) DeletePlacedOrder(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok || o.Status != model.StatusPlaced {
		return storage.ErrNotFound
	}
	delete(s.orders, id)
	return nil
}

func (s *Store) DeletePlacedOrdersBefore(ctx context.Context, cutoff time.Time, limit int) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := 0
	for id, o := range s.orders {
		if limit > 0 && deleted >= limit {
			break
		}
		if o.Status == model.StatusPlaced && o.CreatedAt.Before(cutoff) {
			delete(s.orders, id)
			deleted++
		}
	}
	return deleted, nil
}

func (s *Store) ListOrdersByUser(_ context.Context, userID string) ([]model.Order, error) {
	return s.listOrders(func(o model.Order) bool { return o.UserID == userID }), nil
}

func (s *Store) ListOrdersByRestaurant(_ context.Context, restaurantID string) ([]model.Order, error) {
	return s.listOrders(func(o model.Order) bool { return o.RestaurantID == restaurantID }), nil
}

func (s *Store) listOrders(match func(model.Order) bool) []model.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var orders []model.Order
	for _, o := range s.orders {
		if match(o) {
			orders = append(orders, cloneOrder(o))
		}
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders
}

func (s *Store) CreateRestaurant(_ context.Context, r *model.Restaurant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.restaurants {
		if existing.UserID == r.UserID {
			return storage.ErrConflict
		}
	}
	s.restaurants[r.ID] = cloneRestaurant(*r)
	return nil
}

func (s *Store) UpdateRestaurant(_ context.Context, r *model.Restaurant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.restaurants[r.ID]; !ok {
		return storage.ErrNotFound
	}
	s.restaurants[r.ID] = cloneRestaurant(*r)
	return nil
}

func (s *Store) GetRestaurant(_ context.Context, id string) (*model.Restaurant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.restaurants[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	c := cloneRestaurant(r)
	return &c, nil
}

func (s *Store) GetRestaurantByOwner(_ context.Context, userID string) (*model.Restaurant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.restaurants {
		if r.UserID == userID {
			c := cloneRestaurant(r)
			return &c, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *Store) SearchRestaurants(_ context.Context, f storage.RestaurantFilter) ([]model.Restaurant, int, error) {
	if f.Offset < 0 || f.Limit < 0 {
		return nil, 0, storage.ErrInvalidFilter
	}

	s.mu.RLock()
	var matches []model.Restaurant
	for _, r := range s.restaurants {
		if matchesFilter(r, f) {
			matches = append(matches, cloneRestaurant(r))
		}
	}
	s.mu.RUnlock()

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].LastUpdated.After(matches[j].LastUpdated)
	})

	total := len(matches)
	if f.Offset >= total {
		return nil, total, nil
	}
	end := total
	if f.Limit > 0 && f.Offset+f.Limit < end {
		end = f.Offset + f.Limit
	}
	return matches[f.Offset:end], total, nil
}

func matchesFilter(r model.Restaurant, f storage.RestaurantFilter) bool {
	if !strings.EqualFold(r.City, f.City) {
		return false
	}
	for _, c := range f.Cuisines {
		if !slices.ContainsFunc(r.Cuisines, func(rc string) bool { return strings.EqualFold(rc, c) }) {
			return false
		}
	}
	if f.Query == "" {
		return true
	}
	q := strings.ToLower(f.Query)
	if strings.Contains(strings.ToLower(r.RestaurantName), q) {
		return true
	}
	return slices.ContainsFunc(r.Cuisines, func(rc string) bool { return strings.Contains(strings.ToLower(rc), q) })
}

func (s *Store) CreateUser(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Login == u.Login {
			return storage.ErrConflict
		}
	}
	s.users[u.ID] = *u
	return nil
}

func (s *Store) GetUser(_ context.Context, id string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &u, nil
}

func (s *Store) GetUserByLogin(_ context.Context, login string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Login == login {
			return &u, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *Store) UpdateUser(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.users[u.ID]
	if !ok {
		return storage.ErrNotFound
	}
	existing.Name = u.Name
	existing.AddressLine1 = u.AddressLine1
	existing.City = u.City
	existing.Country = u.Country
	s.users[u.ID] = existing
	return nil
}

func cloneOrder(o model.Order) model.Order {
	o.CartItems = append([]model.CartItem(nil), o.CartItems...)
	if o.TotalAmount != nil {
		v := *o.TotalAmount
		o.TotalAmount = &v
	}
	return o
}

func cloneRestaurant(r model.Restaurant) model.Restaurant {
	r.Cuisines = append([]string(nil), r.Cuisines...)
	r.MenuItems = append([]model.MenuItem(nil), r.MenuItems...)
	return r
}
