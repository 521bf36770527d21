package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foodorder/internal/model"
	"foodorder/internal/storage"
)

func order(id string, created time.Time) *model.Order {
	return &model.Order{
		ID:           id,
		RestaurantID: "rest-1",
		UserID:       "user-1",
		CartItems:    []model.CartItem{{MenuItemID: "a", Name: "Adobo", Quantity: 1}},
		Status:       model.StatusPlaced,
		CreatedAt:    created,
	}
}

func TestStore_OrderCAS(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.CreateOrder(ctx, order("o1", time.Now())))
	assert.ErrorIs(t, s.CreateOrder(ctx, order("o1", time.Now())), storage.ErrConflict)

	amount := int64(25000)
	ok, err := s.UpdateOrderStatus(ctx, "o1", model.StatusPlaced, model.StatusPaid, &amount)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.UpdateOrderStatus(ctx, "o1", model.StatusPlaced, model.StatusPaid, &amount)
	require.NoError(t, err)
	assert.False(t, ok, "second transition from placed must lose")

	ok, err = s.UpdateOrderStatus(ctx, "missing", model.StatusPlaced, model.StatusPaid, nil)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := s.GetOrder(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusPaid, got.Status)
	assert.Equal(t, int64(25000), *got.TotalAmount)

	assert.ErrorIs(t, s.DeletePlacedOrder(ctx, "o1"), storage.ErrNotFound)
}

func TestStore_ReturnsCopies(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.CreateOrder(ctx, order("o1", time.Now())))

	got, err := s.GetOrder(ctx, "o1")
	require.NoError(t, err)
	got.CartItems[0].Name = "changed"

	again, err := s.GetOrder(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, "Adobo", again.CartItems[0].Name)
}

func TestStore_DeletePlacedOrdersBefore(t *testing.T) {
	s := New()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, s.CreateOrder(ctx, order("old-1", now.Add(-48*time.Hour))))
	require.NoError(t, s.CreateOrder(ctx, order("old-2", now.Add(-30*time.Hour))))
	require.NoError(t, s.CreateOrder(ctx, order("fresh", now)))
	require.NoError(t, s.CreateOrder(ctx, order("old-paid", now.Add(-48*time.Hour))))
	_, err := s.UpdateOrderStatus(ctx, "old-paid", model.StatusPlaced, model.StatusPaid, nil)
	require.NoError(t, err)

	n, err := s.DeletePlacedOrdersBefore(ctx, now.Add(-25*time.Hour), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = s.DeletePlacedOrdersBefore(ctx, now.Add(-25*time.Hour), 10)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	orders, err := s.ListOrdersByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "fresh", orders[0].ID, "newest first")
	assert.Equal(t, "old-paid", orders[1].ID)
}

func TestStore_Restaurants(t *testing.T) {
	s := New()
	ctx := context.Background()
	r := &model.Restaurant{ID: "r1", UserID: "owner", City: "Manila", Cuisines: []string{"Filipino"}}
	require.NoError(t, s.CreateRestaurant(ctx, r))
	assert.ErrorIs(t, s.CreateRestaurant(ctx, &model.Restaurant{ID: "r2", UserID: "owner"}), storage.ErrConflict)

	got, err := s.GetRestaurantByOwner(ctx, "owner")
	require.NoError(t, err)
	assert.Equal(t, "r1", got.ID)

	assert.ErrorIs(t, s.UpdateRestaurant(ctx, &model.Restaurant{ID: "nope"}), storage.ErrNotFound)

	found, total, err := s.SearchRestaurants(ctx, storage.RestaurantFilter{City: "manila", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, found, 1)

	found, total, err = s.SearchRestaurants(ctx, storage.RestaurantFilter{City: "manila", Limit: 10, Offset: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Empty(t, found)

	_, _, err = s.SearchRestaurants(ctx, storage.RestaurantFilter{City: "manila", Limit: 10, Offset: -10})
	assert.ErrorIs(t, err, storage.ErrInvalidFilter)
}

func TestStore_UpdateUser(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.CreateUser(ctx, &model.User{ID: "u1", Login: "juan", PasswordHash: []byte("hash")}))

	require.NoError(t, s.UpdateUser(ctx, &model.User{ID: "u1", Login: "ignored", Name: "Juan", City: "Manila"}))
	got, err := s.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "juan", got.Login)
	assert.Equal(t, []byte("hash"), got.PasswordHash)
	assert.Equal(t, "Juan", got.Name)
	assert.Equal(t, "Manila", got.City)

	assert.ErrorIs(t, s.UpdateUser(ctx, &model.User{ID: "nope"}), storage.ErrNotFound)
}

func TestStore_CancelledContext(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, s.CreateOrder(ctx, &model.Order{ID: "o1", Status: model.StatusPlaced}), context.Canceled)
	assert.ErrorIs(t, s.DeletePlacedOrder(ctx, "o1"), context.Canceled)
	_, err := s.DeletePlacedOrdersBefore(ctx, time.Now(), 10)
	assert.ErrorIs(t, err, context.Canceled)
}
