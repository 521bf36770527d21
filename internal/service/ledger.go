package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"foodorder/internal/model"
	"foodorder/internal/storage"
)

const defaultStoreTimeout = 5 * time.Second

// EventPublisher delivers ledger transitions to downstream consumers.
type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, event model.OrderEvent) error
}

// Ledger owns Order creation and every status change. All writes are
// conditional on the current status, so concurrent callers cannot move an
// order backward or apply a payment twice.
type Ledger struct {
	orders      storage.OrderStore
	restaurants storage.RestaurantStore
	publisher   EventPublisher
	timeout     time.Duration
	now         func() time.Time
}

func NewLedger(orders storage.OrderStore, restaurants storage.RestaurantStore, publisher EventPublisher, timeout time.Duration) *Ledger {
	if timeout <= 0 {
		timeout = defaultStoreTimeout
	}
	return &Ledger{
		orders:      orders,
		restaurants: restaurants,
		publisher:   publisher,
		timeout:     timeout,
		now:         time.Now,
	}
}

// Create records a new order in the placed state. Cart item names are taken
// from the restaurant menu at this moment and never change afterwards.
func (l *Ledger) Create(ctx context.Context, restaurant *model.Restaurant, userID string, cart []CartLine, delivery model.DeliveryDetails) (*model.Order, error) {
	if restaurant == nil || restaurant.ID == "" {
		return nil, ErrRestaurantNotFound
	}
	if err := validateCart(cart); err != nil {
		return nil, err
	}

	items := make([]model.CartItem, 0, len(cart))
	for _, line := range cart {
		menuItem, err := ResolveMenuItem(restaurant.MenuItems, line.MenuItemID)
		if err != nil {
			return nil, err
		}
		items = append(items, model.CartItem{
			MenuItemID: menuItem.ID,
			Name:       menuItem.Name,
			Quantity:   int(line.Quantity),
		})
	}

	order := &model.Order{
		ID:              uuid.NewString(),
		RestaurantID:    restaurant.ID,
		UserID:          userID,
		CartItems:       items,
		DeliveryDetails: delivery,
		Status:          model.StatusPlaced,
		CreatedAt:       l.now().UTC(),
	}

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	if err := l.orders.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	l.publish(ctx, model.EventOrderPlaced, order)
	return order, nil
}

// RecordPayment moves a placed order to paid and stores the charged total.
// An order that is already paid (or further along) is returned unchanged and
// applied is false.
func (l *Ledger) RecordPayment(ctx context.Context, orderID string, amount int64) (order *model.Order, applied bool, err error) {
	if amount < 0 {
		return nil, false, invalidField("amount", "amount must not be negative")
	}

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	order, err = l.get(ctx, orderID)
	if err != nil {
		return nil, false, err
	}
	if order.Status.AtLeast(model.StatusPaid) {
		return order, false, nil
	}

	ok, err := l.orders.UpdateOrderStatus(ctx, orderID, model.StatusPlaced, model.StatusPaid, &amount)
	if err != nil {
		return nil, false, fmt.Errorf("record payment: %w", err)
	}
	if !ok {
		// Another delivery won the race; report whatever it left behind.
		order, err = l.get(ctx, orderID)
		if err != nil {
			return nil, false, err
		}
		if order.Status.AtLeast(model.StatusPaid) {
			return order, false, nil
		}
		return nil, false, fmt.Errorf("record payment: order %s stuck in %s", orderID, order.Status)
	}

	order.Status = model.StatusPaid
	order.TotalAmount = &amount

	slog.Info("payment recorded", "order_id", orderID, "amount", amount)
	l.publish(ctx, model.EventOrderPaid, order)
	return order, true, nil
}

// AdvanceStatus performs one owner-driven step after payment:
// paid → inProgress → outForDelivery → delivered.
func (l *Ledger) AdvanceStatus(ctx context.Context, orderID string, requested model.OrderStatus, actorUserID string) (*model.Order, error) {
	if !requested.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidStatusTransition, requested)
	}

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	order, err := l.get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	restaurant, err := l.restaurants.GetRestaurant(ctx, order.RestaurantID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrRestaurantNotFound
		}
		return nil, fmt.Errorf("get restaurant: %w", err)
	}
	if restaurant.UserID != actorUserID {
		return nil, ErrForbidden
	}

	if requested == model.StatusPaid {
		return nil, fmt.Errorf("%w: %s is only set by a confirmed payment", ErrInvalidStatusTransition, requested)
	}
	next, ok := order.Status.Next()
	if !ok || next != requested {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, order.Status, requested)
	}

	changed, err := l.orders.UpdateOrderStatus(ctx, orderID, order.Status, requested, nil)
	if err != nil {
		return nil, fmt.Errorf("advance status: %w", err)
	}
	if !changed {
		return nil, fmt.Errorf("%w: order %s changed concurrently", ErrInvalidStatusTransition, orderID)
	}

	order.Status = requested
	l.publish(ctx, model.EventOrderStatusChanged, order)
	return order, nil
}

// Discard removes an order that never got a payment session. Orders past
// placed are never touched.
func (l *Ledger) Discard(ctx context.Context, orderID string) error {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	if err := l.orders.DeletePlacedOrder(ctx, orderID); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("discard order: %w", err)
	}
	return nil
}

// ExpirePlaced deletes up to limit orders that are still placed and were
// created before cutoff. Paid orders are never touched.
func (l *Ledger) ExpirePlaced(ctx context.Context, cutoff time.Time, limit int) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	n, err := l.orders.DeletePlacedOrdersBefore(ctx, cutoff, limit)
	if err != nil {
		return 0, fmt.Errorf("expire placed orders: %w", err)
	}
	return n, nil
}

func (l *Ledger) Get(ctx context.Context, orderID string) (*model.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()
	return l.get(ctx, orderID)
}

func (l *Ledger) ListForUser(ctx context.Context, userID string) ([]model.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	orders, err := l.orders.ListOrdersByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list user orders: %w", err)
	}
	return orders, nil
}

func (l *Ledger) ListForRestaurant(ctx context.Context, restaurantID string) ([]model.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	orders, err := l.orders.ListOrdersByRestaurant(ctx, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("list restaurant orders: %w", err)
	}
	return orders, nil
}

func (l *Ledger) get(ctx context.Context, orderID string) (*model.Order, error) {
	order, err := l.orders.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return order, nil
}

func (l *Ledger) publish(ctx context.Context, eventType string, order *model.Order) {
	if l.publisher == nil {
		return
	}
	event := model.OrderEvent{
		Type:         eventType,
		OrderID:      order.ID,
		RestaurantID: order.RestaurantID,
		UserID:       order.UserID,
		Status:       order.Status,
		TotalAmount:  order.TotalAmount,
		OccurredAt:   l.now().UTC(),
	}
	if err := l.publisher.PublishOrderEvent(context.WithoutCancel(ctx), event); err != nil {
		slog.Error("failed to publish order event", "type", eventType, "order_id", order.ID, "error", err)
	}
}
