package model

import "time"

const (
	EventOrderPlaced        = "order.placed"
	EventOrderPaid          = "order.paid"
	EventOrderStatusChanged = "order.status_changed"
)

// OrderEvent is broadcast to downstream consumers after a ledger transition.
type OrderEvent struct {
	Type         string      `json:"type"`
	OrderID      string      `json:"orderId"`
	RestaurantID string      `json:"restaurantId"`
	UserID       string      `json:"userId"`
	Status       OrderStatus `json:"status"`
	TotalAmount  *int64      `json:"totalAmount,omitempty"`
	OccurredAt   time.Time   `json:"occurredAt"`
}
