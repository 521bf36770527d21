package model

import (
	"time"
)

type OrderStatus string

const (
	StatusPlaced         OrderStatus = "placed"
	StatusPaid           OrderStatus = "paid"
	StatusInProgress     OrderStatus = "inProgress"
	StatusOutForDelivery OrderStatus = "outForDelivery"
	StatusDelivered      OrderStatus = "delivered"
)

var statusOrder = []OrderStatus{
	StatusPlaced,
	StatusPaid,
	StatusInProgress,
	StatusOutForDelivery,
	StatusDelivered,
}

// Rank is the position of s in the lifecycle, or -1 for an unknown status.
func (s OrderStatus) Rank() int {
	for i, st := range statusOrder {
		if st == s {
			return i
		}
	}
	return -1
}

func (s OrderStatus) Valid() bool {
	return s.Rank() >= 0
}

// Next returns the status that directly follows s.
func (s OrderStatus) Next() (OrderStatus, bool) {
	r := s.Rank()
	if r < 0 || r == len(statusOrder)-1 {
		return "", false
	}
	return statusOrder[r+1], true
}

// AtLeast reports whether s has reached other in the lifecycle.
func (s OrderStatus) AtLeast(other OrderStatus) bool {
	return s.Rank() >= other.Rank()
}

type CartItem struct {
	MenuItemID string `json:"menuItemId"`
	Name       string `json:"name"`
	Quantity   int    `json:"quantity"`
}

type DeliveryDetails struct {
	Email        string `json:"email"`
	Name         string `json:"name"`
	AddressLine1 string `json:"addressLine1"`
	City         string `json:"city"`
}

type Order struct {
	ID              string          `json:"_id"`
	RestaurantID    string          `json:"restaurantId"`
	UserID          string          `json:"userId"`
	CartItems       []CartItem      `json:"cartItems"`
	DeliveryDetails DeliveryDetails `json:"deliveryDetails"`
	Status          OrderStatus     `json:"status"`
	TotalAmount     *int64          `json:"totalAmount,omitempty"` // minor units, set once paid
	CreatedAt       time.Time       `json:"createdAt"`
}

// OrderDetails is an Order with its restaurant and user expanded.
type OrderDetails struct {
	Order
	Restaurant *Restaurant `json:"restaurant,omitempty"`
	User       *User       `json:"user,omitempty"`
}
