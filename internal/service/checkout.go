package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"foodorder/internal/model"
	"foodorder/internal/storage"
)

// Gateway creates hosted payment sessions with the payment provider.
type Gateway interface {
	CreateSession(ctx context.Context, req SessionRequest) (*Session, error)
}

// SessionRequest carries everything the provider needs to charge an order.
// OrderID and RestaurantID travel as metadata and come back on completion.
type SessionRequest struct {
	Items          []LineItem
	DeliveryAmount int64
	OrderID        string
	RestaurantID   string
	SuccessURL     string
	CancelURL      string
}

type Session struct {
	ID  string
	URL string
}

type CheckoutRequest struct {
	CartItems       []CartLine            `json:"cartItems"`
	DeliveryDetails model.DeliveryDetails `json:"deliveryDetails"`
	RestaurantID    string                `json:"restaurantId"`
}

// CheckoutURLs are redirect templates; "{restaurantId}" is substituted.
type CheckoutURLs struct {
	Success string
	Cancel  string
}

func DefaultCheckoutURLs(frontendURL string) CheckoutURLs {
	base := strings.TrimRight(frontendURL, "/")
	return CheckoutURLs{
		Success: base + "/order-status?success=true",
		Cancel:  base + "/detail/{restaurantId}?cancelled=true",
	}
}

func (u CheckoutURLs) expand(tpl, restaurantID string) string {
	return strings.ReplaceAll(tpl, "{restaurantId}", url.PathEscape(restaurantID))
}

type CheckoutService struct {
	restaurants storage.RestaurantStore
	ledger      *Ledger
	gateway     Gateway
	urls        CheckoutURLs
}

func NewCheckoutService(restaurants storage.RestaurantStore, ledger *Ledger, gateway Gateway, urls CheckoutURLs) *CheckoutService {
	return &CheckoutService{
		restaurants: restaurants,
		ledger:      ledger,
		gateway:     gateway,
		urls:        urls,
	}
}

// CreateSession prices the cart, records a placed order and opens a payment
// session for it. It returns the provider's redirect URL. Nothing is
// persisted when validation or pricing fails, and the order is discarded
// again if the provider refuses the session.
func (s *CheckoutService) CreateSession(ctx context.Context, userID string, req CheckoutRequest) (string, error) {
	if err := validateCheckoutRequest(req); err != nil {
		return "", err
	}

	restaurant, err := s.restaurants.GetRestaurant(ctx, req.RestaurantID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", ErrRestaurantNotFound
		}
		return "", fmt.Errorf("get restaurant: %w", err)
	}

	lineItems, err := BuildLineItems(req.CartItems, restaurant.MenuItems, restaurant.DeliveryPrice)
	if err != nil {
		return "", err
	}

	order, err := s.ledger.Create(ctx, restaurant, userID, req.CartItems, req.DeliveryDetails)
	if err != nil {
		return "", err
	}

	products, delivery := lineItems[:len(lineItems)-1], lineItems[len(lineItems)-1]
	session, err := s.gateway.CreateSession(ctx, SessionRequest{
		Items:          products,
		DeliveryAmount: delivery.UnitAmount,
		OrderID:        order.ID,
		RestaurantID:   restaurant.ID,
		SuccessURL:     s.urls.expand(s.urls.Success, restaurant.ID),
		CancelURL:      s.urls.expand(s.urls.Cancel, restaurant.ID),
	})
	if err == nil && (session == nil || session.URL == "") {
		err = &GatewayError{Message: "Error creating stripe session"}
	}
	if err != nil {
		if discardErr := s.ledger.Discard(context.WithoutCancel(ctx), order.ID); discardErr != nil {
			slog.Error("failed to discard order after session error", "order_id", order.ID, "error", discardErr)
		}
		var gwErr *GatewayError
		if !errors.As(err, &gwErr) {
			err = &GatewayError{Message: err.Error(), Err: err}
		}
		return "", err
	}

	slog.Info("checkout session created", "order_id", order.ID, "restaurant_id", restaurant.ID, "session_id", session.ID)
	return session.URL, nil
}

func validateCheckoutRequest(req CheckoutRequest) error {
	if strings.TrimSpace(req.RestaurantID) == "" {
		return invalidField("restaurantId", "restaurant id is required")
	}
	d := req.DeliveryDetails
	switch {
	case strings.TrimSpace(d.Email) == "":
		return invalidField("deliveryDetails.email", "email is required")
	case !strings.Contains(d.Email, "@"):
		return invalidField("deliveryDetails.email", "email is invalid")
	case strings.TrimSpace(d.Name) == "":
		return invalidField("deliveryDetails.name", "name is required")
	case strings.TrimSpace(d.AddressLine1) == "":
		return invalidField("deliveryDetails.addressLine1", "address line is required")
	case strings.TrimSpace(d.City) == "":
		return invalidField("deliveryDetails.city", "city is required")
	}
	return validateCart(req.CartItems)
}
