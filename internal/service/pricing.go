package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"foodorder/internal/model"
)

const DeliveryLineName = "Delivery"

// Quantity accepts both JSON numbers and numeric strings ("2"). Anything that
// is not a whole number decodes to 0 and is rejected later as an invalid
// quantity rather than as malformed JSON.
type Quantity int

func (q *Quantity) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		b = []byte(strings.TrimSpace(s))
	}
	n, err := strconv.Atoi(string(b))
	if err != nil {
		*q = 0
		return nil
	}
	*q = Quantity(n)
	return nil
}

type CartLine struct {
	MenuItemID string   `json:"menuItemId"`
	Name       string   `json:"name"`
	Quantity   Quantity `json:"quantity"`
}

// LineItem is a gateway-agnostic payment line. UnitAmount is in minor units.
type LineItem struct {
	UnitAmount  int64
	Quantity    int64
	DisplayName string
	Delivery    bool
}

// ResolveMenuItem finds the authoritative menu entry for a cart reference.
func ResolveMenuItem(menu []model.MenuItem, menuItemID string) (model.MenuItem, error) {
	for _, item := range menu {
		if item.ID == menuItemID {
			return item, nil
		}
	}
	return model.MenuItem{}, &ItemNotFoundError{MenuItemID: menuItemID}
}

func validateCart(cart []CartLine) error {
	if len(cart) == 0 {
		return &ValidationError{Field: "cartItems", Message: "cart must contain at least one item", Err: ErrEmptyCart}
	}
	for i, line := range cart {
		if line.MenuItemID == "" {
			return invalidField(fmt.Sprintf("cartItems[%d].menuItemId", i), "menu item id is required")
		}
		if line.Quantity <= 0 {
			return &ValidationError{
				Field:   fmt.Sprintf("cartItems[%d].quantity", i),
				Message: "quantity must be a positive integer",
				Err:     ErrInvalidQuantity,
			}
		}
	}
	return nil
}

// BuildLineItems prices every cart line from the menu and appends a single
// delivery line. Amounts are copied from the menu as-is.
func BuildLineItems(cart []CartLine, menu []model.MenuItem, deliveryPrice int64) ([]LineItem, error) {
	if err := validateCart(cart); err != nil {
		return nil, err
	}

	items := make([]LineItem, 0, len(cart)+1)
	for _, line := range cart {
		menuItem, err := ResolveMenuItem(menu, line.MenuItemID)
		if err != nil {
			return nil, err
		}
		items = append(items, LineItem{
			UnitAmount:  menuItem.Price,
			Quantity:    int64(line.Quantity),
			DisplayName: menuItem.Name,
		})
	}

	items = append(items, LineItem{
		UnitAmount:  deliveryPrice,
		Quantity:    1,
		DisplayName: DeliveryLineName,
		Delivery:    true,
	})
	return items, nil
}
