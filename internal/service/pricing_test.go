package service

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foodorder/internal/model"
)

var menu = []model.MenuItem{
	{ID: "a", Name: "Adobo", Price: 10000},
	{ID: "b", Name: "Sinigang", Price: 12500},
	{ID: "c", Name: "Halo-halo", Price: 0},
}

func TestBuildLineItems_RoundTrip(t *testing.T) {
	var cart []CartLine
	require.NoError(t, json.Unmarshal([]byte(`[{"menuItemId":"a","name":"ignored","quantity":"2"}]`), &cart))

	items, err := BuildLineItems(cart, menu, 5000)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, LineItem{UnitAmount: 10000, Quantity: 2, DisplayName: "Adobo"}, items[0])
	assert.Equal(t, LineItem{UnitAmount: 5000, Quantity: 1, DisplayName: DeliveryLineName, Delivery: true}, items[1])
}

func TestBuildLineItems_OneLinePerCartItemPlusDelivery(t *testing.T) {
	cart := []CartLine{
		{MenuItemID: "a", Quantity: 1},
		{MenuItemID: "b", Quantity: 3},
		{MenuItemID: "c", Quantity: 1},
		{MenuItemID: "a", Quantity: 4},
	}

	items, err := BuildLineItems(cart, menu, 0)
	require.NoError(t, err)
	require.Len(t, items, len(cart)+1)

	for i, line := range cart {
		want, _ := ResolveMenuItem(menu, line.MenuItemID)
		assert.Equal(t, want.Price, items[i].UnitAmount)
		assert.Equal(t, int64(line.Quantity), items[i].Quantity)
		assert.False(t, items[i].Delivery)
	}
	assert.True(t, items[len(cart)].Delivery)
	assert.Equal(t, int64(0), items[len(cart)].UnitAmount)
}

func TestBuildLineItems_Errors(t *testing.T) {
	tests := []struct {
		name      string
		cart      []CartLine
		wantErr   error
		wantField string
	}{
		{name: "empty cart", cart: nil, wantErr: ErrEmptyCart, wantField: "cartItems"},
		{name: "zero quantity", cart: []CartLine{{MenuItemID: "a", Quantity: 0}}, wantErr: ErrInvalidQuantity, wantField: "cartItems[0].quantity"},
		{name: "negative quantity", cart: []CartLine{{MenuItemID: "a", Quantity: 1}, {MenuItemID: "b", Quantity: -1}}, wantErr: ErrInvalidQuantity, wantField: "cartItems[1].quantity"},
		{name: "missing menu item id", cart: []CartLine{{Quantity: 1}}, wantErr: ErrInvalidInput, wantField: "cartItems[0].menuItemId"},
		{name: "unknown menu item", cart: []CartLine{{MenuItemID: "zzz", Quantity: 1}}, wantErr: ErrItemNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildLineItems(tt.cart, menu, 5000)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)

			var ve *ValidationError
			if tt.wantField != "" {
				require.True(t, errors.As(err, &ve))
				assert.Equal(t, tt.wantField, ve.Field)
			}
		})
	}
}

func TestQuantity_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		in   string
		want Quantity
	}{
		{in: `2`, want: 2},
		{in: `"3"`, want: 3},
		{in: `" 4 "`, want: 4},
		{in: `"two"`, want: 0},
		{in: `1.5`, want: 0},
		{in: `null`, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var q Quantity
			require.NoError(t, json.Unmarshal([]byte(tt.in), &q))
			assert.Equal(t, tt.want, q)
		})
	}
}
