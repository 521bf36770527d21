package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foodorder/internal/memstore"
)

func TestAuthService(t *testing.T) {
	svc := NewAuthService(memstore.New())
	ctx := context.Background()

	user, err := svc.Register(ctx, " juan ", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "juan", user.Login)
	assert.NotEqual(t, []byte("s3cret"), user.PasswordHash)

	_, err = svc.Register(ctx, "juan", "other")
	assert.ErrorIs(t, err, ErrLoginExists)

	_, err = svc.Register(ctx, "", "x")
	assert.ErrorIs(t, err, ErrInvalidInput)

	got, err := svc.Authenticate(ctx, "juan", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = svc.Authenticate(ctx, "juan", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "nobody", "s3cret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	byID, err := svc.GetMe(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "juan", byID.Login)

	_, err = svc.GetMe(ctx, "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAuthService_UpdateMe(t *testing.T) {
	svc := NewAuthService(memstore.New())
	ctx := context.Background()

	user, err := svc.Register(ctx, "maria", "s3cret")
	require.NoError(t, err)

	valid := UserProfileInput{Name: " Maria ", AddressLine1: "1 Rizal Ave", City: "Manila", Country: "Philippines"}

	updated, err := svc.UpdateMe(ctx, user.ID, valid)
	require.NoError(t, err)
	assert.Equal(t, "Maria", updated.Name)

	stored, err := svc.GetMe(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Maria", stored.Name)
	assert.Equal(t, "1 Rizal Ave", stored.AddressLine1)
	assert.Equal(t, "Manila", stored.City)
	assert.Equal(t, "Philippines", stored.Country)
	assert.Equal(t, "maria", stored.Login)

	_, err = svc.Authenticate(ctx, "maria", "s3cret")
	assert.NoError(t, err, "profile update keeps the password")

	tests := []struct {
		name   string
		mutate func(*UserProfileInput)
		field  string
	}{
		{name: "missing name", mutate: func(in *UserProfileInput) { in.Name = " " }, field: "name"},
		{name: "missing address", mutate: func(in *UserProfileInput) { in.AddressLine1 = "" }, field: "addressLine1"},
		{name: "missing city", mutate: func(in *UserProfileInput) { in.City = "" }, field: "city"},
		{name: "missing country", mutate: func(in *UserProfileInput) { in.Country = "" }, field: "country"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			_, err := svc.UpdateMe(ctx, user.ID, in)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}

	_, err = svc.UpdateMe(ctx, "ghost", valid)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestOrderQueries(t *testing.T) {
	st := memstore.New()
	r := seedRestaurant(t, st)
	ledger := NewLedger(st, st, nil, 0)
	order := placeOrder(t, ledger, r)
	q := NewOrderQueries(ledger, st, st)
	ctx := context.Background()

	mine, err := q.ForUser(ctx, customerID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, order.ID, mine[0].ID)
	require.NotNil(t, mine[0].Restaurant)
	assert.Equal(t, r.RestaurantName, mine[0].Restaurant.RestaurantName)
	assert.Nil(t, mine[0].User, "customer was never registered")

	owned, err := q.ForOwner(ctx, ownerID)
	require.NoError(t, err)
	assert.Len(t, owned, 1)

	_, err = q.ForOwner(ctx, customerID)
	assert.ErrorIs(t, err, ErrRestaurantNotFound)
}

func TestOrderQueries_ByID(t *testing.T) {
	st := memstore.New()
	r := seedRestaurant(t, st)
	ledger := NewLedger(st, st, nil, 0)
	order := placeOrder(t, ledger, r)
	q := NewOrderQueries(ledger, st, st)
	ctx := context.Background()

	got, err := q.ByID(ctx, customerID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)
	require.NotNil(t, got.Restaurant)
	assert.Equal(t, r.ID, got.Restaurant.ID)

	got, err = q.ByID(ctx, ownerID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)

	_, err = q.ByID(ctx, "stranger", order.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = q.ByID(ctx, customerID, "missing")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}
