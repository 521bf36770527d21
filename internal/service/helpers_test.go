package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"foodorder/internal/memstore"
	"foodorder/internal/model"
)

const (
	ownerID    = "owner-1"
	customerID = "customer-1"
)

func seedRestaurant(t *testing.T, st *memstore.Store) *model.Restaurant {
	t.Helper()
	r := &model.Restaurant{
		ID:                    "rest-1",
		UserID:                ownerID,
		RestaurantName:        "Lola's Kitchen",
		City:                  "Manila",
		Country:               "Philippines",
		DeliveryPrice:         5000,
		EstimatedDeliveryTime: 30,
		Cuisines:              []string{"Filipino"},
		MenuItems: []model.MenuItem{
			{ID: "item-a", Name: "Adobo", Price: 10000},
			{ID: "item-b", Name: "Sinigang", Price: 12500},
		},
		LastUpdated: time.Now().UTC(),
	}
	require.NoError(t, st.CreateRestaurant(context.Background(), r))
	return r
}

func delivery() model.DeliveryDetails {
	return model.DeliveryDetails{
		Email:        "juan@example.com",
		Name:         "Juan",
		AddressLine1: "1 Rizal Ave",
		City:         "Manila",
	}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []model.OrderEvent
}

func (p *recordingPublisher) PublishOrderEvent(_ context.Context, e model.OrderEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

type fakeGateway struct {
	calls  []SessionRequest
	url    string
	err    error
	onCall func()
}

func (g *fakeGateway) CreateSession(_ context.Context, req SessionRequest) (*Session, error) {
	g.calls = append(g.calls, req)
	if g.onCall != nil {
		g.onCall()
	}
	if g.err != nil {
		return nil, g.err
	}
	return &Session{ID: "cs_test_1", URL: g.url}, nil
}

// fakeVerifier accepts a payload only when the header equals "valid".
// A non-nil err is returned for every call instead.
type fakeVerifier struct {
	event PaymentEvent
	err   error
}

func (v *fakeVerifier) VerifyEvent(_ []byte, header string) (*PaymentEvent, error) {
	if v.err != nil {
		return nil, v.err
	}
	if header != "valid" {
		return nil, fmt.Errorf("%w: mismatch", ErrInvalidSignature)
	}
	e := v.event
	return &e, nil
}

type memoryLog struct {
	mu   sync.Mutex
	seen map[string]bool
}

func (l *memoryLog) Seen(_ context.Context, id string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.seen[id], nil
}

func (l *memoryLog) Mark(_ context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.seen == nil {
		l.seen = make(map[string]bool)
	}
	l.seen[id] = true
	return nil
}
