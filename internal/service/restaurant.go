package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"foodorder/internal/model"
	"foodorder/internal/storage"
)

const searchPageSize = 10

type MenuItemInput struct {
	ID    string `json:"_id,omitempty"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

type RestaurantInput struct {
	RestaurantName        string          `json:"restaurantName"`
	City                  string          `json:"city"`
	Country               string          `json:"country"`
	DeliveryPrice         int64           `json:"deliveryPrice"`
	EstimatedDeliveryTime int             `json:"estimatedDeliveryTime"`
	Cuisines              []string        `json:"cuisines"`
	MenuItems             []MenuItemInput `json:"menuItems"`
}

type SearchQuery struct {
	Query    string
	Cuisines []string
	Page     int
}

type RestaurantService struct {
	store storage.RestaurantStore
}

func NewRestaurantService(store storage.RestaurantStore) *RestaurantService {
	return &RestaurantService{store: store}
}

func (s *RestaurantService) Create(ctx context.Context, ownerID string, in RestaurantInput) (*model.Restaurant, error) {
	if err := validateRestaurantInput(in); err != nil {
		return nil, err
	}

	if _, err := s.store.GetRestaurantByOwner(ctx, ownerID); err == nil {
		return nil, ErrRestaurantExists
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("check restaurant: %w", err)
	}

	r := &model.Restaurant{ID: uuid.NewString(), UserID: ownerID}
	applyRestaurantInput(r, in)

	if err := s.store.CreateRestaurant(ctx, r); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return nil, ErrRestaurantExists
		}
		return nil, fmt.Errorf("insert restaurant: %w", err)
	}
	return r, nil
}

// Update replaces the owner's restaurant details and menu. Orders already
// placed keep their own item snapshots.
func (s *RestaurantService) Update(ctx context.Context, ownerID string, in RestaurantInput) (*model.Restaurant, error) {
	if err := validateRestaurantInput(in); err != nil {
		return nil, err
	}

	r, err := s.GetMine(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	applyRestaurantInput(r, in)

	if err := s.store.UpdateRestaurant(ctx, r); err != nil {
		return nil, fmt.Errorf("update restaurant: %w", err)
	}
	return r, nil
}

func (s *RestaurantService) GetMine(ctx context.Context, ownerID string) (*model.Restaurant, error) {
	r, err := s.store.GetRestaurantByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrRestaurantNotFound
		}
		return nil, fmt.Errorf("get restaurant: %w", err)
	}
	return r, nil
}

func (s *RestaurantService) Get(ctx context.Context, id string) (*model.Restaurant, error) {
	r, err := s.store.GetRestaurant(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrRestaurantNotFound
		}
		return nil, fmt.Errorf("get restaurant: %w", err)
	}
	return r, nil
}

func (s *RestaurantService) Search(ctx context.Context, city string, q SearchQuery) (*model.SearchResult, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return nil, invalidField("city", "city is required")
	}
	page := q.Page
	if page < 1 {
		page = 1
	}
	if page-1 > math.MaxInt/searchPageSize {
		return nil, invalidField("page", "page is out of range")
	}

	found, total, err := s.store.SearchRestaurants(ctx, storage.RestaurantFilter{
		City:     city,
		Query:    strings.TrimSpace(q.Query),
		Cuisines: q.Cuisines,
		Limit:    searchPageSize,
		Offset:   (page - 1) * searchPageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("search restaurants: %w", err)
	}
	if found == nil {
		found = []model.Restaurant{}
	}

	return &model.SearchResult{
		Data: found,
		Pagination: model.Pagination{
			Total: total,
			Page:  page,
			Pages: (total + searchPageSize - 1) / searchPageSize,
		},
	}, nil
}

func applyRestaurantInput(r *model.Restaurant, in RestaurantInput) {
	r.RestaurantName = strings.TrimSpace(in.RestaurantName)
	r.City = strings.TrimSpace(in.City)
	r.Country = strings.TrimSpace(in.Country)
	r.DeliveryPrice = in.DeliveryPrice
	r.EstimatedDeliveryTime = in.EstimatedDeliveryTime
	r.Cuisines = append([]string(nil), in.Cuisines...)
	r.LastUpdated = time.Now().UTC()

	r.MenuItems = make([]model.MenuItem, 0, len(in.MenuItems))
	for _, mi := range in.MenuItems {
		id := mi.ID
		if id == "" {
			id = uuid.NewString()
		}
		r.MenuItems = append(r.MenuItems, model.MenuItem{ID: id, Name: strings.TrimSpace(mi.Name), Price: mi.Price})
	}
}

func validateRestaurantInput(in RestaurantInput) error {
	switch {
	case strings.TrimSpace(in.RestaurantName) == "":
		return invalidField("restaurantName", "Restaurant Name must be a string.")
	case strings.TrimSpace(in.City) == "":
		return invalidField("city", "City must be a string.")
	case strings.TrimSpace(in.Country) == "":
		return invalidField("country", "Country must be a string.")
	case in.DeliveryPrice < 0:
		return invalidField("deliveryPrice", "Delivery price must be a positive number.")
	case in.EstimatedDeliveryTime < 0:
		return invalidField("estimatedDeliveryTime", "Estimated delivery time must be an integer.")
	case len(in.Cuisines) == 0:
		return invalidField("cuisines", "Cuisines cannot be empty.")
	}

	seen := make(map[string]bool, len(in.MenuItems))
	for i, mi := range in.MenuItems {
		if strings.TrimSpace(mi.Name) == "" {
			return invalidField(fmt.Sprintf("menuItems[%d].name", i), "Menu item name is required.")
		}
		if mi.Price < 0 {
			return invalidField(fmt.Sprintf("menuItems[%d].price", i), "Menu item price is required and must be a positive number.")
		}
		if mi.ID != "" {
			if seen[mi.ID] {
				return invalidField(fmt.Sprintf("menuItems[%d]._id", i), "Menu item id is duplicated.")
			}
			seen[mi.ID] = true
		}
	}
	return nil
}
