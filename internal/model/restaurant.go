package model

import "time"

type MenuItem struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Price int64  `json:"price"` // minor units
}

type Restaurant struct {
	ID                    string     `json:"_id"`
	UserID                string     `json:"user"`
	RestaurantName        string     `json:"restaurantName"`
	City                  string     `json:"city"`
	Country               string     `json:"country"`
	DeliveryPrice         int64      `json:"deliveryPrice"` // minor units
	EstimatedDeliveryTime int        `json:"estimatedDeliveryTime"`
	Cuisines              []string   `json:"cuisines"`
	MenuItems             []MenuItem `json:"menuItems"`
	LastUpdated           time.Time  `json:"lastUpdated"`
}

type SearchResult struct {
	Data       []Restaurant `json:"data"`
	Pagination Pagination   `json:"pagination"`
}

type Pagination struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Pages int `json:"pages"`
}
