package model

import "time"

type User struct {
	ID           string    `json:"_id"`
	Login        string    `json:"login"`
	PasswordHash []byte    `json:"-"`
	Name         string    `json:"name"`
	AddressLine1 string    `json:"addressLine1"`
	City         string    `json:"city"`
	Country      string    `json:"country"`
	CreatedAt    time.Time `json:"createdAt"`
}
