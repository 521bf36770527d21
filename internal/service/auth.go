package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"foodorder/internal/model"
	"foodorder/internal/storage"
)

type AuthService struct {
	users storage.UserStore
}

func NewAuthService(users storage.UserStore) *AuthService {
	return &AuthService{users: users}
}

func (s *AuthService) Register(ctx context.Context, login, password string) (*model.User, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, invalidField("login", "login and password required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.NewString(),
		Login:        login,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return nil, ErrLoginExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	return user, nil
}

func (s *AuthService) Authenticate(ctx context.Context, login, password string) (*model.User, error) {
	user, err := s.users.GetUserByLogin(ctx, strings.TrimSpace(login))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// GetMe returns the caller's own profile.
func (s *AuthService) GetMe(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

type UserProfileInput struct {
	Name         string `json:"name"`
	AddressLine1 string `json:"addressLine1"`
	City         string `json:"city"`
	Country      string `json:"country"`
}

// UpdateMe replaces the caller's delivery profile. Every field is required.
func (s *AuthService) UpdateMe(ctx context.Context, userID string, in UserProfileInput) (*model.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.AddressLine1 = strings.TrimSpace(in.AddressLine1)
	in.City = strings.TrimSpace(in.City)
	in.Country = strings.TrimSpace(in.Country)

	switch {
	case in.Name == "":
		return nil, invalidField("name", "Name must be a string")
	case in.AddressLine1 == "":
		return nil, invalidField("addressLine1", "AddressLine1 must be a string")
	case in.City == "":
		return nil, invalidField("city", "City must be a string")
	case in.Country == "":
		return nil, invalidField("country", "Country must be a string")
	}

	user, err := s.GetMe(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Name = in.Name
	user.AddressLine1 = in.AddressLine1
	user.City = in.City
	user.Country = in.Country

	if err := s.users.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}
