package service

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyCart               = errors.New("cart is empty")
	ErrInvalidQuantity         = errors.New("invalid quantity")
	ErrInvalidInput            = errors.New("invalid input")
	ErrItemNotFound            = errors.New("menu item not found")
	ErrRestaurantNotFound      = errors.New("restaurant not found")
	ErrRestaurantExists        = errors.New("user restaurant already exists")
	ErrOrderNotFound           = errors.New("order not found")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrForbidden               = errors.New("forbidden")
	ErrInvalidSignature        = errors.New("invalid webhook signature")
	ErrGatewaySession          = errors.New("payment gateway session error")
	ErrLoginExists             = errors.New("login already exists")
	ErrInvalidCredentials      = errors.New("invalid login or password")
	ErrUserNotFound            = errors.New("user not found")
)

// ValidationError points at the offending request field.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	if e.Err == nil {
		return ErrInvalidInput
	}
	return e.Err
}

type ItemNotFoundError struct {
	MenuItemID string
}

func (e *ItemNotFoundError) Error() string {
	return fmt.Sprintf("menu item not found: %s", e.MenuItemID)
}

func (e *ItemNotFoundError) Unwrap() error { return ErrItemNotFound }

// GatewayError carries the payment provider's diagnostic message.
type GatewayError struct {
	Message string
	Err     error
}

func (e *GatewayError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("payment gateway: %s: %v", e.Message, e.Err)
	}
	return "payment gateway: " + e.Message
}

func (e *GatewayError) Is(target error) bool { return target == ErrGatewaySession }

func (e *GatewayError) Unwrap() error { return e.Err }

func invalidField(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}
