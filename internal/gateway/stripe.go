// Package gateway adapts the Stripe Checkout API to the service layer.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"

	"foodorder/internal/service"
)

const (
	metaOrderID      = "orderId"
	metaRestaurantID = "restaurantId"

	defaultCurrency    = "php"
	defaultHTTPTimeout = 10 * time.Second
	signatureTolerance = 5 * time.Minute
)

type StripeConfig struct {
	APIKey        string
	WebhookSecret string
	Currency      string
	HTTPTimeout   time.Duration
	// BackendURL overrides the Stripe API base URL. Empty means the real API.
	BackendURL string
}

// Stripe implements service.Gateway and service.EventVerifier.
type Stripe struct {
	api           *client.API
	webhookSecret string
	currency      string
}

var (
	_ service.Gateway       = (*Stripe)(nil)
	_ service.EventVerifier = (*Stripe)(nil)
)

func NewStripe(cfg StripeConfig) *Stripe {
	if cfg.Currency == "" {
		cfg.Currency = defaultCurrency
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = defaultHTTPTimeout
	}

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	// GetBackendWithConfig fills in defaults, so every backend needs its own config.
	backendConfig := func() *stripe.BackendConfig {
		c := &stripe.BackendConfig{
			HTTPClient:        httpClient,
			LeveledLogger:     slogLogger{},
			MaxNetworkRetries: stripe.Int64(0),
		}
		if cfg.BackendURL != "" {
			c.URL = stripe.String(cfg.BackendURL)
		}
		return c
	}
	backends := &stripe.Backends{
		API:     stripe.GetBackendWithConfig(stripe.APIBackend, backendConfig()),
		Connect: stripe.GetBackendWithConfig(stripe.ConnectBackend, backendConfig()),
		Uploads: stripe.GetBackendWithConfig(stripe.UploadsBackend, backendConfig()),
	}

	return &Stripe{
		api:           client.New(cfg.APIKey, backends),
		webhookSecret: cfg.WebhookSecret,
		currency:      cfg.Currency,
	}
}

func (s *Stripe) CreateSession(ctx context.Context, req service.SessionRequest) (*service.Session, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
		ShippingOptions: []*stripe.CheckoutSessionShippingOptionParams{{
			ShippingRateData: &stripe.CheckoutSessionShippingOptionShippingRateDataParams{
				DisplayName: stripe.String(service.DeliveryLineName),
				Type:        stripe.String("fixed_amount"),
				FixedAmount: &stripe.CheckoutSessionShippingOptionShippingRateDataFixedAmountParams{
					Amount:   stripe.Int64(req.DeliveryAmount),
					Currency: stripe.String(s.currency),
				},
			},
		}},
	}
	for _, item := range req.Items {
		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(s.currency),
				UnitAmount: stripe.Int64(item.UnitAmount),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(item.DisplayName),
				},
			},
			Quantity: stripe.Int64(item.Quantity),
		})
	}
	params.AddMetadata(metaOrderID, req.OrderID)
	params.AddMetadata(metaRestaurantID, req.RestaurantID)
	params.Context = ctx

	cs, err := s.api.CheckoutSessions.New(params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.Msg != "" {
			return nil, &service.GatewayError{Message: stripeErr.Msg, Err: err}
		}
		return nil, &service.GatewayError{Message: "Error creating stripe session", Err: err}
	}
	if cs.URL == "" {
		return nil, &service.GatewayError{Message: "Error creating stripe session"}
	}

	return &service.Session{ID: cs.ID, URL: cs.URL}, nil
}

// VerifyEvent checks the Stripe-Signature header over the exact payload bytes
// before anything in the payload is trusted.
func (s *Stripe) VerifyEvent(payload []byte, signatureHeader string) (*service.PaymentEvent, error) {
	if s.webhookSecret == "" {
		return nil, fmt.Errorf("%w: webhook secret not configured", service.ErrInvalidSignature)
	}

	event, err := webhook.ConstructEventWithOptions(payload, signatureHeader, s.webhookSecret,
		webhook.ConstructEventOptions{
			Tolerance:                signatureTolerance,
			IgnoreAPIVersionMismatch: true,
		})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", service.ErrInvalidSignature, err)
	}

	out := &service.PaymentEvent{ID: event.ID, Type: string(event.Type)}
	if out.Type != service.EventCheckoutCompleted {
		return out, nil
	}
	if event.Data == nil {
		return nil, fmt.Errorf("event %s has no data", event.ID)
	}

	var cs stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
		return nil, fmt.Errorf("decode checkout session: %w", err)
	}
	out.OrderID = cs.Metadata[metaOrderID]
	out.RestaurantID = cs.Metadata[metaRestaurantID]
	out.AmountTotal = cs.AmountTotal
	return out, nil
}

// slogLogger routes stripe-go's own logging into slog.
type slogLogger struct{}

func (slogLogger) Debugf(format string, v ...interface{}) {
	slog.Debug(fmt.Sprintf(format, v...), "component", "stripe")
}

func (slogLogger) Infof(format string, v ...interface{}) {
	slog.Debug(fmt.Sprintf(format, v...), "component", "stripe")
}

func (slogLogger) Warnf(format string, v ...interface{}) {
	slog.Warn(fmt.Sprintf(format, v...), "component", "stripe")
}

func (slogLogger) Errorf(format string, v ...interface{}) {
	slog.Error(fmt.Sprintf(format, v...), "component", "stripe")
}
