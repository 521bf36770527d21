package service

import (
	"context"
	"fmt"
	"log/slog"
)

const EventCheckoutCompleted = "checkout.session.completed"

// PaymentEvent is a provider notification that has passed signature checks.
type PaymentEvent struct {
	ID           string
	Type         string
	OrderID      string
	RestaurantID string
	AmountTotal  int64
}

// EventVerifier authenticates a raw notification body and only then parses it.
type EventVerifier interface {
	VerifyEvent(payload []byte, signatureHeader string) (*PaymentEvent, error)
}

// DeliveryLog remembers provider event ids that were already applied.
type DeliveryLog interface {
	Seen(ctx context.Context, eventID string) (bool, error)
	Mark(ctx context.Context, eventID string) error
}

type Outcome int

const (
	OutcomeIgnored Outcome = iota
	OutcomeApplied
	OutcomeDuplicate
)

func (o Outcome) String() string {
	switch o {
	case OutcomeIgnored:
		return "ignored"
	case OutcomeApplied:
		return "applied"
	case OutcomeDuplicate:
		return "duplicate"
	default:
		return "unknown"
	}
}

// Reconciler applies payment notifications to the ledger. It is safe to
// call with the same notification any number of times.
type Reconciler struct {
	verifier EventVerifier
	ledger   *Ledger
	log      DeliveryLog
}

func NewReconciler(verifier EventVerifier, ledger *Ledger, log DeliveryLog) *Reconciler {
	return &Reconciler{verifier: verifier, ledger: ledger, log: log}
}

// Handle verifies rawBody against signatureHeader and, for completed
// checkouts, records the payment. Errors wrapping ErrInvalidSignature or
// ErrOrderNotFound are sender-side problems; any other error is internal
// and worth a provider retry.
func (r *Reconciler) Handle(ctx context.Context, rawBody []byte, signatureHeader string) (Outcome, error) {
	event, err := r.verifier.VerifyEvent(rawBody, signatureHeader)
	if err != nil {
		return OutcomeIgnored, err
	}

	if event.Type != EventCheckoutCompleted {
		slog.Debug("webhook event ignored", "event_id", event.ID, "type", event.Type)
		return OutcomeIgnored, nil
	}

	if event.OrderID == "" {
		return OutcomeIgnored, fmt.Errorf("%w: event %s carries no order id", ErrOrderNotFound, event.ID)
	}

	if r.seen(ctx, event.ID) {
		slog.Info("webhook event already applied", "event_id", event.ID, "order_id", event.OrderID)
		return OutcomeDuplicate, nil
	}

	order, applied, err := r.ledger.RecordPayment(ctx, event.OrderID, event.AmountTotal)
	if err != nil {
		return OutcomeIgnored, err
	}

	r.mark(ctx, event.ID)

	if !applied {
		slog.Info("payment already recorded", "event_id", event.ID, "order_id", order.ID, "status", order.Status)
		return OutcomeDuplicate, nil
	}
	return OutcomeApplied, nil
}

func (r *Reconciler) seen(ctx context.Context, eventID string) bool {
	if r.log == nil || eventID == "" {
		return false
	}
	ok, err := r.log.Seen(ctx, eventID)
	if err != nil {
		slog.Warn("delivery log lookup failed", "event_id", eventID, "error", err)
		return false
	}
	return ok
}

func (r *Reconciler) mark(ctx context.Context, eventID string) {
	if r.log == nil || eventID == "" {
		return
	}
	if err := r.log.Mark(ctx, eventID); err != nil {
		slog.Warn("delivery log write failed", "event_id", eventID, "error", err)
	}
}
