// Package events publishes order ledger transitions to a message broker.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"foodorder/internal/model"
	"foodorder/internal/service"
)

// Nop drops every event. It is used when no broker is configured.
type Nop struct{}

var _ service.EventPublisher = Nop{}

func (Nop) PublishOrderEvent(context.Context, model.OrderEvent) error { return nil }

func (Nop) Close() error { return nil }

func encode(event model.OrderEvent) ([]byte, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal %s event: %w", event.Type, err)
	}
	return body, nil
}
