// Package events publishes order lifecycle events.
package events

import (
	"context"
	"time"

	"phonestore/models"
)

const (
	OrderCreated       = "order.created"
	OrderStatusChanged = "order.status_changed"
)

// OrderEvent is the payload published for order lifecycle changes
type OrderEvent struct {
	Type       string             `json:"type"`
	OrderID    string             `json:"orderId"`
	UserID     string             `json:"userId"`
	Status     models.OrderStatus `json:"status"`
	Previous   models.OrderStatus `json:"previousStatus,omitempty"`
	Total      int64              `json:"total"`
	OccurredAt time.Time          `json:"occurredAt"`
}

// NewOrderEvent builds an event of the given type for o.
func NewOrderEvent(eventType string, o *models.Order, previous models.OrderStatus) OrderEvent {
	return OrderEvent{
		Type:       eventType,
		OrderID:    o.ID.Hex(),
		UserID:     o.User.Hex(),
		Status:     o.Status,
		Previous:   previous,
		Total:      o.Total,
		OccurredAt: time.Now().UTC(),
	}
}

// Publisher delivers order events to a broker.
type Publisher interface {
	PublishOrderEvent(ctx context.Context, e OrderEvent) error
	Close() error
}

// Nop discards events. It is used when no broker is configured.
type Nop struct{}

func (Nop) PublishOrderEvent(context.Context, OrderEvent) error { return nil }
func (Nop) Close() error                                          { return nil }
