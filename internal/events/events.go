package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Skotchmaster/storefront/pkg/logging"
)

const (
	TopicUsers    = "user_events"
	TopicProducts = "product_events"
	TopicOrders   = "order_events"

	publishTimeout = 5 * time.Second
)

type Publisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
	Close() error
}

type UserEvent struct {
	Type   string    `json:"type"`
	UserID string    `json:"userID"`
	Email  string    `json:"email"`
	Role   string    `json:"role"`
	At     time.Time `json:"at"`
}

type ProductEvent struct {
	Type      string    `json:"type"`
	ProductID string    `json:"productID"`
	Name      string    `json:"name,omitempty"`
	SKU       string    `json:"sku,omitempty"`
	At        time.Time `json:"at"`
}

type OrderEvent struct {
	Type          string    `json:"type"`
	OrderID       string    `json:"orderID"`
	OrderNumber   string    `json:"orderNumber"`
	UserID        string    `json:"userID,omitempty"`
	TotalAmount   float64   `json:"totalAmount"`
	OrderStatus   string    `json:"orderStatus"`
	PaymentStatus string    `json:"paymentStatus"`
	At            time.Time `json:"at"`
}

// Emit publishes best effort: failures are logged and never reach the caller.
func Emit(ctx context.Context, p Publisher, topic, key string, event any) {
	if p == nil {
		return
	}
	l := logging.FromContext(ctx).With("topic", topic, "key", key)

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := p.PublishEvent(pubCtx, topic, key, event); err != nil {
		l.Warn("publish_event_failed", "error", err)
		return
	}
	l.Debug("publish_event_success")
}

func encode(event any) ([]byte, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("events: json.Marshal failed: %w", err)
	}
	return data, nil
}

type Nop struct{}

func (Nop) PublishEvent(context.Context, string, string, any) error { return nil }
func (Nop) Close() error                                          { return nil }
