package services

import "context"

const (
	EventOrderCreated              = "OrderCreated"
	EventOrderUpdated              = "OrderUpdated"
	EventOrderStatusChanged        = "OrderStatusChanged"
	EventOrderPaymentStatusChanged = "OrderPaymentStatusChanged"
	EventOrderDeleted              = "OrderDeleted"
)

// EventPublisher receives order lifecycle events after they are committed.
// Implementations must not block the caller for long and never fail the request.
type EventPublisher interface {
	Publish(ctx context.Context, eventType, orderID string, payload any)
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, string, string, any) {}

// NopPublisher discards every event.
func NopPublisher() EventPublisher {
	return nopPublisher{}
}
