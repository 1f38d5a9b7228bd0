package kafka

import (
	"encoding/json"
	"time"

	"cheflink/internal/services"

	"github.com/google/uuid"
)

const (
	TopicOrderCreated       = "order.created"
	TopicOrderUpdated       = "order.updated"
	TopicOrderStatusChanged = "order.status.changed"
	TopicOrderPaymentChange = "order.payment.changed"
	TopicOrderDeleted       = "order.deleted"
)

// topics maps event types onto their topic. Unknown types are dropped.
var topics = map[string]string{
	services.EventOrderCreated:              TopicOrderCreated,
	services.EventOrderUpdated:              TopicOrderUpdated,
	services.EventOrderStatusChanged:        TopicOrderStatusChanged,
	services.EventOrderPaymentStatusChanged: TopicOrderPaymentChange,
	services.EventOrderDeleted:              TopicOrderDeleted,
}

func TopicFor(eventType string) (string, bool) {
	t, ok := topics[eventType]
	return t, ok
}

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

func NewEnvelope(producer, eventType, orderID string, payload any) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      producer,
		CorrelationID: orderID,
		Payload:       raw,
	}, nil
}
