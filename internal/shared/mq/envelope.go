package mq

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SchemaVersion is the current envelope schema version. Consumers reject
// envelopes from a newer schema than they understand.
const SchemaVersion = 1

// Kind tags the payload type of an envelope. The set of kinds is closed:
// decoding switches over it explicitly, so no type information from the wire
// ever selects a Go type.
type Kind string

const (
	KindPaymentStatusCommand Kind = "payment.status.command"
	KindPaymentEvent         Kind = "payment.event"
	KindEmailMessage         Kind = "notification.email"
	KindSMSMessage           Kind = "notification.sms"
	KindDeliveryReceipt      Kind = "notification.delivery.receipt"
)

// Envelope wraps every cross-service message with the metadata required for
// idempotency and tracing.
type Envelope struct {
	MessageID     uuid.UUID       `json:"message_id"`
	CorrelationID uuid.UUID       `json:"correlation_id"`
	SchemaVersion int             `json:"schema_version"`
	Timestamp     time.Time       `json:"timestamp"`
	Kind          Kind            `json:"kind"`
	Payload       json.RawMessage `json:"payload"`
}

// PaymentStatusCommand asks the order state coordinator to apply a
// webhook-sourced canonical payment status to an order.
type PaymentStatusCommand struct {
	OrderID       uuid.UUID `json:"order_id"`
	Status        string    `json:"status"`
	TransactionID string    `json:"transaction_id,omitempty"`
	Provider      string    `json:"provider"`
	EventID       string    `json:"event_id"`
}

// PaymentEvent is the wire form of a payment domain event.
type PaymentEvent struct {
	EventID       uuid.UUID `json:"event_id"`
	Type          string    `json:"type"`
	OrderID       uuid.UUID `json:"order_id"`
	OrderNo       string    `json:"order_no"`
	UserID        uuid.UUID `json:"user_id"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone,omitempty"`
	Amount        int64     `json:"amount"`
	Currency      string    `json:"currency"`
	Provider      string    `json:"provider"`
	TransactionID string    `json:"transaction_id,omitempty"`
	Reason        string    `json:"reason,omitempty"`
	Actor         string    `json:"actor,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// EmailMessage is a rendered email handed to the delivery gateway.
type EmailMessage struct {
	NotificationID uuid.UUID         `json:"notification_id"`
	From           string            `json:"from"`
	To             string            `json:"to"`
	Subject        string            `json:"subject"`
	TemplateID     string            `json:"template_id"`
	Variables      map[string]string `json:"variables,omitempty"`
}

// SMSMessage is a rendered text message handed to the delivery gateway.
type SMSMessage struct {
	NotificationID uuid.UUID `json:"notification_id"`
	Sender         string    `json:"sender"`
	To             string    `json:"to"`
	Body           string    `json:"body"`
}

// DeliveryReceipt reports the final delivery outcome of a notification.
type DeliveryReceipt struct {
	NotificationID uuid.UUID `json:"notification_id"`
	Delivered      bool      `json:"delivered"`
	Detail         string    `json:"detail,omitempty"`
	At             time.Time `json:"at"`
}

// NewEnvelope wraps a payload in an envelope. The payload must be one of the
// types matching the given kind.
func NewEnvelope(kind Kind, correlationID uuid.UUID, payload any) (*Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return &Envelope{
		MessageID:     uuid.New(),
		CorrelationID: correlationID,
		SchemaVersion: SchemaVersion,
		Timestamp:     time.Now().UTC(),
		Kind:          kind,
		Payload:       raw,
	}, nil
}

// Decode unmarshals the payload into its concrete type. Unknown kinds and
// newer schema versions are rejected.
func (e *Envelope) Decode() (any, error) {
	if e.SchemaVersion > SchemaVersion {
		return nil, fmt.Errorf("unsupported schema version %d", e.SchemaVersion)
	}

	var payload any
	switch e.Kind {
	case KindPaymentStatusCommand:
		payload = &PaymentStatusCommand{}
	case KindPaymentEvent:
		payload = &PaymentEvent{}
	case KindEmailMessage:
		payload = &EmailMessage{}
	case KindSMSMessage:
		payload = &SMSMessage{}
	case KindDeliveryReceipt:
		payload = &DeliveryReceipt{}
	default:
		return nil, fmt.Errorf("unknown envelope kind %q", e.Kind)
	}

	if err := json.Unmarshal(e.Payload, payload); err != nil {
		return nil, fmt.Errorf("unmarshal %s payload: %w", e.Kind, err)
	}
	return payload, nil
}
