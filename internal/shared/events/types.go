package events

import "github.com/google/uuid"

// Payment event type constants.
const (
	PaymentSucceededType = "PaymentSucceeded"
	PaymentFailedType    = "PaymentFailed"
	PaymentExpiredType   = "PaymentExpired"
	PaymentCanceledType  = "PaymentCanceled"
)

// PaymentDetails carries the order/payment facts shared by all payment events.
type PaymentDetails struct {
	// OrderID is the ID of the order this payment is for.
	OrderID uuid.UUID `json:"order_id"`

	// OrderNo is the human-facing order number.
	OrderNo string `json:"order_no"`

	// UserID is the ID of the user who owns the order.
	UserID uuid.UUID `json:"user_id"`

	// Email is the recipient address held on the order.
	Email string `json:"email"`

	// Phone is the recipient phone number, when the order has one.
	Phone string `json:"phone,omitempty"`

	// Amount is the order total in smallest currency unit (e.g., cents).
	Amount int64 `json:"amount"`

	// Currency is the ISO currency code (e.g., "usd").
	Currency string `json:"currency"`

	// Provider is the payment provider identifier (e.g., "STRIPE").
	Provider string `json:"provider"`

	// TransactionID is the provider's session/transaction reference.
	TransactionID string `json:"transaction_id,omitempty"`
}

// PaymentSucceededEvent is emitted when an order's payment succeeds.
type PaymentSucceededEvent struct {
	BaseEvent
	PaymentDetails
}

// PaymentFailedEvent is emitted when an order's payment fails.
type PaymentFailedEvent struct {
	BaseEvent
	PaymentDetails

	// Reason is a human-readable failure description, when known.
	Reason string `json:"reason,omitempty"`
}

// PaymentExpiredEvent is emitted when a checkout session expires unpaid.
type PaymentExpiredEvent struct {
	BaseEvent
	PaymentDetails
}

// PaymentCanceledEvent is emitted when an order's payment is canceled.
type PaymentCanceledEvent struct {
	BaseEvent
	PaymentDetails

	// Actor records who requested the cancellation (USER, ADMIN, SYSTEM).
	Actor string `json:"actor,omitempty"`
}

// NewPaymentSucceededEvent creates a new PaymentSucceededEvent.
func NewPaymentSucceededEvent(details PaymentDetails, correlationID uuid.UUID) *PaymentSucceededEvent {
	return &PaymentSucceededEvent{
		BaseEvent:      NewBaseEvent(PaymentSucceededType, details.OrderID, "Order", correlationID),
		PaymentDetails: details,
	}
}

// NewPaymentFailedEvent creates a new PaymentFailedEvent.
func NewPaymentFailedEvent(details PaymentDetails, reason string, correlationID uuid.UUID) *PaymentFailedEvent {
	return &PaymentFailedEvent{
		BaseEvent:      NewBaseEvent(PaymentFailedType, details.OrderID, "Order", correlationID),
		PaymentDetails: details,
		Reason:         reason,
	}
}

// NewPaymentExpiredEvent creates a new PaymentExpiredEvent.
func NewPaymentExpiredEvent(details PaymentDetails, correlationID uuid.UUID) *PaymentExpiredEvent {
	return &PaymentExpiredEvent{
		BaseEvent:      NewBaseEvent(PaymentExpiredType, details.OrderID, "Order", correlationID),
		PaymentDetails: details,
	}
}

// NewPaymentCanceledEvent creates a new PaymentCanceledEvent.
func NewPaymentCanceledEvent(details PaymentDetails, actor string, correlationID uuid.UUID) *PaymentCanceledEvent {
	return &PaymentCanceledEvent{
		BaseEvent:      NewBaseEvent(PaymentCanceledType, details.OrderID, "Order", correlationID),
		PaymentDetails: details,
		Actor:          actor,
	}
}
