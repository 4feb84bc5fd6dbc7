package payment

import (
	"time"

	"github.com/google/uuid"

	"github.com/clickcart/server/internal/module/order"
)

// CheckoutSessionResponse is the answer to a checkout request.
type CheckoutSessionResponse struct {
	OrderID     uuid.UUID `json:"order_id"`
	Provider    string    `json:"provider"`
	SessionID   string    `json:"session_id"`
	CheckoutURL string    `json:"checkout_url"`
	ExpiresAt   time.Time `json:"expires_at"`
	// Reused is true when an existing active session was returned
	// instead of creating a new one.
	Reused bool `json:"reused"`
}

// PaymentStatusResponse reports an order's payment state.
type PaymentStatusResponse struct {
	OrderID       uuid.UUID           `json:"order_id"`
	OrderStatus   order.OrderStatus   `json:"order_status"`
	PaymentStatus order.PaymentStatus `json:"payment_status"`
	Provider      string              `json:"provider,omitempty"`
	TransactionID string              `json:"transaction_id,omitempty"`
	CheckoutURL   string              `json:"checkout_url,omitempty"`
	ExpiresAt     *time.Time          `json:"expires_at,omitempty"`
	PaidAt        *time.Time          `json:"paid_at,omitempty"`
}
