// Package provider contains the payment provider adapters. An adapter owns
// everything provider-specific: API calls, webhook signature verification,
// payload parsing and the translation of provider status vocabularies into
// the canonical payment status set. Nothing provider-specific leaks past
// this package.
package provider

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/clickcart/server/internal/module/order"
)

// SessionRequest describes the checkout session an adapter should create.
type SessionRequest struct {
	OrderID  uuid.UUID
	OrderNo  string
	UserID   uuid.UUID
	Email    string
	Amount   decimal.Decimal
	Currency string
	Items    []LineItem
	// TTL is the requested session lifetime.
	TTL time.Duration
}

// LineItem is one order line shown on the hosted checkout page.
type LineItem struct {
	Description string
	Quantity    int
	UnitPrice   decimal.Decimal
}

// SessionDetails is the provider's answer to a session request.
type SessionDetails struct {
	// SessionID is the provider's transaction reference for the session.
	SessionID string
	// URL is where the buyer completes payment.
	URL string
	// ExpiresAt is when the session stops accepting payment.
	ExpiresAt time.Time
}

// WebhookResult is a verified, parsed provider callback translated into the
// canonical vocabulary. A nil result with a nil error means the event was
// authentic but carries nothing the orchestration core acts on.
type WebhookResult struct {
	OrderID       uuid.UUID
	Status        order.PaymentStatus
	TransactionID string
	// EventID is the provider's event reference, used for deduplication.
	EventID   string
	EventType string
	Reason    string
}

// Adapter is the boundary between the orchestration core and one payment
// provider.
type Adapter interface {
	// Identifier returns the uppercase provider identifier (e.g. STRIPE).
	Identifier() string

	// Initiate creates a hosted checkout session for the order.
	Initiate(ctx context.Context, req *SessionRequest) (*SessionDetails, error)

	// HandleWebhook verifies and parses a raw provider callback. It
	// returns an error when the payload is inauthentic or malformed, and
	// (nil, nil) for authentic events the core does not act on.
	HandleWebhook(ctx context.Context, body []byte, headers http.Header) (*WebhookResult, error)
}
