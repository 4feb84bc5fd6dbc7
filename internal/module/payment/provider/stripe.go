package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/clickcart/server/internal/module/order"
	"github.com/clickcart/server/internal/shared/currency"
)

// IdentifierStripe is the registry key for the Stripe adapter.
const IdentifierStripe = "STRIPE"

// StripeConfig holds Stripe adapter configuration.
type StripeConfig struct {
	APIKey        string
	WebhookSecret string
	SuccessURL    string
	CancelURL     string
}

// StripeAdapter implements Adapter using Stripe Checkout Sessions.
type StripeAdapter struct {
	webhookSecret string
	successURL    string
	cancelURL     string
}

// NewStripeAdapter creates a new Stripe adapter.
func NewStripeAdapter(config *StripeConfig) *StripeAdapter {
	stripe.Key = config.APIKey
	return &StripeAdapter{
		webhookSecret: config.WebhookSecret,
		successURL:    config.SuccessURL,
		cancelURL:     config.CancelURL,
	}
}

// Identifier returns the provider identifier.
func (a *StripeAdapter) Identifier() string {
	return IdentifierStripe
}

// Initiate creates a Stripe Checkout Session for the order.
func (a *StripeAdapter) Initiate(ctx context.Context, req *SessionRequest) (*SessionDetails, error) {
	expiresAt := time.Now().Add(req.TTL)

	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(req.Items))
	for _, item := range req.Items {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			Quantity: stripe.Int64(int64(item.Quantity)),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(req.Currency),
				UnitAmount: stripe.Int64(currency.MinorUnits(item.UnitPrice, req.Currency)),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(item.Description),
				},
			},
		})
	}

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems:         lineItems,
		ClientReferenceID: stripe.String(req.OrderID.String()),
		CustomerEmail:     stripe.String(req.Email),
		SuccessURL:        stripe.String(a.successURL),
		CancelURL:         stripe.String(a.cancelURL),
		ExpiresAt:         stripe.Int64(expiresAt.Unix()),
	}
	params.Context = ctx
	params.AddMetadata("order_id", req.OrderID.String())
	params.AddMetadata("order_no", req.OrderNo)
	params.AddMetadata("user_id", req.UserID.String())

	s, err := session.New(params)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}

	return &SessionDetails{
		SessionID: s.ID,
		URL:       s.URL,
		ExpiresAt: time.Unix(s.ExpiresAt, 0),
	}, nil
}

// HandleWebhook verifies a Stripe event signature and translates checkout
// session events into canonical results.
func (a *StripeAdapter) HandleWebhook(ctx context.Context, body []byte, headers http.Header) (*WebhookResult, error) {
	event, err := webhook.ConstructEvent(body, headers.Get("Stripe-Signature"), a.webhookSecret)
	if err != nil {
		return nil, fmt.Errorf("verify event: %w", err)
	}

	switch event.Type {
	case "checkout.session.completed",
		"checkout.session.expired",
		"checkout.session.async_payment_succeeded",
		"checkout.session.async_payment_failed":
	default:
		// Authentic but irrelevant.
		return nil, nil
	}

	var s stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &s); err != nil {
		return nil, fmt.Errorf("parse checkout session: %w", err)
	}

	orderID, err := uuid.Parse(s.ClientReferenceID)
	if err != nil {
		return nil, fmt.Errorf("parse order reference %q: %w", s.ClientReferenceID, err)
	}

	result := &WebhookResult{
		OrderID:       orderID,
		TransactionID: s.ID,
		EventID:       event.ID,
		EventType:     string(event.Type),
	}

	switch event.Type {
	case "checkout.session.expired":
		result.Status = order.PaymentStatusExpired
	case "checkout.session.async_payment_failed":
		result.Status = order.PaymentStatusFailed
		result.Reason = "asynchronous payment failed"
	default:
		result.Status = mapStripePaymentStatus(s.PaymentStatus)
	}
	return result, nil
}

// mapStripePaymentStatus maps a Stripe checkout payment status to the
// canonical set. Anything unrecognized maps to UNKNOWN, never to a guess.
func mapStripePaymentStatus(status stripe.CheckoutSessionPaymentStatus) order.PaymentStatus {
	switch status {
	case stripe.CheckoutSessionPaymentStatusPaid,
		stripe.CheckoutSessionPaymentStatusNoPaymentRequired:
		return order.PaymentStatusSucceeded
	case stripe.CheckoutSessionPaymentStatusUnpaid:
		return order.PaymentStatusPending
	default:
		return order.PaymentStatusUnknown
	}
}
