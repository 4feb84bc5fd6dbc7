package provider

import (
	"testing"

	"github.com/stripe/stripe-go/v76"
	"github.com/stretchr/testify/assert"

	"github.com/clickcart/server/internal/module/order"
)

func TestMapStripePaymentStatus(t *testing.T) {
	tests := []struct {
		name     string
		status   stripe.CheckoutSessionPaymentStatus
		expected order.PaymentStatus
	}{
		{"paid", stripe.CheckoutSessionPaymentStatusPaid, order.PaymentStatusSucceeded},
		{"no payment required", stripe.CheckoutSessionPaymentStatusNoPaymentRequired, order.PaymentStatusSucceeded},
		{"unpaid", stripe.CheckoutSessionPaymentStatusUnpaid, order.PaymentStatusPending},
		{"empty", stripe.CheckoutSessionPaymentStatus(""), order.PaymentStatusUnknown},
		{"future value", stripe.CheckoutSessionPaymentStatus("partially_paid"), order.PaymentStatusUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, mapStripePaymentStatus(tt.status))
		})
	}
}

func TestStripeAdapter_Identifier(t *testing.T) {
	a := NewStripeAdapter(&StripeConfig{APIKey: "sk_test", WebhookSecret: "whsec_test"})
	assert.Equal(t, "STRIPE", a.Identifier())
}

func TestStripeAdapter_HandleWebhookRejectsBadSignature(t *testing.T) {
	a := NewStripeAdapter(&StripeConfig{APIKey: "sk_test", WebhookSecret: "whsec_test"})

	result, err := a.HandleWebhook(t.Context(), []byte(`{"type":"checkout.session.completed"}`), map[string][]string{
		"Stripe-Signature": {"t=1,v1=bogus"},
	})
	assert.Error(t, err)
	assert.Nil(t, result)
}
