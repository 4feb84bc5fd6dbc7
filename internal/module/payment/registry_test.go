package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/clickcart/server/internal/shared/config"
)

func stripeOnlyConfig() *config.PaymentConfig {
	return &config.PaymentConfig{
		Methods: map[string]string{"CREDIT_CARD": "STRIPE"},
		Stripe: config.StripeConfig{
			Enabled:       true,
			APIKey:        "sk_test_123",
			WebhookSecret: "whsec_123",
		},
	}
}

func TestNewResolver(t *testing.T) {
	t.Run("builds from valid config", func(t *testing.T) {
		r, err := NewResolver(stripeOnlyConfig(), zap.NewNop())
		require.NoError(t, err)
		assert.Equal(t, []string{"STRIPE"}, r.List())
	})

	t.Run("rejects stripe without secrets", func(t *testing.T) {
		cfg := stripeOnlyConfig()
		cfg.Stripe.WebhookSecret = ""
		_, err := NewResolver(cfg, zap.NewNop())
		assert.Error(t, err)
	})

	t.Run("rejects method mapped to unavailable provider", func(t *testing.T) {
		cfg := stripeOnlyConfig()
		cfg.Methods["ALIPAY"] = "ALIPAY"
		_, err := NewResolver(cfg, zap.NewNop())
		assert.Error(t, err)
	})
}

func TestResolver_Resolve(t *testing.T) {
	r, err := NewResolver(stripeOnlyConfig(), zap.NewNop())
	require.NoError(t, err)

	t.Run("resolves configured method", func(t *testing.T) {
		a, err := r.Resolve("CREDIT_CARD")
		require.NoError(t, err)
		assert.Equal(t, "STRIPE", a.Identifier())
	})

	t.Run("method lookup is case-insensitive", func(t *testing.T) {
		a, err := r.Resolve("credit_card")
		require.NoError(t, err)
		assert.Equal(t, "STRIPE", a.Identifier())
	})

	t.Run("unknown method fails", func(t *testing.T) {
		_, err := r.Resolve("BANK_TRANSFER")
		assert.Error(t, err)
	})
}

func TestResolver_Lookup(t *testing.T) {
	r, err := NewResolver(stripeOnlyConfig(), zap.NewNop())
	require.NoError(t, err)

	a, ok := r.Lookup("stripe")
	assert.True(t, ok)
	assert.Equal(t, "STRIPE", a.Identifier())

	_, ok = r.Lookup("WECHAT")
	assert.False(t, ok)
}
