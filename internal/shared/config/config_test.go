package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Database: DatabaseConfig{Host: "localhost", Database: "clickcart"},
		Kafka:    KafkaConfig{Brokers: []string{"localhost:9092"}, GroupID: "clickcart"},
		Auth:     AuthConfig{JWTSecret: "secret"},
		Payment: PaymentConfig{
			CheckoutTTL: 30 * time.Minute,
			Methods:     map[string]string{"CREDIT_CARD": "STRIPE"},
			Stripe: StripeConfig{
				Enabled:       true,
				APIKey:        "sk_test_123",
				WebhookSecret: "whsec_123",
			},
		},
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Run("valid config passes", func(t *testing.T) {
		require.NoError(t, validConfig().Validate())
	})

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "missing brokers",
			mutate:  func(c *Config) { c.Kafka.Brokers = nil },
			wantErr: "kafka.brokers",
		},
		{
			name:    "missing database host",
			mutate:  func(c *Config) { c.Database.Host = "" },
			wantErr: "database host",
		},
		{
			name:    "missing jwt secret",
			mutate:  func(c *Config) { c.Auth.JWTSecret = "" },
			wantErr: "jwt_secret",
		},
		{
			name:    "non-positive checkout ttl",
			mutate:  func(c *Config) { c.Payment.CheckoutTTL = 0 },
			wantErr: "checkout_ttl",
		},
		{
			name:    "stripe enabled without webhook secret",
			mutate:  func(c *Config) { c.Payment.Stripe.WebhookSecret = "" },
			wantErr: "stripe",
		},
		{
			name: "alipay enabled without keys",
			mutate: func(c *Config) {
				c.Payment.Alipay.Enabled = true
				c.Payment.Methods = map[string]string{"ALIPAY": "ALIPAY"}
			},
			wantErr: "alipay",
		},
		{
			name: "method mapped to disabled provider",
			mutate: func(c *Config) {
				c.Payment.Methods["BANK_TRANSFER"] = "ALIPAY"
			},
			wantErr: "not enabled",
		},
		{
			name: "method mapped to unknown provider",
			mutate: func(c *Config) {
				c.Payment.Methods["CRYPTO"] = "WECHAT"
			},
			wantErr: "not enabled",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
