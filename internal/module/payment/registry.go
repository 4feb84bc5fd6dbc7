package payment

import (
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/clickcart/server/internal/module/payment/provider"
	"github.com/clickcart/server/internal/shared/config"
	apperrors "github.com/clickcart/server/internal/shared/errors"
)

// Resolver maps payment methods to provider adapters. The method table and
// adapter set are fixed at startup; a method pointing at a missing or
// misconfigured adapter fails construction, not the first checkout.
type Resolver struct {
	mu       sync.RWMutex
	adapters map[string]provider.Adapter
	methods  map[string]string
}

// NewResolver builds the resolver from configuration, constructing one
// adapter per enabled provider.
func NewResolver(cfg *config.PaymentConfig, logger *zap.Logger) (*Resolver, error) {
	r := &Resolver{
		adapters: make(map[string]provider.Adapter),
		methods:  make(map[string]string),
	}

	if cfg.Stripe.Enabled {
		if cfg.Stripe.APIKey == "" || cfg.Stripe.WebhookSecret == "" {
			return nil, apperrors.Configuration("stripe enabled without api_key or webhook_secret")
		}
		r.register(provider.NewStripeAdapter(&provider.StripeConfig{
			APIKey:        cfg.Stripe.APIKey,
			WebhookSecret: cfg.Stripe.WebhookSecret,
			SuccessURL:    cfg.Stripe.SuccessURL,
			CancelURL:     cfg.Stripe.CancelURL,
		}))
	}

	if cfg.Alipay.Enabled {
		adapter, err := provider.NewAlipayAdapter(&provider.AlipayConfig{
			AppID:           cfg.Alipay.AppID,
			PrivateKey:      cfg.Alipay.PrivateKey,
			AlipayPublicKey: cfg.Alipay.AlipayPublicKey,
			IsProd:          cfg.Alipay.IsProd,
			NotifyURL:       cfg.Alipay.NotifyURL,
			ReturnURL:       cfg.Alipay.ReturnURL,
		})
		if err != nil {
			return nil, apperrors.Configuration(fmt.Sprintf("alipay adapter: %v", err))
		}
		r.register(adapter)
	}

	for method, providerID := range cfg.Methods {
		id := strings.ToUpper(providerID)
		if _, ok := r.adapters[id]; !ok {
			return nil, apperrors.Configuration(
				fmt.Sprintf("payment method %s maps to unavailable provider %s", method, providerID))
		}
		r.methods[strings.ToUpper(method)] = id
	}

	logger.Info("payment providers configured",
		zap.Strings("providers", r.List()),
		zap.Int("methods", len(r.methods)),
	)
	return r, nil
}

func (r *Resolver) register(a provider.Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[a.Identifier()] = a
}

// Resolve returns the adapter serving a payment method.
func (r *Resolver) Resolve(method string) (provider.Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.methods[strings.ToUpper(method)]
	if !ok {
		return nil, apperrors.Configuration("unsupported payment method: " + method)
	}
	return r.adapters[id], nil
}

// Lookup returns an adapter by its provider identifier.
func (r *Resolver) Lookup(identifier string) (provider.Adapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.adapters[strings.ToUpper(identifier)]
	return a, ok
}

// List returns all registered provider identifiers.
func (r *Resolver) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.adapters))
	for id := range r.adapters {
		ids = append(ids, id)
	}
	return ids
}
