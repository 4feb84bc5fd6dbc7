package payment

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/clickcart/server/internal/module/order"
	"github.com/clickcart/server/internal/module/payment/provider"
	apperrors "github.com/clickcart/server/internal/shared/errors"
	"github.com/clickcart/server/internal/shared/metrics"
)

// Service is the payment orchestration facade. Callers ask it for a
// checkout session or a payment status; provider selection, session reuse
// and provider failures are handled behind it.
type Service struct {
	orders      order.Repository
	resolver    *Resolver
	checkoutTTL time.Duration
	metrics     *metrics.Metrics
	logger      *zap.Logger

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker[*provider.SessionDetails]
}

// NewService creates a payment service.
func NewService(orders order.Repository, resolver *Resolver, checkoutTTL time.Duration, m *metrics.Metrics, logger *zap.Logger) *Service {
	return &Service{
		orders:      orders,
		resolver:    resolver,
		checkoutTTL: checkoutTTL,
		metrics:     m,
		logger:      logger,
		breakers:    make(map[string]*gobreaker.CircuitBreaker[*provider.SessionDetails]),
	}
}

// CreateOrGetCheckoutSession returns a checkout session for the order. If an
// active session already exists it is returned as is; otherwise a new one is
// created with the order's provider. The order row stays locked from the
// reuse check through persistence so concurrent requests for the same order
// serialize and see each other's session.
func (s *Service) CreateOrGetCheckoutSession(ctx context.Context, requester uuid.UUID, admin bool, orderID uuid.UUID) (*CheckoutSessionResponse, error) {
	var resp *CheckoutSessionResponse

	err := s.orders.Transaction(ctx, func(tx *gorm.DB) error {
		o, err := s.orders.GetOrderForUpdate(ctx, tx, orderID)
		if err != nil {
			if errors.Is(err, order.ErrOrderNotFound) {
				return apperrors.NotFound("order")
			}
			return apperrors.Internal("load order", err)
		}
		if o.UserID != requester && !admin {
			s.logger.Warn("cross-tenant checkout denied",
				zap.String("order_id", orderID.String()),
				zap.String("requester", requester.String()),
			)
			return apperrors.NotFound("order")
		}
		if !o.IsPending() {
			return apperrors.Conflict(ErrOrderNotPayable.Error())
		}

		if o.HasActiveCheckout(time.Now()) {
			s.metrics.CheckoutSessionsTotal.WithLabelValues(o.PaymentProvider, "reused").Inc()
			resp = &CheckoutSessionResponse{
				OrderID:     o.ID,
				Provider:    o.PaymentProvider,
				SessionID:   o.ProviderTransactionID,
				CheckoutURL: o.CheckoutURL,
				ExpiresAt:   *o.CheckoutExpiresAt,
				Reused:      true,
			}
			return nil
		}

		total := o.Total()
		if total.LessThanOrEqual(decimal.Zero) {
			return apperrors.ValidationError("order total must be positive")
		}

		adapter, err := s.resolver.Resolve(o.PaymentMethod)
		if err != nil {
			return err
		}

		details, err := s.initiate(ctx, adapter, o, total)
		if err != nil {
			s.metrics.CheckoutSessionsTotal.WithLabelValues(adapter.Identifier(), "failed").Inc()
			return apperrors.ProviderError(adapter.Identifier(), err)
		}

		o.PaymentProvider = adapter.Identifier()
		o.PaymentStatus = order.PaymentStatusPending
		o.ProviderTransactionID = details.SessionID
		o.CheckoutURL = details.URL
		o.CheckoutExpiresAt = &details.ExpiresAt
		if err := s.orders.UpdateOrder(ctx, tx, o); err != nil {
			return apperrors.Internal("persist checkout session", err)
		}

		s.metrics.CheckoutSessionsTotal.WithLabelValues(adapter.Identifier(), "created").Inc()
		s.logger.Info("checkout session created",
			zap.String("order_id", o.ID.String()),
			zap.String("provider", adapter.Identifier()),
			zap.String("session_id", details.SessionID),
		)
		resp = &CheckoutSessionResponse{
			OrderID:     o.ID,
			Provider:    adapter.Identifier(),
			SessionID:   details.SessionID,
			CheckoutURL: details.URL,
			ExpiresAt:   details.ExpiresAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// initiate calls the provider through its circuit breaker.
func (s *Service) initiate(ctx context.Context, adapter provider.Adapter, o *order.Order, total decimal.Decimal) (*provider.SessionDetails, error) {
	req := &provider.SessionRequest{
		OrderID:  o.ID,
		OrderNo:  o.OrderNo,
		UserID:   o.UserID,
		Email:    o.Email,
		Amount:   total,
		Currency: o.Currency,
		TTL:      s.checkoutTTL,
	}
	for _, item := range o.Items {
		req.Items = append(req.Items, provider.LineItem{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		})
	}

	start := time.Now()
	details, err := s.breaker(adapter.Identifier()).Execute(func() (*provider.SessionDetails, error) {
		return adapter.Initiate(ctx, req)
	})
	s.metrics.ProviderCallDuration.
		WithLabelValues(adapter.Identifier(), "initiate").
		Observe(time.Since(start).Seconds())
	return details, err
}

// GetOrderPaymentStatus reports the payment state of an order the requester
// owns. For other users' orders the answer is indistinguishable from a
// missing order.
func (s *Service) GetOrderPaymentStatus(ctx context.Context, requester uuid.UUID, admin bool, orderID uuid.UUID) (*PaymentStatusResponse, error) {
	o, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			return nil, apperrors.NotFound("order")
		}
		return nil, apperrors.Internal("load order", err)
	}
	if o.UserID != requester && !admin {
		s.logger.Warn("cross-tenant status access denied",
			zap.String("order_id", orderID.String()),
			zap.String("requester", requester.String()),
		)
		return nil, apperrors.NotFound("order")
	}

	resp := &PaymentStatusResponse{
		OrderID:       o.ID,
		OrderStatus:   o.Status,
		PaymentStatus: o.PaymentStatus,
		Provider:      o.PaymentProvider,
		TransactionID: o.ProviderTransactionID,
		PaidAt:        o.PaidAt,
	}
	if o.HasActiveCheckout(time.Now()) {
		resp.CheckoutURL = o.CheckoutURL
		resp.ExpiresAt = o.CheckoutExpiresAt
	}
	return resp, nil
}

func (s *Service) breaker(providerID string) *gobreaker.CircuitBreaker[*provider.SessionDetails] {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.breakers[providerID]; ok {
		return b
	}

	settings := gobreaker.Settings{
		Name:        providerID,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}
	b := gobreaker.NewCircuitBreaker[*provider.SessionDetails](settings)
	s.breakers[providerID] = b
	return b
}
