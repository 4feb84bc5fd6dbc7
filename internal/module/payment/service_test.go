package payment

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/clickcart/server/internal/module/order"
	"github.com/clickcart/server/internal/module/payment/provider"
	apperrors "github.com/clickcart/server/internal/shared/errors"
	"github.com/clickcart/server/internal/shared/metrics"
)

// mockOrderRepo implements order.Repository in memory for testing.
type mockOrderRepo struct {
	orders map[uuid.UUID]*order.Order
}

func newMockOrderRepo() *mockOrderRepo {
	return &mockOrderRepo{orders: make(map[uuid.UUID]*order.Order)}
}

func (m *mockOrderRepo) CreateOrder(_ context.Context, o *order.Order) error {
	m.orders[o.ID] = o
	return nil
}

func (m *mockOrderRepo) GetOrder(_ context.Context, id uuid.UUID) (*order.Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, order.ErrOrderNotFound
	}
	copied := *o
	return &copied, nil
}

func (m *mockOrderRepo) GetOrderWithItems(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	return m.GetOrder(ctx, id)
}

func (m *mockOrderRepo) GetOrderForUpdate(ctx context.Context, _ *gorm.DB, id uuid.UUID) (*order.Order, error) {
	return m.GetOrder(ctx, id)
}

func (m *mockOrderRepo) UpdateOrder(_ context.Context, _ *gorm.DB, o *order.Order) error {
	if _, ok := m.orders[o.ID]; !ok {
		return order.ErrOrderNotFound
	}
	copied := *o
	m.orders[o.ID] = &copied
	return nil
}

func (m *mockOrderRepo) ListOrders(_ context.Context, _ uuid.UUID, _, _ int) ([]*order.Order, int64, error) {
	return nil, 0, nil
}

func (m *mockOrderRepo) ListPendingExpired(_ context.Context, _ time.Time, _ int) ([]*order.Order, error) {
	return nil, nil
}

func (m *mockOrderRepo) Transaction(_ context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

// mockAdapter counts Initiate calls and returns a canned session.
type mockAdapter struct {
	id        string
	initiated int
	err       error
}

func (m *mockAdapter) Identifier() string { return m.id }

func (m *mockAdapter) Initiate(_ context.Context, req *provider.SessionRequest) (*provider.SessionDetails, error) {
	m.initiated++
	if m.err != nil {
		return nil, m.err
	}
	return &provider.SessionDetails{
		SessionID: "sess_" + req.OrderID.String()[:8],
		URL:       "https://pay.example.com/" + req.OrderID.String(),
		ExpiresAt: time.Now().Add(req.TTL),
	}, nil
}

func (m *mockAdapter) HandleWebhook(context.Context, []byte, http.Header) (*provider.WebhookResult, error) {
	return nil, nil
}

var testMetrics = metrics.New("payment_test")

func newTestService(repo order.Repository, adapter provider.Adapter) *Service {
	resolver := &Resolver{
		adapters: map[string]provider.Adapter{adapter.Identifier(): adapter},
		methods:  map[string]string{"CREDIT_CARD": adapter.Identifier()},
	}
	return NewService(repo, resolver, 30*time.Minute, testMetrics, zap.NewNop())
}

func seedPendingOrder(repo *mockOrderRepo) *order.Order {
	o := &order.Order{
		ID:            uuid.New(),
		OrderNo:       "ORD-20260901-XYZAB",
		UserID:        uuid.New(),
		Email:         "buyer@example.com",
		Currency:      "usd",
		Status:        order.OrderStatusPending,
		PaymentStatus: order.PaymentStatusPending,
		PaymentMethod: "CREDIT_CARD",
		Items: []order.OrderItem{
			{Description: "Widget", Quantity: 1, UnitPrice: decimal.RequireFromString("19.99")},
		},
	}
	repo.orders[o.ID] = o
	return o
}

func TestService_CreateOrGetCheckoutSession(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a session and persists it", func(t *testing.T) {
		repo := newMockOrderRepo()
		adapter := &mockAdapter{id: "STRIPE"}
		svc := newTestService(repo, adapter)
		o := seedPendingOrder(repo)

		resp, err := svc.CreateOrGetCheckoutSession(ctx, o.UserID, false, o.ID)
		require.NoError(t, err)
		assert.False(t, resp.Reused)
		assert.Equal(t, "STRIPE", resp.Provider)
		assert.NotEmpty(t, resp.CheckoutURL)
		assert.Equal(t, 1, adapter.initiated)

		stored := repo.orders[o.ID]
		assert.Equal(t, resp.SessionID, stored.ProviderTransactionID)
		assert.Equal(t, resp.CheckoutURL, stored.CheckoutURL)
		assert.NotNil(t, stored.CheckoutExpiresAt)
	})

	t.Run("reuses an active session without calling the provider", func(t *testing.T) {
		repo := newMockOrderRepo()
		adapter := &mockAdapter{id: "STRIPE"}
		svc := newTestService(repo, adapter)
		o := seedPendingOrder(repo)

		first, err := svc.CreateOrGetCheckoutSession(ctx, o.UserID, false, o.ID)
		require.NoError(t, err)

		second, err := svc.CreateOrGetCheckoutSession(ctx, o.UserID, false, o.ID)
		require.NoError(t, err)
		assert.True(t, second.Reused)
		assert.Equal(t, first.SessionID, second.SessionID)
		assert.Equal(t, first.CheckoutURL, second.CheckoutURL)
		assert.Equal(t, 1, adapter.initiated, "active session must not trigger a second provider call")
	})

	t.Run("expired session gets replaced", func(t *testing.T) {
		repo := newMockOrderRepo()
		adapter := &mockAdapter{id: "STRIPE"}
		svc := newTestService(repo, adapter)
		o := seedPendingOrder(repo)

		past := time.Now().Add(-time.Minute)
		o.ProviderTransactionID = "sess_old"
		o.CheckoutURL = "https://pay.example.com/old"
		o.CheckoutExpiresAt = &past
		o.PaymentProvider = "STRIPE"

		resp, err := svc.CreateOrGetCheckoutSession(ctx, o.UserID, false, o.ID)
		require.NoError(t, err)
		assert.False(t, resp.Reused)
		assert.NotEqual(t, "sess_old", resp.SessionID)
		assert.Equal(t, 1, adapter.initiated)
	})

	t.Run("non-pending order conflicts", func(t *testing.T) {
		repo := newMockOrderRepo()
		adapter := &mockAdapter{id: "STRIPE"}
		svc := newTestService(repo, adapter)
		o := seedPendingOrder(repo)
		o.Status = order.OrderStatusCancelled

		_, err := svc.CreateOrGetCheckoutSession(ctx, o.UserID, false, o.ID)
		assert.Equal(t, 409, apperrors.GetStatusCode(err))
		assert.Zero(t, adapter.initiated)
	})

	t.Run("other user's order is masked as missing", func(t *testing.T) {
		repo := newMockOrderRepo()
		adapter := &mockAdapter{id: "STRIPE"}
		svc := newTestService(repo, adapter)
		o := seedPendingOrder(repo)

		_, err := svc.CreateOrGetCheckoutSession(ctx, uuid.New(), false, o.ID)
		assert.Equal(t, 404, apperrors.GetStatusCode(err))
		assert.Zero(t, adapter.initiated)
	})

	t.Run("admin can check out any order", func(t *testing.T) {
		repo := newMockOrderRepo()
		adapter := &mockAdapter{id: "STRIPE"}
		svc := newTestService(repo, adapter)
		o := seedPendingOrder(repo)

		_, err := svc.CreateOrGetCheckoutSession(ctx, uuid.New(), true, o.ID)
		assert.NoError(t, err)
	})

	t.Run("non-positive total is rejected before the provider", func(t *testing.T) {
		repo := newMockOrderRepo()
		adapter := &mockAdapter{id: "STRIPE"}
		svc := newTestService(repo, adapter)
		o := seedPendingOrder(repo)
		o.Items = []order.OrderItem{{Description: "Freebie", Quantity: 1, UnitPrice: decimal.Zero}}

		_, err := svc.CreateOrGetCheckoutSession(ctx, o.UserID, false, o.ID)
		assert.Equal(t, 400, apperrors.GetStatusCode(err))
		assert.Zero(t, adapter.initiated, "provider must not see an invalid amount")
	})

	t.Run("provider failure maps to a gateway error", func(t *testing.T) {
		repo := newMockOrderRepo()
		adapter := &mockAdapter{id: "STRIPE", err: errors.New("upstream down")}
		svc := newTestService(repo, adapter)
		o := seedPendingOrder(repo)

		_, err := svc.CreateOrGetCheckoutSession(ctx, o.UserID, false, o.ID)
		assert.Equal(t, 502, apperrors.GetStatusCode(err))
		assert.Empty(t, repo.orders[o.ID].CheckoutURL, "failed initiation must not persist a session")
	})
}

func TestService_GetOrderPaymentStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("reports status with active checkout", func(t *testing.T) {
		repo := newMockOrderRepo()
		svc := newTestService(repo, &mockAdapter{id: "STRIPE"})
		o := seedPendingOrder(repo)

		_, err := svc.CreateOrGetCheckoutSession(ctx, o.UserID, false, o.ID)
		require.NoError(t, err)

		resp, err := svc.GetOrderPaymentStatus(ctx, o.UserID, false, o.ID)
		require.NoError(t, err)
		assert.Equal(t, order.PaymentStatusPending, resp.PaymentStatus)
		assert.NotEmpty(t, resp.CheckoutURL)
	})

	t.Run("masks other users' orders", func(t *testing.T) {
		repo := newMockOrderRepo()
		svc := newTestService(repo, &mockAdapter{id: "STRIPE"})
		o := seedPendingOrder(repo)

		_, err := svc.GetOrderPaymentStatus(ctx, uuid.New(), false, o.ID)
		assert.Equal(t, 404, apperrors.GetStatusCode(err))
	})

	t.Run("missing order is not found", func(t *testing.T) {
		repo := newMockOrderRepo()
		svc := newTestService(repo, &mockAdapter{id: "STRIPE"})

		_, err := svc.GetOrderPaymentStatus(ctx, uuid.New(), false, uuid.New())
		assert.Equal(t, 404, apperrors.GetStatusCode(err))
	})
}
