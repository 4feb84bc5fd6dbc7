package order

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "github.com/clickcart/server/internal/shared/errors"
)

func newTestService(repo *MockRepository, pub *MockPublisher) *Service {
	return NewService(repo, newTestCoordinator(repo, pub), zap.NewNop())
}

func createOrderRequest() *CreateOrderRequest {
	return &CreateOrderRequest{
		Email:         "buyer@example.com",
		Phone:         "+15550001111",
		Currency:      "usd",
		PaymentMethod: "CREDIT_CARD",
		Items: []CreateOrderItemRequest{
			{ProductID: uuid.MustParse("11111111-1111-1111-1111-111111111111"), Description: "Widget", Quantity: 2, UnitPrice: decimal.RequireFromString("9.99")},
		},
	}
}

func TestService_CreateOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a pending order", func(t *testing.T) {
		repo := NewMockRepository()
		svc := newTestService(repo, &MockPublisher{})
		userID := uuid.New()

		o, err := svc.CreateOrder(ctx, userID, createOrderRequest())
		require.NoError(t, err)
		assert.Equal(t, OrderStatusPending, o.Status)
		assert.Equal(t, PaymentStatusPending, o.PaymentStatus)
		assert.Equal(t, userID, o.UserID)
		assert.True(t, strings.HasPrefix(o.OrderNo, "ORD-"))
		require.Len(t, o.Items, 1)
		assert.True(t, o.Total().Equal(decimal.RequireFromString("19.98")))
	})

	t.Run("order numbers are distinct", func(t *testing.T) {
		repo := NewMockRepository()
		svc := newTestService(repo, &MockPublisher{})

		a, err := svc.CreateOrder(ctx, uuid.New(), createOrderRequest())
		require.NoError(t, err)
		b, err := svc.CreateOrder(ctx, uuid.New(), createOrderRequest())
		require.NoError(t, err)
		assert.NotEqual(t, a.OrderNo, b.OrderNo)
	})

	t.Run("rejects non-positive unit prices", func(t *testing.T) {
		repo := NewMockRepository()
		svc := newTestService(repo, &MockPublisher{})

		req := createOrderRequest()
		req.Items[0].UnitPrice = decimal.Zero
		_, err := svc.CreateOrder(ctx, uuid.New(), req)
		assert.Equal(t, 400, apperrors.GetStatusCode(err))
	})
}

func TestService_GetOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("owner sees the order", func(t *testing.T) {
		repo := NewMockRepository()
		svc := newTestService(repo, &MockPublisher{})
		o := seedOrder(repo)

		got, err := svc.GetOrder(ctx, o.UserID, false, o.ID)
		require.NoError(t, err)
		assert.Equal(t, o.ID, got.ID)
	})

	t.Run("other users get not found", func(t *testing.T) {
		repo := NewMockRepository()
		svc := newTestService(repo, &MockPublisher{})
		o := seedOrder(repo)

		_, err := svc.GetOrder(ctx, uuid.New(), false, o.ID)
		assert.Equal(t, 404, apperrors.GetStatusCode(err))
	})

	t.Run("admins see any order", func(t *testing.T) {
		repo := NewMockRepository()
		svc := newTestService(repo, &MockPublisher{})
		o := seedOrder(repo)

		_, err := svc.GetOrder(ctx, uuid.New(), true, o.ID)
		assert.NoError(t, err)
	})

	t.Run("missing order is not found", func(t *testing.T) {
		repo := NewMockRepository()
		svc := newTestService(repo, &MockPublisher{})

		_, err := svc.GetOrder(ctx, uuid.New(), false, uuid.New())
		assert.Equal(t, 404, apperrors.GetStatusCode(err))
	})
}

func TestService_CancelOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("owner cancels a pending order", func(t *testing.T) {
		repo := NewMockRepository()
		pub := &MockPublisher{}
		svc := newTestService(repo, pub)
		o := seedOrder(repo)

		require.NoError(t, svc.CancelOrder(ctx, o.UserID, false, o.ID))
		assert.Equal(t, OrderStatusCancelled, repo.orders[o.ID].Status)
		assert.Equal(t, CancelActorUser, repo.orders[o.ID].CancelActor)
	})

	t.Run("admin cancellation records the actor", func(t *testing.T) {
		repo := NewMockRepository()
		svc := newTestService(repo, &MockPublisher{})
		o := seedOrder(repo)

		require.NoError(t, svc.CancelOrder(ctx, uuid.New(), true, o.ID))
		assert.Equal(t, CancelActorAdmin, repo.orders[o.ID].CancelActor)
	})

	t.Run("confirmed order conflicts", func(t *testing.T) {
		repo := NewMockRepository()
		svc := newTestService(repo, &MockPublisher{})
		o := seedOrder(repo)
		repo.orders[o.ID].Status = OrderStatusConfirmed

		err := svc.CancelOrder(ctx, o.UserID, false, o.ID)
		assert.Equal(t, 409, apperrors.GetStatusCode(err))
	})

	t.Run("other users cannot cancel", func(t *testing.T) {
		repo := NewMockRepository()
		svc := newTestService(repo, &MockPublisher{})
		o := seedOrder(repo)

		err := svc.CancelOrder(ctx, uuid.New(), false, o.ID)
		assert.Equal(t, 404, apperrors.GetStatusCode(err))
		assert.Equal(t, OrderStatusPending, repo.orders[o.ID].Status)
	})
}
