package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	apperrors "github.com/clickcart/server/internal/shared/errors"
	"github.com/clickcart/server/internal/utils/random"
)

// Service implements order business logic.
type Service struct {
	repo        Repository
	coordinator *Coordinator
	logger      *zap.Logger
}

// NewService creates a new order service.
func NewService(repo Repository, coordinator *Coordinator, logger *zap.Logger) *Service {
	return &Service{
		repo:        repo,
		coordinator: coordinator,
		logger:      logger,
	}
}

// CreateOrder creates a pending order for the given user.
func (s *Service) CreateOrder(ctx context.Context, userID uuid.UUID, req *CreateOrderRequest) (*Order, error) {
	for _, item := range req.Items {
		if item.UnitPrice.LessThanOrEqual(decimal.Zero) {
			return nil, apperrors.ValidationError(fmt.Sprintf("unit price for %q must be positive", item.Description))
		}
	}

	order := &Order{
		OrderNo:         generateOrderNo(),
		UserID:          userID,
		Email:           req.Email,
		Phone:           req.Phone,
		Currency:        req.Currency,
		Status:          OrderStatusPending,
		PaymentStatus:   PaymentStatusPending,
		PaymentMethod:   req.PaymentMethod,
		ShippingName:    req.ShippingName,
		ShippingAddress: req.ShippingAddress,
		Items: lo.Map(req.Items, func(item CreateOrderItemRequest, _ int) OrderItem {
			return OrderItem{
				ProductID:   item.ProductID,
				Description: item.Description,
				Quantity:    item.Quantity,
				UnitPrice:   item.UnitPrice,
			}
		}),
	}

	if err := s.repo.CreateOrder(ctx, order); err != nil {
		return nil, apperrors.Internal("create order", err)
	}

	s.logger.Info("order created",
		zap.String("order_id", order.ID.String()),
		zap.String("order_no", order.OrderNo),
		zap.String("user_id", userID.String()),
	)
	return order, nil
}

// GetOrder returns an order if the requester owns it or is an admin.
// Access denial is indistinguishable from absence for the caller.
func (s *Service) GetOrder(ctx context.Context, requester uuid.UUID, admin bool, orderID uuid.UUID) (*Order, error) {
	order, err := s.repo.GetOrderWithItems(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return nil, apperrors.NotFound("order")
		}
		return nil, apperrors.Internal("get order", err)
	}
	if order.UserID != requester && !admin {
		s.logger.Warn("cross-tenant order access denied",
			zap.String("order_id", orderID.String()),
			zap.String("requester", requester.String()),
		)
		return nil, apperrors.NotFound("order")
	}
	return order, nil
}

// ListOrders lists the requester's orders, newest first.
func (s *Service) ListOrders(ctx context.Context, userID uuid.UUID, p *Pagination) ([]*Order, int64, error) {
	orders, total, err := s.repo.ListOrders(ctx, userID, p.PageSize, p.Offset())
	if err != nil {
		return nil, 0, apperrors.Internal("list orders", err)
	}
	return orders, total, nil
}

// CancelOrder cancels the requester's pending order.
func (s *Service) CancelOrder(ctx context.Context, requester uuid.UUID, admin bool, orderID uuid.UUID) error {
	if _, err := s.GetOrder(ctx, requester, admin, orderID); err != nil {
		return err
	}

	actor := CancelActorUser
	if admin {
		actor = CancelActorAdmin
	}
	if err := s.coordinator.CancelOrder(ctx, orderID, actor); err != nil {
		if errors.Is(err, ErrNotCancelable) || errors.Is(err, ErrInvalidTransition) {
			return apperrors.Conflict("order can no longer be canceled")
		}
		return apperrors.Internal("cancel order", err)
	}
	return nil
}

func generateOrderNo() string {
	now := time.Now()
	suffix := random.UpperAlphaNum(5)
	return fmt.Sprintf("ORD-%s-%s", now.Format("20060102"), suffix)
}
