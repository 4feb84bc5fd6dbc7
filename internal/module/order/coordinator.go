package order

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/clickcart/server/internal/shared/currency"
	apperrors "github.com/clickcart/server/internal/shared/errors"
	"github.com/clickcart/server/internal/shared/events"
	"github.com/clickcart/server/internal/shared/metrics"
)

// StatusUpdate carries a canonical payment status toward an order.
type StatusUpdate struct {
	OrderID       uuid.UUID
	Status        PaymentStatus
	TransactionID string
	Provider      string
	// EventID is the provider's event reference, kept for tracing.
	EventID       string
	CorrelationID uuid.UUID
	Reason        string
}

// Coordinator is the single writer of order payment state. Every payment
// status update, whatever its source (webhook, cancellation, expiry sweep),
// funnels through ApplyPaymentStatus so duplicates and races resolve on the
// order row lock.
type Coordinator struct {
	repo      Repository
	sm        *StateMachine
	publisher EventPublisher
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewCoordinator creates an order state coordinator.
func NewCoordinator(repo Repository, publisher EventPublisher, m *metrics.Metrics, logger *zap.Logger) *Coordinator {
	return &Coordinator{
		repo:      repo,
		sm:        NewStateMachine(),
		publisher: publisher,
		metrics:   m,
		logger:    logger,
	}
}

// ApplyPaymentStatus applies a canonical payment status to an order.
// Re-applying the current status, or any status once the payment is
// terminal, is a no-op: no state change and no event. Exactly one domain
// event is emitted per actual change, after the transaction commits.
func (c *Coordinator) ApplyPaymentStatus(ctx context.Context, update StatusUpdate) error {
	if update.Status == PaymentStatusUnknown {
		// An unmapped provider status carries no actionable signal.
		c.logger.Warn("unknown payment status received, ignoring",
			zap.String("order_id", update.OrderID.String()),
			zap.String("provider", update.Provider),
			zap.String("event_id", update.EventID),
		)
		return nil
	}

	var event events.Event
	var details events.PaymentDetails
	var from, to OrderStatus

	err := c.repo.Transaction(ctx, func(tx *gorm.DB) error {
		o, err := c.repo.GetOrderForUpdate(ctx, tx, update.OrderID)
		if err != nil {
			return err
		}

		if o.PaymentStatus == update.Status || o.PaymentStatus.IsTerminal() {
			c.logger.Info("payment status update is a no-op",
				zap.String("order_id", o.ID.String()),
				zap.String("current", string(o.PaymentStatus)),
				zap.String("incoming", string(update.Status)),
				zap.String("event_id", update.EventID),
			)
			return nil
		}

		from = o.Status
		if derived, ok := DeriveOrderStatus(update.Status); ok {
			if err := c.sm.Transition(o, derived); err != nil {
				return err
			}
			to = derived
		}

		o.PaymentStatus = update.Status
		if update.TransactionID != "" {
			o.ProviderTransactionID = update.TransactionID
		}
		if update.Provider != "" {
			o.PaymentProvider = update.Provider
		}
		now := time.Now()
		switch update.Status {
		case PaymentStatusSucceeded:
			o.PaidAt = &now
		case PaymentStatusCanceled:
			o.CanceledAt = &now
		}

		if err := c.repo.UpdateOrder(ctx, tx, o); err != nil {
			return err
		}

		details = paymentDetails(o)
		event = c.buildEvent(update, details)
		return nil
	})
	if err != nil {
		return err
	}

	if event != nil {
		c.metrics.OrderTransitionsTotal.WithLabelValues(string(from), string(to)).Inc()
		if err := c.publisher.PublishPaymentEvent(ctx, event, details, update.Reason, ""); err != nil {
			// The state change is committed; losing the event must not
			// undo it. Surface loudly and move on.
			c.logger.Error("payment event publish failed",
				zap.String("order_id", update.OrderID.String()),
				zap.String("type", event.EventType()),
				zap.Error(err),
			)
		}
	}
	return nil
}

// CancelOrder cancels an order on behalf of the given actor. Only pending
// orders can be canceled.
func (c *Coordinator) CancelOrder(ctx context.Context, orderID uuid.UUID, actor CancelActor) error {
	var event events.Event
	var details events.PaymentDetails

	err := c.repo.Transaction(ctx, func(tx *gorm.DB) error {
		o, err := c.repo.GetOrderForUpdate(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if !o.IsPending() {
			return ErrNotCancelable
		}

		if err := c.sm.Transition(o, OrderStatusCancelled); err != nil {
			return err
		}
		o.PaymentStatus = PaymentStatusCanceled
		o.CancelActor = actor
		now := time.Now()
		o.CanceledAt = &now

		if err := c.repo.UpdateOrder(ctx, tx, o); err != nil {
			return err
		}

		details = paymentDetails(o)
		event = events.NewPaymentCanceledEvent(details, string(actor), uuid.New())
		return nil
	})
	if err != nil {
		return err
	}

	c.metrics.OrderTransitionsTotal.WithLabelValues(string(OrderStatusPending), string(OrderStatusCancelled)).Inc()
	if err := c.publisher.PublishPaymentEvent(ctx, event, details, "", string(actor)); err != nil {
		c.logger.Error("payment event publish failed",
			zap.String("order_id", orderID.String()),
			zap.Error(err),
		)
	}
	return nil
}

// MarkShipped advances a confirmed order to shipped.
func (c *Coordinator) MarkShipped(ctx context.Context, orderID uuid.UUID) error {
	return c.adminTransition(ctx, orderID, OrderStatusShipped)
}

// MarkDelivered advances a shipped order to delivered.
func (c *Coordinator) MarkDelivered(ctx context.Context, orderID uuid.UUID) error {
	return c.adminTransition(ctx, orderID, OrderStatusDelivered)
}

func (c *Coordinator) adminTransition(ctx context.Context, orderID uuid.UUID, to OrderStatus) error {
	var from OrderStatus
	err := c.repo.Transaction(ctx, func(tx *gorm.DB) error {
		o, err := c.repo.GetOrderForUpdate(ctx, tx, orderID)
		if err != nil {
			return err
		}
		from = o.Status
		if err := c.sm.Transition(o, to); err != nil {
			return err
		}
		return c.repo.UpdateOrder(ctx, tx, o)
	})
	if err != nil {
		return err
	}
	c.metrics.OrderTransitionsTotal.WithLabelValues(string(from), string(to)).Inc()
	return nil
}

// ExpireOverdueSessions marks orders whose checkout session lapsed without a
// provider callback. It is the safety net behind provider expiry webhooks.
func (c *Coordinator) ExpireOverdueSessions(ctx context.Context) error {
	orders, err := c.repo.ListPendingExpired(ctx, time.Now(), 100)
	if err != nil {
		return apperrors.Internal("list expired checkouts", err)
	}

	for _, o := range orders {
		update := StatusUpdate{
			OrderID:       o.ID,
			Status:        PaymentStatusExpired,
			Provider:      o.PaymentProvider,
			CorrelationID: uuid.New(),
			Reason:        "checkout session expired",
		}
		if err := c.ApplyPaymentStatus(ctx, update); err != nil {
			c.logger.Error("expire checkout failed",
				zap.String("order_id", o.ID.String()),
				zap.Error(err),
			)
		}
	}
	return nil
}

// RunExpirySweeper runs ExpireOverdueSessions on an interval until the
// context is canceled.
func (c *Coordinator) RunExpirySweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.ExpireOverdueSessions(ctx); err != nil {
				c.logger.Error("expiry sweep failed", zap.Error(err))
			}
		}
	}
}

func (c *Coordinator) buildEvent(update StatusUpdate, details events.PaymentDetails) events.Event {
	switch update.Status {
	case PaymentStatusSucceeded:
		return events.NewPaymentSucceededEvent(details, update.CorrelationID)
	case PaymentStatusFailed:
		return events.NewPaymentFailedEvent(details, update.Reason, update.CorrelationID)
	case PaymentStatusExpired:
		return events.NewPaymentExpiredEvent(details, update.CorrelationID)
	case PaymentStatusCanceled:
		return events.NewPaymentCanceledEvent(details, string(CancelActorSystem), update.CorrelationID)
	}
	return nil
}

func paymentDetails(o *Order) events.PaymentDetails {
	return events.PaymentDetails{
		OrderID:       o.ID,
		OrderNo:       o.OrderNo,
		UserID:        o.UserID,
		Email:         o.Email,
		Phone:         o.Phone,
		Amount:        currency.MinorUnits(o.Total(), o.Currency),
		Currency:      o.Currency,
		Provider:      o.PaymentProvider,
		TransactionID: o.ProviderTransactionID,
	}
}
