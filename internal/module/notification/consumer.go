package notification

import (
	"context"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/clickcart/server/internal/shared/mq"
)

// EventConsumer turns payment events into notifications. The inbox table
// makes it idempotent: at-least-once delivery of the same event never
// produces a second fan-out.
type EventConsumer struct {
	repo       Repository
	dispatcher *Dispatcher
	logger     *zap.Logger
}

// NewEventConsumer creates a consumer handler for payment events.
func NewEventConsumer(repo Repository, dispatcher *Dispatcher, logger *zap.Logger) *EventConsumer {
	return &EventConsumer{repo: repo, dispatcher: dispatcher, logger: logger}
}

// Handle processes one envelope from the payment response topic.
func (c *EventConsumer) Handle(ctx context.Context, env *mq.Envelope) error {
	payload, err := env.Decode()
	if err != nil {
		return err
	}
	event, ok := payload.(*mq.PaymentEvent)
	if !ok {
		return fmt.Errorf("unexpected payload kind %s", env.Kind)
	}

	cmd := &InboundCommand{
		MessageID: env.MessageID,
		EventType: event.Type,
		OrderID:   event.OrderID,
		Channels:  pq.StringArray(c.dispatcher.Channels()),
	}
	if err := c.repo.RecordInbound(ctx, cmd); err != nil {
		if errors.Is(err, ErrDuplicateCommand) {
			c.logger.Info("duplicate payment event skipped",
				zap.String("message_id", env.MessageID.String()),
				zap.String("order_id", event.OrderID.String()),
			)
			return nil
		}
		return fmt.Errorf("record inbound event: %w", err)
	}

	c.dispatcher.Dispatch(ctx, event)
	return nil
}

// ReceiptConsumer applies delivery receipts from the gateway back onto
// notification rows.
type ReceiptConsumer struct {
	repo   Repository
	logger *zap.Logger
}

// NewReceiptConsumer creates a consumer handler for delivery receipts.
func NewReceiptConsumer(repo Repository, logger *zap.Logger) *ReceiptConsumer {
	return &ReceiptConsumer{repo: repo, logger: logger}
}

// Handle processes one envelope from the notification receipt topic.
func (c *ReceiptConsumer) Handle(ctx context.Context, env *mq.Envelope) error {
	payload, err := env.Decode()
	if err != nil {
		return err
	}
	receipt, ok := payload.(*mq.DeliveryReceipt)
	if !ok {
		return fmt.Errorf("unexpected payload kind %s", env.Kind)
	}

	if receipt.Delivered {
		err = c.repo.MarkDelivered(ctx, receipt.NotificationID, receipt.At, receipt.Detail)
	} else {
		err = c.repo.UpdateStatus(ctx, receipt.NotificationID, StatusFailed, receipt.Detail)
	}
	if err != nil {
		if errors.Is(err, ErrNotificationNotFound) {
			// Receipt for a row we never created, nothing to reconcile.
			c.logger.Warn("receipt for unknown notification",
				zap.String("notification_id", receipt.NotificationID.String()),
			)
			return nil
		}
		return err
	}

	c.logger.Info("delivery receipt applied",
		zap.String("notification_id", receipt.NotificationID.String()),
		zap.Bool("delivered", receipt.Delivered),
	)
	return nil
}
