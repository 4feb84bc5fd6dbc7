package payment

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/clickcart/server/internal/module/order"
	"github.com/clickcart/server/internal/shared/mq"
)

// CommandConsumer applies webhook-sourced payment status commands to orders.
// Failures here must surface: a command that cannot be applied after retries
// lands in the dead-letter topic instead of disappearing.
type CommandConsumer struct {
	coordinator *order.Coordinator
	logger      *zap.Logger
}

// NewCommandConsumer creates a consumer handler for payment status commands.
func NewCommandConsumer(coordinator *order.Coordinator, logger *zap.Logger) *CommandConsumer {
	return &CommandConsumer{coordinator: coordinator, logger: logger}
}

// Handle processes one envelope from the payment request topic.
func (c *CommandConsumer) Handle(ctx context.Context, env *mq.Envelope) error {
	payload, err := env.Decode()
	if err != nil {
		return err
	}
	cmd, ok := payload.(*mq.PaymentStatusCommand)
	if !ok {
		return fmt.Errorf("unexpected payload kind %s", env.Kind)
	}

	update := order.StatusUpdate{
		OrderID:       cmd.OrderID,
		Status:        order.PaymentStatus(cmd.Status),
		TransactionID: cmd.TransactionID,
		Provider:      cmd.Provider,
		EventID:       cmd.EventID,
		CorrelationID: env.CorrelationID,
	}
	if err := c.coordinator.ApplyPaymentStatus(ctx, update); err != nil {
		c.logger.Warn("apply payment status failed",
			zap.String("order_id", cmd.OrderID.String()),
			zap.String("status", cmd.Status),
			zap.Error(err),
		)
		return err
	}
	return nil
}
