package order

import (
	"context"

	"go.uber.org/zap"

	"github.com/clickcart/server/internal/shared/events"
	"github.com/clickcart/server/internal/shared/mq"
)

// EventPublisher emits payment domain events for downstream consumers.
type EventPublisher interface {
	PublishPaymentEvent(ctx context.Context, event events.Event, details events.PaymentDetails, reason, actor string) error
}

// KafkaEventPublisher publishes payment events to the payment response
// topic, keyed by order ID so events for one order stay ordered.
type KafkaEventPublisher struct {
	producer *mq.Producer
	logger   *zap.Logger
}

// NewKafkaEventPublisher creates a publisher backed by the given producer.
func NewKafkaEventPublisher(producer *mq.Producer, logger *zap.Logger) *KafkaEventPublisher {
	return &KafkaEventPublisher{producer: producer, logger: logger}
}

func (p *KafkaEventPublisher) PublishPaymentEvent(ctx context.Context, event events.Event, details events.PaymentDetails, reason, actor string) error {
	payload := mq.PaymentEvent{
		EventID:       event.EventID(),
		Type:          event.EventType(),
		OrderID:       details.OrderID,
		OrderNo:       details.OrderNo,
		UserID:        details.UserID,
		Email:         details.Email,
		Phone:         details.Phone,
		Amount:        details.Amount,
		Currency:      details.Currency,
		Provider:      details.Provider,
		TransactionID: details.TransactionID,
		Reason:        reason,
		Actor:         actor,
		OccurredAt:    event.OccurredAt(),
	}

	env, err := mq.NewEnvelope(mq.KindPaymentEvent, event.CorrelationID(), payload)
	if err != nil {
		return err
	}
	if err := p.producer.Publish(ctx, mq.TopicPaymentResponse, []byte(details.OrderID.String()), env); err != nil {
		return err
	}

	p.logger.Info("payment event published",
		zap.String("type", event.EventType()),
		zap.String("order_id", details.OrderID.String()),
	)
	return nil
}
