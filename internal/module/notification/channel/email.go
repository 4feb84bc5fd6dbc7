package channel

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/clickcart/server/internal/shared/mq"
)

// Message templates shared by all channels.
const (
	TemplatePaymentSucceeded = "payment_succeeded"
	TemplatePaymentFailed    = "payment_failed"
	TemplatePaymentExpired   = "payment_expired"
	TemplatePaymentCanceled  = "payment_canceled"
	TemplateOpsAlert         = "ops_alert"
)

// EmailProvider renders payment events into emails and publishes them to the
// notification request topic for the delivery gateway.
type EmailProvider struct {
	producer *mq.Producer
	from     string
	logger   *zap.Logger
}

// NewEmailProvider creates an email channel provider.
func NewEmailProvider(producer *mq.Producer, from string, logger *zap.Logger) *EmailProvider {
	return &EmailProvider{producer: producer, from: from, logger: logger}
}

// Channel returns the channel identifier.
func (p *EmailProvider) Channel() string {
	return "EMAIL"
}

// Send publishes the rendered email.
func (p *EmailProvider) Send(ctx context.Context, msg *Message) error {
	payload := mq.EmailMessage{
		NotificationID: msg.NotificationID,
		From:           p.from,
		To:             msg.Recipient,
		Subject:        Subject(msg.TemplateID, msg.Variables),
		TemplateID:     msg.TemplateID,
		Variables:      msg.Variables,
	}
	env, err := mq.NewEnvelope(mq.KindEmailMessage, msg.NotificationID, payload)
	if err != nil {
		return err
	}
	if err := p.producer.Publish(ctx, mq.TopicNotificationRequest, []byte(msg.NotificationID.String()), env); err != nil {
		return fmt.Errorf("publish email: %w", err)
	}

	p.logger.Debug("email queued",
		zap.String("notification_id", msg.NotificationID.String()),
		zap.String("template", msg.TemplateID),
	)
	return nil
}

// Subject returns the email subject line for a template.
func Subject(templateID string, vars map[string]string) string {
	orderNo := vars["order_no"]
	switch templateID {
	case TemplatePaymentSucceeded:
		return fmt.Sprintf("Order %s confirmed", orderNo)
	case TemplatePaymentFailed:
		return fmt.Sprintf("Payment for order %s failed", orderNo)
	case TemplatePaymentExpired:
		return fmt.Sprintf("Checkout for order %s expired", orderNo)
	case TemplatePaymentCanceled:
		return fmt.Sprintf("Order %s canceled", orderNo)
	case TemplateOpsAlert:
		return "Notification dispatch failure"
	default:
		return fmt.Sprintf("Update on order %s", orderNo)
	}
}
