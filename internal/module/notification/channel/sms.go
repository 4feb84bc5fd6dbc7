package channel

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/clickcart/server/internal/shared/mq"
)

// SMSProvider renders payment events into short texts and publishes them to
// the notification request topic for the delivery gateway.
type SMSProvider struct {
	producer *mq.Producer
	sender   string
	logger   *zap.Logger
}

// NewSMSProvider creates an SMS channel provider.
func NewSMSProvider(producer *mq.Producer, sender string, logger *zap.Logger) *SMSProvider {
	return &SMSProvider{producer: producer, sender: sender, logger: logger}
}

// Channel returns the channel identifier.
func (p *SMSProvider) Channel() string {
	return "SMS"
}

// Send publishes the rendered text message.
func (p *SMSProvider) Send(ctx context.Context, msg *Message) error {
	payload := mq.SMSMessage{
		NotificationID: msg.NotificationID,
		Sender:         p.sender,
		To:             msg.Recipient,
		Body:           smsBody(msg.TemplateID, msg.Variables),
	}
	env, err := mq.NewEnvelope(mq.KindSMSMessage, msg.NotificationID, payload)
	if err != nil {
		return err
	}
	if err := p.producer.Publish(ctx, mq.TopicNotificationRequest, []byte(msg.NotificationID.String()), env); err != nil {
		return fmt.Errorf("publish sms: %w", err)
	}

	p.logger.Debug("sms queued",
		zap.String("notification_id", msg.NotificationID.String()),
		zap.String("template", msg.TemplateID),
	)
	return nil
}

func smsBody(templateID string, vars map[string]string) string {
	orderNo := vars["order_no"]
	switch templateID {
	case TemplatePaymentSucceeded:
		return fmt.Sprintf("Your order %s is confirmed. Amount: %s %s.", orderNo, vars["amount"], vars["currency"])
	case TemplatePaymentFailed:
		return fmt.Sprintf("Payment for order %s failed. Please try again.", orderNo)
	case TemplatePaymentExpired:
		return fmt.Sprintf("Checkout for order %s expired. Start a new checkout to complete your purchase.", orderNo)
	case TemplatePaymentCanceled:
		return fmt.Sprintf("Order %s was canceled.", orderNo)
	default:
		return fmt.Sprintf("Update on order %s.", orderNo)
	}
}
