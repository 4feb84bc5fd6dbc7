// Package channel contains the notification channel providers. A provider
// renders a payment event into a channel-specific message and hands it to
// the delivery gateway via the message broker.
package channel

import (
	"context"

	"github.com/google/uuid"
)

// Message is the channel-neutral input to a provider: one payment outcome
// for one recipient.
type Message struct {
	NotificationID uuid.UUID
	Recipient      string
	// TemplateID names the message template (e.g. payment_succeeded).
	TemplateID string
	// Variables fill the template (order_no, amount, currency, reason).
	Variables map[string]string
}

// Provider delivers messages over one channel.
type Provider interface {
	// Channel returns the channel identifier (e.g. EMAIL).
	Channel() string

	// Send renders and dispatches the message. An error means the channel
	// rejected it; the dispatcher records the failure and moves on.
	Send(ctx context.Context, msg *Message) error
}
