package notification

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Channel identifies a delivery channel.
type Channel string

const (
	ChannelEmail Channel = "EMAIL"
	ChannelSMS   Channel = "SMS"
)

// Status is the delivery lifecycle of one notification.
type Status string

const (
	// StatusPending means the notification row exists but has not been
	// handed to its channel yet.
	StatusPending Status = "PENDING"
	// StatusSent means the channel accepted the message for delivery.
	StatusSent Status = "SENT"
	// StatusFailed means the channel rejected the message.
	StatusFailed Status = "FAILED"
	// StatusDelivered means a delivery receipt confirmed arrival.
	StatusDelivered Status = "DELIVERED"
)

// Notification is one message to one recipient over one channel. A payment
// event fans out into several of these rows, and each row succeeds or fails
// on its own.
type Notification struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrderID   uuid.UUID `json:"order_id" gorm:"type:uuid;not null;index"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	Channel   Channel   `json:"channel" gorm:"not null"`
	Recipient string    `json:"recipient" gorm:"not null"`
	// TemplateID names the message template (e.g. payment_succeeded).
	TemplateID string `json:"template_id" gorm:"not null"`
	Subject    string `json:"subject"`
	Status     Status `json:"status" gorm:"not null;default:PENDING"`
	// Detail carries the channel error or receipt detail, when present.
	Detail      string     `json:"detail,omitempty"`
	SentAt      *time.Time `json:"sent_at,omitempty"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TableName returns the database table name.
func (Notification) TableName() string {
	return "notifications"
}

// InboundCommand is the inbox record for one consumed payment event. The
// unique message ID makes event handling idempotent: a redelivered event
// hits the constraint and is skipped.
type InboundCommand struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	MessageID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	EventType string    `gorm:"not null"`
	OrderID   uuid.UUID `gorm:"type:uuid;not null;index"`
	// Channels lists the channels this event fanned out to.
	Channels  pq.StringArray `gorm:"type:text[]"`
	CreatedAt time.Time
}

// TableName returns the database table name.
func (InboundCommand) TableName() string {
	return "notification_inbound_commands"
}
