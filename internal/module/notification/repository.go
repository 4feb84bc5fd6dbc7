package notification

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines the interface for notification data access.
type Repository interface {
	CreateNotification(ctx context.Context, n *Notification) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status, detail string) error
	MarkDelivered(ctx context.Context, id uuid.UUID, at time.Time, detail string) error
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]*Notification, error)

	// RecordInbound inserts the inbox row for a consumed event. It
	// returns ErrDuplicateCommand when the message ID was seen before.
	RecordInbound(ctx context.Context, cmd *InboundCommand) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new notification repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateNotification(ctx context.Context, n *Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status Status, detail string) error {
	updates := map[string]any{"status": status, "detail": detail}
	if status == StatusSent {
		updates["sent_at"] = time.Now()
	}
	result := r.db.WithContext(ctx).
		Model(&Notification{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (r *repository) MarkDelivered(ctx context.Context, id uuid.UUID, at time.Time, detail string) error {
	result := r.db.WithContext(ctx).
		Model(&Notification{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":       StatusDelivered,
			"delivered_at": at,
			"detail":       detail,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (r *repository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]*Notification, error) {
	var notifications []*Notification
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&notifications).Error
	return notifications, err
}

func (r *repository) RecordInbound(ctx context.Context, cmd *InboundCommand) error {
	err := r.db.WithContext(ctx).Create(cmd).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateCommand
		}
		return err
	}
	return nil
}
