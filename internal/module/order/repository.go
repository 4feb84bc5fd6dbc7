package order

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository defines the interface for order data access.
type Repository interface {
	CreateOrder(ctx context.Context, order *Order) error
	GetOrder(ctx context.Context, id uuid.UUID) (*Order, error)
	GetOrderWithItems(ctx context.Context, id uuid.UUID) (*Order, error)
	// GetOrderForUpdate loads the order under a row lock. It must be
	// called inside a transaction started with Transaction.
	GetOrderForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*Order, error)
	// UpdateOrder persists the order, bumping its version. It returns
	// ErrVersionConflict if another writer got there first.
	UpdateOrder(ctx context.Context, tx *gorm.DB, order *Order) error
	ListOrders(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Order, int64, error)
	ListPendingExpired(ctx context.Context, now time.Time, limit int) ([]*Order, error)

	// Transaction runs fn inside a database transaction.
	Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new order repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateOrder(ctx context.Context, order *Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repository) GetOrder(ctx context.Context, id uuid.UUID) (*Order, error) {
	var order Order
	err := r.db.WithContext(ctx).First(&order, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *repository) GetOrderWithItems(ctx context.Context, id uuid.UUID) (*Order, error) {
	var order Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		First(&order, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *repository) GetOrderForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*Order, error) {
	var order Order
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Items").
		First(&order, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *repository) UpdateOrder(ctx context.Context, tx *gorm.DB, order *Order) error {
	currentVersion := order.Version
	order.Version++
	result := tx.WithContext(ctx).
		Model(&Order{}).
		Where("id = ? AND version = ?", order.ID, currentVersion).
		Select("*").
		Omit("Items", "created_at").
		Updates(order)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrVersionConflict
	}
	return nil
}

func (r *repository) ListOrders(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Order, int64, error) {
	var orders []*Order
	var total int64

	query := r.db.WithContext(ctx).Model(&Order{}).Where("user_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.
		Preload("Items").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *repository) ListPendingExpired(ctx context.Context, now time.Time, limit int) ([]*Order, error) {
	var orders []*Order
	err := r.db.WithContext(ctx).
		Where("status = ? AND payment_status = ? AND checkout_expires_at IS NOT NULL AND checkout_expires_at < ?",
			OrderStatusPending, PaymentStatusPending, now).
		Limit(limit).
		Find(&orders).Error
	return orders, err
}

func (r *repository) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}
