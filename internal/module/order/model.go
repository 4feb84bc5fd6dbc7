package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CancelActor identifies who requested a cancellation.
type CancelActor string

const (
	CancelActorUser   CancelActor = "USER"
	CancelActorAdmin  CancelActor = "ADMIN"
	CancelActorSystem CancelActor = "SYSTEM"
)

// Order represents a purchase order together with its payment state.
// Payment state lives on the order row so checkout creation, webhook
// application and cancellation all synchronize on the same lock.
type Order struct {
	ID       uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrderNo  string    `json:"order_no" gorm:"uniqueIndex;not null"`
	UserID   uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	Email    string    `json:"email" gorm:"not null"`
	Currency string    `json:"currency" gorm:"default:usd"`

	Status        OrderStatus   `json:"status" gorm:"not null;default:PENDING"`
	PaymentStatus PaymentStatus `json:"payment_status" gorm:"not null;default:PENDING"`

	// PaymentMethod is what the buyer chose (e.g. CREDIT_CARD);
	// PaymentProvider is the adapter it resolved to (e.g. STRIPE).
	PaymentMethod   string `json:"payment_method"`
	PaymentProvider string `json:"payment_provider"`

	ProviderTransactionID string     `json:"-" gorm:"index"`
	CheckoutURL           string     `json:"-"`
	CheckoutExpiresAt     *time.Time `json:"-"`

	CancelActor CancelActor `json:"cancel_actor,omitempty"`
	CanceledAt  *time.Time  `json:"canceled_at,omitempty"`
	PaidAt      *time.Time  `json:"paid_at,omitempty"`

	Phone           string `json:"phone,omitempty"`
	ShippingName    string `json:"shipping_name,omitempty"`
	ShippingAddress string `json:"shipping_address,omitempty"`

	// Version guards concurrent updates; every write bumps it.
	Version int64 `json:"-" gorm:"not null;default:0"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Items []OrderItem `json:"items,omitempty" gorm:"foreignKey:OrderID"`
}

// TableName returns the database table name.
func (Order) TableName() string {
	return "orders"
}

// IsPending returns true if the order is still awaiting payment.
func (o *Order) IsPending() bool {
	return o.Status == OrderStatusPending
}

// HasActiveCheckout reports whether the cached checkout session is still
// usable: a transaction reference and URL exist, payment has not failed,
// and the session has not expired.
func (o *Order) HasActiveCheckout(now time.Time) bool {
	if o.ProviderTransactionID == "" || o.CheckoutURL == "" {
		return false
	}
	if o.PaymentStatus == PaymentStatusFailed {
		return false
	}
	return o.CheckoutExpiresAt != nil && o.CheckoutExpiresAt.After(now)
}

// Total returns the order total as a decimal amount in major units.
func (o *Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// OrderItem represents a line item in an order.
type OrderItem struct {
	ID          uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrderID     uuid.UUID       `json:"order_id" gorm:"type:uuid;not null"`
	ProductID   uuid.UUID       `json:"product_id" gorm:"type:uuid"`
	Description string          `json:"description" gorm:"not null"`
	Quantity    int             `json:"quantity" gorm:"default:1"`
	UnitPrice   decimal.Decimal `json:"unit_price" gorm:"type:numeric(12,2)"`
}

// TableName returns the database table name.
func (OrderItem) TableName() string {
	return "order_items"
}
