package order

// PaymentStatus is the canonical, provider-neutral payment status. Provider
// adapters translate their native vocabularies into this set; nothing past
// the adapter boundary ever sees a provider-specific status string.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusSucceeded PaymentStatus = "SUCCEEDED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
	PaymentStatusExpired   PaymentStatus = "EXPIRED"
	PaymentStatusCanceled  PaymentStatus = "CANCELED"

	// PaymentStatusUnknown marks a status the adapter could not map.
	// It is recorded and logged but never drives an order transition.
	PaymentStatusUnknown PaymentStatus = "UNKNOWN"
)

// IsTerminal reports whether no further payment transitions are expected.
func (s PaymentStatus) IsTerminal() bool {
	switch s {
	case PaymentStatusSucceeded, PaymentStatusFailed, PaymentStatusExpired, PaymentStatusCanceled:
		return true
	}
	return false
}

// OrderStatus represents the lifecycle status of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusFailed    OrderStatus = "FAILED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
	OrderStatusShipped   OrderStatus = "SHIPPED"
	OrderStatusDelivered OrderStatus = "DELIVERED"
)

// DeriveOrderStatus maps a terminal payment status to the order status it
// implies. The second return is false for statuses that imply no change
// (PENDING keeps the order as is, UNKNOWN never drives a transition).
func DeriveOrderStatus(s PaymentStatus) (OrderStatus, bool) {
	switch s {
	case PaymentStatusSucceeded:
		return OrderStatusConfirmed, true
	case PaymentStatusFailed, PaymentStatusExpired:
		return OrderStatusFailed, true
	case PaymentStatusCanceled:
		return OrderStatusCancelled, true
	}
	return "", false
}
