package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateOrderRequest represents a request to create an order.
type CreateOrderRequest struct {
	Email           string                   `json:"email" binding:"required,email"`
	Phone           string                   `json:"phone"`
	Currency        string                   `json:"currency" binding:"required,len=3"`
	PaymentMethod   string                   `json:"payment_method" binding:"required"`
	ShippingName    string                   `json:"shipping_name"`
	ShippingAddress string                   `json:"shipping_address"`
	Items           []CreateOrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

// CreateOrderItemRequest represents one line item in a create order request.
type CreateOrderItemRequest struct {
	ProductID   uuid.UUID       `json:"product_id"`
	Description string          `json:"description" binding:"required"`
	Quantity    int             `json:"quantity" binding:"required,min=1"`
	UnitPrice   decimal.Decimal `json:"unit_price" binding:"required"`
}

// Pagination represents pagination parameters.
type Pagination struct {
	Page     int `form:"page,default=1" binding:"min=1"`
	PageSize int `form:"page_size,default=20" binding:"min=1,max=100"`
}

// Offset returns the offset for database queries.
func (p *Pagination) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// OrderResponse represents an order in API responses.
type OrderResponse struct {
	ID            uuid.UUID           `json:"id"`
	OrderNo       string              `json:"order_no"`
	Status        OrderStatus         `json:"status"`
	PaymentStatus PaymentStatus       `json:"payment_status"`
	PaymentMethod string              `json:"payment_method,omitempty"`
	Total         decimal.Decimal     `json:"total"`
	Currency      string              `json:"currency"`
	PaidAt        *time.Time          `json:"paid_at,omitempty"`
	CanceledAt    *time.Time          `json:"canceled_at,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	Items         []OrderItemResponse `json:"items,omitempty"`
}

// OrderItemResponse represents a line item in API responses.
type OrderItemResponse struct {
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// ToResponse converts an order to its API representation.
func (o *Order) ToResponse() *OrderResponse {
	resp := &OrderResponse{
		ID:            o.ID,
		OrderNo:       o.OrderNo,
		Status:        o.Status,
		PaymentStatus: o.PaymentStatus,
		PaymentMethod: o.PaymentMethod,
		Total:         o.Total(),
		Currency:      o.Currency,
		PaidAt:        o.PaidAt,
		CanceledAt:    o.CanceledAt,
		CreatedAt:     o.CreatedAt,
	}
	for _, item := range o.Items {
		resp.Items = append(resp.Items, OrderItemResponse{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		})
	}
	return resp
}
