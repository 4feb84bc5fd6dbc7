package order

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/clickcart/server/internal/shared/errors"
	"github.com/clickcart/server/internal/shared/middleware"
	"github.com/clickcart/server/internal/shared/response"
)

// Handler handles HTTP requests for orders.
type Handler struct {
	service *Service
}

// NewHandler creates a new order handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterProtectedRoutes registers order routes that require authentication.
func (h *Handler) RegisterProtectedRoutes(r *gin.RouterGroup) {
	orders := r.Group("/orders")
	{
		orders.POST("", h.CreateOrder)
		orders.GET("", h.ListOrders)
		orders.GET("/:id", h.GetOrder)
		orders.POST("/:id/cancel", h.CancelOrder)
	}
}

// RegisterAdminRoutes registers order routes that require the admin role.
func (h *Handler) RegisterAdminRoutes(r *gin.RouterGroup) {
	orders := r.Group("/orders")
	{
		orders.POST("/:id/ship", h.ShipOrder)
		orders.POST("/:id/deliver", h.DeliverOrder)
	}
}

// CreateOrder creates an order.
//
//	@Summary		Create order
//	@Description	Create a new pending order
//	@Tags			Order
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		CreateOrderRequest	true	"Create order request"
//	@Success		201		{object}	OrderResponse
//	@Failure		400		{object}	errors.ErrorResponse
//	@Failure		401		{object}	errors.ErrorResponse
//	@Router			/orders [post]
func (h *Handler) CreateOrder(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperrors.Unauthorized("authentication required"))
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperrors.ValidationError(err.Error()))
		return
	}

	order, err := h.service.CreateOrder(c.Request.Context(), userID, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, order.ToResponse())
}

// ListOrders lists the caller's orders.
//
//	@Summary		List orders
//	@Tags			Order
//	@Produce		json
//	@Security		BearerAuth
//	@Param			page		query		int	false	"Page number"
//	@Param			page_size	query		int	false	"Page size"
//	@Success		200			{object}	map[string]interface{}
//	@Router			/orders [get]
func (h *Handler) ListOrders(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperrors.Unauthorized("authentication required"))
		return
	}

	var p Pagination
	if err := c.ShouldBindQuery(&p); err != nil {
		response.Error(c, apperrors.ValidationError(err.Error()))
		return
	}

	orders, total, err := h.service.ListOrders(c.Request.Context(), userID, &p)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]*OrderResponse, 0, len(orders))
	for _, o := range orders {
		items = append(items, o.ToResponse())
	}
	c.JSON(http.StatusOK, gin.H{
		"orders": items,
		"total":  total,
		"page":   p.Page,
	})
}

// GetOrder returns one order.
//
//	@Summary		Get order
//	@Tags			Order
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Order ID"
//	@Success		200	{object}	OrderResponse
//	@Failure		404	{object}	errors.ErrorResponse
//	@Router			/orders/{id} [get]
func (h *Handler) GetOrder(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperrors.Unauthorized("authentication required"))
		return
	}
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.NotFoundMasked(c, "order")
		return
	}

	order, err := h.service.GetOrder(c.Request.Context(), userID, middleware.IsAdmin(c), orderID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, order.ToResponse())
}

// CancelOrder cancels a pending order.
//
//	@Summary		Cancel order
//	@Tags			Order
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Order ID"
//	@Success		200	{object}	map[string]string
//	@Failure		404	{object}	errors.ErrorResponse
//	@Failure		409	{object}	errors.ErrorResponse
//	@Router			/orders/{id}/cancel [post]
func (h *Handler) CancelOrder(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperrors.Unauthorized("authentication required"))
		return
	}
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.NotFoundMasked(c, "order")
		return
	}

	if err := h.service.CancelOrder(c.Request.Context(), userID, middleware.IsAdmin(c), orderID); err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "canceled"})
}

// ShipOrder marks a confirmed order as shipped.
//
//	@Summary		Ship order
//	@Tags			Order
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Order ID"
//	@Success		200	{object}	map[string]string
//	@Router			/admin/orders/{id}/ship [post]
func (h *Handler) ShipOrder(c *gin.Context) {
	h.adminTransition(c, h.service.coordinator.MarkShipped, "shipped")
}

// DeliverOrder marks a shipped order as delivered.
//
//	@Summary		Deliver order
//	@Tags			Order
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Order ID"
//	@Success		200	{object}	map[string]string
//	@Router			/admin/orders/{id}/deliver [post]
func (h *Handler) DeliverOrder(c *gin.Context) {
	h.adminTransition(c, h.service.coordinator.MarkDelivered, "delivered")
}

func (h *Handler) adminTransition(c *gin.Context, fn func(context.Context, uuid.UUID) error, status string) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.NotFoundMasked(c, "order")
		return
	}
	if err := fn(c.Request.Context(), orderID); err != nil {
		switch {
		case errors.Is(err, ErrOrderNotFound):
			response.NotFoundMasked(c, "order")
		case errors.Is(err, ErrInvalidTransition):
			response.Error(c, apperrors.Conflict(err.Error()))
		default:
			response.Error(c, apperrors.Internal("update order", err))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": status})
}
