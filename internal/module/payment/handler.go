package payment

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/clickcart/server/internal/shared/errors"
	"github.com/clickcart/server/internal/shared/middleware"
	"github.com/clickcart/server/internal/shared/response"
)

// Handler handles HTTP requests for payment orchestration.
type Handler struct {
	service *Service
}

// NewHandler creates a new payment handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterProtectedRoutes registers payment routes that require authentication.
func (h *Handler) RegisterProtectedRoutes(r *gin.RouterGroup) {
	orders := r.Group("/orders")
	{
		orders.POST("/:id/checkout", h.Checkout)
		orders.GET("/:id/payment-status", h.PaymentStatus)
	}
}

// Checkout creates or returns the checkout session for an order.
//
//	@Summary		Start checkout
//	@Description	Create a hosted checkout session, or return the active one
//	@Tags			Payment
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Order ID"
//	@Success		200	{object}	CheckoutSessionResponse
//	@Failure		404	{object}	errors.ErrorResponse
//	@Failure		409	{object}	errors.ErrorResponse
//	@Failure		502	{object}	errors.ErrorResponse
//	@Router			/orders/{id}/checkout [post]
func (h *Handler) Checkout(c *gin.Context) {
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

	resp, err := h.service.CreateOrGetCheckoutSession(c.Request.Context(), userID, middleware.IsAdmin(c), orderID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// PaymentStatus reports the payment state of an order.
//
//	@Summary		Order payment status
//	@Tags			Payment
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Order ID"
//	@Success		200	{object}	PaymentStatusResponse
//	@Failure		404	{object}	errors.ErrorResponse
//	@Router			/orders/{id}/payment-status [get]
func (h *Handler) PaymentStatus(c *gin.Context) {
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

	resp, err := h.service.GetOrderPaymentStatus(c.Request.Context(), userID, middleware.IsAdmin(c), orderID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
