package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dessertshop/storefront-api/internal/dto"
	"github.com/dessertshop/storefront-api/internal/middleware"
	"github.com/dessertshop/storefront-api/internal/service"
)

type OrderHandler struct {
	svc *service.OrderService
}

func NewOrderHandler(svc *service.OrderService) *OrderHandler {
	return &OrderHandler{svc: svc}
}

// ListMine returns the caller's own order history.
func (h *OrderHandler) ListMine(c *gin.Context) {
	orders, err := h.svc.ListForUser(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		internalError(c)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// ListAll returns every order; admin only.
func (h *OrderHandler) ListAll(c *gin.Context) {
	orders, err := h.svc.ListAll(c.Request.Context())
	if err != nil {
		internalError(c)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) Get(c *gin.Context) {
	id := pathID(c)
	if id == 0 {
		return
	}
	order, err := h.svc.Get(c.Request.Context(), id, middleware.GetUserID(c), middleware.IsAdmin(c))
	if err != nil {
		h.writeOrderError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// Edit updates the paid/shipped dates and notes; admin only.
func (h *OrderHandler) Edit(c *gin.Context) {
	id := pathID(c)
	if id == 0 {
		return
	}
	var req dto.EditOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	order, err := h.svc.Edit(c.Request.Context(), id, req)
	if err != nil {
		h.writeOrderError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) writeOrderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
	case errors.Is(err, service.ErrNotYourOrder):
		c.JSON(http.StatusForbidden, gin.H{"error": "order belongs to another user"})
	default:
		internalError(c)
	}
}
