package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dessertshop/storefront-api/internal/dto"
	"github.com/dessertshop/storefront-api/internal/middleware"
	"github.com/dessertshop/storefront-api/internal/model"
	"github.com/dessertshop/storefront-api/internal/service"
)

type CartHandler struct {
	svc *service.CartService
}

func NewCartHandler(svc *service.CartService) *CartHandler {
	return &CartHandler{svc: svc}
}

func (h *CartHandler) GetCart(c *gin.Context) {
	cart, err := h.svc.GetCart(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		internalError(c)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h *CartHandler) AddLine(c *gin.Context) {
	var req dto.AddCartLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	line, err := h.svc.AddLine(c.Request.Context(), middleware.GetUserID(c), req.ProductID, req.Quantity)
	if err != nil {
		h.writeCartError(c, err)
		return
	}
	c.JSON(http.StatusCreated, line)
}

func (h *CartHandler) UpdateLine(c *gin.Context) {
	id := pathID(c)
	if id == 0 {
		return
	}
	var req dto.UpdateCartLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.svc.UpdateLine(c.Request.Context(), middleware.GetUserID(c), id, req.Quantity); err != nil {
		h.writeCartError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "cart line updated"})
}

func (h *CartHandler) DeleteLine(c *gin.Context) {
	id := pathID(c)
	if id == 0 {
		return
	}
	if err := h.svc.DeleteLine(c.Request.Context(), middleware.GetUserID(c), id); err != nil {
		h.writeCartError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CartHandler) writeCartError(c *gin.Context, err error) {
	var shortage *model.StockShortage
	switch {
	case errors.As(err, &shortage):
		c.JSON(http.StatusConflict, gin.H{"error": shortage.Error()})
	case errors.Is(err, service.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
	case errors.Is(err, service.ErrCartLineNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "cart line not found"})
	case errors.Is(err, service.ErrNotYourCart):
		c.JSON(http.StatusForbidden, gin.H{"error": "cart line belongs to another user"})
	default:
		internalError(c)
	}
}
