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

type CheckoutHandler struct {
	svc *service.CheckoutService
}

func NewCheckoutHandler(svc *service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{svc: svc}
}

// Begin opens a hosted payment session for the caller's cart and returns the
// redirect URL. Nothing is written; abandoning the payment page leaves the
// cart untouched.
func (h *CheckoutHandler) Begin(c *gin.Context) {
	url, err := h.svc.Begin(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		var shortage *model.StockShortage
		switch {
		case errors.Is(err, service.ErrNothingToCheckOut):
			c.JSON(http.StatusOK, dto.CheckoutResultResponse{Message: "your cart is empty; nothing to check out"})
		case errors.As(err, &shortage):
			c.JSON(http.StatusConflict, gin.H{"error": shortage.Error()})
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		default:
			internalError(c)
		}
		return
	}
	c.JSON(http.StatusOK, dto.CheckoutResponse{PaymentURL: url})
}

// Success is the payment provider's return URL after a captured payment.
// It is a fresh request; the order-creation transaction runs here.
func (h *CheckoutHandler) Success(c *gin.Context) {
	sessionID := c.Query("session_id")
	orderID, err := h.svc.Confirm(c.Request.Context(), middleware.GetUserID(c), sessionID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCheckoutAlreadyProcessed):
			c.JSON(http.StatusOK, dto.CheckoutResultResponse{
				Message: "this payment was already processed; your order is in your order history",
			})
		case errors.Is(err, service.ErrOrderCreationFailed):
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "your payment succeeded but we could not record the order; please contact the administrator",
			})
		default:
			internalError(c)
		}
		return
	}
	c.JSON(http.StatusOK, dto.CheckoutResultResponse{
		OrderID: orderID,
		Message: "thank you for your order",
	})
}

// Cancel is the provider's return URL when the customer backs out. The cart
// is exactly as they left it.
func (h *CheckoutHandler) Cancel(c *gin.Context) {
	c.JSON(http.StatusOK, dto.CheckoutResultResponse{
		Message: "checkout cancelled; your cart is unchanged",
	})
}
