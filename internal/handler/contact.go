package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dessertshop/storefront-api/internal/dto"
	"github.com/dessertshop/storefront-api/internal/service"
)

type ContactHandler struct {
	svc *service.ContactService
}

func NewContactHandler(svc *service.ContactService) *ContactHandler {
	return &ContactHandler{svc: svc}
}

func (h *ContactHandler) Submit(c *gin.Context) {
	var req dto.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.svc.Submit(c.Request.Context(), req); err != nil {
		internalError(c)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "thanks for reaching out; we will get back to you soon"})
}
