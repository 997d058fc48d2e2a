package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dessertshop/storefront-api/internal/middleware"
	"github.com/dessertshop/storefront-api/internal/service"
)

// CatalogHandler serves the public storefront reads.
type CatalogHandler struct {
	svc *service.CatalogService
}

func NewCatalogHandler(svc *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

func (h *CatalogHandler) Storefront(c *gin.Context) {
	resp, err := h.svc.Storefront(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		internalError(c)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CatalogHandler) GetProduct(c *gin.Context) {
	id := pathID(c)
	if id == 0 {
		return
	}
	resp, err := h.svc.GetProduct(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		internalError(c)
		return
	}
	c.JSON(http.StatusOK, resp)
}
