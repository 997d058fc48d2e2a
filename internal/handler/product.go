package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dessertshop/storefront-api/internal/dto"
	"github.com/dessertshop/storefront-api/internal/service"
)

// ProductHandler is the admin product CRUD surface. Storefront reads live in
// CatalogHandler.
type ProductHandler struct {
	svc *service.ProductService
}

func NewProductHandler(svc *service.ProductService) *ProductHandler {
	return &ProductHandler{svc: svc}
}

func (h *ProductHandler) List(c *gin.Context) {
	products, err := h.svc.List(c.Request.Context())
	if err != nil {
		internalError(c)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *ProductHandler) Get(c *gin.Context) {
	id := pathID(c)
	if id == 0 {
		return
	}
	product, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		h.writeProductError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) Create(c *gin.Context) {
	var req dto.SaveProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	product, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		h.writeProductError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (h *ProductHandler) Update(c *gin.Context) {
	id := pathID(c)
	if id == 0 {
		return
	}
	var req dto.SaveProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	product, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		h.writeProductError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) Delete(c *gin.Context) {
	id := pathID(c)
	if id == 0 {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		h.writeProductError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ProductHandler) writeProductError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
	case errors.Is(err, service.ErrProductNameTaken):
		c.JSON(http.StatusConflict, gin.H{"error": "a product with that name already exists"})
	case errors.Is(err, service.ErrProductHasDependents):
		c.JSON(http.StatusConflict, gin.H{"error": "product is referenced by carts or orders and cannot be deleted"})
	case errors.Is(err, service.ErrBadProductReference):
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown category or unit of measure"})
	default:
		internalError(c)
	}
}
