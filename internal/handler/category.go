package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dessertshop/storefront-api/internal/dto"
	"github.com/dessertshop/storefront-api/internal/service"
)

type CategoryHandler struct {
	svc *service.CategoryService
}

func NewCategoryHandler(svc *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{svc: svc}
}

func (h *CategoryHandler) List(c *gin.Context) {
	cats, err := h.svc.List(c.Request.Context())
	if err != nil {
		internalError(c)
		return
	}
	c.JSON(http.StatusOK, cats)
}

func (h *CategoryHandler) Get(c *gin.Context) {
	id := pathID(c)
	if id == 0 {
		return
	}
	cat, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		h.writeCategoryError(c, err)
		return
	}
	c.JSON(http.StatusOK, cat)
}

func (h *CategoryHandler) Create(c *gin.Context) {
	var req dto.SaveCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cat, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		h.writeCategoryError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cat)
}

func (h *CategoryHandler) Update(c *gin.Context) {
	id := pathID(c)
	if id == 0 {
		return
	}
	var req dto.SaveCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cat, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		h.writeCategoryError(c, err)
		return
	}
	c.JSON(http.StatusOK, cat)
}

func (h *CategoryHandler) Delete(c *gin.Context) {
	id := pathID(c)
	if id == 0 {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		h.writeCategoryError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CategoryHandler) writeCategoryError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCategoryNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "category not found"})
	case errors.Is(err, service.ErrCategoryNameTaken):
		c.JSON(http.StatusConflict, gin.H{"error": "a category with that name already exists"})
	case errors.Is(err, service.ErrCategoryHasDependents):
		c.JSON(http.StatusConflict, gin.H{"error": "category has products and cannot be deleted"})
	default:
		internalError(c)
	}
}
