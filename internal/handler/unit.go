package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dessertshop/storefront-api/internal/dto"
	"github.com/dessertshop/storefront-api/internal/service"
)

type UnitHandler struct {
	svc *service.UnitService
}

func NewUnitHandler(svc *service.UnitService) *UnitHandler {
	return &UnitHandler{svc: svc}
}

func (h *UnitHandler) List(c *gin.Context) {
	units, err := h.svc.List(c.Request.Context())
	if err != nil {
		internalError(c)
		return
	}
	c.JSON(http.StatusOK, units)
}

func (h *UnitHandler) Get(c *gin.Context) {
	id := pathID(c)
	if id == 0 {
		return
	}
	unit, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		h.writeUnitError(c, err)
		return
	}
	c.JSON(http.StatusOK, unit)
}

func (h *UnitHandler) Create(c *gin.Context) {
	var req dto.SaveUnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	unit, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		h.writeUnitError(c, err)
		return
	}
	c.JSON(http.StatusCreated, unit)
}

func (h *UnitHandler) Update(c *gin.Context) {
	id := pathID(c)
	if id == 0 {
		return
	}
	var req dto.SaveUnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	unit, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		h.writeUnitError(c, err)
		return
	}
	c.JSON(http.StatusOK, unit)
}

func (h *UnitHandler) Delete(c *gin.Context) {
	id := pathID(c)
	if id == 0 {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		h.writeUnitError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UnitHandler) writeUnitError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUnitNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "unit of measure not found"})
	case errors.Is(err, service.ErrUnitCodeTaken):
		c.JSON(http.StatusConflict, gin.H{"error": "a unit of measure with that code already exists"})
	case errors.Is(err, service.ErrUnitHasDependents):
		c.JSON(http.StatusConflict, gin.H{"error": "unit of measure is referenced and cannot be deleted"})
	default:
		internalError(c)
	}
}
