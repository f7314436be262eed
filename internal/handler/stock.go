package handler

import (
	"net/http"

	"github.com/firatemu/nuviabutik/internal/apierror"
	"github.com/firatemu/nuviabutik/internal/dto"
	"github.com/firatemu/nuviabutik/internal/model"
	"github.com/firatemu/nuviabutik/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type StockHandler struct {
	stock service.StockService
}

func NewStockHandler(stock service.StockService) *StockHandler {
	return &StockHandler{stock: stock}
}

func variantID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid variant id"))
		return uuid.Nil, false
	}
	return id, true
}

// DirectEdit handles POST /v1/variants/:id/stock — opening quantity for a
// variant that has never moved. Locked variants get a 409.
func (h *StockHandler) DirectEdit(c *gin.Context) {
	id, ok := variantID(c)
	if !ok {
		return
	}
	var req dto.DirectEditRequest
	if !bindAndValidate(c, &req) {
		return
	}

	v, err := h.stock.DirectEdit(c.Request.Context(), id, req.Quantity, actorFrom(c), req.Note)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.StockResponse{
		VariantID:      v.ID.String(),
		QuantityOnHand: v.QuantityOnHand,
		LockState:      string(v.LockState),
	})
}

// ApplyMovement handles POST /v1/variants/:id/movements.
func (h *StockHandler) ApplyMovement(c *gin.Context) {
	id, ok := variantID(c)
	if !ok {
		return
	}
	var req dto.MovementRequest
	if !bindAndValidate(c, &req) {
		return
	}

	newQty, err := h.stock.ApplyMovement(c.Request.Context(), id,
		model.MovementKind(req.Kind), req.Quantity, actorFrom(c), req.Note, nil)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.StockResponse{
		VariantID:      id.String(),
		QuantityOnHand: newQty,
		LockState:      string(model.LockStateLocked),
	})
}

// ListMovements handles GET /v1/variants/:id/movements.
func (h *StockHandler) ListMovements(c *gin.Context) {
	id, ok := variantID(c)
	if !ok {
		return
	}
	var filter dto.MovementFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid query: "+err.Error()))
		return
	}

	resp, err := h.stock.ListMovements(c.Request.Context(), id, filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Audit handles GET /v1/variants/:id/audit — balance vs ledger sum.
func (h *StockHandler) Audit(c *gin.Context) {
	id, ok := variantID(c)
	if !ok {
		return
	}

	resp, err := h.stock.VerifyBalance(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
