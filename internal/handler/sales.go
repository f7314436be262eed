package handler

import (
	"net/http"

	"github.com/firatemu/nuviabutik/internal/apierror"
	"github.com/firatemu/nuviabutik/internal/dto"
	"github.com/firatemu/nuviabutik/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SalesHandler struct {
	sales service.SaleService
}

func NewSalesHandler(sales service.SaleService) *SalesHandler {
	return &SalesHandler{sales: sales}
}

// Settle handles POST /v1/sales.
func (h *SalesHandler) Settle(c *gin.Context) {
	var req dto.SettleSaleRequest
	if !bindAndValidate(c, &req) {
		return
	}

	resp, err := h.sales.Settle(c.Request.Context(), actorFrom(c), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Cancel handles DELETE /v1/sales/:id.
func (h *SalesHandler) Cancel(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid sale id"))
		return
	}
	var req dto.CancelSaleRequest
	if !bindAndValidate(c, &req) {
		return
	}

	if err := h.sales.Cancel(c.Request.Context(), id, actorFrom(c), req.Reason); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
}

// Get handles GET /v1/sales/:id.
func (h *SalesHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid sale id"))
		return
	}

	resp, err := h.sales.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// List handles GET /v1/sales.
func (h *SalesHandler) List(c *gin.Context) {
	var filter dto.SaleFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid query: "+err.Error()))
		return
	}

	resp, err := h.sales.List(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// NextNumber handles GET /v1/sales/next-number. The value is advisory; the
// authoritative number is minted inside settlement.
func (h *SalesHandler) NextNumber(c *gin.Context) {
	resp, err := h.sales.PreviewNumber(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
