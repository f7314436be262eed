package handler

import (
	"net/http"

	"github.com/firatemu/nuviabutik/internal/dto"
	"github.com/firatemu/nuviabutik/internal/service"

	"github.com/gin-gonic/gin"
)

type VouchersHandler struct {
	vouchers service.VoucherService
}

func NewVouchersHandler(vouchers service.VoucherService) *VouchersHandler {
	return &VouchersHandler{vouchers: vouchers}
}

// Issue handles POST /v1/vouchers — over-the-counter voucher sale.
func (h *VouchersHandler) Issue(c *gin.Context) {
	var req dto.IssueVoucherRequest
	if !bindAndValidate(c, &req) {
		return
	}

	resp, err := h.vouchers.Issue(c.Request.Context(), actorFrom(c), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Balance handles GET /v1/vouchers/:code.
func (h *VouchersHandler) Balance(c *gin.Context) {
	resp, err := h.vouchers.Balance(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
