package handler

import (
	"net/http"

	"github.com/firatemu/nuviabutik/internal/apierror"
	"github.com/firatemu/nuviabutik/internal/dto"
	"github.com/firatemu/nuviabutik/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ReturnsHandler struct {
	returns service.ReturnService
}

func NewReturnsHandler(returns service.ReturnService) *ReturnsHandler {
	return &ReturnsHandler{returns: returns}
}

// Create handles POST /v1/sales/:id/returns.
func (h *ReturnsHandler) Create(c *gin.Context) {
	saleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid sale id"))
		return
	}
	var req dto.ReturnRequest
	if !bindAndValidate(c, &req) {
		return
	}

	resp, err := h.returns.ReturnLines(c.Request.Context(), actorFrom(c), saleID, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}
