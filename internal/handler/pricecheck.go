package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/firatemu/nuviabutik/internal/apierror"
	"github.com/firatemu/nuviabutik/internal/barcode"
	"github.com/firatemu/nuviabutik/internal/dto"
	"github.com/firatemu/nuviabutik/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const priceCacheTTL = 4 * time.Hour

// PriceCheckHandler serves the scanner price endpoint. Read-only, no side
// effects. The label's encoded price bucket is reported next to the live
// catalog price so the counter can see drift after a price change.
type PriceCheckHandler struct {
	variants repository.VariantRepository
	rdb      *redis.Client
}

func NewPriceCheckHandler(variants repository.VariantRepository, rdb *redis.Client) *PriceCheckHandler {
	return &PriceCheckHandler{variants: variants, rdb: rdb}
}

// GetByBarcode handles GET /v1/price/:barcode.
func (h *PriceCheckHandler) GetByBarcode(c *gin.Context) {
	code := c.Param("barcode")
	ctx := c.Request.Context()

	decoded, err := barcode.Decode(code)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Malformed barcode"))
		return
	}

	cacheKey := "price:" + code
	if cached, err := h.rdb.Get(ctx, cacheKey).Bytes(); err == nil {
		var resp dto.PriceCheckResponse
		if jsonErr := json.Unmarshal(cached, &resp); jsonErr == nil {
			resp.Cached = true
			c.JSON(http.StatusOK, resp)
			return
		}
	}

	variant, err := h.variants.FindByBarcode(ctx, code)
	if decoded.Legacy && errors.Is(err, gorm.ErrRecordNotFound) {
		// Legacy labels were re-registered with the prefix.
		variant, err = h.variants.FindByBarcode(ctx, barcode.Prefix+code)
	}
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New("Variant not found"))
		return
	}

	live := variant.Product.BasePrice
	resp := dto.PriceCheckResponse{
		Barcode:      variant.Barcode,
		VariantID:    variant.ID.String(),
		Product:      variant.Product.Name,
		LivePrice:    live,
		EncodedPrice: decoded.PriceBucket,
		PriceDrift:   live.IntPart() != int64(decoded.PriceBucket),
		InStock:      variant.QuantityOnHand > 0,
	}
	if variant.Color != nil {
		resp.Color = variant.Color.Name
	}
	if variant.Size != nil {
		resp.Size = variant.Size.Name
	}

	// Populate cache — best effort, ignore errors
	if b, jsonErr := json.Marshal(resp); jsonErr == nil {
		_ = h.rdb.Set(context.Background(), cacheKey, b, priceCacheTTL).Err()
	}

	c.JSON(http.StatusOK, resp)
}
