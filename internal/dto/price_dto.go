package dto

import "github.com/shopspring/decimal"

// PriceCheckResponse answers a scanned-label price query. EncodedPrice is the
// integer bucket baked into the label at print time; LivePrice is the current
// catalog price. They drift apart after a price change — LivePrice wins.
type PriceCheckResponse struct {
	Barcode      string          `json:"barcode"`
	VariantID    string          `json:"variant_id"`
	Product      string          `json:"product"`
	Color        string          `json:"color,omitempty"`
	Size         string          `json:"size,omitempty"`
	LivePrice    decimal.Decimal `json:"live_price"`
	EncodedPrice int             `json:"encoded_price"`
	PriceDrift   bool            `json:"price_drift"`
	InStock      bool            `json:"in_stock"`
	Cached       bool            `json:"cached"`
}
