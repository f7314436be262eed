package dto

import "github.com/shopspring/decimal"

// ─── Filter / List ──────────────────────────────────────────────────────────

// SaleFilter is bound from query string of GET /v1/sales.
type SaleFilter struct {
	Date   string `form:"date"`                   // YYYY-MM-DD; empty = today
	Status string `form:"status,default=settled"` // settled | returned | cancelled | all
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type SaleListResponse struct {
	Data  []SaleResponse `json:"data"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

// SaleLineRequest identifies the variant either by id or by scanned barcode.
// Exactly one of the two must be set.
type SaleLineRequest struct {
	VariantID *string         `json:"variant_id" validate:"omitempty,uuid"`
	Barcode   *string         `json:"barcode"    validate:"omitempty,min=13,max=16"`
	Quantity  int             `json:"quantity"   validate:"required,min=1"`
	Discount  decimal.Decimal `json:"discount"   validate:"min=0"`
}

type TenderRequest struct {
	Kind         string          `json:"kind"   validate:"required,oneof=cash card bank_transfer voucher store_credit"`
	Amount       decimal.Decimal `json:"amount" validate:"required"`
	Installments *int            `json:"installments" validate:"omitempty,min=1,max=12"`
	// VoucherCode is required when kind is voucher.
	VoucherCode *string `json:"voucher_code" validate:"omitempty,min=13,max=20"`
}

type SettleSaleRequest struct {
	Lines   []SaleLineRequest `json:"lines"   validate:"required,min=1,dive"`
	Tenders []TenderRequest   `json:"tenders" validate:"required,min=1,dive"`
	// CustomerID is required when any tender is store_credit.
	CustomerID *string `json:"customer_id" validate:"omitempty,uuid"`
	Note       string  `json:"note"`
}

type CancelSaleRequest struct {
	Reason string `json:"reason" validate:"required,min=5"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type SaleLineResponse struct {
	ID          string          `json:"id"`
	VariantID   string          `json:"variant_id"`
	Product     string          `json:"product"`
	Barcode     string          `json:"barcode"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Discount    decimal.Decimal `json:"discount"`
	LineTotal   decimal.Decimal `json:"line_total"`
	ReturnedQty int             `json:"returned_qty"`
}

type TenderResponse struct {
	Kind         string          `json:"kind"`
	Amount       decimal.Decimal `json:"amount"`
	Installments *int            `json:"installments,omitempty"`
	VoucherCode  *string         `json:"voucher_code,omitempty"`
}

type SaleResponse struct {
	ID             string             `json:"id"`
	Number         string             `json:"number"`
	NumberDegraded bool               `json:"number_degraded,omitempty"`
	CustomerID     *string            `json:"customer_id,omitempty"`
	Lines          []SaleLineResponse `json:"lines"`
	Tenders        []TenderResponse   `json:"tenders"`
	Subtotal       decimal.Decimal    `json:"subtotal"`
	DiscountTotal  decimal.Decimal    `json:"discount_total"`
	Total          decimal.Decimal    `json:"total"`
	Status         string             `json:"status"`
	CreatedAt      string             `json:"created_at"`
}

// NextNumberResponse is the non-authoritative sequence preview.
type NextNumberResponse struct {
	Number string `json:"number"`
	// Advisory: a concurrent settlement can claim this number first.
	Advisory bool `json:"advisory"`
}
