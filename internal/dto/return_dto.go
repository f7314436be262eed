package dto

import "github.com/shopspring/decimal"

type ReturnLineRequest struct {
	LineID   string `json:"line_id"  validate:"required,uuid"`
	Quantity int    `json:"quantity" validate:"required,min=1"`
}

type ReturnRequest struct {
	Lines []ReturnLineRequest `json:"lines" validate:"required,min=1,dive"`
	Note  string              `json:"note"`
}

// ReturnResponse carries the issued store-credit voucher. Refunds are never
// paid out in cash.
type ReturnResponse struct {
	SaleID       string          `json:"sale_id"`
	SaleStatus   string          `json:"sale_status"`
	RefundAmount decimal.Decimal `json:"refund_amount"`
	Voucher      VoucherResponse `json:"voucher"`
}
