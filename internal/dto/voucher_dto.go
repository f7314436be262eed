package dto

import "github.com/shopspring/decimal"

// IssueVoucherRequest covers over-the-counter voucher sales; return-issued
// vouchers go through the return flow instead.
type IssueVoucherRequest struct {
	Amount     decimal.Decimal `json:"amount"      validate:"required"`
	CustomerID *string         `json:"customer_id" validate:"omitempty,uuid"`
	Note       string          `json:"note"`
}

type VoucherUseResponse struct {
	Amount    decimal.Decimal `json:"amount"`
	SaleID    *string         `json:"sale_id,omitempty"`
	Actor     string          `json:"actor"`
	CreatedAt string          `json:"created_at"`
}

type VoucherResponse struct {
	ID               string               `json:"id"`
	Code             string               `json:"code"`
	Amount           decimal.Decimal      `json:"amount"`
	RemainingBalance decimal.Decimal      `json:"remaining_balance"`
	Status           string               `json:"status"`
	ExpiresAt        string               `json:"expires_at"`
	Uses             []VoucherUseResponse `json:"uses,omitempty"`
}
