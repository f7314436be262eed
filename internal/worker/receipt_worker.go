package worker

// receipt_worker.go
// Processes voucher receipt jobs from QueueReceipts: renders the refund slip
// PDF and mails it when the customer has an address on file.

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/firatemu/nuviabutik/internal/infra"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// VoucherReceiptPayload is the job envelope for one issued voucher.
type VoucherReceiptPayload struct {
	VoucherCode string `json:"voucher_code"`
	Amount      string `json:"amount"`
	ExpiresAt   string `json:"expires_at"` // YYYY-MM-DD
	SaleNumber  string `json:"sale_number"`
	Customer    string `json:"customer"`
	ToEmail     string `json:"to_email"`
}

type ReceiptWorker struct {
	mailer      *infra.Mailer
	storagePath string
}

func NewReceiptWorker(mailer *infra.Mailer, storagePath string) *ReceiptWorker {
	return &ReceiptWorker{mailer: mailer, storagePath: storagePath}
}

// Process renders the PDF and sends the mail. PDF failures are retryable;
// a missing email address is not an error, the slip just stays on disk for
// the counter to print.
func (w *ReceiptWorker) Process(_ context.Context, raw json.RawMessage) error {
	var payload VoucherReceiptPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("receipt_worker: invalid payload")
		return nil // malformed payloads never succeed, don't retry
	}

	amount, err := decimal.NewFromString(payload.Amount)
	if err != nil {
		log.Error().Err(err).Str("amount", payload.Amount).Msg("receipt_worker: bad amount")
		return nil
	}
	expires, err := time.Parse("2006-01-02", payload.ExpiresAt)
	if err != nil {
		expires = time.Now().AddDate(1, 0, 0)
	}

	pdfPath, err := infra.GenerateVoucherPDF(infra.VoucherReceipt{
		Code:       payload.VoucherCode,
		Amount:     amount,
		ExpiresAt:  expires,
		SaleNumber: payload.SaleNumber,
		Customer:   payload.Customer,
		IssuedAt:   time.Now(),
	}, w.storagePath)
	if err != nil {
		return fmt.Errorf("receipt_worker: generate pdf: %w", err)
	}

	if payload.ToEmail == "" {
		log.Info().Str("code", payload.VoucherCode).Msg("receipt_worker: no email on file, pdf stored")
		return nil
	}

	subject := fmt.Sprintf("Your store credit voucher %s", payload.VoucherCode)
	body := fmt.Sprintf(
		"Your refund for sale %s has been issued as store credit.\n\nVoucher: %s\nAmount: $%s\nValid until: %s\n",
		payload.SaleNumber, payload.VoucherCode, amount.StringFixed(2), expires.Format("02/01/2006"))
	if err := w.mailer.SendVoucherReceipt(payload.ToEmail, subject, body, pdfPath); err != nil {
		return fmt.Errorf("receipt_worker: send mail: %w", err)
	}

	log.Info().Str("to", payload.ToEmail).Str("code", payload.VoucherCode).Msg("receipt_worker: voucher receipt sent")
	return nil
}
