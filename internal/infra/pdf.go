package infra

// pdf.go — refund receipt generation using go-pdf/fpdf.
// Produces an A7-size thermal-style voucher slip: store header, voucher code,
// amount, expiry date, and the originating sale number. The output file is
// saved to storagePath/voucher_{code}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// VoucherReceipt carries everything the slip shows; the caller flattens the
// model so PDF generation stays free of database access.
type VoucherReceipt struct {
	Code       string
	Amount     decimal.Decimal
	ExpiresAt  time.Time
	SaleNumber string
	Customer   string
	IssuedAt   time.Time
}

// GenerateVoucherPDF writes the refund voucher slip and returns its path.
func GenerateVoucherPDF(r VoucherReceipt, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	filePath := filepath.Join(storagePath, fmt.Sprintf("voucher_%s.pdf", r.Code))

	// A7 ≈ 74mm × 105mm — close to thermal receipt paper
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: 74, Ht: 105},
	})
	pdf.SetMargins(4, 4, 4)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 8

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(contentW, 7, "Nuvia Butik", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 5, "Store Credit Voucher", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(contentW, 7, r.Code, "", 1, "C", false, 0, "")
	pdf.Ln(1)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(contentW, 7, "$"+r.Amount.StringFixed(2), "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 7)
	if r.SaleNumber != "" {
		pdf.CellFormat(contentW, 4, "Refund of sale "+r.SaleNumber, "", 1, "L", false, 0, "")
	}
	if r.Customer != "" {
		pdf.CellFormat(contentW, 4, "Issued to "+r.Customer, "", 1, "L", false, 0, "")
	}
	pdf.CellFormat(contentW, 4, "Issued  "+r.IssuedAt.Format("02/01/2006 15:04"), "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 4, "Expires "+r.ExpiresAt.Format("02/01/2006"), "", 1, "L", false, 0, "")

	pdf.Ln(3)
	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "I", 7)
	pdf.CellFormat(contentW, 4, "Redeemable in store, not exchangeable for cash.", "", 1, "C", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}
