package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleStatus follows the lifecycle: pending → settled → returned, or
// pending/settled → cancelled. Returned and cancelled are terminal.
type SaleStatus string

const (
	SaleStatusPending   SaleStatus = "pending"
	SaleStatusSettled   SaleStatus = "settled"
	SaleStatusReturned  SaleStatus = "returned"
	SaleStatusCancelled SaleStatus = "cancelled"
)

// TenderKind enumerates payment instruments. Branching on these goes through
// the settlement dispatch table, never through string comparison at call sites.
type TenderKind string

const (
	TenderCash         TenderKind = "cash"
	TenderCard         TenderKind = "card"
	TenderBankTransfer TenderKind = "bank_transfer"
	TenderVoucher      TenderKind = "voucher"
	TenderStoreCredit  TenderKind = "store_credit"
)

// Sale is one settled transaction: lines, tenders, and a human-readable
// number minted by the sequence issuer at settlement time.
type Sale struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Number string    `gorm:"type:varchar(20);uniqueIndex;not null"`
	// NumberDegraded marks the timestamp-fallback path: the number is not
	// guaranteed unique and the sale should be reviewed.
	NumberDegraded bool            `gorm:"not null;default:false"`
	CustomerID     *uuid.UUID      `gorm:"type:uuid;index"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	DiscountTotal  decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Total          decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Status         SaleStatus      `gorm:"type:varchar(20);not null;default:'pending'"`
	Actor          string          `gorm:"not null"`
	Note           *string
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Lines    []SaleLine `gorm:"foreignKey:SaleID"`
	Tenders  []Tender   `gorm:"foreignKey:SaleID"`
	Customer *Customer  `gorm:"foreignKey:CustomerID"`
}

// SaleLine records quantity and pricing as of settlement. ReturnedQty tracks
// prior partial returns so the same units can never be refunded twice.
type SaleLine struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SaleID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	VariantID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity    int             `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Discount    decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	LineTotal   decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	ReturnedQty int             `gorm:"not null;default:0"`

	Variant *Variant `gorm:"foreignKey:VariantID"`
}

// RemainingReturnable is how many units of this line may still be returned.
func (l SaleLine) RemainingReturnable() int { return l.Quantity - l.ReturnedQty }

// Tender is one payment instrument applied toward a sale. Kind-specific
// metadata lives in the optional columns (installments for card, code for
// voucher).
type Tender struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SaleID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	Kind         TenderKind      `gorm:"type:varchar(20);not null"`
	Amount       decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Installments *int
	VoucherCode  *string `gorm:"type:varchar(20)"`
	Note         *string
	CreatedAt    time.Time
}
