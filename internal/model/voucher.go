package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type VoucherStatus string

const (
	VoucherActive    VoucherStatus = "active"
	VoucherExhausted VoucherStatus = "exhausted"
	VoucherCancelled VoucherStatus = "cancelled"
	VoucherExpired   VoucherStatus = "expired"
)

// Voucher is a store-credit instrument: issued by returns (this system never
// refunds cash) or sold over the counter, redeemed as a tender.
type Voucher struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Code             string          `gorm:"type:varchar(20);uniqueIndex;not null"`
	Amount           decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	RemainingBalance decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Status           VoucherStatus   `gorm:"type:varchar(20);not null;default:'active'"`
	CustomerID       *uuid.UUID      `gorm:"type:uuid;index"`
	// Reference links to the sale whose return issued this voucher.
	Reference *uuid.UUID `gorm:"type:uuid"`
	IssuedBy  string     `gorm:"not null"`
	ExpiresAt time.Time  `gorm:"not null"`
	UsedAt    *time.Time
	CreatedAt time.Time

	Uses     []VoucherUse `gorm:"foreignKey:VoucherID"`
	Customer *Customer    `gorm:"foreignKey:CustomerID"`
}

// Usable reports whether the voucher can cover any redemption right now.
func (v Voucher) Usable(now time.Time) bool {
	return v.Status == VoucherActive &&
		v.RemainingBalance.IsPositive() &&
		!now.After(v.ExpiresAt)
}

// VoucherUse is the immutable redemption history of a voucher.
type VoucherUse struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VoucherID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount    decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	SaleID    *uuid.UUID      `gorm:"type:uuid"`
	Actor     string          `gorm:"not null"`
	CreatedAt time.Time
}
