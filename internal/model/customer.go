package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Customer carries the open-account balance store-credit tenders draw on.
// Positive OpenBalance means the customer owes the store.
type Customer struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name        string          `gorm:"index;not null"`
	Phone       *string         `gorm:"type:varchar(20)"`
	Email       *string
	OpenBalance decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	Active      bool            `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CustomerEntry is one immutable debit/credit line on a customer's open
// account, with balance snapshots mirroring the stock ledger's shape.
type CustomerEntry struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CustomerID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Kind         string          `gorm:"type:varchar(10);not null"` // "debit" | "credit"
	Amount       decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	PriorBalance decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	NewBalance   decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Reference    *uuid.UUID      `gorm:"type:uuid"`
	Note         string
	CreatedAt    time.Time
}
