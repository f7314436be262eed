package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RegisterKind maps tender kinds onto physical money destinations:
// cash → cash drawer, card → POS terminal, bank_transfer → bank account.
type RegisterKind string

const (
	RegisterCash RegisterKind = "cash"
	RegisterPOS  RegisterKind = "pos"
	RegisterBank RegisterKind = "bank"
)

// Register is a money ledger head. Its balance is always derived from the
// movement log plus the opening balance, never stored.
type Register struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name           string          `gorm:"not null"`
	Kind           RegisterKind    `gorm:"type:varchar(10);not null;uniqueIndex"`
	OpeningBalance decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Active         bool            `gorm:"not null;default:true"`
	CreatedAt      time.Time

	Movements []RegisterMovement `gorm:"foreignKey:RegisterID"`
}

// RegisterMovement is an immutable entry in a register's money ledger.
// Cancellations never delete entries — they book inverse ones.
type RegisterMovement struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RegisterID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Direction   string          `gorm:"type:varchar(5);not null"`  // "in" | "out"
	Source      string          `gorm:"type:varchar(20);not null"` // "sale" | "cancellation" | "manual"
	TenderKind  *string         `gorm:"type:varchar(20)"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Description string          `gorm:"not null"`
	Reference   *uuid.UUID      `gorm:"type:uuid"`
	CreatedAt   time.Time
}
