package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is the catalog entry variants hang off. Code is the 5-digit
// zero-padded number embedded in every variant barcode.
type Product struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Code        string          `gorm:"type:varchar(5);uniqueIndex;not null"`
	Name        string          `gorm:"index;not null"`
	Description *string
	Category    string          `gorm:"not null"`
	Brand       *string
	CostPrice   decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	BasePrice   decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	// Varied products carry color/size axes on their variants.
	Varied    bool `gorm:"not null;default:false"`
	Active    bool `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Variants []Variant `gorm:"foreignKey:ProductID"`
}

// Color is a single-character-coded color axis value ("S" = siyah, etc.).
type Color struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string    `gorm:"uniqueIndex;not null"`
	Code      string    `gorm:"type:varchar(1);uniqueIndex;not null"`
	HexCode   *string   `gorm:"type:varchar(7)"`
	Position  int       `gorm:"not null;default:1"`
	Active    bool      `gorm:"not null;default:true"`
	CreatedAt time.Time
}

// Size is a single-character-coded size axis value. Kind distinguishes
// letter sizes (S, M, L) from numeric ones (36, 38, 40).
type Size struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string    `gorm:"uniqueIndex;not null"`
	Code      string    `gorm:"type:varchar(1);uniqueIndex;not null"`
	Kind      string    `gorm:"type:varchar(10);not null;default:'letter'"` // "letter" | "numeric"
	Position  int       `gorm:"not null;default:1"`
	Active    bool      `gorm:"not null;default:true"`
	CreatedAt time.Time
}
