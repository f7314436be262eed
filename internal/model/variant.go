package model

import (
	"time"

	"github.com/google/uuid"
)

// LockState gates direct quantity edits on a variant. A variant starts
// unlocked; the first direct edit or stock-in locks it permanently, after
// which only the ledger (ApplyMovement) may touch quantity_on_hand.
type LockState string

const (
	LockStateUnlocked LockState = "unlocked"
	LockStateLocked   LockState = "locked"
)

// Variant is a concrete color/size combination of a product — the unit stock
// is tracked against. QuantityOnHand is denormalized from the movement log
// and must always equal the running sum of movement deltas.
type Variant struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_variant_axes"`
	ColorID   *uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_variant_axes"`
	SizeID    *uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_variant_axes"`
	// Barcode is derived by the codec at creation time and never recomputed,
	// so the embedded price bucket can go stale (see internal/barcode).
	Barcode        string    `gorm:"type:varchar(16);uniqueIndex;not null"`
	QuantityOnHand int       `gorm:"not null;default:0"`
	LockState      LockState `gorm:"type:varchar(10);not null;default:'unlocked'"`
	Note           *string
	Active         bool `gorm:"not null;default:true"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
	Color   *Color   `gorm:"foreignKey:ColorID"`
	Size    *Size    `gorm:"foreignKey:SizeID"`
}

// MovementKind classifies ledger entries.
type MovementKind string

const (
	MovementIn             MovementKind = "in"
	MovementOut            MovementKind = "out"
	MovementAdjustment     MovementKind = "adjustment"
	MovementCountSurplus   MovementKind = "count_surplus"
	MovementCountShortfall MovementKind = "count_shortfall"
)

// StockMovement is one immutable entry in the append-only stock ledger.
// Quantity is the positive operand for in/out/count kinds; for adjustment it
// is the absolute target balance. PriorQty and NewQty snapshot the balance
// around the entry so the log alone can reproduce any historical state.
type StockMovement struct {
	ID        uuid.UUID    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VariantID uuid.UUID    `gorm:"type:uuid;not null;index"`
	Kind      MovementKind `gorm:"type:varchar(20);not null"`
	Quantity  int          `gorm:"not null"`
	PriorQty  int          `gorm:"not null"`
	NewQty    int          `gorm:"not null"`
	Actor     string       `gorm:"not null"`
	Note      string
	// Reference links to the originating sale or return when applicable.
	Reference *uuid.UUID `gorm:"type:uuid"`
	CreatedAt time.Time

	Variant *Variant `gorm:"foreignKey:VariantID"`
}

// Delta is the signed quantity change this movement applied.
func (m StockMovement) Delta() int { return m.NewQty - m.PriorQty }

// TableName overrides GORM's pluralization (stock_movements is fine, but kept
// explicit so schema and model never drift).
func (StockMovement) TableName() string { return "stock_movements" }
