package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

// DirectEditRequest sets the opening quantity of an unlocked variant.
type DirectEditRequest struct {
	Quantity int    `json:"quantity" validate:"min=0"`
	Note     string `json:"note"`
}

// MovementRequest applies one ledger movement. Quantity is the positive
// operand for in/out/count kinds and the absolute target for adjustment.
type MovementRequest struct {
	Kind     string `json:"kind"     validate:"required,oneof=in out adjustment count_surplus count_shortfall"`
	Quantity int    `json:"quantity" validate:"min=0"`
	Note     string `json:"note"`
}

type MovementFilter struct {
	Page  int `form:"page,default=1"   validate:"min=1"`
	Limit int `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type StockResponse struct {
	VariantID      string `json:"variant_id"`
	QuantityOnHand int    `json:"quantity_on_hand"`
	LockState      string `json:"lock_state"`
}

type MovementResponse struct {
	ID        string  `json:"id"`
	Kind      string  `json:"kind"`
	Quantity  int     `json:"quantity"`
	PriorQty  int     `json:"prior_qty"`
	NewQty    int     `json:"new_qty"`
	Delta     int     `json:"delta"`
	Actor     string  `json:"actor"`
	Note      string  `json:"note,omitempty"`
	Reference *string `json:"reference,omitempty"`
	CreatedAt string  `json:"created_at"`
}

type MovementListResponse struct {
	Data  []MovementResponse `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}

// AuditResponse reports the stored balance against the ledger-derived one.
type AuditResponse struct {
	VariantID      string `json:"variant_id"`
	QuantityOnHand int    `json:"quantity_on_hand"`
	LedgerSum      int    `json:"ledger_sum"`
	Drift          int    `json:"drift"`
	Consistent     bool   `json:"consistent"`
}
