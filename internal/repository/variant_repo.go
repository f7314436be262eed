package repository

import (
	"context"

	"github.com/firatemu/nuviabutik/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// VariantRepository defines the data access contract for sellable variants.
// Services depend on this interface, not on the concrete GORM implementation,
// enabling clean unit testing via stubs.
type VariantRepository interface {
	Create(ctx context.Context, v *model.Variant) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Variant, error)
	FindByBarcode(ctx context.Context, code string) (*model.Variant, error)

	// Used inside transactions — callers must pass the tx instance.
	// FindByIDForUpdateTx locks the variant row so the quantity update and the
	// movement insert commit against the same snapshot.
	FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Variant, error)
	UpdateQuantityTx(tx *gorm.DB, id uuid.UUID, newQty int) error
	SetLockStateTx(tx *gorm.DB, id uuid.UUID, state model.LockState) error

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type variantRepo struct{ db *gorm.DB }

func NewVariantRepository(db *gorm.DB) VariantRepository { return &variantRepo{db: db} }

func (r *variantRepo) DB() *gorm.DB { return r.db }

func (r *variantRepo) Create(ctx context.Context, v *model.Variant) error {
	return r.db.WithContext(ctx).Create(v).Error
}

func (r *variantRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Variant, error) {
	var v model.Variant
	err := r.db.WithContext(ctx).
		Preload("Product").Preload("Color").Preload("Size").
		First(&v, id).Error
	return &v, err
}

func (r *variantRepo) FindByBarcode(ctx context.Context, code string) (*model.Variant, error) {
	var v model.Variant
	err := r.db.WithContext(ctx).
		Preload("Product").Preload("Color").Preload("Size").
		Where("barcode = ? AND active = true", code).
		First(&v).Error
	return &v, err
}

func (r *variantRepo) FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Variant, error) {
	var v model.Variant
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&v, id).Error
	return &v, err
}

func (r *variantRepo) UpdateQuantityTx(tx *gorm.DB, id uuid.UUID, newQty int) error {
	return tx.Model(&model.Variant{}).Where("id = ?", id).
		Update("quantity_on_hand", newQty).Error
}

func (r *variantRepo) SetLockStateTx(tx *gorm.DB, id uuid.UUID, state model.LockState) error {
	return tx.Model(&model.Variant{}).Where("id = ?", id).
		Update("lock_state", state).Error
}
