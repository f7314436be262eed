package repository

import (
	"context"

	"github.com/firatemu/nuviabutik/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MovementRepository persists the append-only stock ledger. Rows are never
// updated or deleted; corrections are booked as new movements.
type MovementRepository interface {
	CreateTx(tx *gorm.DB, m *model.StockMovement) error
	List(ctx context.Context, variantID uuid.UUID, page, limit int) ([]model.StockMovement, int64, error)

	// SumDeltas re-derives the balance from the log for audit checks.
	SumDeltas(ctx context.Context, variantID uuid.UUID) (int, error)
}

type movementRepo struct{ db *gorm.DB }

func NewMovementRepository(db *gorm.DB) MovementRepository { return &movementRepo{db: db} }

func (r *movementRepo) CreateTx(tx *gorm.DB, m *model.StockMovement) error {
	return tx.Create(m).Error
}

func (r *movementRepo) List(ctx context.Context, variantID uuid.UUID, page, limit int) ([]model.StockMovement, int64, error) {
	var movements []model.StockMovement
	var total int64

	q := r.db.WithContext(ctx).Model(&model.StockMovement{}).Where("variant_id = ?", variantID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&movements).Error
	return movements, total, err
}

func (r *movementRepo) SumDeltas(ctx context.Context, variantID uuid.UUID) (int, error) {
	var sum *int
	err := r.db.WithContext(ctx).Model(&model.StockMovement{}).
		Select("SUM(new_qty - prior_qty)").
		Where("variant_id = ?", variantID).
		Scan(&sum).Error
	if err != nil || sum == nil {
		return 0, err
	}
	return *sum, nil
}
