package repository

import (
	"context"
	"errors"

	"github.com/firatemu/nuviabutik/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RegisterRepository manages the money registers and their movement logs.
// Balances are always derived, never stored.
type RegisterRepository interface {
	FindByKind(ctx context.Context, kind model.RegisterKind) (*model.Register, error)
	CreateMovementTx(tx *gorm.DB, m *model.RegisterMovement) error
	Balance(ctx context.Context, registerID uuid.UUID) (decimal.Decimal, error)

	// EnsureDefaults creates the three standard registers on first boot.
	EnsureDefaults(ctx context.Context) error

	DB() *gorm.DB
}

type registerRepo struct{ db *gorm.DB }

func NewRegisterRepository(db *gorm.DB) RegisterRepository { return &registerRepo{db: db} }

func (r *registerRepo) DB() *gorm.DB { return r.db }

func (r *registerRepo) FindByKind(ctx context.Context, kind model.RegisterKind) (*model.Register, error) {
	var reg model.Register
	err := r.db.WithContext(ctx).Where("kind = ? AND active = true", kind).First(&reg).Error
	return &reg, err
}

func (r *registerRepo) CreateMovementTx(tx *gorm.DB, m *model.RegisterMovement) error {
	return tx.Create(m).Error
}

func (r *registerRepo) Balance(ctx context.Context, registerID uuid.UUID) (decimal.Decimal, error) {
	var reg model.Register
	if err := r.db.WithContext(ctx).First(&reg, registerID).Error; err != nil {
		return decimal.Zero, err
	}

	type row struct {
		Direction string
		Total     decimal.Decimal
	}
	var rows []row
	err := r.db.WithContext(ctx).Model(&model.RegisterMovement{}).
		Select("direction, COALESCE(SUM(amount), 0) AS total").
		Where("register_id = ?", registerID).
		Group("direction").
		Scan(&rows).Error
	if err != nil {
		return decimal.Zero, err
	}

	balance := reg.OpeningBalance
	for _, row := range rows {
		if row.Direction == "in" {
			balance = balance.Add(row.Total)
		} else {
			balance = balance.Sub(row.Total)
		}
	}
	return balance, nil
}

func (r *registerRepo) EnsureDefaults(ctx context.Context) error {
	defaults := []model.Register{
		{Name: "Cash drawer", Kind: model.RegisterCash},
		{Name: "POS terminal", Kind: model.RegisterPOS},
		{Name: "Bank account", Kind: model.RegisterBank},
	}
	for _, reg := range defaults {
		var existing model.Register
		err := r.db.WithContext(ctx).Where("kind = ?", reg.Kind).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			reg.Active = true
			if err := r.db.WithContext(ctx).Create(&reg).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}
	}
	return nil
}
