package repository

import (
	"context"
	"time"

	"github.com/firatemu/nuviabutik/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type VoucherRepository interface {
	CreateTx(tx *gorm.DB, v *model.Voucher) error
	FindByCode(ctx context.Context, code string) (*model.Voucher, error)

	// FindByCodeForUpdateTx locks the voucher row so two concurrent
	// redemptions cannot both see the same remaining balance.
	FindByCodeForUpdateTx(tx *gorm.DB, code string) (*model.Voucher, error)
	UpdateTx(tx *gorm.DB, v *model.Voucher) error
	CreateUseTx(tx *gorm.DB, use *model.VoucherUse) error

	// ExpireStale flips active vouchers past their expiry date to expired
	// and reports how many rows changed.
	ExpireStale(ctx context.Context, now time.Time) (int64, error)

	DB() *gorm.DB
}

type voucherRepo struct{ db *gorm.DB }

func NewVoucherRepository(db *gorm.DB) VoucherRepository { return &voucherRepo{db: db} }

func (r *voucherRepo) DB() *gorm.DB { return r.db }

func (r *voucherRepo) CreateTx(tx *gorm.DB, v *model.Voucher) error {
	return tx.Create(v).Error
}

func (r *voucherRepo) FindByCode(ctx context.Context, code string) (*model.Voucher, error) {
	var v model.Voucher
	err := r.db.WithContext(ctx).
		Preload("Uses").Preload("Customer").
		Where("code = ?", code).
		First(&v).Error
	return &v, err
}

func (r *voucherRepo) FindByCodeForUpdateTx(tx *gorm.DB, code string) (*model.Voucher, error) {
	var v model.Voucher
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("code = ?", code).
		First(&v).Error
	return &v, err
}

func (r *voucherRepo) UpdateTx(tx *gorm.DB, v *model.Voucher) error {
	return tx.Save(v).Error
}

func (r *voucherRepo) CreateUseTx(tx *gorm.DB, use *model.VoucherUse) error {
	return tx.Create(use).Error
}

func (r *voucherRepo) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Voucher{}).
		Where("status = ? AND expires_at < ?", model.VoucherActive, now).
		Update("status", model.VoucherExpired)
	return res.RowsAffected, res.Error
}
