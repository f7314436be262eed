package repository

import (
	"context"

	"github.com/firatemu/nuviabutik/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CustomerRepository interface {
	Create(ctx context.Context, c *model.Customer) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Customer, error)
	ListEntries(ctx context.Context, customerID uuid.UUID) ([]model.CustomerEntry, error)

	FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Customer, error)
	UpdateBalanceTx(tx *gorm.DB, id uuid.UUID, newBalance interface{}) error
	CreateEntryTx(tx *gorm.DB, e *model.CustomerEntry) error

	DB() *gorm.DB
}

type customerRepo struct{ db *gorm.DB }

func NewCustomerRepository(db *gorm.DB) CustomerRepository { return &customerRepo{db: db} }

func (r *customerRepo) DB() *gorm.DB { return r.db }

func (r *customerRepo) Create(ctx context.Context, c *model.Customer) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *customerRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	var c model.Customer
	err := r.db.WithContext(ctx).First(&c, id).Error
	return &c, err
}

func (r *customerRepo) ListEntries(ctx context.Context, customerID uuid.UUID) ([]model.CustomerEntry, error) {
	var entries []model.CustomerEntry
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&entries).Error
	return entries, err
}

func (r *customerRepo) FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Customer, error) {
	var c model.Customer
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&c, id).Error
	return &c, err
}

func (r *customerRepo) UpdateBalanceTx(tx *gorm.DB, id uuid.UUID, newBalance interface{}) error {
	return tx.Model(&model.Customer{}).Where("id = ?", id).
		Update("open_balance", newBalance).Error
}

func (r *customerRepo) CreateEntryTx(tx *gorm.DB, e *model.CustomerEntry) error {
	return tx.Create(e).Error
}
