package service

import (
	"context"
	"fmt"

	"github.com/firatemu/nuviabutik/internal/model"
	"github.com/firatemu/nuviabutik/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CustomerService keeps the open-account ledger. Positive balance means the
// customer owes the store; store_credit tenders debit it, cancellations and
// payments credit it. Every change books an immutable entry with balance
// snapshots.
type CustomerService interface {
	Find(ctx context.Context, id uuid.UUID) (*model.Customer, error)

	// DebitTx raises the customer's debt inside the caller's transaction.
	DebitTx(tx *gorm.DB, customerID uuid.UUID, amount decimal.Decimal, reference *uuid.UUID, note string) error

	// CreditTx lowers the customer's debt inside the caller's transaction.
	CreditTx(tx *gorm.DB, customerID uuid.UUID, amount decimal.Decimal, reference *uuid.UUID, note string) error
}

type customerService struct {
	repo repository.CustomerRepository
}

func NewCustomerService(repo repository.CustomerRepository) CustomerService {
	return &customerService{repo: repo}
}

func (s *customerService) Find(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *customerService) DebitTx(tx *gorm.DB, customerID uuid.UUID, amount decimal.Decimal, reference *uuid.UUID, note string) error {
	return s.book(tx, customerID, "debit", amount, reference, note)
}

func (s *customerService) CreditTx(tx *gorm.DB, customerID uuid.UUID, amount decimal.Decimal, reference *uuid.UUID, note string) error {
	return s.book(tx, customerID, "credit", amount, reference, note)
}

func (s *customerService) book(tx *gorm.DB, customerID uuid.UUID, kind string, amount decimal.Decimal, reference *uuid.UUID, note string) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: entry amount must be positive", ErrValidation)
	}

	c, err := s.repo.FindByIDForUpdateTx(tx, customerID)
	if err != nil {
		return err
	}
	if !c.Active {
		return fmt.Errorf("%w: customer %s is inactive", ErrInvalidState, customerID)
	}

	prior := c.OpenBalance
	var newBalance decimal.Decimal
	if kind == "debit" {
		newBalance = prior.Add(amount)
	} else {
		newBalance = prior.Sub(amount)
	}

	if err := s.repo.UpdateBalanceTx(tx, customerID, newBalance); err != nil {
		return err
	}
	return s.repo.CreateEntryTx(tx, &model.CustomerEntry{
		CustomerID:   customerID,
		Kind:         kind,
		Amount:       amount,
		PriorBalance: prior,
		NewBalance:   newBalance,
		Reference:    reference,
		Note:         note,
	})
}
