package service_test

import (
	"context"
	"testing"

	"github.com/firatemu/nuviabutik/internal/model"
	"github.com/firatemu/nuviabutik/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func buildCustomerSvc(t *testing.T) (service.CustomerService, *stubCustomerRepo, *model.Customer) {
	t.Helper()
	repo := newStubCustomerRepo()
	customer := &model.Customer{Name: "Leyla", Active: true}
	require.NoError(t, repo.Create(context.Background(), customer))
	return service.NewCustomerService(repo), repo, customer
}

func TestDebitRaisesOpenBalance(t *testing.T) {
	svc, repo, customer := buildCustomerSvc(t)

	err := svc.DebitTx(nil, customer.ID, decimal.NewFromInt(120), nil, "Sale NV202603140001")
	require.NoError(t, err)

	assert.True(t, customer.OpenBalance.Equal(decimal.NewFromInt(120)))
	require.Len(t, repo.entries, 1)
	entry := repo.entries[0]
	assert.Equal(t, "debit", entry.Kind)
	assert.True(t, entry.PriorBalance.IsZero())
	assert.True(t, entry.NewBalance.Equal(decimal.NewFromInt(120)))
	assert.Equal(t, "Sale NV202603140001", entry.Note)
}

func TestCreditLowersOpenBalance(t *testing.T) {
	svc, repo, customer := buildCustomerSvc(t)
	require.NoError(t, svc.DebitTx(nil, customer.ID, decimal.NewFromInt(120), nil, ""))

	err := svc.CreditTx(nil, customer.ID, decimal.NewFromInt(50), nil, "payment")
	require.NoError(t, err)

	assert.True(t, customer.OpenBalance.Equal(decimal.NewFromInt(70)))
	require.Len(t, repo.entries, 2)
	assert.Equal(t, "credit", repo.entries[1].Kind)
}

func TestEntryAmountMustBePositive(t *testing.T) {
	svc, repo, customer := buildCustomerSvc(t)

	err := svc.DebitTx(nil, customer.ID, decimal.Zero, nil, "")
	assert.ErrorIs(t, err, service.ErrValidation)
	assert.Empty(t, repo.entries)
}

func TestInactiveCustomerRejected(t *testing.T) {
	svc, _, customer := buildCustomerSvc(t)
	customer.Active = false

	err := svc.DebitTx(nil, customer.ID, decimal.NewFromInt(10), nil, "")
	assert.ErrorIs(t, err, service.ErrInvalidState)
}

func TestDebitUnknownCustomer(t *testing.T) {
	svc, _, _ := buildCustomerSvc(t)

	err := svc.DebitTx(nil, uuid.New(), decimal.NewFromInt(10), nil, "")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
