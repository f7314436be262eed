package service_test

// In-memory repository stubs. DB() returns nil so runTx executes the
// transaction body directly (unit test mode).

import (
	"context"
	"sync"
	"time"

	"github.com/firatemu/nuviabutik/internal/dto"
	"github.com/firatemu/nuviabutik/internal/model"
	"github.com/firatemu/nuviabutik/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── Variants ─────────────────────────────────────────────────────────────────

type stubVariantRepo struct {
	variants  map[uuid.UUID]*model.Variant
	byBarcode map[string]uuid.UUID
}

func newStubVariantRepo() *stubVariantRepo {
	return &stubVariantRepo{
		variants:  make(map[uuid.UUID]*model.Variant),
		byBarcode: make(map[string]uuid.UUID),
	}
}

func (r *stubVariantRepo) add(v *model.Variant) *model.Variant {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	if v.LockState == "" {
		v.LockState = model.LockStateUnlocked
	}
	r.variants[v.ID] = v
	if v.Barcode != "" {
		r.byBarcode[v.Barcode] = v.ID
	}
	return v
}

func (r *stubVariantRepo) Create(_ context.Context, v *model.Variant) error {
	r.add(v)
	return nil
}

func (r *stubVariantRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Variant, error) {
	v, ok := r.variants[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return v, nil
}

func (r *stubVariantRepo) FindByBarcode(_ context.Context, code string) (*model.Variant, error) {
	id, ok := r.byBarcode[code]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return r.variants[id], nil
}

func (r *stubVariantRepo) FindByIDForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.Variant, error) {
	v, ok := r.variants[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *v
	return &copied, nil
}

func (r *stubVariantRepo) UpdateQuantityTx(_ *gorm.DB, id uuid.UUID, newQty int) error {
	r.variants[id].QuantityOnHand = newQty
	return nil
}

func (r *stubVariantRepo) SetLockStateTx(_ *gorm.DB, id uuid.UUID, state model.LockState) error {
	r.variants[id].LockState = state
	return nil
}

func (r *stubVariantRepo) DB() *gorm.DB { return nil }

var _ repository.VariantRepository = (*stubVariantRepo)(nil)

// ── Movements ────────────────────────────────────────────────────────────────

type stubMovementRepo struct {
	movements []model.StockMovement
}

func (r *stubMovementRepo) CreateTx(_ *gorm.DB, m *model.StockMovement) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	r.movements = append(r.movements, *m)
	return nil
}

func (r *stubMovementRepo) List(_ context.Context, variantID uuid.UUID, _, _ int) ([]model.StockMovement, int64, error) {
	var out []model.StockMovement
	for _, m := range r.movements {
		if m.VariantID == variantID {
			out = append(out, m)
		}
	}
	return out, int64(len(out)), nil
}

func (r *stubMovementRepo) SumDeltas(_ context.Context, variantID uuid.UUID) (int, error) {
	sum := 0
	for _, m := range r.movements {
		if m.VariantID == variantID {
			sum += m.Delta()
		}
	}
	return sum, nil
}

var _ repository.MovementRepository = (*stubMovementRepo)(nil)

// ── Sequences ────────────────────────────────────────────────────────────────

type stubSequenceRepo struct {
	mu       sync.Mutex
	counters map[string]int
	failures int // NextTx errors to inject before succeeding
	failWith error
}

func newStubSequenceRepo() *stubSequenceRepo {
	return &stubSequenceRepo{counters: make(map[string]int)}
}

func (r *stubSequenceRepo) NextTx(_ *gorm.DB, scope string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failures > 0 {
		r.failures--
		return 0, r.failWith
	}
	r.counters[scope]++
	return r.counters[scope], nil
}

func (r *stubSequenceRepo) Peek(_ context.Context, scope string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counters[scope], nil
}

func (r *stubSequenceRepo) DB() *gorm.DB { return nil }

var _ repository.SequenceRepository = (*stubSequenceRepo)(nil)

// ── Sales ────────────────────────────────────────────────────────────────────

type stubSaleRepo struct {
	sales map[uuid.UUID]*model.Sale

	// beforeLockedFind runs once just before FindByIDForUpdateTx returns,
	// standing in for a competing transaction that commits while this one
	// waits on the sale head lock.
	beforeLockedFind func(*model.Sale)
}

func newStubSaleRepo() *stubSaleRepo {
	return &stubSaleRepo{sales: make(map[uuid.UUID]*model.Sale)}
}

func (r *stubSaleRepo) CreateTx(_ *gorm.DB, s *model.Sale) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	for i := range s.Lines {
		if s.Lines[i].ID == uuid.Nil {
			s.Lines[i].ID = uuid.New()
		}
		s.Lines[i].SaleID = s.ID
	}
	r.sales[s.ID] = s
	return nil
}

func (r *stubSaleRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Sale, error) {
	s, ok := r.sales[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (r *stubSaleRepo) FindByIDForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.Sale, error) {
	s, ok := r.sales[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if r.beforeLockedFind != nil {
		hook := r.beforeLockedFind
		r.beforeLockedFind = nil
		hook(s)
	}
	return s, nil
}

func (r *stubSaleRepo) UpdateStatusTx(_ *gorm.DB, id uuid.UUID, status model.SaleStatus) error {
	s, ok := r.sales[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	s.Status = status
	return nil
}

func (r *stubSaleRepo) UpdateLineReturnedTx(_ *gorm.DB, lineID uuid.UUID, returnedQty int) error {
	for _, s := range r.sales {
		for i := range s.Lines {
			if s.Lines[i].ID == lineID {
				s.Lines[i].ReturnedQty = returnedQty
				return nil
			}
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *stubSaleRepo) List(_ context.Context, _ dto.SaleFilter) ([]model.Sale, int64, error) {
	out := make([]model.Sale, 0, len(r.sales))
	for _, s := range r.sales {
		out = append(out, *s)
	}
	return out, int64(len(out)), nil
}

func (r *stubSaleRepo) DB() *gorm.DB { return nil }

var _ repository.SaleRepository = (*stubSaleRepo)(nil)

// ── Vouchers ─────────────────────────────────────────────────────────────────

type stubVoucherRepo struct {
	vouchers map[string]*model.Voucher
	uses     []model.VoucherUse
}

func newStubVoucherRepo() *stubVoucherRepo {
	return &stubVoucherRepo{vouchers: make(map[string]*model.Voucher)}
}

func (r *stubVoucherRepo) CreateTx(_ *gorm.DB, v *model.Voucher) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	r.vouchers[v.Code] = v
	return nil
}

func (r *stubVoucherRepo) FindByCode(_ context.Context, code string) (*model.Voucher, error) {
	v, ok := r.vouchers[code]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return v, nil
}

func (r *stubVoucherRepo) FindByCodeForUpdateTx(_ *gorm.DB, code string) (*model.Voucher, error) {
	v, ok := r.vouchers[code]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return v, nil
}

func (r *stubVoucherRepo) UpdateTx(_ *gorm.DB, v *model.Voucher) error {
	r.vouchers[v.Code] = v
	return nil
}

func (r *stubVoucherRepo) CreateUseTx(_ *gorm.DB, use *model.VoucherUse) error {
	if use.ID == uuid.Nil {
		use.ID = uuid.New()
	}
	r.uses = append(r.uses, *use)
	return nil
}

func (r *stubVoucherRepo) ExpireStale(_ context.Context, now time.Time) (int64, error) {
	var n int64
	for _, v := range r.vouchers {
		if v.Status == model.VoucherActive && v.ExpiresAt.Before(now) {
			v.Status = model.VoucherExpired
			n++
		}
	}
	return n, nil
}

func (r *stubVoucherRepo) DB() *gorm.DB { return nil }

var _ repository.VoucherRepository = (*stubVoucherRepo)(nil)

// ── Customers ────────────────────────────────────────────────────────────────

type stubCustomerRepo struct {
	customers map[uuid.UUID]*model.Customer
	entries   []model.CustomerEntry
}

func newStubCustomerRepo() *stubCustomerRepo {
	return &stubCustomerRepo{customers: make(map[uuid.UUID]*model.Customer)}
}

func (r *stubCustomerRepo) Create(_ context.Context, c *model.Customer) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.customers[c.ID] = c
	return nil
}

func (r *stubCustomerRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Customer, error) {
	c, ok := r.customers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (r *stubCustomerRepo) ListEntries(_ context.Context, customerID uuid.UUID) ([]model.CustomerEntry, error) {
	var out []model.CustomerEntry
	for _, e := range r.entries {
		if e.CustomerID == customerID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *stubCustomerRepo) FindByIDForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.Customer, error) {
	c, ok := r.customers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (r *stubCustomerRepo) UpdateBalanceTx(_ *gorm.DB, id uuid.UUID, newBalance interface{}) error {
	r.customers[id].OpenBalance = newBalance.(decimal.Decimal)
	return nil
}

func (r *stubCustomerRepo) CreateEntryTx(_ *gorm.DB, e *model.CustomerEntry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	r.entries = append(r.entries, *e)
	return nil
}

func (r *stubCustomerRepo) DB() *gorm.DB { return nil }

var _ repository.CustomerRepository = (*stubCustomerRepo)(nil)

// ── Registers ────────────────────────────────────────────────────────────────

type stubRegisterRepo struct {
	registers map[model.RegisterKind]*model.Register
	movements []model.RegisterMovement
}

func newStubRegisterRepo() *stubRegisterRepo {
	r := &stubRegisterRepo{registers: make(map[model.RegisterKind]*model.Register)}
	for _, kind := range []model.RegisterKind{model.RegisterCash, model.RegisterPOS, model.RegisterBank} {
		r.registers[kind] = &model.Register{ID: uuid.New(), Kind: kind, Active: true}
	}
	return r
}

func (r *stubRegisterRepo) FindByKind(_ context.Context, kind model.RegisterKind) (*model.Register, error) {
	reg, ok := r.registers[kind]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return reg, nil
}

func (r *stubRegisterRepo) CreateMovementTx(_ *gorm.DB, m *model.RegisterMovement) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	r.movements = append(r.movements, *m)
	return nil
}

func (r *stubRegisterRepo) Balance(_ context.Context, registerID uuid.UUID) (decimal.Decimal, error) {
	balance := decimal.Zero
	for _, m := range r.movements {
		if m.RegisterID != registerID {
			continue
		}
		if m.Direction == "in" {
			balance = balance.Add(m.Amount)
		} else {
			balance = balance.Sub(m.Amount)
		}
	}
	return balance, nil
}

func (r *stubRegisterRepo) EnsureDefaults(_ context.Context) error { return nil }

func (r *stubRegisterRepo) DB() *gorm.DB { return nil }

var _ repository.RegisterRepository = (*stubRegisterRepo)(nil)
