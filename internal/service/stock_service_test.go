package service_test

import (
	"context"
	"testing"

	"github.com/firatemu/nuviabutik/internal/dto"
	"github.com/firatemu/nuviabutik/internal/model"
	"github.com/firatemu/nuviabutik/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildStockSvc() (service.StockService, *stubVariantRepo, *stubMovementRepo) {
	variants := newStubVariantRepo()
	movements := &stubMovementRepo{}
	return service.NewStockService(variants, movements), variants, movements
}

func TestDirectEditSetsOpeningQuantityAndLocks(t *testing.T) {
	svc, variants, movements := buildStockSvc()
	v := variants.add(&model.Variant{Barcode: "NUV03SM000010450"})

	out, err := svc.DirectEdit(context.Background(), v.ID, 5, "ayse", "opening count")
	require.NoError(t, err)

	assert.Equal(t, 5, out.QuantityOnHand)
	assert.Equal(t, model.LockStateLocked, out.LockState)
	assert.Equal(t, model.LockStateLocked, variants.variants[v.ID].LockState)

	require.Len(t, movements.movements, 1)
	mov := movements.movements[0]
	assert.Equal(t, model.MovementIn, mov.Kind)
	assert.Equal(t, 0, mov.PriorQty)
	assert.Equal(t, 5, mov.NewQty)
	assert.Equal(t, "ayse", mov.Actor)
}

func TestDirectEditRejectedOnceLocked(t *testing.T) {
	svc, variants, movements := buildStockSvc()
	v := variants.add(&model.Variant{Barcode: "NUV03SM000010450"})

	_, err := svc.DirectEdit(context.Background(), v.ID, 5, "ayse", "")
	require.NoError(t, err)

	_, err = svc.DirectEdit(context.Background(), v.ID, 9, "ayse", "")
	assert.ErrorIs(t, err, service.ErrStockLocked)
	assert.Equal(t, 5, variants.variants[v.ID].QuantityOnHand)
	assert.Len(t, movements.movements, 1)
}

func TestDirectEditNegativeQuantity(t *testing.T) {
	svc, variants, _ := buildStockSvc()
	v := variants.add(&model.Variant{})

	_, err := svc.DirectEdit(context.Background(), v.ID, -1, "ayse", "")
	assert.ErrorIs(t, err, service.ErrValidation)
}

func TestApplyMovementOut(t *testing.T) {
	svc, variants, movements := buildStockSvc()
	v := variants.add(&model.Variant{QuantityOnHand: 5, LockState: model.LockStateLocked})

	newQty, err := svc.ApplyMovement(context.Background(), v.ID, model.MovementOut, 3, "ayse", "", nil)
	require.NoError(t, err)

	assert.Equal(t, 2, newQty)
	assert.Equal(t, 2, variants.variants[v.ID].QuantityOnHand)
	require.Len(t, movements.movements, 1)
	assert.Equal(t, -3, movements.movements[0].Delta())
}

func TestApplyMovementOutInsufficientStock(t *testing.T) {
	svc, variants, movements := buildStockSvc()
	v := variants.add(&model.Variant{QuantityOnHand: 2, LockState: model.LockStateLocked})

	_, err := svc.ApplyMovement(context.Background(), v.ID, model.MovementOut, 5, "ayse", "", nil)
	assert.ErrorIs(t, err, service.ErrInsufficientStock)

	// Balance and ledger untouched after the rejection.
	assert.Equal(t, 2, variants.variants[v.ID].QuantityOnHand)
	assert.Empty(t, movements.movements)
}

func TestApplyMovementAdjustmentIsAbsoluteTarget(t *testing.T) {
	svc, variants, movements := buildStockSvc()
	v := variants.add(&model.Variant{QuantityOnHand: 7, LockState: model.LockStateLocked})

	newQty, err := svc.ApplyMovement(context.Background(), v.ID, model.MovementAdjustment, 10, "ayse", "recount", nil)
	require.NoError(t, err)

	assert.Equal(t, 10, newQty)
	require.Len(t, movements.movements, 1)
	assert.Equal(t, 3, movements.movements[0].Delta())
}

func TestApplyMovementAdjustmentToZero(t *testing.T) {
	svc, variants, _ := buildStockSvc()
	v := variants.add(&model.Variant{QuantityOnHand: 4, LockState: model.LockStateLocked})

	newQty, err := svc.ApplyMovement(context.Background(), v.ID, model.MovementAdjustment, 0, "ayse", "", nil)
	require.NoError(t, err)
	assert.Equal(t, 0, newQty)
}

func TestApplyMovementZeroQuantityRejected(t *testing.T) {
	svc, variants, _ := buildStockSvc()
	v := variants.add(&model.Variant{QuantityOnHand: 4, LockState: model.LockStateLocked})

	for _, kind := range []model.MovementKind{
		model.MovementIn, model.MovementOut,
		model.MovementCountSurplus, model.MovementCountShortfall,
	} {
		_, err := svc.ApplyMovement(context.Background(), v.ID, kind, 0, "ayse", "", nil)
		assert.ErrorIs(t, err, service.ErrValidation, string(kind))
	}
}

func TestApplyMovementCountKinds(t *testing.T) {
	svc, variants, _ := buildStockSvc()
	v := variants.add(&model.Variant{QuantityOnHand: 10, LockState: model.LockStateLocked})

	newQty, err := svc.ApplyMovement(context.Background(), v.ID, model.MovementCountSurplus, 2, "ayse", "", nil)
	require.NoError(t, err)
	assert.Equal(t, 12, newQty)

	newQty, err = svc.ApplyMovement(context.Background(), v.ID, model.MovementCountShortfall, 3, "ayse", "", nil)
	require.NoError(t, err)
	assert.Equal(t, 9, newQty)
}

func TestApplyMovementLocksUnlockedVariant(t *testing.T) {
	svc, variants, _ := buildStockSvc()
	v := variants.add(&model.Variant{QuantityOnHand: 0})

	_, err := svc.ApplyMovement(context.Background(), v.ID, model.MovementIn, 4, "ayse", "", nil)
	require.NoError(t, err)
	assert.Equal(t, model.LockStateLocked, variants.variants[v.ID].LockState)
}

func TestApplyMovementUnknownKind(t *testing.T) {
	svc, variants, _ := buildStockSvc()
	v := variants.add(&model.Variant{QuantityOnHand: 4, LockState: model.LockStateLocked})

	_, err := svc.ApplyMovement(context.Background(), v.ID, model.MovementKind("transfer"), 1, "ayse", "", nil)
	assert.ErrorIs(t, err, service.ErrValidation)
}

func TestVerifyBalanceConsistent(t *testing.T) {
	svc, variants, _ := buildStockSvc()
	v := variants.add(&model.Variant{})

	_, err := svc.DirectEdit(context.Background(), v.ID, 5, "ayse", "")
	require.NoError(t, err)
	_, err = svc.ApplyMovement(context.Background(), v.ID, model.MovementOut, 3, "ayse", "", nil)
	require.NoError(t, err)

	audit, err := svc.VerifyBalance(context.Background(), v.ID)
	require.NoError(t, err)
	assert.True(t, audit.Consistent)
	assert.Equal(t, 2, audit.QuantityOnHand)
	assert.Equal(t, 2, audit.LedgerSum)
	assert.Equal(t, 0, audit.Drift)
}

func TestVerifyBalanceReportsDrift(t *testing.T) {
	svc, variants, movements := buildStockSvc()
	v := variants.add(&model.Variant{QuantityOnHand: 8, LockState: model.LockStateLocked})
	movements.movements = append(movements.movements, model.StockMovement{
		ID: uuid.New(), VariantID: v.ID, Kind: model.MovementIn,
		Quantity: 5, PriorQty: 0, NewQty: 5, Actor: "ayse",
	})

	audit, err := svc.VerifyBalance(context.Background(), v.ID)
	require.NoError(t, err)
	assert.False(t, audit.Consistent)
	assert.Equal(t, 3, audit.Drift)
}

func TestListMovementsDefaultsPaging(t *testing.T) {
	svc, variants, _ := buildStockSvc()
	v := variants.add(&model.Variant{})

	_, err := svc.DirectEdit(context.Background(), v.ID, 5, "ayse", "")
	require.NoError(t, err)

	list, err := svc.ListMovements(context.Background(), v.ID, dto.MovementFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, list.Page)
	assert.Equal(t, 50, list.Limit)
	assert.Equal(t, int64(1), list.Total)
	require.Len(t, list.Data, 1)
	assert.Equal(t, "in", list.Data[0].Kind)
	assert.Equal(t, 5, list.Data[0].Delta)
}
