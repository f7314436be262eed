package service

import (
	"context"
	"fmt"

	"github.com/firatemu/nuviabutik/internal/dto"
	"github.com/firatemu/nuviabutik/internal/metrics"
	"github.com/firatemu/nuviabutik/internal/model"
	"github.com/firatemu/nuviabutik/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// StockService is the only writer of variant balances. Every change flows
// through the movement log; the denormalized quantity_on_hand column and the
// log update in the same transaction with the variant row locked.
type StockService interface {
	// DirectEdit sets the opening quantity of a variant that has never moved.
	// It books the opening `in` movement and locks the variant; once locked,
	// only ApplyMovement may change the balance.
	DirectEdit(ctx context.Context, variantID uuid.UUID, qty int, actor, note string) (*model.Variant, error)

	// ApplyMovement books one movement in its own transaction and returns the
	// new balance. Any movement on an unlocked variant locks it.
	ApplyMovement(ctx context.Context, variantID uuid.UUID, kind model.MovementKind, qty int, actor, note string, reference *uuid.UUID) (int, error)

	// ApplyMovementTx is the shared movement writer: settlement and returns
	// call it inside their own transactions so stock debits commit or roll
	// back with the sale.
	ApplyMovementTx(tx *gorm.DB, variantID uuid.UUID, kind model.MovementKind, qty int, actor, note string, reference *uuid.UUID) (*model.StockMovement, error)

	// VerifyBalance re-derives the balance from the movement log and reports
	// drift against the stored quantity.
	VerifyBalance(ctx context.Context, variantID uuid.UUID) (*dto.AuditResponse, error)

	ListMovements(ctx context.Context, variantID uuid.UUID, filter dto.MovementFilter) (*dto.MovementListResponse, error)
}

type stockService struct {
	variants  repository.VariantRepository
	movements repository.MovementRepository
}

func NewStockService(variants repository.VariantRepository, movements repository.MovementRepository) StockService {
	return &stockService{variants: variants, movements: movements}
}

func (s *stockService) DirectEdit(ctx context.Context, variantID uuid.UUID, qty int, actor, note string) (*model.Variant, error) {
	if qty < 0 {
		return nil, fmt.Errorf("%w: quantity must not be negative", ErrValidation)
	}

	var variant *model.Variant
	err := runTx(ctx, s.variants.DB(), func(tx *gorm.DB) error {
		v, err := s.variants.FindByIDForUpdateTx(tx, variantID)
		if err != nil {
			return err
		}
		if v.LockState == model.LockStateLocked {
			return ErrStockLocked
		}

		mov := &model.StockMovement{
			VariantID: variantID,
			Kind:      model.MovementIn,
			Quantity:  qty,
			PriorQty:  v.QuantityOnHand,
			NewQty:    qty,
			Actor:     actor,
			Note:      note,
		}
		if err := s.movements.CreateTx(tx, mov); err != nil {
			return err
		}
		if err := s.variants.UpdateQuantityTx(tx, variantID, qty); err != nil {
			return err
		}
		if err := s.variants.SetLockStateTx(tx, variantID, model.LockStateLocked); err != nil {
			return err
		}

		v.QuantityOnHand = qty
		v.LockState = model.LockStateLocked
		variant = v
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.MovementsApplied.WithLabelValues(string(model.MovementIn)).Inc()
	log.Info().
		Str("variant_id", variantID.String()).
		Int("quantity", qty).
		Str("actor", actor).
		Msg("direct stock edit, variant locked")
	return variant, nil
}

func (s *stockService) ApplyMovement(ctx context.Context, variantID uuid.UUID, kind model.MovementKind, qty int, actor, note string, reference *uuid.UUID) (int, error) {
	var newQty int
	err := runTx(ctx, s.variants.DB(), func(tx *gorm.DB) error {
		mov, err := s.ApplyMovementTx(tx, variantID, kind, qty, actor, note, reference)
		if err != nil {
			return err
		}
		newQty = mov.NewQty
		return nil
	})
	if err != nil {
		return 0, err
	}
	return newQty, nil
}

func (s *stockService) ApplyMovementTx(tx *gorm.DB, variantID uuid.UUID, kind model.MovementKind, qty int, actor, note string, reference *uuid.UUID) (*model.StockMovement, error) {
	if qty < 0 {
		return nil, fmt.Errorf("%w: quantity must not be negative", ErrValidation)
	}

	v, err := s.variants.FindByIDForUpdateTx(tx, variantID)
	if err != nil {
		return nil, err
	}

	prior := v.QuantityOnHand
	var newQty int
	switch kind {
	case model.MovementIn, model.MovementCountSurplus:
		if qty == 0 {
			return nil, fmt.Errorf("%w: quantity must be positive", ErrValidation)
		}
		newQty = prior + qty
	case model.MovementOut, model.MovementCountShortfall:
		if qty == 0 {
			return nil, fmt.Errorf("%w: quantity must be positive", ErrValidation)
		}
		if qty > prior {
			return nil, fmt.Errorf("%w: have %d, need %d", ErrInsufficientStock, prior, qty)
		}
		newQty = prior - qty
	case model.MovementAdjustment:
		// Quantity is the absolute target, not a delta.
		newQty = qty
	default:
		return nil, fmt.Errorf("%w: unknown movement kind %q", ErrValidation, kind)
	}

	mov := &model.StockMovement{
		VariantID: variantID,
		Kind:      kind,
		Quantity:  qty,
		PriorQty:  prior,
		NewQty:    newQty,
		Actor:     actor,
		Note:      note,
		Reference: reference,
	}
	if err := s.movements.CreateTx(tx, mov); err != nil {
		return nil, err
	}
	if err := s.variants.UpdateQuantityTx(tx, variantID, newQty); err != nil {
		return nil, err
	}
	if v.LockState == model.LockStateUnlocked {
		if err := s.variants.SetLockStateTx(tx, variantID, model.LockStateLocked); err != nil {
			return nil, err
		}
	}

	metrics.MovementsApplied.WithLabelValues(string(kind)).Inc()
	return mov, nil
}

func (s *stockService) VerifyBalance(ctx context.Context, variantID uuid.UUID) (*dto.AuditResponse, error) {
	v, err := s.variants.FindByID(ctx, variantID)
	if err != nil {
		return nil, err
	}
	sum, err := s.movements.SumDeltas(ctx, variantID)
	if err != nil {
		return nil, err
	}

	drift := v.QuantityOnHand - sum
	if drift != 0 {
		log.Error().
			Str("variant_id", variantID.String()).
			Int("quantity_on_hand", v.QuantityOnHand).
			Int("ledger_sum", sum).
			Msg("stock balance drift detected")
	}
	return &dto.AuditResponse{
		VariantID:      variantID.String(),
		QuantityOnHand: v.QuantityOnHand,
		LedgerSum:      sum,
		Drift:          drift,
		Consistent:     drift == 0,
	}, nil
}

func (s *stockService) ListMovements(ctx context.Context, variantID uuid.UUID, filter dto.MovementFilter) (*dto.MovementListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}

	movements, total, err := s.movements.List(ctx, variantID, filter.Page, filter.Limit)
	if err != nil {
		return nil, err
	}

	items := make([]dto.MovementResponse, 0, len(movements))
	for _, m := range movements {
		items = append(items, movementToResponse(&m))
	}
	return &dto.MovementListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func movementToResponse(m *model.StockMovement) dto.MovementResponse {
	var ref *string
	if m.Reference != nil {
		s := m.Reference.String()
		ref = &s
	}
	return dto.MovementResponse{
		ID:        m.ID.String(),
		Kind:      string(m.Kind),
		Quantity:  m.Quantity,
		PriorQty:  m.PriorQty,
		NewQty:    m.NewQty,
		Delta:     m.Delta(),
		Actor:     m.Actor,
		Note:      m.Note,
		Reference: ref,
		CreatedAt: m.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
