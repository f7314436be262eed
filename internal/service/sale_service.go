package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/firatemu/nuviabutik/internal/barcode"
	"github.com/firatemu/nuviabutik/internal/dto"
	"github.com/firatemu/nuviabutik/internal/metrics"
	"github.com/firatemu/nuviabutik/internal/model"
	"github.com/firatemu/nuviabutik/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const settleMaxRetries = 3

// amountTolerance absorbs cash rounding: Σ tenders may differ from the sale
// total by at most one cent.
var amountTolerance = decimal.NewFromFloat(0.01)

type SaleService interface {
	// Settle runs the whole settlement in one transaction: mint the sale
	// number, debit stock per line, dispatch tenders, persist the sale.
	// Nothing survives a failure.
	Settle(ctx context.Context, actor string, req dto.SettleSaleRequest) (*dto.SaleResponse, error)

	// Cancel restores the remaining stock, books inverse register movements,
	// re-credits voucher and open-account tenders, and moves the sale to
	// cancelled. Only settled sales may be cancelled.
	Cancel(ctx context.Context, id uuid.UUID, actor, reason string) error

	Get(ctx context.Context, id uuid.UUID) (*dto.SaleResponse, error)
	List(ctx context.Context, filter dto.SaleFilter) (*dto.SaleListResponse, error)

	// PreviewNumber formats the next sale number without claiming it.
	PreviewNumber(ctx context.Context) (*dto.NextNumberResponse, error)
}

// tenderFunc books one tender's money-side effect inside the settlement tx.
type tenderFunc func(ctx context.Context, tx *gorm.DB, sale *model.Sale, t dto.TenderRequest) error

type saleService struct {
	repo      repository.SaleRepository
	variants  repository.VariantRepository
	registers repository.RegisterRepository
	stock     StockService
	sequence  SequenceService
	vouchers  VoucherService
	customers CustomerService

	numberPrefix string
	dispatch     map[model.TenderKind]tenderFunc
}

// tenderRegisters maps money tenders onto their physical register.
var tenderRegisters = map[model.TenderKind]model.RegisterKind{
	model.TenderCash:         model.RegisterCash,
	model.TenderCard:         model.RegisterPOS,
	model.TenderBankTransfer: model.RegisterBank,
}

func NewSaleService(
	repo repository.SaleRepository,
	variants repository.VariantRepository,
	registers repository.RegisterRepository,
	stock StockService,
	sequence SequenceService,
	vouchers VoucherService,
	customers CustomerService,
	numberPrefix string,
) SaleService {
	s := &saleService{
		repo:         repo,
		variants:     variants,
		registers:    registers,
		stock:        stock,
		sequence:     sequence,
		vouchers:     vouchers,
		customers:    customers,
		numberPrefix: numberPrefix,
	}
	s.dispatch = map[model.TenderKind]tenderFunc{
		model.TenderCash:         s.bookRegisterTender,
		model.TenderCard:         s.bookRegisterTender,
		model.TenderBankTransfer: s.bookRegisterTender,
		model.TenderVoucher:      s.bookVoucherTender,
		model.TenderStoreCredit:  s.bookStoreCreditTender,
	}
	return s
}

// resolvedLine is a sale line after catalog resolution, priced and validated
// before the transaction opens.
type resolvedLine struct {
	variantID uuid.UUID
	product   string
	unitPrice decimal.Decimal
	quantity  int
	discount  decimal.Decimal
	lineTotal decimal.Decimal
}

// ── Settle ───────────────────────────────────────────────────────────────────
// Pre-flight (outside tx): resolve lines by id or barcode, price them, check
// tender arithmetic and tender prerequisites. ACID section: mint number,
// create sale with lines and tenders, debit stock through the shared movement
// writer, dispatch tenders. Serialization conflicts retry the whole
// transaction; the final attempt falls back to a timestamp number.

func (s *saleService) Settle(ctx context.Context, actor string, req dto.SettleSaleRequest) (*dto.SaleResponse, error) {
	var customerID *uuid.UUID
	if req.CustomerID != nil {
		id, err := uuid.Parse(*req.CustomerID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid customer_id", ErrValidation)
		}
		customerID = &id
	}

	resolved, err := s.resolveLines(ctx, req.Lines)
	if err != nil {
		return nil, err
	}

	subtotal := decimal.Zero
	discountTotal := decimal.Zero
	for _, r := range resolved {
		subtotal = subtotal.Add(r.lineTotal)
		discountTotal = discountTotal.Add(r.discount)
	}
	total := subtotal

	tenderSum := decimal.Zero
	for _, t := range req.Tenders {
		if !t.Amount.IsPositive() {
			return nil, fmt.Errorf("%w: tender amounts must be positive", ErrValidation)
		}
		kind := model.TenderKind(t.Kind)
		if _, ok := s.dispatch[kind]; !ok {
			return nil, fmt.Errorf("%w: unknown tender kind %q", ErrValidation, t.Kind)
		}
		if kind == model.TenderVoucher && t.VoucherCode == nil {
			return nil, fmt.Errorf("%w: voucher tender requires voucher_code", ErrValidation)
		}
		if kind == model.TenderStoreCredit && customerID == nil {
			return nil, fmt.Errorf("%w: store_credit tender requires customer_id", ErrValidation)
		}
		tenderSum = tenderSum.Add(t.Amount)
	}
	if tenderSum.Sub(total).Abs().GreaterThan(amountTolerance) {
		return nil, fmt.Errorf("%w: tenders %s, total %s", ErrAmountMismatch, tenderSum, total)
	}

	day := time.Now()
	var sale *model.Sale
	var lastErr error
	for attempt := 1; attempt <= settleMaxRetries+1; attempt++ {
		// Last attempt gives up on the counter and uses the degraded number.
		fallback := attempt == settleMaxRetries+1

		sale, lastErr = s.settleOnce(ctx, actor, customerID, req, resolved, subtotal, discountTotal, total, day, fallback)
		if lastErr == nil {
			break
		}
		if !isRetryable(lastErr) {
			return nil, lastErr
		}
		if fallback {
			return nil, fmt.Errorf("%w: %v", ErrSequenceExhausted, lastErr)
		}
		// Same jittered backoff as the sequence issuer, so contending
		// settlements don't re-collide in lockstep.
		time.Sleep(sequenceBackoff + time.Duration(rand.Intn(10))*time.Millisecond)
	}

	metrics.SalesSettled.Inc()
	log.Info().
		Str("sale_id", sale.ID.String()).
		Str("number", sale.Number).
		Bool("degraded", sale.NumberDegraded).
		Str("total", sale.Total.String()).
		Str("actor", actor).
		Msg("sale settled")
	return saleToResponse(sale), nil
}

func (s *saleService) settleOnce(
	ctx context.Context,
	actor string,
	customerID *uuid.UUID,
	req dto.SettleSaleRequest,
	resolved []resolvedLine,
	subtotal, discountTotal, total decimal.Decimal,
	day time.Time,
	fallbackNumber bool,
) (*model.Sale, error) {
	var sale *model.Sale
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		var number string
		if fallbackNumber {
			number = s.sequence.Fallback(s.numberPrefix, time.Now())
			metrics.SequenceFallbacks.Inc()
		} else {
			var err error
			number, err = s.sequence.NextTx(tx, s.numberPrefix, day)
			if err != nil {
				return err
			}
		}

		sale = &model.Sale{
			ID:             uuid.New(),
			Number:         number,
			NumberDegraded: fallbackNumber,
			CustomerID:     customerID,
			Subtotal:       subtotal,
			DiscountTotal:  discountTotal,
			Total:          total,
			Status:         model.SaleStatusSettled,
			Actor:          actor,
		}
		if req.Note != "" {
			note := req.Note
			sale.Note = &note
		}
		for _, r := range resolved {
			sale.Lines = append(sale.Lines, model.SaleLine{
				ID:        uuid.New(),
				VariantID: r.variantID,
				Quantity:  r.quantity,
				UnitPrice: r.unitPrice,
				Discount:  r.discount,
				LineTotal: r.lineTotal,
			})
		}
		for _, t := range req.Tenders {
			sale.Tenders = append(sale.Tenders, model.Tender{
				Kind:         model.TenderKind(t.Kind),
				Amount:       t.Amount,
				Installments: t.Installments,
				VoucherCode:  t.VoucherCode,
			})
		}
		if err := s.repo.CreateTx(tx, sale); err != nil {
			return err
		}

		for _, r := range resolved {
			ref := sale.ID
			_, err := s.stock.ApplyMovementTx(tx, r.variantID, model.MovementOut, r.quantity, actor,
				fmt.Sprintf("Sale %s", number), &ref)
			if err != nil {
				return fmt.Errorf("line %s: %w", r.product, err)
			}
		}

		for _, t := range req.Tenders {
			if err := s.dispatch[model.TenderKind(t.Kind)](ctx, tx, sale, t); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}

func (s *saleService) resolveLines(ctx context.Context, lines []dto.SaleLineRequest) ([]resolvedLine, error) {
	resolved := make([]resolvedLine, 0, len(lines))
	for i, line := range lines {
		v, err := s.resolveVariant(ctx, line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		if !v.Active {
			return nil, fmt.Errorf("%w: variant %s is inactive", ErrValidation, v.ID)
		}

		unit := v.Product.BasePrice
		gross := unit.Mul(decimal.NewFromInt(int64(line.Quantity)))
		if line.Discount.IsNegative() || line.Discount.GreaterThan(gross) {
			return nil, fmt.Errorf("%w: discount out of range on line %d", ErrValidation, i+1)
		}

		resolved = append(resolved, resolvedLine{
			variantID: v.ID,
			product:   v.Product.Name,
			unitPrice: unit,
			quantity:  line.Quantity,
			discount:  line.Discount,
			lineTotal: gross.Sub(line.Discount),
		})
	}
	return resolved, nil
}

func (s *saleService) resolveVariant(ctx context.Context, line dto.SaleLineRequest) (*model.Variant, error) {
	switch {
	case line.VariantID != nil:
		id, err := uuid.Parse(*line.VariantID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid variant_id", ErrValidation)
		}
		return s.variants.FindByID(ctx, id)
	case line.Barcode != nil:
		code, err := barcode.Decode(*line.Barcode)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		v, err := s.variants.FindByBarcode(ctx, *line.Barcode)
		if code.Legacy && errors.Is(err, gorm.ErrRecordNotFound) {
			// Legacy labels were re-registered with the prefix.
			v, err = s.variants.FindByBarcode(ctx, barcode.Prefix+*line.Barcode)
		}
		return v, err
	default:
		return nil, fmt.Errorf("%w: line needs variant_id or barcode", ErrValidation)
	}
}

// ── Tender dispatch ──────────────────────────────────────────────────────────

func (s *saleService) bookRegisterTender(ctx context.Context, tx *gorm.DB, sale *model.Sale, t dto.TenderRequest) error {
	reg, err := s.registers.FindByKind(ctx, tenderRegisters[model.TenderKind(t.Kind)])
	if err != nil {
		return fmt.Errorf("no register for tender %s: %w", t.Kind, err)
	}
	kind := t.Kind
	return s.registers.CreateMovementTx(tx, &model.RegisterMovement{
		RegisterID:  reg.ID,
		Direction:   "in",
		Source:      "sale",
		TenderKind:  &kind,
		Amount:      t.Amount,
		Description: fmt.Sprintf("Sale %s", sale.Number),
		Reference:   &sale.ID,
	})
}

func (s *saleService) bookVoucherTender(ctx context.Context, tx *gorm.DB, sale *model.Sale, t dto.TenderRequest) error {
	return s.vouchers.RedeemTx(tx, *t.VoucherCode, t.Amount, &sale.ID, sale.Actor)
}

func (s *saleService) bookStoreCreditTender(ctx context.Context, tx *gorm.DB, sale *model.Sale, t dto.TenderRequest) error {
	return s.customers.DebitTx(tx, *sale.CustomerID, t.Amount, &sale.ID,
		fmt.Sprintf("Sale %s", sale.Number))
}

// ── Cancel ───────────────────────────────────────────────────────────────────

func (s *saleService) Cancel(ctx context.Context, id uuid.UUID, actor, reason string) error {
	var sale *model.Sale
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		// Status and ReturnedQty are only trustworthy under the sale head
		// lock: a concurrent return or cancel commits before this read or
		// after this transaction, never in between.
		locked, err := s.repo.FindByIDForUpdateTx(tx, id)
		if err != nil {
			return err
		}
		if locked.Status != model.SaleStatusSettled {
			return fmt.Errorf("%w: sale %s is %s", ErrInvalidState, locked.Number, locked.Status)
		}
		sale = locked

		// Restore what is still out: returned units already came back.
		for _, line := range sale.Lines {
			remaining := line.Quantity - line.ReturnedQty
			if remaining == 0 {
				continue
			}
			ref := sale.ID
			if _, err := s.stock.ApplyMovementTx(tx, line.VariantID, model.MovementIn, remaining, actor,
				fmt.Sprintf("Cancellation of sale %s: %s", sale.Number, reason), &ref); err != nil {
				return err
			}
		}

		for _, t := range sale.Tenders {
			switch t.Kind {
			case model.TenderVoucher:
				if err := s.vouchers.CreditTx(tx, *t.VoucherCode, t.Amount, &sale.ID, actor); err != nil {
					return err
				}
			case model.TenderStoreCredit:
				if err := s.customers.CreditTx(tx, *sale.CustomerID, t.Amount, &sale.ID,
					fmt.Sprintf("Cancellation of sale %s", sale.Number)); err != nil {
					return err
				}
			default:
				reg, err := s.registers.FindByKind(ctx, tenderRegisters[t.Kind])
				if err != nil {
					return err
				}
				kind := string(t.Kind)
				if err := s.registers.CreateMovementTx(tx, &model.RegisterMovement{
					RegisterID:  reg.ID,
					Direction:   "out",
					Source:      "cancellation",
					TenderKind:  &kind,
					Amount:      t.Amount,
					Description: fmt.Sprintf("Cancellation of sale %s: %s", sale.Number, reason),
					Reference:   &sale.ID,
				}); err != nil {
					return err
				}
			}
		}

		return s.repo.UpdateStatusTx(tx, id, model.SaleStatusCancelled)
	})
	if err != nil {
		return err
	}

	metrics.SalesCancelled.Inc()
	log.Info().
		Str("sale_id", id.String()).
		Str("number", sale.Number).
		Str("actor", actor).
		Msg("sale cancelled")
	return nil
}

// ── Queries ──────────────────────────────────────────────────────────────────

func (s *saleService) Get(ctx context.Context, id uuid.UUID) (*dto.SaleResponse, error) {
	sale, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return saleToResponse(sale), nil
}

func (s *saleService) List(ctx context.Context, filter dto.SaleFilter) (*dto.SaleListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	sales, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.SaleResponse, 0, len(sales))
	for _, sale := range sales {
		items = append(items, *saleToResponse(&sale))
	}
	return &dto.SaleListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func (s *saleService) PreviewNumber(ctx context.Context) (*dto.NextNumberResponse, error) {
	number, err := s.sequence.Preview(ctx, s.numberPrefix, time.Now())
	if err != nil {
		return nil, err
	}
	return &dto.NextNumberResponse{Number: number, Advisory: true}, nil
}

func saleToResponse(sale *model.Sale) *dto.SaleResponse {
	lines := make([]dto.SaleLineResponse, 0, len(sale.Lines))
	for _, l := range sale.Lines {
		product := ""
		code := ""
		if l.Variant != nil {
			code = l.Variant.Barcode
			if l.Variant.Product != nil {
				product = l.Variant.Product.Name
			}
		}
		lines = append(lines, dto.SaleLineResponse{
			ID:          l.ID.String(),
			VariantID:   l.VariantID.String(),
			Product:     product,
			Barcode:     code,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			Discount:    l.Discount,
			LineTotal:   l.LineTotal,
			ReturnedQty: l.ReturnedQty,
		})
	}
	tenders := make([]dto.TenderResponse, 0, len(sale.Tenders))
	for _, t := range sale.Tenders {
		tenders = append(tenders, dto.TenderResponse{
			Kind:         string(t.Kind),
			Amount:       t.Amount,
			Installments: t.Installments,
			VoucherCode:  t.VoucherCode,
		})
	}
	var customerID *string
	if sale.CustomerID != nil {
		s := sale.CustomerID.String()
		customerID = &s
	}
	return &dto.SaleResponse{
		ID:             sale.ID.String(),
		Number:         sale.Number,
		NumberDegraded: sale.NumberDegraded,
		CustomerID:     customerID,
		Lines:          lines,
		Tenders:        tenders,
		Subtotal:       sale.Subtotal,
		DiscountTotal:  sale.DiscountTotal,
		Total:          sale.Total,
		Status:         string(sale.Status),
		CreatedAt:      sale.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
