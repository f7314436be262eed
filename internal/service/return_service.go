package service

import (
	"context"
	"fmt"

	"github.com/firatemu/nuviabutik/internal/dto"
	"github.com/firatemu/nuviabutik/internal/model"
	"github.com/firatemu/nuviabutik/internal/repository"
	"github.com/firatemu/nuviabutik/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ReturnService handles partial and full returns against settled sales.
// Refunds are always issued as store-credit vouchers, never as cash.
type ReturnService interface {
	// ReturnLines takes back the selected quantities, restores stock, and
	// issues one voucher for the refund sum — all in one transaction. When
	// every unit of the sale has come back, the sale moves to returned.
	ReturnLines(ctx context.Context, actor string, saleID uuid.UUID, req dto.ReturnRequest) (*dto.ReturnResponse, error)
}

type returnService struct {
	repo       repository.SaleRepository
	stock      StockService
	vouchers   VoucherService
	dispatcher *worker.Dispatcher
}

func NewReturnService(
	repo repository.SaleRepository,
	stock StockService,
	vouchers VoucherService,
	dispatcher *worker.Dispatcher,
) ReturnService {
	return &returnService{repo: repo, stock: stock, vouchers: vouchers, dispatcher: dispatcher}
}

type returnSelection struct {
	lineID   uuid.UUID
	quantity int
	refund   decimal.Decimal
}

func (s *returnService) ReturnLines(ctx context.Context, actor string, saleID uuid.UUID, req dto.ReturnRequest) (*dto.ReturnResponse, error) {
	sale, err := s.repo.FindByID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if sale.Status != model.SaleStatusSettled {
		return nil, fmt.Errorf("%w: sale %s is %s", ErrInvalidState, sale.Number, sale.Status)
	}

	// Pre-flight: validate selections against the remaining returnable
	// quantities and price the refund. Re-checked under lock inside the tx.
	selections, refundTotal, err := priceSelections(sale, req.Lines)
	if err != nil {
		return nil, err
	}

	var voucher *model.Voucher
	var saleStatus model.SaleStatus
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		locked, err := s.repo.FindByIDForUpdateTx(tx, saleID)
		if err != nil {
			return err
		}
		lines := make(map[uuid.UUID]*model.SaleLine, len(locked.Lines))
		for i := range locked.Lines {
			lines[locked.Lines[i].ID] = &locked.Lines[i]
		}

		for _, sel := range selections {
			line, ok := lines[sel.lineID]
			if !ok {
				return fmt.Errorf("%w: line %s not on sale", ErrValidation, sel.lineID)
			}
			if sel.quantity > line.RemainingReturnable() {
				return fmt.Errorf("%w: line %s has %d returnable units, got %d",
					ErrValidation, sel.lineID, line.RemainingReturnable(), sel.quantity)
			}

			ref := locked.ID
			if _, err := s.stock.ApplyMovementTx(tx, line.VariantID, model.MovementIn, sel.quantity, actor,
				fmt.Sprintf("Return against sale %s", locked.Number), &ref); err != nil {
				return err
			}
			line.ReturnedQty += sel.quantity
			if err := s.repo.UpdateLineReturnedTx(tx, line.ID, line.ReturnedQty); err != nil {
				return err
			}
		}

		voucher = s.vouchers.NewVoucher(refundTotal, locked.CustomerID, &locked.ID, actor)
		if err := s.vouchers.IssueTx(tx, voucher); err != nil {
			return err
		}

		saleStatus = model.SaleStatusSettled
		if fullyReturned(locked.Lines) {
			saleStatus = model.SaleStatusReturned
			if err := s.repo.UpdateStatusTx(tx, saleID, saleStatus); err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	log.Info().
		Str("sale_id", saleID.String()).
		Str("voucher", voucher.Code).
		Str("refund", refundTotal.String()).
		Str("actor", actor).
		Msg("return completed, voucher issued")

	// Best-effort receipt: the return is committed regardless.
	if s.dispatcher != nil {
		customer := ""
		toEmail := ""
		if sale.Customer != nil {
			customer = sale.Customer.Name
			if sale.Customer.Email != nil {
				toEmail = *sale.Customer.Email
			}
		}
		_ = s.dispatcher.EnqueueVoucherReceipt(ctx, worker.VoucherReceiptPayload{
			VoucherCode: voucher.Code,
			Amount:      voucher.Amount.StringFixed(2),
			ExpiresAt:   voucher.ExpiresAt.Format("2006-01-02"),
			SaleNumber:  sale.Number,
			Customer:    customer,
			ToEmail:     toEmail,
		})
	}

	return &dto.ReturnResponse{
		SaleID:       saleID.String(),
		SaleStatus:   string(saleStatus),
		RefundAmount: refundTotal,
		Voucher:      *voucherToResponse(voucher),
	}, nil
}

// priceSelections validates the requested quantities and computes the refund:
// unit price × quantity minus the proportional share of the line discount.
func priceSelections(sale *model.Sale, reqs []dto.ReturnLineRequest) ([]returnSelection, decimal.Decimal, error) {
	lines := make(map[uuid.UUID]*model.SaleLine, len(sale.Lines))
	for i := range sale.Lines {
		lines[sale.Lines[i].ID] = &sale.Lines[i]
	}

	seen := make(map[uuid.UUID]bool, len(reqs))
	selections := make([]returnSelection, 0, len(reqs))
	total := decimal.Zero
	for _, r := range reqs {
		lineID, err := uuid.Parse(r.LineID)
		if err != nil {
			return nil, decimal.Zero, fmt.Errorf("%w: invalid line_id %q", ErrValidation, r.LineID)
		}
		if seen[lineID] {
			return nil, decimal.Zero, fmt.Errorf("%w: line %s selected twice", ErrValidation, lineID)
		}
		seen[lineID] = true

		line, ok := lines[lineID]
		if !ok {
			return nil, decimal.Zero, fmt.Errorf("%w: line %s not on sale", ErrValidation, lineID)
		}
		if r.Quantity > line.RemainingReturnable() {
			return nil, decimal.Zero, fmt.Errorf("%w: line %s has %d returnable units, got %d",
				ErrValidation, lineID, line.RemainingReturnable(), r.Quantity)
		}

		qty := decimal.NewFromInt(int64(r.Quantity))
		proportionalDiscount := line.Discount.Mul(qty).
			Div(decimal.NewFromInt(int64(line.Quantity))).Round(2)
		refund := line.UnitPrice.Mul(qty).Sub(proportionalDiscount).Round(2)

		selections = append(selections, returnSelection{lineID: lineID, quantity: r.Quantity, refund: refund})
		total = total.Add(refund)
	}

	if !total.IsPositive() {
		return nil, decimal.Zero, fmt.Errorf("%w: refund total must be positive", ErrValidation)
	}
	return selections, total, nil
}

func fullyReturned(lines []model.SaleLine) bool {
	for _, l := range lines {
		if l.RemainingReturnable() > 0 {
			return false
		}
	}
	return true
}
