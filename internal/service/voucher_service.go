package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/firatemu/nuviabutik/internal/dto"
	"github.com/firatemu/nuviabutik/internal/metrics"
	"github.com/firatemu/nuviabutik/internal/model"
	"github.com/firatemu/nuviabutik/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// VoucherService manages store-credit vouchers. Vouchers enter circulation
// two ways: issued by the return engine (refunds are never paid in cash) or
// sold over the counter.
type VoucherService interface {
	Issue(ctx context.Context, actor string, req dto.IssueVoucherRequest) (*dto.VoucherResponse, error)

	// IssueTx persists an already-built voucher inside the caller's
	// transaction (the return engine issues atomically with the return).
	IssueTx(tx *gorm.DB, v *model.Voucher) error

	// RedeemTx draws amount from the voucher inside the caller's transaction.
	// ErrVoucherInvalid covers not-found, inactive, expired and short balance.
	RedeemTx(tx *gorm.DB, code string, amount decimal.Decimal, saleID *uuid.UUID, actor string) error

	// CreditTx restores amount to a voucher (sale cancellation reverses the
	// redemption). An exhausted voucher becomes active again.
	CreditTx(tx *gorm.DB, code string, amount decimal.Decimal, saleID *uuid.UUID, actor string) error

	Balance(ctx context.Context, code string) (*dto.VoucherResponse, error)

	// NewVoucher builds an unsaved voucher with a fresh code and the
	// configured validity window.
	NewVoucher(amount decimal.Decimal, customerID, reference *uuid.UUID, issuedBy string) *model.Voucher
}

type voucherService struct {
	repo         repository.VoucherRepository
	validityDays int
}

func NewVoucherService(repo repository.VoucherRepository, validityDays int) VoucherService {
	if validityDays <= 0 {
		validityDays = 365
	}
	return &voucherService{repo: repo, validityDays: validityDays}
}

// newVoucherCode builds a 16-char code: GV + YYMMDD + 8 random hex chars.
func newVoucherCode(at time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
	return "GV" + at.Format("060102") + suffix
}

func (s *voucherService) NewVoucher(amount decimal.Decimal, customerID, reference *uuid.UUID, issuedBy string) *model.Voucher {
	now := time.Now()
	return &model.Voucher{
		Code:             newVoucherCode(now),
		Amount:           amount,
		RemainingBalance: amount,
		Status:           model.VoucherActive,
		CustomerID:       customerID,
		Reference:        reference,
		IssuedBy:         issuedBy,
		ExpiresAt:        now.AddDate(0, 0, s.validityDays),
	}
}

func (s *voucherService) Issue(ctx context.Context, actor string, req dto.IssueVoucherRequest) (*dto.VoucherResponse, error) {
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", ErrValidation)
	}

	var customerID *uuid.UUID
	if req.CustomerID != nil {
		id, err := uuid.Parse(*req.CustomerID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid customer_id", ErrValidation)
		}
		customerID = &id
	}

	voucher := s.NewVoucher(req.Amount, customerID, nil, actor)
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		return s.IssueTx(tx, voucher)
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("code", voucher.Code).
		Str("amount", voucher.Amount.String()).
		Str("actor", actor).
		Msg("voucher issued over the counter")
	return voucherToResponse(voucher), nil
}

func (s *voucherService) IssueTx(tx *gorm.DB, v *model.Voucher) error {
	if err := s.repo.CreateTx(tx, v); err != nil {
		return err
	}
	metrics.VouchersIssued.Inc()
	return nil
}

func (s *voucherService) RedeemTx(tx *gorm.DB, code string, amount decimal.Decimal, saleID *uuid.UUID, actor string) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: redemption amount must be positive", ErrValidation)
	}

	v, err := s.repo.FindByCodeForUpdateTx(tx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: code %s not found", ErrVoucherInvalid, code)
		}
		return err
	}
	now := time.Now()
	if !v.Usable(now) {
		return fmt.Errorf("%w: code %s is %s", ErrVoucherInvalid, code, v.Status)
	}
	if amount.GreaterThan(v.RemainingBalance) {
		return fmt.Errorf("%w: balance %s short of %s", ErrVoucherInvalid, v.RemainingBalance, amount)
	}

	v.RemainingBalance = v.RemainingBalance.Sub(amount)
	if v.RemainingBalance.IsZero() {
		v.Status = model.VoucherExhausted
		v.UsedAt = &now
	}
	if err := s.repo.UpdateTx(tx, v); err != nil {
		return err
	}
	if err := s.repo.CreateUseTx(tx, &model.VoucherUse{
		VoucherID: v.ID,
		Amount:    amount,
		SaleID:    saleID,
		Actor:     actor,
	}); err != nil {
		return err
	}

	metrics.VouchersRedeemed.Inc()
	return nil
}

func (s *voucherService) CreditTx(tx *gorm.DB, code string, amount decimal.Decimal, saleID *uuid.UUID, actor string) error {
	v, err := s.repo.FindByCodeForUpdateTx(tx, code)
	if err != nil {
		return err
	}

	v.RemainingBalance = v.RemainingBalance.Add(amount)
	if v.Status == model.VoucherExhausted {
		v.Status = model.VoucherActive
		v.UsedAt = nil
	}
	if err := s.repo.UpdateTx(tx, v); err != nil {
		return err
	}
	// Negative use row keeps the redemption history additive.
	return s.repo.CreateUseTx(tx, &model.VoucherUse{
		VoucherID: v.ID,
		Amount:    amount.Neg(),
		SaleID:    saleID,
		Actor:     actor,
	})
}

func (s *voucherService) Balance(ctx context.Context, code string) (*dto.VoucherResponse, error) {
	v, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	// Report expiry even before the sweep marks it.
	if v.Status == model.VoucherActive && time.Now().After(v.ExpiresAt) {
		v.Status = model.VoucherExpired
	}
	return voucherToResponse(v), nil
}

func voucherToResponse(v *model.Voucher) *dto.VoucherResponse {
	uses := make([]dto.VoucherUseResponse, 0, len(v.Uses))
	for _, u := range v.Uses {
		var saleID *string
		if u.SaleID != nil {
			s := u.SaleID.String()
			saleID = &s
		}
		uses = append(uses, dto.VoucherUseResponse{
			Amount:    u.Amount,
			SaleID:    saleID,
			Actor:     u.Actor,
			CreatedAt: u.CreatedAt.Format("2006-01-02T15:04:05Z"),
		})
	}
	return &dto.VoucherResponse{
		ID:               v.ID.String(),
		Code:             v.Code,
		Amount:           v.Amount,
		RemainingBalance: v.RemainingBalance,
		Status:           string(v.Status),
		ExpiresAt:        v.ExpiresAt.Format("2006-01-02"),
		Uses:             uses,
	}
}
