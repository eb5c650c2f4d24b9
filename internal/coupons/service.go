package coupons

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/veloraworld/velora-backend/pkg/db"
	"github.com/veloraworld/velora-backend/pkg/db/models"
	pkgerrors "github.com/veloraworld/velora-backend/pkg/errors"
)

// CreateCouponInput is the admin payload for a new discount code.
type CreateCouponInput struct {
	Code        string `json:"code" validate:"required,min=3,max=32"`
	AmountCents int    `json:"amount_cents" validate:"required,gt=0"`
}

// Service validates codes at checkout and manages them from the console.
// Checkout never consumes a code; marking one used is an explicit console action.
type Service interface {
	Redeem(ctx context.Context, code string) (*models.Coupon, error)
	CreateCoupon(ctx context.Context, input CreateCouponInput) (*models.Coupon, error)
	ListCoupons(ctx context.Context) ([]models.Coupon, error)
	MarkUsed(ctx context.Context, code string) error
	DeleteCoupon(ctx context.Context, code string) error
}

type service struct {
	repo Repository
}

// NewService builds the coupon service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("coupons repository required")
	}
	return &service{repo: repo}, nil
}

// Redeem resolves a code for checkout. Unknown codes are a validation error,
// spent codes a conflict; the storefront surfaces both messages verbatim.
func (s *service) Redeem(ctx context.Context, code string) (*models.Coupon, error) {
	if strings.TrimSpace(code) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon code required")
	}

	coupon, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid coupon code")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load coupon")
	}
	if coupon.Used {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "coupon already used")
	}
	return coupon, nil
}

func (s *service) CreateCoupon(ctx context.Context, input CreateCouponInput) (*models.Coupon, error) {
	if input.AmountCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon amount must be positive")
	}
	created, err := s.repo.Create(ctx, &models.Coupon{
		Code:        input.Code,
		AmountCents: input.AmountCents,
	})
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "coupon code already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create coupon")
	}
	return created, nil
}

func (s *service) ListCoupons(ctx context.Context) ([]models.Coupon, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list coupons")
	}
	return rows, nil
}

func (s *service) MarkUsed(ctx context.Context, code string) error {
	if err := s.repo.MarkUsed(ctx, code); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found or already used")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark coupon used")
	}
	return nil
}

func (s *service) DeleteCoupon(ctx context.Context, code string) error {
	if err := s.repo.Delete(ctx, code); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete coupon")
	}
	return nil
}
