package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"coursepay/internal/dto"
	"coursepay/internal/model"
	"coursepay/internal/repository"
)

var (
	ErrCouponNotFound   = errors.New("coupon not found")
	ErrCouponInvalid    = errors.New("invalid coupon")
	ErrCouponCodeExists = errors.New("coupon code already exists")
)

type CouponService interface {
	Create(ctx context.Context, req *dto.CouponRequest) (*model.Coupon, error)
	Get(ctx context.Context, id uint) (*model.Coupon, error)
	List(ctx context.Context) ([]*model.Coupon, error)
	Update(ctx context.Context, id uint, req *dto.CouponRequest) (*model.Coupon, error)
	Delete(ctx context.Context, id uint) error
	// Resolve returns the canonical coupon record for a code. Checkout must
	// always price against this, never against a client-held copy.
	Resolve(ctx context.Context, code string) (*model.Coupon, error)
}

type couponServiceImpl struct {
	couponRepo repository.CouponRepository
}

func NewCouponService(couponRepo repository.CouponRepository) CouponService {
	return &couponServiceImpl{
		couponRepo: couponRepo,
	}
}

var oneHundred = decimal.NewFromInt(100)

func validateCouponRequest(req *dto.CouponRequest) (validFrom, validUntil time.Time, err error) {
	if req.Code == "" {
		return validFrom, validUntil, fmt.Errorf("%w: code is required", ErrCouponInvalid)
	}
	if req.DiscountType != model.DiscountPercentage && req.DiscountType != model.DiscountFixed {
		return validFrom, validUntil, fmt.Errorf("%w: unknown discount type %q", ErrCouponInvalid, req.DiscountType)
	}
	if req.DiscountValue.IsNegative() {
		return validFrom, validUntil, fmt.Errorf("%w: discount value must not be negative", ErrCouponInvalid)
	}
	if req.DiscountType == model.DiscountPercentage && req.DiscountValue.GreaterThan(oneHundred) {
		return validFrom, validUntil, fmt.Errorf("%w: percentage discount must not exceed 100", ErrCouponInvalid)
	}
	if req.UsageLimit != nil && *req.UsageLimit < 1 {
		return validFrom, validUntil, fmt.Errorf("%w: usage limit must be at least 1", ErrCouponInvalid)
	}

	validFrom, err = time.Parse(time.RFC3339, req.ValidFrom)
	if err != nil {
		return validFrom, validUntil, fmt.Errorf("%w: bad validFrom: %v", ErrCouponInvalid, err)
	}
	validUntil, err = time.Parse(time.RFC3339, req.ValidUntil)
	if err != nil {
		return validFrom, validUntil, fmt.Errorf("%w: bad validUntil: %v", ErrCouponInvalid, err)
	}
	if validUntil.Before(validFrom) {
		return validFrom, validUntil, fmt.Errorf("%w: validUntil before validFrom", ErrCouponInvalid)
	}

	return validFrom, validUntil, nil
}

func (s *couponServiceImpl) Create(ctx context.Context, req *dto.CouponRequest) (*model.Coupon, error) {
	validFrom, validUntil, err := validateCouponRequest(req)
	if err != nil {
		return nil, err
	}

	if _, err := s.couponRepo.FindByCode(ctx, req.Code); err == nil {
		return nil, ErrCouponCodeExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check coupon code: %w", err)
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	coupon := &model.Coupon{
		Code:              req.Code,
		DiscountType:      req.DiscountType,
		DiscountValue:     req.DiscountValue,
		ValidFrom:         validFrom,
		ValidUntil:        validUntil,
		UsageLimit:        req.UsageLimit,
		ApplicableCourses: req.ApplicableCourses,
		IsActive:          isActive,
	}
	if err := s.couponRepo.Create(ctx, coupon); err != nil {
		return nil, fmt.Errorf("store coupon: %w", err)
	}

	return coupon, nil
}

func (s *couponServiceImpl) Get(ctx context.Context, id uint) (*model.Coupon, error) {
	coupon, err := s.couponRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCouponNotFound
		}
		return nil, err
	}
	return coupon, nil
}

func (s *couponServiceImpl) List(ctx context.Context) ([]*model.Coupon, error) {
	return s.couponRepo.List(ctx)
}

func (s *couponServiceImpl) Update(ctx context.Context, id uint, req *dto.CouponRequest) (*model.Coupon, error) {
	validFrom, validUntil, err := validateCouponRequest(req)
	if err != nil {
		return nil, err
	}

	coupon, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Code != coupon.Code {
		if _, err := s.couponRepo.FindByCode(ctx, req.Code); err == nil {
			return nil, ErrCouponCodeExists
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("check coupon code: %w", err)
		}
	}

	coupon.Code = req.Code
	coupon.DiscountType = req.DiscountType
	coupon.DiscountValue = req.DiscountValue
	coupon.ValidFrom = validFrom
	coupon.ValidUntil = validUntil
	coupon.UsageLimit = req.UsageLimit
	coupon.ApplicableCourses = req.ApplicableCourses
	if req.IsActive != nil {
		coupon.IsActive = *req.IsActive
	}

	if err := s.couponRepo.Update(ctx, coupon); err != nil {
		return nil, fmt.Errorf("update coupon: %w", err)
	}

	return coupon, nil
}

func (s *couponServiceImpl) Delete(ctx context.Context, id uint) error {
	err := s.couponRepo.Delete(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrCouponNotFound
	}
	return err
}

func (s *couponServiceImpl) Resolve(ctx context.Context, code string) (*model.Coupon, error) {
	coupon, err := s.couponRepo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCouponNotFound
		}
		return nil, fmt.Errorf("resolve coupon: %w", err)
	}
	return coupon, nil
}
