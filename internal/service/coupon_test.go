package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coursepay/internal/dto"
	"coursepay/internal/model"
)

func couponRequest(code string) *dto.CouponRequest {
	return &dto.CouponRequest{
		Code:          code,
		DiscountType:  model.DiscountPercentage,
		DiscountValue: decimal.NewFromInt(10),
		ValidFrom:     "2026-01-01T00:00:00Z",
		ValidUntil:    "2026-12-31T23:59:59Z",
	}
}

func TestCreateCoupon(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	coupon, err := env.coupons.Create(ctx, couponRequest("SAVE10"))
	require.NoError(t, err)

	assert.Equal(t, "SAVE10", coupon.Code)
	assert.True(t, coupon.IsActive, "active unless the request says otherwise")
	assert.Zero(t, coupon.TimesUsed)
}

func TestCreateCouponValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*dto.CouponRequest)
	}{
		{"missing code", func(r *dto.CouponRequest) { r.Code = "" }},
		{"unknown discount type", func(r *dto.CouponRequest) { r.DiscountType = "BOGOF" }},
		{"negative value", func(r *dto.CouponRequest) { r.DiscountValue = decimal.NewFromInt(-5) }},
		{"percentage over 100", func(r *dto.CouponRequest) { r.DiscountValue = decimal.NewFromInt(150) }},
		{"zero usage limit", func(r *dto.CouponRequest) { limit := 0; r.UsageLimit = &limit }},
		{"garbled window", func(r *dto.CouponRequest) { r.ValidFrom = "next tuesday" }},
		{"window ends before it starts", func(r *dto.CouponRequest) {
			r.ValidFrom = "2026-06-01T00:00:00Z"
			r.ValidUntil = "2026-01-01T00:00:00Z"
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := couponRequest("BAD")
			tt.mutate(req)

			_, err := env.coupons.Create(ctx, req)
			assert.ErrorIs(t, err, ErrCouponInvalid)
		})
	}
}

func TestCreateCouponDuplicateCode(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.coupons.Create(ctx, couponRequest("SAVE10"))
	require.NoError(t, err)

	_, err = env.coupons.Create(ctx, couponRequest("SAVE10"))
	assert.ErrorIs(t, err, ErrCouponCodeExists)
}

func TestUpdateCoupon(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.coupons.Create(ctx, couponRequest("SAVE10"))
	require.NoError(t, err)

	req := couponRequest("SAVE10")
	req.DiscountValue = decimal.NewFromInt(25)
	inactive := false
	req.IsActive = &inactive

	updated, err := env.coupons.Update(ctx, created.ID, req)
	require.NoError(t, err)

	assert.True(t, updated.DiscountValue.Equal(decimal.NewFromInt(25)))
	assert.False(t, updated.IsActive)
}

func TestUpdateCouponToTakenCode(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.coupons.Create(ctx, couponRequest("SAVE10"))
	require.NoError(t, err)
	other, err := env.coupons.Create(ctx, couponRequest("SAVE20"))
	require.NoError(t, err)

	_, err = env.coupons.Update(ctx, other.ID, couponRequest("SAVE10"))
	assert.ErrorIs(t, err, ErrCouponCodeExists)
}

func TestDeleteCoupon(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.coupons.Create(ctx, couponRequest("SAVE10"))
	require.NoError(t, err)

	require.NoError(t, env.coupons.Delete(ctx, created.ID))

	_, err = env.coupons.Get(ctx, created.ID)
	assert.ErrorIs(t, err, ErrCouponNotFound)
}

func TestResolveUnknownCoupon(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.coupons.Resolve(context.Background(), "NO-SUCH-CODE")
	assert.ErrorIs(t, err, ErrCouponNotFound)
}
