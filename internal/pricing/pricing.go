package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"coursepay/internal/model"
)

// Quote is the result of pricing a cart. Total is always Subtotal - Discount.
type Quote struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`
}

var oneHundred = decimal.NewFromInt(100)

// ComputeTotal prices a cart against an optional coupon. It is pure: the same
// inputs produce the same quote whether it runs as a preview or as the
// authoritative charge computation at checkout. The coupon must be the
// canonical record resolved by code server-side; a client-held copy is a
// display hint only.
func ComputeTotal(items []*model.CartItem, coupon *model.Coupon, now time.Time) Quote {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.CurrentPrice)
	}

	discount := decimal.Zero
	if couponApplies(items, coupon, now) {
		var raw decimal.Decimal
		if coupon.DiscountType == model.DiscountPercentage {
			raw = subtotal.Mul(coupon.DiscountValue).Div(oneHundred)
		} else {
			raw = coupon.DiscountValue
		}
		// never exceed the subtotal, never go negative
		discount = decimal.Min(raw, subtotal)
		if discount.IsNegative() {
			discount = decimal.Zero
		}
	}

	return Quote{
		Subtotal: subtotal,
		Discount: discount,
		Total:    subtotal.Sub(discount),
	}
}

func couponApplies(items []*model.CartItem, coupon *model.Coupon, now time.Time) bool {
	if coupon == nil || !coupon.IsActive {
		return false
	}
	if now.Before(coupon.ValidFrom) || now.After(coupon.ValidUntil) {
		return false
	}
	if coupon.UsageLimit != nil && coupon.TimesUsed >= *coupon.UsageLimit {
		return false
	}
	if len(coupon.ApplicableCourses) == 0 {
		return true
	}
	applicable := make(map[string]bool, len(coupon.ApplicableCourses))
	for _, id := range coupon.ApplicableCourses {
		applicable[id] = true
	}
	for _, item := range items {
		if applicable[item.CourseID] {
			return true
		}
	}
	return false
}
