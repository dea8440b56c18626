package dto

import (
	"github.com/shopspring/decimal"

	"coursepay/internal/model"
)

type AddToCartRequest struct {
	CourseID string `json:"courseId"`
}

// Action values for AddToCartResponse.
const (
	CartActionAdded    = "added"
	CartActionEnrolled = "enrolled"
)

type AddToCartResponse struct {
	Action   string          `json:"action"`
	CartItem *model.CartItem `json:"cartItem,omitempty"`
}

type AddToWishlistRequest struct {
	CourseID string `json:"courseId"`
}

type SyncWishlistRequest struct {
	CourseIDs []string `json:"courseIds"`
}

type CreateSnapshotRequest struct {
	CouponCode *string `json:"couponCode,omitempty"`
}

type PreviewRequest struct {
	CouponCode *string `json:"couponCode,omitempty"`
}

type CheckoutRequest struct {
	PaymentMethod model.PaymentMethod `json:"paymentMethod"`
}

type CheckoutResponse struct {
	// card checkout: where to send the buyer
	SessionURL string `json:"sessionUrl,omitempty"`
	// offline (and fully discounted) checkout
	Message   string `json:"message,omitempty"`
	Reference string `json:"reference"`
}

type CheckoutSuccessResponse struct {
	Enrollments  []*model.Enrollment  `json:"enrollments"`
	Transactions []*model.Transaction `json:"transactions"`
}

type CouponRequest struct {
	Code              string             `json:"code"`
	DiscountType      model.DiscountType `json:"discountType"`
	DiscountValue     decimal.Decimal    `json:"discountValue"`
	ValidFrom         string             `json:"validFrom"`
	ValidUntil        string             `json:"validUntil"`
	UsageLimit        *int               `json:"usageLimit,omitempty"`
	ApplicableCourses []string           `json:"applicableCourses,omitempty"`
	IsActive          *bool              `json:"isActive,omitempty"`
}

type ListResponse[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	// where the client should send the user next, when there is a sane place
	ReturnPath string `json:"returnPath,omitempty"`
}
