package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Course struct {
	ID    string          `gorm:"primaryKey;size:64;not null"` // course slug
	Title string          `gorm:"size:255;not null"`
	Price decimal.Decimal `gorm:"type:decimal(10,2);not null"` // 0 = free course
}

type CartItem struct {
	ID     string `gorm:"primaryKey;size:36;not null"` // uuid
	UserID string `gorm:"size:64;uniqueIndex:idx_cart_user_course;not null"`
	// FK → course.id
	CourseID string `gorm:"size:64;uniqueIndex:idx_cart_user_course;not null"`
	// price at the time the item entered the cart
	Price decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	// price the catalog currently lists; this is what checkout charges
	CurrentPrice decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	CreatedAt    time.Time
}

type WishlistItem struct {
	UserID    string `gorm:"primaryKey;size:64;not null"`
	CourseID  string `gorm:"primaryKey;size:64;not null"`
	CreatedAt time.Time
}

type DiscountType string

const (
	DiscountPercentage DiscountType = "PERCENTAGE"
	DiscountFixed      DiscountType = "FIXED"
)

type Coupon struct {
	ID            uint            `gorm:"primaryKey"`
	Code          string          `gorm:"size:64;uniqueIndex;not null"`
	DiscountType  DiscountType    `gorm:"size:16;not null"`
	DiscountValue decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	ValidFrom     time.Time       `gorm:"not null"`
	ValidUntil    time.Time       `gorm:"not null"`
	// nil = unlimited
	UsageLimit *int `gorm:""`
	TimesUsed  int  `gorm:"not null;default:0"`
	// empty = applies to every course
	ApplicableCourses []string `gorm:"serializer:json"`
	IsActive          bool     `gorm:"not null;default:true"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type PaymentMethod string

const (
	PaymentCard    PaymentMethod = "card"
	PaymentOffline PaymentMethod = "offline"
)

type Transaction struct {
	ID        uint   `gorm:"primaryKey"`
	Reference string `gorm:"size:36;uniqueIndex;not null"` // server-issued uuid
	UserID    string `gorm:"size:64;index;not null"`
	// amount actually charged (original - discount)
	Amount         decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	OriginalAmount decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	CouponCode     *string         `gorm:"size:64"`
	PaymentMethod  PaymentMethod   `gorm:"size:16;not null"`
	Status         string          `gorm:"size:16;index;not null"` // PENDING, COMPLETED, FAILED, REFUNDED
	// gateway checkout session backing this attempt, empty for offline
	GatewaySessionID string `gorm:"size:128;index"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type TransactionItem struct {
	ID uint `gorm:"primaryKey"`
	// FK → transaction.id
	TransactionID uint `gorm:"index;not null"`
	// FK → course.id
	CourseID  string          `gorm:"size:64;index;not null"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	CreatedAt time.Time
}

type Enrollment struct {
	UserID             string `gorm:"primaryKey;size:64;not null"`
	CourseID           string `gorm:"primaryKey;size:64;not null"`
	EnrolledAt         time.Time
	ProgressPercentage int `gorm:"not null;default:0"`
}

type GatewayEvent struct {
	EventID     string `gorm:"primaryKey;size:128;uniqueIndex;not null"`
	EventType   string `gorm:"size:64;index"`
	ProcessedAt time.Time
	CreatedAt   time.Time
}
