package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"coursepay/internal/client"
	"coursepay/internal/dto"
	"coursepay/internal/ledger"
	"coursepay/internal/model"
	"coursepay/internal/pricing"
	"coursepay/internal/repository"
	"coursepay/internal/snapshot"
)

var (
	// ErrNoSnapshot routes the user back to the cart: checkout state expired
	// or was never created.
	ErrNoSnapshot = snapshot.ErrNotFound
	ErrEmptyCart  = errors.New("cart is empty")
	// ErrCheckoutInFlight rejects a second submission while one is
	// outstanding for the same session.
	ErrCheckoutInFlight = errors.New("checkout already in progress")
	// ErrVerificationPending means the gateway has not settled the session
	// yet; the client shows the dedicated error view, never retries silently.
	ErrVerificationPending = errors.New("payment not yet confirmed by gateway")
	ErrPaymentFailed       = errors.New("payment declared failed by gateway")
	ErrBadPaymentMethod    = errors.New("unknown payment method")
)

type CheckoutService interface {
	// CreateSnapshot captures the user's current cart and chosen coupon as
	// the per-session checkout state.
	CreateSnapshot(ctx context.Context, userID string, couponCode *string) (*snapshot.Snapshot, error)
	GetSnapshot(ctx context.Context, userID string) (*snapshot.Snapshot, error)
	// Preview prices the current cart the same way Submit will; it is a
	// display hint and commits nothing.
	Preview(ctx context.Context, userID string, couponCode *string) (*pricing.Quote, error)
	Submit(ctx context.Context, userID string, method model.PaymentMethod) (*dto.CheckoutResponse, error)
	// ConfirmSuccess re-verifies the transaction by its server-issued
	// reference. The session_id query parameter the buyer arrives with is
	// never trusted for status.
	ConfirmSuccess(ctx context.Context, userID, reference string) (*dto.CheckoutSuccessResponse, error)
}

type checkoutServiceImpl struct {
	db              *gorm.DB
	gateway         client.GatewayClient
	snapshots       snapshot.Store
	cartRepo        repository.CartRepository
	transactionRepo repository.TransactionRepository
	enrollmentRepo  repository.EnrollmentRepository
	coupons         CouponService
	transactions    TransactionService
	baseURL         string
	log             *zap.Logger

	mu       sync.Mutex
	inFlight map[string]bool
}

func NewCheckoutService(
	db *gorm.DB,
	gateway client.GatewayClient,
	snapshots snapshot.Store,
	cartRepo repository.CartRepository,
	transactionRepo repository.TransactionRepository,
	enrollmentRepo repository.EnrollmentRepository,
	coupons CouponService,
	transactions TransactionService,
	baseURL string,
	log *zap.Logger,
) CheckoutService {
	return &checkoutServiceImpl{
		db:              db,
		gateway:         gateway,
		snapshots:       snapshots,
		cartRepo:        cartRepo,
		transactionRepo: transactionRepo,
		enrollmentRepo:  enrollmentRepo,
		coupons:         coupons,
		transactions:    transactions,
		baseURL:         baseURL,
		log:             log,
		inFlight:        make(map[string]bool),
	}
}

func (s *checkoutServiceImpl) CreateSnapshot(ctx context.Context, userID string, couponCode *string) (*snapshot.Snapshot, error) {
	items, err := s.cartRepo.FindByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	coupon, err := s.resolveCoupon(ctx, couponCode)
	if err != nil {
		return nil, err
	}

	quote := pricing.ComputeTotal(items, coupon, time.Now())

	snap := &snapshot.Snapshot{
		ID:            uuid.NewString(),
		UserID:        userID,
		CartItems:     items,
		CartTotal:     quote.Total,
		AppliedCoupon: couponCode,
		CreatedAt:     time.Now(),
	}
	if err := s.snapshots.Save(ctx, snap); err != nil {
		return nil, fmt.Errorf("save snapshot: %w", err)
	}

	return snap, nil
}

func (s *checkoutServiceImpl) GetSnapshot(ctx context.Context, userID string) (*snapshot.Snapshot, error) {
	return s.snapshots.Load(ctx, userID)
}

func (s *checkoutServiceImpl) Preview(ctx context.Context, userID string, couponCode *string) (*pricing.Quote, error) {
	items, err := s.cartRepo.FindByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}

	coupon, err := s.resolveCoupon(ctx, couponCode)
	if err != nil {
		return nil, err
	}

	quote := pricing.ComputeTotal(items, coupon, time.Now())
	return &quote, nil
}

func (s *checkoutServiceImpl) resolveCoupon(ctx context.Context, couponCode *string) (*model.Coupon, error) {
	if couponCode == nil || *couponCode == "" {
		return nil, nil
	}
	return s.coupons.Resolve(ctx, *couponCode)
}

func (s *checkoutServiceImpl) Submit(ctx context.Context, userID string, method model.PaymentMethod) (*dto.CheckoutResponse, error) {
	if method != model.PaymentCard && method != model.PaymentOffline {
		return nil, ErrBadPaymentMethod
	}

	if !s.claim(userID) {
		return nil, ErrCheckoutInFlight
	}
	defer s.release(userID)

	snap, err := s.snapshots.Load(ctx, userID)
	if err != nil {
		return nil, err
	}

	// cart rows are reloaded from the database: the snapshot only tells us
	// WHICH items the user is buying, the server decides what they cost
	itemIDs := make([]string, len(snap.CartItems))
	for i, item := range snap.CartItems {
		itemIDs[i] = item.ID
	}
	items, err := s.cartRepo.FindByIDs(ctx, userID, itemIDs)
	if err != nil {
		return nil, fmt.Errorf("reload cart items: %w", err)
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	// the coupon is re-resolved by code; the snapshot's copy is advisory
	coupon, err := s.resolveCoupon(ctx, snap.AppliedCoupon)
	if err != nil {
		return nil, err
	}

	quote := pricing.ComputeTotal(items, coupon, time.Now())

	reference := uuid.NewString()
	txn := &model.Transaction{
		Reference:      reference,
		UserID:         userID,
		Amount:         quote.Total,
		OriginalAmount: quote.Subtotal,
		DiscountAmount: quote.Discount,
		CouponCode:     snap.AppliedCoupon,
		PaymentMethod:  method,
		Status:         ledger.StatusPending.String(),
	}
	if coupon == nil || quote.Discount.IsZero() {
		txn.CouponCode = nil
	}

	var sessionURL string
	if method == model.PaymentCard && quote.Total.IsPositive() {
		resp, err := s.gateway.CreateCheckoutSession(ctx, &client.CreateSessionRequest{
			Reference:  reference,
			Amount:     quote.Total,
			Currency:   "USD",
			SuccessURL: fmt.Sprintf("%s/api/checkout/success?transaction_id=%s", s.baseURL, reference),
			CancelURL:  fmt.Sprintf("%s/cart", s.baseURL),
		})
		if err != nil {
			return nil, fmt.Errorf("gateway create session: %w", err)
		}
		txn.GatewaySessionID = resp.SessionID
		sessionURL = resp.SessionURL
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.transactionRepo.Create(ctx, tx, txn); err != nil {
			return fmt.Errorf("store transaction: %w", err)
		}

		txnItems := make([]*model.TransactionItem, len(items))
		for i, item := range items {
			txnItems[i] = &model.TransactionItem{
				TransactionID: txn.ID,
				CourseID:      item.CourseID,
				Price:         item.CurrentPrice,
			}
		}
		return s.transactionRepo.CreateItems(ctx, tx, txnItems)
	})
	if err != nil {
		return nil, err
	}

	// the snapshot is consumed on successful submission; a replayed submit
	// finds nothing and is routed back to the cart instead of charging twice
	if _, err := s.snapshots.Delete(ctx, userID); err != nil {
		s.log.Warn("could not consume checkout snapshot",
			zap.String("user_id", userID),
			zap.Error(err))
	}

	if method == model.PaymentCard && quote.Total.IsPositive() {
		return &dto.CheckoutResponse{SessionURL: sessionURL, Reference: reference}, nil
	}

	// offline payment awaits an admin approval; a fully discounted cart has
	// nothing left to collect and completes on the spot
	if quote.Total.IsZero() {
		if err := s.transactions.Complete(ctx, txn, ledger.ActionGatewayConfirm); err != nil {
			return nil, fmt.Errorf("complete zero-amount transaction: %w", err)
		}
		return &dto.CheckoutResponse{
			Message:   "payment complete, courses unlocked",
			Reference: reference,
		}, nil
	}

	return &dto.CheckoutResponse{
		Message:   "order received, awaiting offline payment confirmation",
		Reference: reference,
	}, nil
}

func (s *checkoutServiceImpl) ConfirmSuccess(ctx context.Context, userID, reference string) (*dto.CheckoutSuccessResponse, error) {
	txn, err := s.transactionRepo.FindByReference(ctx, reference)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("find transaction: %w", err)
	}
	if txn.UserID != userID {
		return nil, ErrTransactionNotFound
	}

	// the success page can load before (or long after) the gateway webhook
	// lands; when the transaction is still pending, ask the gateway directly
	if txn.Status == ledger.StatusPending.String() && txn.GatewaySessionID != "" {
		status, err := s.gateway.GetSessionStatus(ctx, txn.GatewaySessionID)
		if err != nil {
			return nil, fmt.Errorf("gateway session status: %w", err)
		}

		switch status {
		case client.SessionStatusPaid:
			if err := s.transactions.Complete(ctx, txn, ledger.ActionGatewayConfirm); err != nil {
				return nil, fmt.Errorf("complete transaction: %w", err)
			}
		case client.SessionStatusFailed:
			if err := s.transactions.Fail(ctx, txn); err != nil {
				return nil, fmt.Errorf("fail transaction: %w", err)
			}
			return nil, ErrPaymentFailed
		default:
			return nil, ErrVerificationPending
		}
	}

	enrollments, err := s.enrollmentRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}

	txn, err = s.transactionRepo.FindByReference(ctx, reference)
	if err != nil {
		return nil, fmt.Errorf("reload transaction: %w", err)
	}

	return &dto.CheckoutSuccessResponse{
		Enrollments:  enrollments,
		Transactions: []*model.Transaction{txn},
	}, nil
}

func (s *checkoutServiceImpl) claim(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight[userID] {
		return false
	}
	s.inFlight[userID] = true
	return true
}

func (s *checkoutServiceImpl) release(userID string) {
	s.mu.Lock()
	delete(s.inFlight, userID)
	s.mu.Unlock()
}
