package service

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"coursepay/internal/client"
	"coursepay/internal/ledger"
	"coursepay/internal/model"
	"coursepay/internal/repository"
)

var ErrTransactionNotFound = errors.New("transaction not found")

type TransactionService interface {
	Get(ctx context.Context, id uint) (*model.Transaction, error)
	List(ctx context.Context, status string, page, limit int) ([]*model.Transaction, int64, error)
	Stats(ctx context.Context) (*repository.TransactionStats, error)
	ExportCSV(ctx context.Context, w io.Writer) error

	// Approve is the admin path for offline payments: PENDING → COMPLETED.
	Approve(ctx context.Context, id uint) (*model.Transaction, error)
	// Refund is admin-only: COMPLETED → REFUNDED. Whether it also revokes
	// the granted enrollments is a deployment policy, not a ledger rule.
	Refund(ctx context.Context, id uint) (*model.Transaction, error)

	// Complete drives PENDING → COMPLETED with all side effects: enroll every
	// course on the transaction, consume the coupon, drop covered cart items.
	Complete(ctx context.Context, txn *model.Transaction, action ledger.Action) error
	// Fail drives PENDING → FAILED.
	Fail(ctx context.Context, txn *model.Transaction) error

	// HandleGatewayWebhook verifies, deduplicates and applies a gateway
	// confirmation callback.
	HandleGatewayWebhook(ctx context.Context, headers http.Header, body []byte) error
}

type transactionServiceImpl struct {
	db                  *gorm.DB
	gateway             client.GatewayClient
	transactionRepo     repository.TransactionRepository
	couponRepo          repository.CouponRepository
	gatewayEventRepo    repository.GatewayEventRepository
	enrollmentRepo      repository.EnrollmentRepository
	enrollments         EnrollmentService
	refundRevokesAccess bool
	log                 *zap.Logger
}

func NewTransactionService(
	db *gorm.DB,
	gateway client.GatewayClient,
	transactionRepo repository.TransactionRepository,
	couponRepo repository.CouponRepository,
	gatewayEventRepo repository.GatewayEventRepository,
	enrollmentRepo repository.EnrollmentRepository,
	enrollments EnrollmentService,
	refundRevokesAccess bool,
	log *zap.Logger,
) TransactionService {
	return &transactionServiceImpl{
		db:                  db,
		gateway:             gateway,
		transactionRepo:     transactionRepo,
		couponRepo:          couponRepo,
		gatewayEventRepo:    gatewayEventRepo,
		enrollmentRepo:      enrollmentRepo,
		enrollments:         enrollments,
		refundRevokesAccess: refundRevokesAccess,
		log:                 log,
	}
}

func (s *transactionServiceImpl) Get(ctx context.Context, id uint) (*model.Transaction, error) {
	txn, err := s.transactionRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return txn, nil
}

func (s *transactionServiceImpl) List(ctx context.Context, status string, page, limit int) ([]*model.Transaction, int64, error) {
	return s.transactionRepo.List(ctx, status, page, limit)
}

func (s *transactionServiceImpl) Stats(ctx context.Context) (*repository.TransactionStats, error) {
	return s.transactionRepo.Stats(ctx)
}

func (s *transactionServiceImpl) ExportCSV(ctx context.Context, w io.Writer) error {
	txns, err := s.transactionRepo.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("load transactions: %w", err)
	}

	cw := csv.NewWriter(w)
	header := []string{"reference", "user_id", "amount", "original_amount", "discount_amount", "coupon_code", "payment_method", "status", "created_at"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, txn := range txns {
		couponCode := ""
		if txn.CouponCode != nil {
			couponCode = *txn.CouponCode
		}
		record := []string{
			txn.Reference,
			txn.UserID,
			txn.Amount.StringFixed(2),
			txn.OriginalAmount.StringFixed(2),
			txn.DiscountAmount.StringFixed(2),
			couponCode,
			string(txn.PaymentMethod),
			txn.Status,
			txn.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv record: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func (s *transactionServiceImpl) Approve(ctx context.Context, id uint) (*model.Transaction, error) {
	txn, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.Complete(ctx, txn, ledger.ActionAdminApprove); err != nil {
		return nil, err
	}

	return s.Get(ctx, id)
}

func (s *transactionServiceImpl) Refund(ctx context.Context, id uint) (*model.Transaction, error) {
	txn, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	next, err := ledger.Next(ledger.Status(txn.Status), ledger.ActionAdminRefund, txn.PaymentMethod)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.transactionRepo.UpdateStatus(ctx, tx, txn.ID, txn.Status, next.String()); err != nil {
			return fmt.Errorf("mark transaction refunded: %w", err)
		}

		if !s.refundRevokesAccess {
			return nil
		}

		items, err := s.transactionRepo.GetItems(ctx, tx, txn.ID)
		if err != nil {
			return fmt.Errorf("get transaction items: %w", err)
		}
		courseIDs := make([]string, len(items))
		for i, item := range items {
			courseIDs[i] = item.CourseID
		}
		return s.enrollmentRepo.Delete(ctx, tx, txn.UserID, courseIDs)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("transaction refunded",
		zap.Uint("transaction_id", txn.ID),
		zap.String("reference", txn.Reference))

	return s.Get(ctx, id)
}

func (s *transactionServiceImpl) Complete(ctx context.Context, txn *model.Transaction, action ledger.Action) error {
	next, err := ledger.Next(ledger.Status(txn.Status), action, txn.PaymentMethod)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.transactionRepo.UpdateStatus(ctx, tx, txn.ID, txn.Status, next.String()); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// someone else completed it first; enrollment is idempotent
				// so there is nothing left to do
				s.log.Info("transaction already transitioned, skipping",
					zap.Uint("transaction_id", txn.ID))
				return nil
			}
			return fmt.Errorf("mark transaction completed: %w", err)
		}

		items, err := s.transactionRepo.GetItems(ctx, tx, txn.ID)
		if err != nil {
			return fmt.Errorf("get transaction items: %w", err)
		}
		courseIDs := make([]string, len(items))
		for i, item := range items {
			courseIDs[i] = item.CourseID
		}

		if err := s.enrollments.Activate(ctx, tx, txn.UserID, courseIDs); err != nil {
			return fmt.Errorf("activate enrollments: %w", err)
		}

		if txn.CouponCode != nil {
			if err := s.couponRepo.IncrementUsage(ctx, tx, *txn.CouponCode); err != nil {
				// the payment already went through; an exhausted counter is
				// not a reason to take the courses back
				s.log.Warn("could not consume coupon usage",
					zap.String("coupon_code", *txn.CouponCode),
					zap.Error(err))
			}
		}

		return nil
	})
}

func (s *transactionServiceImpl) Fail(ctx context.Context, txn *model.Transaction) error {
	next, err := ledger.Next(ledger.Status(txn.Status), ledger.ActionGatewayFail, txn.PaymentMethod)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.transactionRepo.UpdateStatus(ctx, tx, txn.ID, txn.Status, next.String())
	})
}

func (s *transactionServiceImpl) HandleGatewayWebhook(ctx context.Context, headers http.Header, body []byte) error {
	if err := s.gateway.VerifyWebhookSignature(ctx, headers, body); err != nil {
		return fmt.Errorf("verify webhook signature: %w", err)
	}

	var event model.GatewayWebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("decode webhook payload: %w", err)
	}

	processed, err := s.gatewayEventRepo.Exists(event.ID)
	if err != nil {
		return fmt.Errorf("check webhook event: %w", err)
	}
	if processed {
		s.log.Info("duplicate gateway event, skipping", zap.String("event_id", event.ID))
		return nil
	}

	txn, err := s.transactionRepo.FindByReference(ctx, event.Resource.Reference)
	if err != nil {
		return fmt.Errorf("find transaction %s: %w", event.Resource.Reference, err)
	}

	switch event.EventType {
	case model.GatewayEventSessionPaid:
		if err := s.Complete(ctx, txn, ledger.ActionGatewayConfirm); err != nil {
			return fmt.Errorf("complete transaction: %w", err)
		}
	case model.GatewayEventSessionFailed:
		if err := s.Fail(ctx, txn); err != nil {
			return fmt.Errorf("fail transaction: %w", err)
		}
	default:
		s.log.Info("unhandled gateway event type", zap.String("event_type", event.EventType))
	}

	return s.gatewayEventRepo.MarkProcessed(event.ID, event.EventType)
}
