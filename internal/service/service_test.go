package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"coursepay/internal/bus"
	"coursepay/internal/client"
	"coursepay/internal/model"
	"coursepay/internal/reconcile"
	"coursepay/internal/repository"
	"coursepay/internal/snapshot"
)

// fakeGateway stands in for the external payment provider.
type fakeGateway struct {
	mu            sync.Mutex
	sessionStatus string
	createErr     error
	created       []*client.CreateSessionRequest
}

func (f *fakeGateway) CreateCheckoutSession(ctx context.Context, req *client.CreateSessionRequest) (*client.CreateSessionResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, req)
	return &client.CreateSessionResponse{
		SessionID:  "sess-" + req.Reference,
		SessionURL: "https://gateway.test/approve/" + req.Reference,
	}, nil
}

func (f *fakeGateway) GetSessionStatus(ctx context.Context, sessionID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sessionStatus, nil
}

func (f *fakeGateway) VerifyWebhookSignature(ctx context.Context, headers http.Header, body []byte) error {
	return nil
}

type testEnv struct {
	db        *gorm.DB
	gateway   *fakeGateway
	snapshots snapshot.Store
	log       *zap.Logger

	courseRepo       repository.CourseRepository
	cartRepo         repository.CartRepository
	wishlistRepo     repository.WishlistRepository
	couponRepo       repository.CouponRepository
	transactionRepo  repository.TransactionRepository
	enrollmentRepo   repository.EnrollmentRepository
	gatewayEventRepo repository.GatewayEventRepository

	enrollments  EnrollmentService
	cart         CartService
	wishlist     WishlistService
	coupons      CouponService
	transactions TransactionService
	checkout     CheckoutService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, client.AutoMigrate(db))

	env := &testEnv{
		db:               db,
		gateway:          &fakeGateway{sessionStatus: client.SessionStatusOpen},
		snapshots:        snapshot.NewMemoryStore(time.Minute),
		log:              zap.NewNop(),
		courseRepo:       repository.NewCourseRepository(db),
		cartRepo:         repository.NewCartRepository(db),
		wishlistRepo:     repository.NewWishlistRepository(db),
		couponRepo:       repository.NewCouponRepository(db),
		transactionRepo:  repository.NewTransactionRepository(db),
		enrollmentRepo:   repository.NewEnrollmentRepository(db),
		gatewayEventRepo: repository.NewGatewayEventRepository(db),
	}

	log := env.log
	events := bus.New()

	env.enrollments = NewEnrollmentService(db, env.enrollmentRepo, env.cartRepo, events, log)
	env.cart = NewCartService(env.cartRepo, env.courseRepo, env.enrollmentRepo, env.enrollments, events)
	env.wishlist = NewWishlistService(
		env.wishlistRepo,
		reconcile.NewEngine(NewWishlistAdder(env.wishlistRepo), reconcile.ClearAlways, log),
		events,
	)
	env.coupons = NewCouponService(env.couponRepo)
	env.transactions = NewTransactionService(
		db, env.gateway,
		env.transactionRepo,
		env.couponRepo,
		env.gatewayEventRepo,
		env.enrollmentRepo,
		env.enrollments,
		false,
		log,
	)
	env.checkout = NewCheckoutService(
		db, env.gateway, env.snapshots,
		env.cartRepo,
		env.transactionRepo,
		env.enrollmentRepo,
		env.coupons,
		env.transactions,
		"http://localhost:8080",
		log,
	)

	return env
}

func (e *testEnv) seedCourse(t *testing.T, id string, price int64) {
	t.Helper()
	require.NoError(t, e.db.Create(&model.Course{
		ID:    id,
		Title: id,
		Price: decimal.NewFromInt(price),
	}).Error)
}

func (e *testEnv) seedCoupon(t *testing.T, coupon *model.Coupon) {
	t.Helper()
	require.NoError(t, e.db.Create(coupon).Error)
}

func (e *testEnv) transactionByReference(t *testing.T, reference string) *model.Transaction {
	t.Helper()
	txn, err := e.transactionRepo.FindByReference(context.Background(), reference)
	require.NoError(t, err)
	return txn
}

func percentCoupon(code string, value int64) *model.Coupon {
	return &model.Coupon{
		Code:          code,
		DiscountType:  model.DiscountPercentage,
		DiscountValue: decimal.NewFromInt(value),
		ValidFrom:     time.Now().Add(-time.Hour),
		ValidUntil:    time.Now().Add(time.Hour),
		IsActive:      true,
	}
}
