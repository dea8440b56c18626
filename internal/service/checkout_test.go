package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coursepay/internal/client"
	"coursepay/internal/ledger"
	"coursepay/internal/model"
)

func ptr(s string) *string { return &s }

func (e *testEnv) fillCart(t *testing.T, userID string, courseIDs ...string) {
	t.Helper()
	for _, id := range courseIDs {
		_, err := e.cart.Add(context.Background(), userID, id)
		require.NoError(t, err)
	}
}

func TestSnapshotRequiresNonEmptyCart(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.checkout.CreateSnapshot(context.Background(), "user-1", nil)

	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestSubmitWithoutSnapshot(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.checkout.Submit(context.Background(), "user-1", model.PaymentCard)

	assert.ErrorIs(t, err, ErrNoSnapshot)
}

func TestCardCheckoutReturnsSessionURL(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedCourse(t, "go-foundations", 50)
	env.seedCourse(t, "sql-for-backends", 30)
	env.seedCoupon(t, percentCoupon("SAVE10", 10))
	env.fillCart(t, "user-1", "go-foundations", "sql-for-backends")

	_, err := env.checkout.CreateSnapshot(ctx, "user-1", ptr("SAVE10"))
	require.NoError(t, err)

	result, err := env.checkout.Submit(ctx, "user-1", model.PaymentCard)
	require.NoError(t, err)

	assert.Contains(t, result.SessionURL, "https://gateway.test/approve/")
	require.NotEmpty(t, result.Reference)

	txn := env.transactionByReference(t, result.Reference)
	assert.Equal(t, ledger.StatusPending.String(), txn.Status)
	assert.True(t, txn.OriginalAmount.Equal(decimal.NewFromInt(80)), "original = %s", txn.OriginalAmount)
	assert.True(t, txn.DiscountAmount.Equal(decimal.NewFromInt(8)), "discount = %s", txn.DiscountAmount)
	assert.True(t, txn.Amount.Equal(decimal.NewFromInt(72)), "amount = %s", txn.Amount)
	require.NotNil(t, txn.CouponCode)
	assert.Equal(t, "SAVE10", *txn.CouponCode)

	// the charge must be what the server computed
	require.Len(t, env.gateway.created, 1)
	assert.True(t, env.gateway.created[0].Amount.Equal(decimal.NewFromInt(72)))
}

func TestSubmitConsumesSnapshot(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedCourse(t, "go-foundations", 50)
	env.fillCart(t, "user-1", "go-foundations")

	_, err := env.checkout.CreateSnapshot(ctx, "user-1", nil)
	require.NoError(t, err)

	_, err = env.checkout.Submit(ctx, "user-1", model.PaymentCard)
	require.NoError(t, err)

	// a replayed submit finds no snapshot instead of charging twice
	_, err = env.checkout.Submit(ctx, "user-1", model.PaymentCard)
	assert.ErrorIs(t, err, ErrNoSnapshot)
}

func TestServerSidePriceIgnoresClientCoupon(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedCourse(t, "go-foundations", 50)
	env.fillCart(t, "user-1", "go-foundations")

	coupon := percentCoupon("SAVE50", 50)
	env.seedCoupon(t, coupon)

	_, err := env.checkout.CreateSnapshot(ctx, "user-1", ptr("SAVE50"))
	require.NoError(t, err)

	// the coupon record changes between snapshot and submit; the charge
	// follows the canonical record, not the snapshot's copy
	coupon.IsActive = false
	require.NoError(t, env.db.Save(coupon).Error)

	result, err := env.checkout.Submit(ctx, "user-1", model.PaymentCard)
	require.NoError(t, err)

	txn := env.transactionByReference(t, result.Reference)
	assert.True(t, txn.DiscountAmount.IsZero())
	assert.True(t, txn.Amount.Equal(decimal.NewFromInt(50)))
	assert.Nil(t, txn.CouponCode)
}

func TestOfflineCheckoutStaysPending(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedCourse(t, "go-foundations", 50)
	env.fillCart(t, "user-1", "go-foundations")

	_, err := env.checkout.CreateSnapshot(ctx, "user-1", nil)
	require.NoError(t, err)

	result, err := env.checkout.Submit(ctx, "user-1", model.PaymentOffline)
	require.NoError(t, err)

	assert.Empty(t, result.SessionURL)
	assert.NotEmpty(t, result.Message)

	txn := env.transactionByReference(t, result.Reference)
	assert.Equal(t, ledger.StatusPending.String(), txn.Status)

	enrolled, err := env.enrollments.IsEnrolled(ctx, "user-1", "go-foundations")
	require.NoError(t, err)
	assert.False(t, enrolled, "no access before the admin approves")
}

func TestFullyDiscountedCheckoutCompletesImmediately(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedCourse(t, "go-foundations", 50)
	env.seedCoupon(t, percentCoupon("FREEBIE", 100))
	env.fillCart(t, "user-1", "go-foundations")

	_, err := env.checkout.CreateSnapshot(ctx, "user-1", ptr("FREEBIE"))
	require.NoError(t, err)

	result, err := env.checkout.Submit(ctx, "user-1", model.PaymentCard)
	require.NoError(t, err)

	assert.Empty(t, result.SessionURL, "nothing to collect, no gateway round trip")
	assert.Empty(t, env.gateway.created)

	txn := env.transactionByReference(t, result.Reference)
	assert.Equal(t, ledger.StatusCompleted.String(), txn.Status)

	enrolled, err := env.enrollments.IsEnrolled(ctx, "user-1", "go-foundations")
	require.NoError(t, err)
	assert.True(t, enrolled)
}

func TestUnknownCouponRejectedAtSnapshot(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedCourse(t, "go-foundations", 50)
	env.fillCart(t, "user-1", "go-foundations")

	_, err := env.checkout.CreateSnapshot(ctx, "user-1", ptr("NO-SUCH-CODE"))

	assert.ErrorIs(t, err, ErrCouponNotFound)
}

func TestPreviewMatchesSubmitPricing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedCourse(t, "go-foundations", 50)
	env.seedCourse(t, "sql-for-backends", 30)
	env.seedCoupon(t, percentCoupon("SAVE10", 10))
	env.fillCart(t, "user-1", "go-foundations", "sql-for-backends")

	quote, err := env.checkout.Preview(ctx, "user-1", ptr("SAVE10"))
	require.NoError(t, err)

	_, err = env.checkout.CreateSnapshot(ctx, "user-1", ptr("SAVE10"))
	require.NoError(t, err)
	result, err := env.checkout.Submit(ctx, "user-1", model.PaymentCard)
	require.NoError(t, err)

	txn := env.transactionByReference(t, result.Reference)
	assert.True(t, quote.Total.Equal(txn.Amount), "preview %s vs charge %s", quote.Total, txn.Amount)
}

func TestConfirmSuccessCompletesPendingSession(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedCourse(t, "go-foundations", 50)
	env.fillCart(t, "user-1", "go-foundations")

	_, err := env.checkout.CreateSnapshot(ctx, "user-1", nil)
	require.NoError(t, err)
	result, err := env.checkout.Submit(ctx, "user-1", model.PaymentCard)
	require.NoError(t, err)

	// gateway settled but the webhook has not arrived yet
	env.gateway.sessionStatus = client.SessionStatusPaid

	success, err := env.checkout.ConfirmSuccess(ctx, "user-1", result.Reference)
	require.NoError(t, err)

	require.Len(t, success.Transactions, 1)
	assert.Equal(t, ledger.StatusCompleted.String(), success.Transactions[0].Status)
	require.Len(t, success.Enrollments, 1)
	assert.Equal(t, "go-foundations", success.Enrollments[0].CourseID)
}

func TestConfirmSuccessWhileGatewayStillOpen(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedCourse(t, "go-foundations", 50)
	env.fillCart(t, "user-1", "go-foundations")

	_, err := env.checkout.CreateSnapshot(ctx, "user-1", nil)
	require.NoError(t, err)
	result, err := env.checkout.Submit(ctx, "user-1", model.PaymentCard)
	require.NoError(t, err)

	env.gateway.sessionStatus = client.SessionStatusOpen

	_, err = env.checkout.ConfirmSuccess(ctx, "user-1", result.Reference)
	assert.ErrorIs(t, err, ErrVerificationPending)

	txn := env.transactionByReference(t, result.Reference)
	assert.Equal(t, ledger.StatusPending.String(), txn.Status)
}

func TestConfirmSuccessRejectsForeignTransaction(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedCourse(t, "go-foundations", 50)
	env.fillCart(t, "user-1", "go-foundations")

	_, err := env.checkout.CreateSnapshot(ctx, "user-1", nil)
	require.NoError(t, err)
	result, err := env.checkout.Submit(ctx, "user-1", model.PaymentCard)
	require.NoError(t, err)

	_, err = env.checkout.ConfirmSuccess(ctx, "user-2", result.Reference)
	assert.ErrorIs(t, err, ErrTransactionNotFound)
}
