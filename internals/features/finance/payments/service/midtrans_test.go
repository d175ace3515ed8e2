package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/midtrans/midtrans-go/snap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"educenter_backend/internals/constants"
	model "educenter_backend/internals/features/finance/payments/model"
)

const testServerKey = "SB-Mid-server-test"

func withGateway(t *testing.T) {
	t.Helper()
	InitMidtrans(testServerKey, false)
	orig := createTransaction
	createTransaction = func(req *snap.Request) (*snap.Response, error) {
		return &snap.Response{Token: "snap-token", RedirectURL: "https://app.sandbox.midtrans.com/snap/v2/vtweb/snap-token"}, nil
	}
	t.Cleanup(func() {
		createTransaction = orig
		InitMidtrans("", false)
	})
}

func signed(n Notification) Notification {
	n.SignatureKey = Signature(n, testServerKey)
	return n
}

func TestSignature(t *testing.T) {
	withGateway(t)

	n := signed(Notification{OrderID: "tuition-1", StatusCode: "200", GrossAmount: "100000.00"})
	assert.Len(t, n.SignatureKey, 128)
	assert.True(t, VerifySignature(n))

	n.SignatureKey = strings.ToUpper(n.SignatureKey)
	assert.True(t, VerifySignature(n))

	n.GrossAmount = "1.00"
	assert.False(t, VerifySignature(n))
}

func TestIsSettled(t *testing.T) {
	assert.True(t, Notification{TransactionStatus: "settlement"}.IsSettled())
	assert.True(t, Notification{TransactionStatus: "capture", FraudStatus: "accept"}.IsSettled())
	assert.False(t, Notification{TransactionStatus: "capture", FraudStatus: "challenge"}.IsSettled())
	assert.False(t, Notification{TransactionStatus: "pending"}.IsSettled())
}

func TestCheckout_GatewayDisabled(t *testing.T) {
	InitMidtrans("", false)
	f := newFixture(t, 100)
	_, err := Checkout(context.Background(), f.db, f.group.GroupID)
	assert.ErrorIs(t, err, ErrGatewayDisabled)
}

func TestCheckoutAndNotification(t *testing.T) {
	withGateway(t)
	f := newFixture(t, 100)
	ctx := context.Background()
	f.mark(t, f.student.ID, "2024-03-05", true, "")

	_, err := CalculateMonthly(ctx, f.db, "2024-03")
	require.NoError(t, err)
	p := f.row(t, f.student.ID, "2024-03")

	co, err := Checkout(ctx, f.db, p.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, "snap-token", co.Token)
	assert.Equal(t, 100.0, co.Amount)
	id, ok := PaymentIDFromOrder(co.OrderID)
	require.True(t, ok)
	assert.Equal(t, p.PaymentID, id)

	n := signed(Notification{
		TransactionStatus: "settlement",
		StatusCode:        "200",
		OrderID:           co.OrderID,
		GrossAmount:       "100.00",
	})

	res, err := HandleNotification(ctx, f.db, n, nil)
	require.NoError(t, err)
	assert.Equal(t, "processed", res.Status)
	assert.Equal(t, 0.0, res.Payment.PaymentDebtAmount)
	assert.Equal(t, constants.PaymentPaid, res.Payment.PaymentStatus)

	// notifikasi ulang tidak membukukan dua kali
	res, err = HandleNotification(ctx, f.db, n, nil)
	require.NoError(t, err)
	assert.Equal(t, "duplicate", res.Status)

	after := f.row(t, f.student.ID, "2024-03")
	assert.Equal(t, 100.0, after.PaymentAmount)
	assert.Equal(t, 0.0, f.balance(t, f.student.ID))

	var events, receipts int64
	require.NoError(t, f.db.Model(&model.PaymentGatewayEventModel{}).Count(&events).Error)
	assert.Equal(t, int64(1), events)
	require.NoError(t, f.db.Model(&model.PaymentReceiptModel{}).Count(&receipts).Error)
	assert.Equal(t, int64(1), receipts)

	_, err = Checkout(ctx, f.db, p.PaymentID)
	assert.ErrorIs(t, err, ErrNothingToPay)
}

func TestHandleNotification_IgnoredAndInvalid(t *testing.T) {
	withGateway(t)
	f := newFixture(t, 100)
	ctx := context.Background()

	_, err := HandleNotification(ctx, f.db, Notification{OrderID: "x", SignatureKey: "bad"}, nil)
	assert.ErrorIs(t, err, ErrInvalidSignature)

	res, err := HandleNotification(ctx, f.db, signed(Notification{
		TransactionStatus: "settlement",
		StatusCode:        "200",
		OrderID:           "tuition-unknown",
		GrossAmount:       "10.00",
	}), []byte(`{"order_id":"tuition-unknown"}`))
	require.NoError(t, err)
	assert.Equal(t, "ignored", res.Status)
}

func TestOrderID(t *testing.T) {
	id := uuid.New()
	at := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)

	order := OrderID(id, at)
	assert.LessOrEqual(t, len(order), 50)
	got, ok := PaymentIDFromOrder(order)
	require.True(t, ok)
	assert.Equal(t, id, got)

	for _, bad := range []string{"", "tuition-unknown", "tu-xyz-1", "tu-" + id.String()} {
		_, ok := PaymentIDFromOrder(bad)
		assert.False(t, ok, bad)
	}
}

func settlement(order, gross string) Notification {
	return signed(Notification{
		TransactionStatus: "settlement",
		StatusCode:        "200",
		OrderID:           order,
		GrossAmount:       gross,
	})
}

func countReceipts(t *testing.T, f *fixture) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&model.PaymentReceiptModel{}).Count(&n).Error)
	return n
}

// checkout dibuka dua kali, siswa membayar order yang pertama
func TestNotification_EarlierCheckoutStillPosts(t *testing.T) {
	withGateway(t)
	f := newFixture(t, 100)
	ctx := context.Background()
	f.mark(t, f.student.ID, "2024-03-05", true, "")
	_, err := CalculateMonthly(ctx, f.db, "2024-03")
	require.NoError(t, err)
	p := f.row(t, f.student.ID, "2024-03")

	first, err := Checkout(ctx, f.db, p.PaymentID)
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)
	second, err := Checkout(ctx, f.db, p.PaymentID)
	require.NoError(t, err)
	require.NotEqual(t, first.OrderID, second.OrderID)

	res, err := HandleNotification(ctx, f.db, settlement(first.OrderID, "100.00"), nil)
	require.NoError(t, err)
	assert.Equal(t, "processed", res.Status)

	after := f.row(t, f.student.ID, "2024-03")
	assert.Equal(t, 0.0, after.PaymentDebtAmount)
	assert.Equal(t, constants.PaymentPaid, after.PaymentStatus)

	var rc model.PaymentReceiptModel
	require.NoError(t, f.db.First(&rc, "receipt_payment_id = ?", p.PaymentID).Error)
	assert.Equal(t, constants.ReceiptGateway, rc.ReceiptSource)
	require.NotNil(t, rc.ReceiptOrderID)
	assert.Equal(t, first.OrderID, *rc.ReceiptOrderID)
}

func TestNotification_RetryAfterFailedEvent(t *testing.T) {
	withGateway(t)
	f := newFixture(t, 100)
	ctx := context.Background()
	f.mark(t, f.student.ID, "2024-03-05", true, "")
	_, err := CalculateMonthly(ctx, f.db, "2024-03")
	require.NoError(t, err)
	p := f.row(t, f.student.ID, "2024-03")
	order := OrderID(p.PaymentID, time.Now())

	// percobaan sebelumnya gagal dan tercatat failed
	msg := "db down"
	require.NoError(t, f.db.Create(&model.PaymentGatewayEventModel{
		GatewayEventOrderID:   order,
		GatewayEventPaymentID: &p.PaymentID,
		GatewayEventStatus:    "failed",
		GatewayEventError:     &msg,
	}).Error)

	res, err := HandleNotification(ctx, f.db, settlement(order, "60.00"), nil)
	require.NoError(t, err)
	assert.Equal(t, "processed", res.Status)
	assert.Equal(t, 40.0, res.Payment.PaymentDebtAmount)

	for i := 0; i < 2; i++ {
		res, err = HandleNotification(ctx, f.db, settlement(order, "60.00"), nil)
		require.NoError(t, err)
		assert.Equal(t, "duplicate", res.Status)
	}

	// status lain setelah processed tidak menurunkan event
	res, err = HandleNotification(ctx, f.db, signed(Notification{
		TransactionStatus: "pending",
		StatusCode:        "201",
		OrderID:           order,
		GrossAmount:       "60.00",
	}), nil)
	require.NoError(t, err)
	assert.Equal(t, "ignored", res.Status)

	var ev model.PaymentGatewayEventModel
	require.NoError(t, f.db.First(&ev, "gateway_event_order_id = ?", order).Error)
	assert.Equal(t, "processed", ev.GatewayEventStatus)
	assert.Nil(t, ev.GatewayEventError)

	assert.Equal(t, int64(1), countReceipts(t, f))
	assert.Equal(t, 60.0, f.row(t, f.student.ID, "2024-03").PaymentAmount)
}
