package service

import (
	"context"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	midtrans "github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"educenter_backend/internals/constants"
	model "educenter_backend/internals/features/finance/payments/model"
	userModel "educenter_backend/internals/features/users/user/model"
)

var (
	ErrGatewayDisabled  = errors.New("payment gateway is not configured")
	ErrNothingToPay     = errors.New("nothing to pay")
	ErrInvalidSignature = errors.New("invalid signature")
)

/* =========================================================
   Midtrans Client
========================================================= */

var (
	SnapClient snap.Client
	serverKey  string
)

// InitMidtrans dipanggil sekali saat bootstrap; key kosong = checkout mati.
func InitMidtrans(key string, useProduction bool) {
	serverKey = strings.TrimSpace(key)
	if serverKey == "" {
		return
	}
	if useProduction {
		SnapClient.New(serverKey, midtrans.Production)
	} else {
		SnapClient.New(serverKey, midtrans.Sandbox)
	}
}

func GatewayEnabled() bool { return serverKey != "" }

// createTransaction bisa diganti di test.
var createTransaction = func(req *snap.Request) (*snap.Response, error) {
	resp, mErr := SnapClient.CreateTransaction(req)
	if mErr != nil {
		return nil, mErr
	}
	return resp, nil
}

/* =========================================================
   Order ID
========================================================= */

// order_id midtrans maksimal 50 karakter: tu-<uuid tanpa strip>-<unix milli>
const orderPrefix = "tu-"

// OrderID: tiap checkout mendapat order baru, payment id tetap terbaca dari order.
func OrderID(paymentID uuid.UUID, at time.Time) string {
	return fmt.Sprintf("%s%s-%d", orderPrefix, strings.ReplaceAll(paymentID.String(), "-", ""), at.UnixMilli())
}

func PaymentIDFromOrder(orderID string) (uuid.UUID, bool) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(orderID), orderPrefix)
	if !ok {
		return uuid.Nil, false
	}
	raw, _, ok := strings.Cut(rest, "-")
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

/* =========================================================
   Checkout
========================================================= */

type CheckoutResult struct {
	PaymentID   uuid.UUID `json:"payment_id"`
	OrderID     string    `json:"order_id"`
	Amount      float64   `json:"amount"`
	Token       string    `json:"token"`
	RedirectURL string    `json:"redirect_url"`
}

// Checkout membuat transaksi Snap sebesar debt baris (setelah direkonsiliasi).
func Checkout(ctx context.Context, db *gorm.DB, paymentID uuid.UUID) (*CheckoutResult, error) {
	if !GatewayEnabled() {
		return nil, ErrGatewayDisabled
	}

	var p model.PaymentModel
	if err := db.WithContext(ctx).First(&p, "payment_id = ?", paymentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	row, err := RecomputeStudent(ctx, db, p.PaymentStudentID, p.PaymentGroupID, p.PaymentMonth)
	if err != nil {
		return nil, err
	}
	if row.PaymentDebtAmount <= 0 {
		return nil, ErrNothingToPay
	}

	var student userModel.UserModel
	if err := db.WithContext(ctx).First(&student, "id = ?", row.PaymentStudentID).Error; err != nil {
		return nil, err
	}

	orderID := OrderID(row.PaymentID, time.Now())
	gross := int64(math.Round(row.PaymentDebtAmount))
	phone := ""
	if student.Phone != nil {
		phone = *student.Phone
	}

	req := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  orderID,
			GrossAmt: gross,
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: student.FullName,
			Phone: phone,
		},
		Items: &[]midtrans.ItemDetails{
			{
				ID:       row.PaymentID.String(),
				Price:    gross,
				Qty:      1,
				Name:     "Tuition " + row.PaymentMonth,
				Category: "tuition",
			},
		},
	}

	resp, err := createTransaction(req)
	if err != nil {
		return nil, fmt.Errorf("midtrans: %w", err)
	}

	if err := db.WithContext(ctx).Model(&model.PaymentModel{}).
		Where("payment_id = ?", row.PaymentID).
		Update("payment_external_id", orderID).Error; err != nil {
		return nil, err
	}

	return &CheckoutResult{
		PaymentID:   row.PaymentID,
		OrderID:     orderID,
		Amount:      float64(gross),
		Token:       resp.Token,
		RedirectURL: resp.RedirectURL,
	}, nil
}

/* =========================================================
   Notification (webhook)
========================================================= */

type Notification struct {
	TransactionStatus string `json:"transaction_status"` // capture, settlement, pending, deny, cancel, expire, ...
	StatusCode        string `json:"status_code"`
	SignatureKey      string `json:"signature_key"`
	OrderID           string `json:"order_id"`
	GrossAmount       string `json:"gross_amount"`
	FraudStatus       string `json:"fraud_status"`
	TransactionID     string `json:"transaction_id"`
}

// Signature: SHA512(order_id + status_code + gross_amount + server_key)
func Signature(n Notification, key string) string {
	h := sha512.Sum512([]byte(n.OrderID + n.StatusCode + n.GrossAmount + key))
	return hex.EncodeToString(h[:])
}

func VerifySignature(n Notification) bool {
	want := strings.ToLower(strings.TrimSpace(n.SignatureKey))
	return serverKey != "" && want != "" && want == Signature(n, serverKey)
}

// IsSettled: transaksi dianggap lunas oleh gateway.
func (n Notification) IsSettled() bool {
	switch strings.ToLower(n.TransactionStatus) {
	case "settlement":
		return true
	case "capture":
		return strings.ToLower(n.FraudStatus) == "accept"
	}
	return false
}

type NotificationResult struct {
	Status    string              `json:"status"` // processed | duplicate | ignored
	Reason    string              `json:"reason,omitempty"`
	PaymentID *uuid.UUID          `json:"payment_id,omitempty"`
	Payment   *model.PaymentModel `json:"payment,omitempty"`
}

const (
	eventReceived  = "received"
	eventProcessed = "processed"
	eventIgnored   = "ignored"
	eventFailed    = "failed"
)

// saveEvent mencatat notifikasi yang tidak membukukan uang.
// Event yang sudah processed tidak pernah ditimpa.
func saveEvent(ctx context.Context, db *gorm.DB, ev *model.PaymentGatewayEventModel) error {
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "gateway_event_order_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"gateway_event_payment_id",
				"gateway_event_tx_status",
				"gateway_event_fraud",
				"gateway_event_gross",
				"gateway_event_status",
				"gateway_event_error",
				"gateway_event_payload",
				"gateway_event_updated_at",
			}),
			Where: clause.Where{Exprs: []clause.Expression{
				clause.Expr{SQL: "payment_gateway_events.gateway_event_status <> ?", Vars: []any{eventProcessed}},
			}},
		}).
		Create(ev).Error
}

// claimOrder menandai order sebagai processed di dalam transaksi posting.
// false = order sudah diproses oleh notifikasi lain.
func claimOrder(tx *gorm.DB, ev *model.PaymentGatewayEventModel) (bool, error) {
	ev.GatewayEventStatus = eventProcessed
	ev.GatewayEventError = nil

	res := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "gateway_event_order_id"}},
		DoNothing: true,
	}).Create(ev)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 1 {
		return true, nil
	}

	// sudah ada event received/ignored/failed untuk order ini: ambil alih kalau belum processed
	res = tx.Model(&model.PaymentGatewayEventModel{}).
		Where("gateway_event_order_id = ? AND gateway_event_status <> ?", ev.GatewayEventOrderID, eventProcessed).
		Updates(map[string]any{
			"gateway_event_payment_id": ev.GatewayEventPaymentID,
			"gateway_event_tx_status":  ev.GatewayEventTxStatus,
			"gateway_event_fraud":      ev.GatewayEventFraud,
			"gateway_event_gross":      ev.GatewayEventGross,
			"gateway_event_status":     eventProcessed,
			"gateway_event_error":      nil,
			"gateway_event_payload":    ev.GatewayEventPayload,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// resolveOrder: payment id dari order_id, fallback ke payment_external_id.
func resolveOrder(ctx context.Context, db *gorm.DB, orderID string) (*uuid.UUID, error) {
	var rows []model.PaymentModel
	q := db.WithContext(ctx).Select("payment_id").Limit(1)
	if id, ok := PaymentIDFromOrder(orderID); ok {
		q = q.Where("payment_id = ?", id)
	} else {
		q = q.Where("payment_external_id = ?", orderID)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0].PaymentID, nil
}

// HandleNotification membukukan gross_amount ke baris tagihan saat gateway
// melaporkan settlement. Satu order hanya dibukukan sekali.
func HandleNotification(ctx context.Context, db *gorm.DB, n Notification, raw []byte) (*NotificationResult, error) {
	if !VerifySignature(n) {
		return nil, ErrInvalidSignature
	}

	gross, _ := strconv.ParseFloat(strings.TrimSpace(n.GrossAmount), 64)
	if len(raw) == 0 {
		raw = []byte("{}")
	}
	ev := &model.PaymentGatewayEventModel{
		GatewayEventOrderID:  n.OrderID,
		GatewayEventTxStatus: n.TransactionStatus,
		GatewayEventFraud:    n.FraudStatus,
		GatewayEventGross:    gross,
		GatewayEventStatus:   eventReceived,
		GatewayEventPayload:  datatypes.JSON(raw),
	}

	paymentID, err := resolveOrder(ctx, db, n.OrderID)
	if err != nil {
		return nil, err
	}
	if paymentID == nil {
		reason := "payment not found"
		ev.GatewayEventStatus, ev.GatewayEventError = eventIgnored, &reason
		if err := saveEvent(ctx, db, ev); err != nil {
			return nil, err
		}
		return &NotificationResult{Status: eventIgnored, Reason: reason}, nil
	}
	ev.GatewayEventPaymentID = paymentID

	if !n.IsSettled() {
		if err := saveEvent(ctx, db, ev); err != nil {
			return nil, err
		}
		return &NotificationResult{Status: eventIgnored, Reason: "status " + n.TransactionStatus, PaymentID: paymentID}, nil
	}

	var (
		row       *model.PaymentModel
		duplicate bool
	)
	orderID := n.OrderID
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		claimed, err := claimOrder(tx, ev)
		if err != nil {
			return err
		}
		if !claimed {
			duplicate = true
			return nil
		}
		row, err = postToRowTx(ctx, tx, *paymentID, gross, constants.ReceiptGateway, &orderID)
		return err
	})
	if err != nil {
		msg := err.Error()
		ev.GatewayEventStatus, ev.GatewayEventError = eventFailed, &msg
		if serr := saveEvent(ctx, db, ev); serr != nil {
			log.Printf("[WARN] gagal simpan gateway event %s: %v", n.OrderID, serr)
		}
		return nil, err
	}
	if duplicate {
		return &NotificationResult{Status: "duplicate", PaymentID: paymentID}, nil
	}

	log.Printf("[INFO] 💳 order %s lunas via gateway: %.2f", n.OrderID, gross)
	return &NotificationResult{Status: eventProcessed, PaymentID: &row.PaymentID, Payment: row}, nil
}
