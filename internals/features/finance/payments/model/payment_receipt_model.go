package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PaymentReceiptModel: satu baris per uang masuk (kasir, mark-paid, gateway).
// Baris payments menyimpan total kumulatif; laporan & payroll membaca dari sini.
type PaymentReceiptModel struct {
	ReceiptID         uuid.UUID `gorm:"column:receipt_id;type:uuid;primaryKey" json:"receipt_id"`
	ReceiptPaymentID  uuid.UUID `gorm:"column:receipt_payment_id;type:uuid;not null;index" json:"receipt_payment_id"`
	ReceiptStudentID  uuid.UUID `gorm:"column:receipt_student_id;type:uuid;not null;index" json:"receipt_student_id"`
	ReceiptGroupID    uuid.UUID `gorm:"column:receipt_group_id;type:uuid;not null;index" json:"receipt_group_id"`
	ReceiptMonth      string    `gorm:"column:receipt_month;type:varchar(7);not null" json:"receipt_month"` // bulan tagihan
	ReceiptAmount     float64   `gorm:"column:receipt_amount;type:numeric(12,2);not null" json:"receipt_amount"`
	ReceiptSource     string    `gorm:"column:receipt_source;type:varchar(20);not null" json:"receipt_source"` // cash | mark_paid | gateway
	ReceiptOrderID    *string   `gorm:"column:receipt_order_id;size:100" json:"receipt_order_id,omitempty"`
	ReceiptReceivedAt time.Time `gorm:"column:receipt_received_at;not null;index" json:"receipt_received_at"`

	ReceiptCreatedAt time.Time `gorm:"column:receipt_created_at;autoCreateTime" json:"receipt_created_at"`
}

func (PaymentReceiptModel) TableName() string { return "payment_receipts" }

func (m *PaymentReceiptModel) BeforeCreate(tx *gorm.DB) error {
	if m.ReceiptID == uuid.Nil {
		m.ReceiptID = uuid.New()
	}
	return nil
}
