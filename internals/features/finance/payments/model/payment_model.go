package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PaymentModel: tagihan + pembayaran bulanan per (student, group, month).
// Baris dihitung ulang di tempat (upsert), bukan ditambah.
type PaymentModel struct {
	PaymentID        uuid.UUID `gorm:"column:payment_id;type:uuid;primaryKey" json:"payment_id"`
	PaymentStudentID uuid.UUID `gorm:"column:payment_student_id;type:uuid;not null;uniqueIndex:uq_payments_student_group_month;index" json:"payment_student_id"`
	PaymentGroupID   uuid.UUID `gorm:"column:payment_group_id;type:uuid;not null;uniqueIndex:uq_payments_student_group_month;index" json:"payment_group_id"`
	PaymentMonth     string    `gorm:"column:payment_month;type:varchar(7);not null;uniqueIndex:uq_payments_student_group_month;index" json:"payment_month"` // YYYY-MM

	PaymentDescription *string `gorm:"column:payment_description;type:text" json:"payment_description,omitempty"`

	// tagihan bulan ini + tunggakan bulan sebelumnya
	PaymentTotalDue float64 `gorm:"column:payment_total_due;type:numeric(12,2);not null;default:0" json:"payment_total_due"`
	// bagian tagihan yang ditutup dari saldo (balance) siswa
	PaymentCreditApplied float64 `gorm:"column:payment_credit_applied;type:numeric(12,2);not null;default:0" json:"payment_credit_applied"`
	// uang tunai yang diterima untuk baris ini
	PaymentAmount float64 `gorm:"column:payment_amount;type:numeric(12,2);not null;default:0" json:"payment_amount"`
	// bagian dari amount yang dipindah ke balance karena melebihi tagihan
	PaymentOverpaid   float64 `gorm:"column:payment_overpaid;type:numeric(12,2);not null;default:0" json:"payment_overpaid"`
	PaymentDebtAmount float64 `gorm:"column:payment_debt_amount;type:numeric(12,2);not null;default:0" json:"payment_debt_amount"`

	PaymentStatus  string     `gorm:"column:payment_status;type:varchar(10);not null;default:'unpaid';index" json:"payment_status"` // paid | partial | unpaid
	PaymentDueDate time.Time  `gorm:"column:payment_due_date;not null" json:"payment_due_date"`
	PaymentPaidAt  *time.Time `gorm:"column:payment_paid_at" json:"payment_paid_at,omitempty"`

	// order_id payment gateway (checkout online)
	PaymentExternalID *string `gorm:"column:payment_external_id;size:100;index" json:"payment_external_id,omitempty"`

	PaymentCreatedAt time.Time `gorm:"column:payment_created_at;autoCreateTime" json:"payment_created_at"`
	PaymentUpdatedAt time.Time `gorm:"column:payment_updated_at;autoUpdateTime" json:"payment_updated_at"`
}

func (PaymentModel) TableName() string { return "payments" }

func (m *PaymentModel) BeforeCreate(tx *gorm.DB) error {
	if m.PaymentID == uuid.Nil {
		m.PaymentID = uuid.New()
	}
	return nil
}

// CashApplied: bagian amount yang benar-benar menutup tagihan baris ini.
func (m *PaymentModel) CashApplied() float64 {
	return m.PaymentAmount - m.PaymentOverpaid
}

// IsOverdue: lewat jatuh tempo dan belum lunas.
func (m *PaymentModel) IsOverdue(now time.Time) bool {
	return m.PaymentStatus != "paid" && m.PaymentDueDate.Before(now)
}
