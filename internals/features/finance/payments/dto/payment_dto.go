package dto

import (
	"time"

	"github.com/google/uuid"

	model "educenter_backend/internals/features/finance/payments/model"
	helper "educenter_backend/internals/helpers"
)

/* ===================== REQUESTS ===================== */

// CreatePaymentRequest: pembayaran tunai manual
type CreatePaymentRequest struct {
	StudentID   uuid.UUID  `json:"student_id" validate:"required"`
	Amount      float64    `json:"amount" validate:"required,gt=0"`
	GroupID     *uuid.UUID `json:"group_id,omitempty"`
	Month       string     `json:"month,omitempty"` // YYYY-MM, kosong = bulan berjalan
	Description *string    `json:"description,omitempty" validate:"omitempty,max=500"`
}

// MarkPaidRequest: amount kosong = lunasi seluruh debt
type MarkPaidRequest struct {
	Amount *float64 `json:"amount,omitempty" validate:"omitempty,gt=0"`
}

type CalculateMonthlyRequest struct {
	Month string `json:"month,omitempty"`
}

/* ===================== RESPONSES ===================== */

type PaymentResponse struct {
	PaymentID     uuid.UUID  `json:"payment_id"`
	StudentID     uuid.UUID  `json:"student_id"`
	StudentName   string     `json:"student_name,omitempty"`
	GroupID       uuid.UUID  `json:"group_id"`
	GroupName     string     `json:"group_name,omitempty"`
	Month         string     `json:"month"`
	Description   *string    `json:"description,omitempty"`
	TotalDue      float64    `json:"total_due"`
	CreditApplied float64    `json:"credit_applied"`
	Amount        float64    `json:"amount"`
	Overpaid      float64    `json:"overpaid"`
	DebtAmount    float64    `json:"debt_amount"`
	Status        string     `json:"status"`
	DueDate       string     `json:"due_date"`
	IsOverdue     bool       `json:"is_overdue"`
	PaidAt        *time.Time `json:"paid_at,omitempty"`
	ExternalID    *string    `json:"external_id,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

func FromModel(m model.PaymentModel, now time.Time) PaymentResponse {
	return PaymentResponse{
		PaymentID:     m.PaymentID,
		StudentID:     m.PaymentStudentID,
		GroupID:       m.PaymentGroupID,
		Month:         m.PaymentMonth,
		Description:   m.PaymentDescription,
		TotalDue:      m.PaymentTotalDue,
		CreditApplied: m.PaymentCreditApplied,
		Amount:        m.PaymentAmount,
		Overpaid:      m.PaymentOverpaid,
		DebtAmount:    m.PaymentDebtAmount,
		Status:        m.PaymentStatus,
		DueDate:       m.PaymentDueDate.UTC().Format("2006-01-02"),
		IsOverdue:     m.IsOverdue(helper.TruncateDay(now)),
		PaidAt:        m.PaymentPaidAt,
		ExternalID:    m.PaymentExternalID,
		CreatedAt:     m.PaymentCreatedAt,
	}
}

type HistoryItem struct {
	PaymentID  uuid.UUID `json:"payment_id"`
	Month      string    `json:"month"`
	CourseName *string   `json:"course_name"`
	GroupName  *string   `json:"group_name"`
	Amount     float64   `json:"amount"`
	DebtAmount float64   `json:"debt_amount"`
	Status     string    `json:"status"`
	DueDate    string    `json:"due_date"`
	IsOverdue  bool      `json:"is_overdue"`
}

type HistoryResponse struct {
	StudentID   uuid.UUID     `json:"student_id"`
	StudentName string        `json:"student_name"`
	Balance     float64       `json:"balance"`
	TotalPaid   float64       `json:"total_paid"`
	TotalDebt   float64       `json:"total_debt"`
	History     []HistoryItem `json:"history"`
}
