package dto

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	model "educenter_backend/internals/features/finance/payroll/model"
)

type SalarySettingsRequest struct {
	TeacherPercent       float64 `json:"teacher_percent" validate:"gte=0,lte=100"`
	ManagerActivePercent float64 `json:"manager_active_percent" validate:"gte=0,lte=100"`
	ManagerNewPercent    float64 `json:"manager_new_percent" validate:"gte=0,lte=100"`
}

type PayrollResponse struct {
	PayrollID  uuid.UUID      `json:"id"`
	UserID     uuid.UUID      `json:"user_id"`
	UserName   *string        `json:"user_name"`
	Role       string         `json:"role"`
	Month      string         `json:"month"`
	Earned     float64        `json:"earned"`
	Deductions float64        `json:"deductions"`
	Net        float64        `json:"net"`
	Status     string         `json:"status"`
	Details    datatypes.JSON `json:"details"`
	PaidAt     *time.Time     `json:"paid_at"`
}

func FromModel(m model.PayrollModel) PayrollResponse {
	out := PayrollResponse{
		PayrollID:  m.PayrollID,
		UserID:     m.PayrollUserID,
		Role:       m.PayrollRole,
		Month:      m.PayrollMonth,
		Earned:     m.PayrollEarned,
		Deductions: m.PayrollDeductions,
		Net:        m.PayrollNet,
		Status:     m.PayrollStatus,
		Details:    m.PayrollDetails,
		PaidAt:     m.PayrollPaidAt,
	}
	if m.User != nil {
		name := m.User.FullName
		out.UserName = &name
	}
	return out
}
