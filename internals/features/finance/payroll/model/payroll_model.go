package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	userModel "educenter_backend/internals/features/users/user/model"
)

// PayrollModel: hasil hitung gaji per user per bulan (dihitung ulang destruktif)
type PayrollModel struct {
	PayrollID         uuid.UUID      `gorm:"column:payroll_id;type:uuid;primaryKey" json:"payroll_id"`
	PayrollUserID     uuid.UUID      `gorm:"column:payroll_user_id;type:uuid;not null;index" json:"payroll_user_id"`
	PayrollRole       string         `gorm:"column:payroll_role;type:varchar(20);not null" json:"payroll_role"`
	PayrollMonth      string         `gorm:"column:payroll_month;type:varchar(7);not null;index" json:"payroll_month"`
	PayrollEarned     float64        `gorm:"column:payroll_earned;type:numeric(12,2);not null;default:0" json:"payroll_earned"`
	PayrollDeductions float64        `gorm:"column:payroll_deductions;type:numeric(12,2);not null;default:0" json:"payroll_deductions"`
	PayrollNet        float64        `gorm:"column:payroll_net;type:numeric(12,2);not null;default:0" json:"payroll_net"`
	PayrollStatus     string         `gorm:"column:payroll_status;type:varchar(10);not null;default:'pending'" json:"payroll_status"`
	PayrollDetails    datatypes.JSON `gorm:"column:payroll_details" json:"payroll_details"`
	PayrollPaidAt     *time.Time     `gorm:"column:payroll_paid_at" json:"payroll_paid_at,omitempty"`
	PayrollCreatedAt  time.Time      `gorm:"column:payroll_created_at;autoCreateTime" json:"payroll_created_at"`

	User *userModel.UserModel `gorm:"foreignKey:PayrollUserID;references:ID" json:"user,omitempty"`
}

func (PayrollModel) TableName() string { return "payroll" }

func (m *PayrollModel) BeforeCreate(tx *gorm.DB) error {
	if m.PayrollID == uuid.Nil {
		m.PayrollID = uuid.New()
	}
	return nil
}

// PayrollPaymentModel: bukti pembayaran gaji
type PayrollPaymentModel struct {
	PayrollPaymentID         uuid.UUID `gorm:"column:payroll_payment_id;type:uuid;primaryKey" json:"payroll_payment_id"`
	PayrollPaymentPayrollID  uuid.UUID `gorm:"column:payroll_payment_payroll_id;type:uuid;not null;index" json:"payroll_payment_payroll_id"`
	PayrollPaymentPaidAmount float64   `gorm:"column:payroll_payment_paid_amount;type:numeric(12,2);not null" json:"payroll_payment_paid_amount"`
	PayrollPaymentPaidBy     uuid.UUID `gorm:"column:payroll_payment_paid_by;type:uuid;not null" json:"payroll_payment_paid_by"`
	PayrollPaymentPaidAt     time.Time `gorm:"column:payroll_payment_paid_at;not null" json:"payroll_payment_paid_at"`
}

func (PayrollPaymentModel) TableName() string { return "payroll_payments" }

func (m *PayrollPaymentModel) BeforeCreate(tx *gorm.DB) error {
	if m.PayrollPaymentID == uuid.Nil {
		m.PayrollPaymentID = uuid.New()
	}
	return nil
}

// SalarySettingModel: persentase gaji global, baris terbaru yang berlaku
type SalarySettingModel struct {
	SalarySettingID                   uuid.UUID `gorm:"column:salary_setting_id;type:uuid;primaryKey" json:"salary_setting_id"`
	SalarySettingTeacherPercent       float64   `gorm:"column:salary_setting_teacher_percent;type:numeric(5,2);not null" json:"teacher_percent"`
	SalarySettingManagerActivePercent float64   `gorm:"column:salary_setting_manager_active_percent;type:numeric(5,2);not null" json:"manager_active_percent"`
	SalarySettingManagerNewPercent    float64   `gorm:"column:salary_setting_manager_new_percent;type:numeric(5,2);not null" json:"manager_new_percent"`
	SalarySettingCreatedAt            time.Time `gorm:"column:salary_setting_created_at;autoCreateTime" json:"created_at"`
	SalarySettingUpdatedAt            time.Time `gorm:"column:salary_setting_updated_at;autoUpdateTime" json:"updated_at"`
}

func (SalarySettingModel) TableName() string { return "salary_settings" }

func (m *SalarySettingModel) BeforeCreate(tx *gorm.DB) error {
	if m.SalarySettingID == uuid.Nil {
		m.SalarySettingID = uuid.New()
	}
	return nil
}
