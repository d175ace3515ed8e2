package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"educenter_backend/internals/constants"
	groupModel "educenter_backend/internals/features/academics/groups/model"
	attendanceModel "educenter_backend/internals/features/attendance/model"
	attendanceService "educenter_backend/internals/features/attendance/service"
	paymentModel "educenter_backend/internals/features/finance/payments/model"
	model "educenter_backend/internals/features/finance/payroll/model"
	userModel "educenter_backend/internals/features/users/user/model"
	helper "educenter_backend/internals/helpers"
)

var (
	ErrPayrollNotFound = errors.New("payroll not found")
	ErrAlreadyPaid     = errors.New("already paid")
)

/* =========================================================
   SALARY SETTINGS
========================================================= */

// GetSettings: baris terbaru; dibuat dengan nilai default kalau belum ada.
func GetSettings(ctx context.Context, db *gorm.DB) (*model.SalarySettingModel, error) {
	var rows []model.SalarySettingModel
	if err := db.WithContext(ctx).
		Order("salary_setting_created_at DESC").
		Limit(1).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) > 0 {
		return &rows[0], nil
	}

	s := model.SalarySettingModel{
		SalarySettingTeacherPercent:       constants.DefaultTeacherPercent,
		SalarySettingManagerActivePercent: constants.DefaultManagerActivePercent,
		SalarySettingManagerNewPercent:    constants.DefaultManagerNewPercent,
	}
	if err := db.WithContext(ctx).Create(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func UpdateSettings(ctx context.Context, db *gorm.DB, teacher, managerActive, managerNew float64) (*model.SalarySettingModel, error) {
	s, err := GetSettings(ctx, db)
	if err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).Model(s).Updates(map[string]any{
		"salary_setting_teacher_percent":        teacher,
		"salary_setting_manager_active_percent": managerActive,
		"salary_setting_manager_new_percent":    managerNew,
	}).Error; err != nil {
		return nil, err
	}
	s.SalarySettingTeacherPercent = teacher
	s.SalarySettingManagerActivePercent = managerActive
	s.SalarySettingManagerNewPercent = managerNew
	return s, nil
}

/* =========================================================
   CALCULATE
========================================================= */

type TeacherDetails struct {
	PaymentsSum    float64 `json:"payments_sum"`
	Percent        float64 `json:"percent"`
	AttendanceRate float64 `json:"attendance_rate"`
	GroupCount     int     `json:"group_count"`
}

type ManagerDetails struct {
	ActivePaymentsSum    float64 `json:"active_payments_sum"`
	ActiveStudentsCount  int     `json:"active_students_count"`
	NewStudentsCount     int     `json:"new_students_count"`
	NewFirstPaymentsSum  float64 `json:"new_students_first_payments"`
	ManagerActivePercent float64 `json:"manager_active_percent"`
	ManagerNewPercent    float64 `json:"manager_new_percent"`
}

type CalculateResult struct {
	Month    string `json:"month"`
	Teachers int    `json:"teachers"`
	Managers int    `json:"managers"`
}

func mustJSON(v any) datatypes.JSON {
	b, err := json.Marshal(v)
	if err != nil {
		return datatypes.JSON("{}")
	}
	return datatypes.JSON(b)
}

// sumReceived: uang yang benar-benar diterima di bulan tsb, bukan tagihan bulan tsb.
func sumReceived(tx *gorm.DB, month string, col string, ids []uuid.UUID) (float64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	start, end := helper.MonthRange(month)
	var total float64
	err := tx.Model(&paymentModel.PaymentReceiptModel{}).
		Select("COALESCE(SUM(receipt_amount), 0)").
		Where("receipt_received_at >= ? AND receipt_received_at < ? AND "+col+" IN ?", start, end, ids).
		Scan(&total).Error
	return helper.Round2(total), err
}

func teacherRow(ctx context.Context, tx *gorm.DB, t userModel.UserModel, month string, settings *model.SalarySettingModel) (*model.PayrollModel, error) {
	var groupIDs []uuid.UUID
	if err := tx.Model(&groupModel.GroupModel{}).
		Where("group_teacher_id = ?", t.ID).
		Pluck("group_id", &groupIDs).Error; err != nil {
		return nil, err
	}

	paymentsSum, err := sumReceived(tx, month, "receipt_group_id", groupIDs)
	if err != nil {
		return nil, err
	}
	counts, err := attendanceService.GroupsTotals(ctx, tx, groupIDs, month)
	if err != nil {
		return nil, err
	}

	percent := settings.SalarySettingTeacherPercent
	if t.TeacherPercent != nil {
		percent = *t.TeacherPercent
	}
	rate := counts.AttendanceRate()
	earned := helper.Round2(paymentsSum * percent / 100)
	deductions := helper.Round2(earned * (1 - rate/100))

	return &model.PayrollModel{
		PayrollUserID:     t.ID,
		PayrollRole:       constants.RoleTeacher,
		PayrollMonth:      month,
		PayrollEarned:     earned,
		PayrollDeductions: deductions,
		PayrollNet:        helper.Round2(earned - deductions),
		PayrollStatus:     constants.PayrollPending,
		PayrollDetails: mustJSON(TeacherDetails{
			PaymentsSum:    paymentsSum,
			Percent:        percent,
			AttendanceRate: rate,
			GroupCount:     len(groupIDs),
		}),
	}, nil
}

// managerBase dihitung sekali per bulan, sama untuk semua manager.
func managerBase(tx *gorm.DB, month string) (*ManagerDetails, error) {
	start, end := helper.MonthRange(month)

	var active []uuid.UUID
	if err := tx.Model(&attendanceModel.AttendanceModel{}).
		Distinct("attendance_student_id").
		Where("attendance_status = ? AND attendance_date >= ? AND attendance_date < ?", constants.AttendancePresent, start, end).
		Pluck("attendance_student_id", &active).Error; err != nil {
		return nil, err
	}
	activeSum, err := sumReceived(tx, month, "receipt_student_id", active)
	if err != nil {
		return nil, err
	}

	var newIDs []uuid.UUID
	if err := tx.Model(&userModel.UserModel{}).
		Where("role = ? AND created_at >= ? AND created_at < ?", constants.RoleStudent, start, end).
		Order("created_at ASC").
		Pluck("id", &newIDs).Error; err != nil {
		return nil, err
	}
	firstSum := 0.0
	for _, sid := range newIDs {
		var first []paymentModel.PaymentReceiptModel
		if err := tx.
			Where("receipt_student_id = ? AND receipt_amount > 0", sid).
			Order("receipt_received_at ASC, receipt_created_at ASC").
			Limit(1).
			Find(&first).Error; err != nil {
			return nil, err
		}
		if len(first) > 0 {
			firstSum += first[0].ReceiptAmount
		}
	}

	return &ManagerDetails{
		ActivePaymentsSum:   activeSum,
		ActiveStudentsCount: len(active),
		NewStudentsCount:    len(newIDs),
		NewFirstPaymentsSum: helper.Round2(firstSum),
	}, nil
}

// Calculate menghitung ulang payroll satu bulan secara destruktif dalam satu transaksi.
func Calculate(ctx context.Context, db *gorm.DB, month string) (*CalculateResult, error) {
	res := &CalculateResult{Month: month}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		settings, err := GetSettings(ctx, tx)
		if err != nil {
			return err
		}

		// hapus payroll bulan ini beserta bukti pembayarannya
		if err := tx.Where("payroll_payment_payroll_id IN (?)",
			tx.Model(&model.PayrollModel{}).Select("payroll_id").Where("payroll_month = ?", month),
		).Delete(&model.PayrollPaymentModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("payroll_month = ?", month).Delete(&model.PayrollModel{}).Error; err != nil {
			return err
		}

		var teachers []userModel.UserModel
		if err := tx.Where("role = ? AND is_active = ?", constants.RoleTeacher, true).
			Order("created_at ASC, id ASC").Find(&teachers).Error; err != nil {
			return err
		}
		for _, t := range teachers {
			row, err := teacherRow(ctx, tx, t, month, settings)
			if err != nil {
				return fmt.Errorf("teacher %s: %w", t.ID, err)
			}
			if err := tx.Create(row).Error; err != nil {
				return err
			}
			res.Teachers++
		}

		var managers []userModel.UserModel
		if err := tx.Where("role = ? AND is_active = ?", constants.RoleManager, true).
			Order("created_at ASC, id ASC").Find(&managers).Error; err != nil {
			return err
		}
		if len(managers) == 0 {
			return nil
		}
		base, err := managerBase(tx, month)
		if err != nil {
			return err
		}
		base.ManagerActivePercent = settings.SalarySettingManagerActivePercent
		base.ManagerNewPercent = settings.SalarySettingManagerNewPercent
		earned := helper.Round2(base.ActivePaymentsSum*base.ManagerActivePercent/100 +
			base.NewFirstPaymentsSum*base.ManagerNewPercent/100)

		for _, m := range managers {
			row := &model.PayrollModel{
				PayrollUserID:     m.ID,
				PayrollRole:       constants.RoleManager,
				PayrollMonth:      month,
				PayrollEarned:     earned,
				PayrollDeductions: 0,
				PayrollNet:        earned,
				PayrollStatus:     constants.PayrollPending,
				PayrollDetails:    mustJSON(base),
			}
			if err := tx.Create(row).Error; err != nil {
				return err
			}
			res.Managers++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[PAYROLL] ✅ %s: %d teacher, %d manager dihitung", month, res.Teachers, res.Managers)
	return res, nil
}

/* =========================================================
   PAY
========================================================= */

// Pay menandai payroll lunas dan mencatat PayrollPayment sebesar net.
func Pay(ctx context.Context, db *gorm.DB, payrollID, paidBy uuid.UUID) (*model.PayrollModel, error) {
	var out model.PayrollModel
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&out, "payroll_id = ?", payrollID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPayrollNotFound
			}
			return err
		}
		if out.PayrollStatus == constants.PayrollPaid {
			return ErrAlreadyPaid
		}

		now := time.Now().UTC()
		res := tx.Model(&model.PayrollModel{}).
			Where("payroll_id = ? AND payroll_status <> ?", payrollID, constants.PayrollPaid).
			Updates(map[string]any{
				"payroll_status":  constants.PayrollPaid,
				"payroll_paid_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyPaid
		}
		out.PayrollStatus = constants.PayrollPaid
		out.PayrollPaidAt = &now

		return tx.Create(&model.PayrollPaymentModel{
			PayrollPaymentPayrollID:  out.PayrollID,
			PayrollPaymentPaidAmount: out.PayrollNet,
			PayrollPaymentPaidBy:     paidBy,
			PayrollPaymentPaidAt:     now,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
