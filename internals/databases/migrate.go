package database

import (
	"gorm.io/gorm"

	courseModel "educenter_backend/internals/features/academics/courses/model"
	groupModel "educenter_backend/internals/features/academics/groups/model"
	attendanceModel "educenter_backend/internals/features/attendance/model"
	paymentModel "educenter_backend/internals/features/finance/payments/model"
	payrollModel "educenter_backend/internals/features/finance/payroll/model"
	authModel "educenter_backend/internals/features/users/auth/model"
	userModel "educenter_backend/internals/features/users/user/model"
)

// AutoMigrate membuat/menyesuaikan seluruh tabel aplikasi.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&userModel.UserModel{},
		&authModel.TokenBlacklist{},
		&courseModel.CourseModel{},
		&courseModel.StudentCourseModel{},
		&groupModel.GroupModel{},
		&groupModel.GroupStudentModel{},
		&attendanceModel.AttendanceModel{},
		&paymentModel.PaymentModel{},
		&paymentModel.PaymentGatewayEventModel{},
		&paymentModel.PaymentReceiptModel{},
		&payrollModel.SalarySettingModel{},
		&payrollModel.PayrollModel{},
		&payrollModel.PayrollPaymentModel{},
	)
}

// OpenTestDB membuka sqlite in-memory lengkap dengan skema.
func OpenTestDB() (*gorm.DB, error) {
	db, err := OpenSQLite(":memory:")
	if err != nil {
		return nil, err
	}
	if err := AutoMigrate(db); err != nil {
		return nil, err
	}
	return db, nil
}
