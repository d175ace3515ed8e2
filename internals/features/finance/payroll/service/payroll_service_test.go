package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"educenter_backend/internals/constants"
	courseModel "educenter_backend/internals/features/academics/courses/model"
	groupModel "educenter_backend/internals/features/academics/groups/model"
	attendanceModel "educenter_backend/internals/features/attendance/model"
	paymentModel "educenter_backend/internals/features/finance/payments/model"
	model "educenter_backend/internals/features/finance/payroll/model"
	userModel "educenter_backend/internals/features/users/user/model"
	database "educenter_backend/internals/databases"
	helper "educenter_backend/internals/helpers"
)

const testMonth = "2024-03"

type seeded struct {
	db      *gorm.DB
	teacher userModel.UserModel
	manager userModel.UserModel
	student userModel.UserModel
	group   groupModel.GroupModel
}

func (s *seeded) receive(t *testing.T, month string, amount float64, at time.Time) {
	t.Helper()
	row := paymentModel.PaymentModel{
		PaymentStudentID: s.student.ID,
		PaymentGroupID:   s.group.GroupID,
		PaymentMonth:     month,
		PaymentTotalDue:  amount,
		PaymentAmount:    amount,
		PaymentStatus:    constants.PaymentPaid,
		PaymentDueDate:   helper.DueDate(month, constants.DueDayOfMonth),
		PaymentPaidAt:    &at,
	}
	require.NoError(t, s.db.Create(&row).Error)
	require.NoError(t, s.db.Create(&paymentModel.PaymentReceiptModel{
		ReceiptPaymentID:  row.PaymentID,
		ReceiptStudentID:  s.student.ID,
		ReceiptGroupID:    s.group.GroupID,
		ReceiptMonth:      month,
		ReceiptAmount:     amount,
		ReceiptSource:     constants.ReceiptCash,
		ReceiptReceivedAt: at,
	}).Error)
}

func seed(t *testing.T) *seeded {
	t.Helper()
	db, err := database.OpenTestDB()
	require.NoError(t, err)

	teacher := userModel.UserModel{UserName: "t1", FullName: "Teacher", Password: "x", Role: constants.RoleTeacher, IsActive: true}
	manager := userModel.UserModel{UserName: "m1", FullName: "Manager", Password: "x", Role: constants.RoleManager, IsActive: true}
	status := constants.StudentStudying
	student := userModel.UserModel{UserName: "s1", FullName: "Student", Password: "x", Role: constants.RoleStudent, Status: &status, IsActive: true}
	for _, u := range []*userModel.UserModel{&teacher, &manager, &student} {
		require.NoError(t, db.Create(u).Error)
	}

	course := courseModel.CourseModel{CourseTitle: "Physics", CoursePrice: 200}
	require.NoError(t, db.Create(&course).Error)
	group := groupModel.GroupModel{GroupName: "Physics A", GroupCourseID: &course.CourseID, GroupTeacherID: &teacher.ID}
	require.NoError(t, db.Create(&group).Error)

	// 3 hadir + 1 absen → attendance rate 75%
	for i, present := range []bool{true, true, true, false} {
		st := constants.AttendanceAbsent
		if present {
			st = constants.AttendancePresent
		}
		require.NoError(t, db.Create(&attendanceModel.AttendanceModel{
			AttendanceStudentID: student.ID,
			AttendanceGroupID:   group.GroupID,
			AttendanceDate:      time.Date(2024, 3, 4+i*7, 0, 0, 0, 0, time.UTC),
			AttendanceStatus:    st,
		}).Error)
	}

	s := &seeded{db: db, teacher: teacher, manager: manager, student: student, group: group}
	s.receive(t, testMonth, 200, time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC))
	return s
}

func rowsByUser(t *testing.T, db *gorm.DB) map[uuid.UUID]model.PayrollModel {
	t.Helper()
	var rows []model.PayrollModel
	require.NoError(t, db.Where("payroll_month = ?", testMonth).Find(&rows).Error)
	out := make(map[uuid.UUID]model.PayrollModel, len(rows))
	for _, r := range rows {
		out[r.PayrollUserID] = r
	}
	return out
}

func TestGetSettings_CreatesDefaults(t *testing.T) {
	db, err := database.OpenTestDB()
	require.NoError(t, err)
	ctx := context.Background()

	s, err := GetSettings(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, constants.DefaultTeacherPercent, s.SalarySettingTeacherPercent)

	_, err = UpdateSettings(ctx, db, 40, 5, 20)
	require.NoError(t, err)
	s, err = GetSettings(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, 40.0, s.SalarySettingTeacherPercent)
	assert.Equal(t, 5.0, s.SalarySettingManagerActivePercent)

	var n int64
	require.NoError(t, db.Model(&model.SalarySettingModel{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestCalculate(t *testing.T) {
	s := seed(t)
	ctx := context.Background()

	res, err := Calculate(ctx, s.db, testMonth)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Teachers)
	assert.Equal(t, 1, res.Managers)

	rows := rowsByUser(t, s.db)
	tr := rows[s.teacher.ID]
	// 200 * 50% = 100, potongan 25% karena kehadiran 75%
	assert.Equal(t, 100.0, tr.PayrollEarned)
	assert.Equal(t, 25.0, tr.PayrollDeductions)
	assert.Equal(t, 75.0, tr.PayrollNet)
	assert.Equal(t, constants.PayrollPending, tr.PayrollStatus)

	var td TeacherDetails
	require.NoError(t, json.Unmarshal(tr.PayrollDetails, &td))
	assert.Equal(t, 75.0, td.AttendanceRate)
	assert.Equal(t, 1, td.GroupCount)

	mr := rows[s.manager.ID]
	// siswa aktif membayar 200 * 10%
	assert.Equal(t, 20.0, mr.PayrollEarned)
	assert.Equal(t, 20.0, mr.PayrollNet)
}

func TestCalculate_IsDeterministic(t *testing.T) {
	s := seed(t)
	ctx := context.Background()

	_, err := Calculate(ctx, s.db, testMonth)
	require.NoError(t, err)
	first := rowsByUser(t, s.db)

	_, err = Calculate(ctx, s.db, testMonth)
	require.NoError(t, err)
	second := rowsByUser(t, s.db)

	require.Len(t, second, len(first))
	for id, a := range first {
		b := second[id]
		assert.Equal(t, a.PayrollEarned, b.PayrollEarned)
		assert.Equal(t, a.PayrollNet, b.PayrollNet)
	}
}

func TestCalculate_CountsMoneyReceivedInMonth(t *testing.T) {
	s := seed(t)
	// tagihan Februari yang dibayar awal Maret ikut bulan Maret
	s.receive(t, "2024-02", 80, time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC))
	// diterima April, bukan Maret
	s.receive(t, "2024-01", 50, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC))

	_, err := Calculate(context.Background(), s.db, testMonth)
	require.NoError(t, err)
	rows := rowsByUser(t, s.db)

	var td TeacherDetails
	require.NoError(t, json.Unmarshal(rows[s.teacher.ID].PayrollDetails, &td))
	assert.Equal(t, 280.0, td.PaymentsSum)
	assert.Equal(t, 140.0, rows[s.teacher.ID].PayrollEarned)

	var md ManagerDetails
	require.NoError(t, json.Unmarshal(rows[s.manager.ID].PayrollDetails, &md))
	assert.Equal(t, 280.0, md.ActivePaymentsSum)
	assert.Equal(t, 28.0, rows[s.manager.ID].PayrollEarned)
}

func TestCalculate_TeacherPercentOverride(t *testing.T) {
	s := seed(t)
	require.NoError(t, s.db.Model(&s.teacher).Update("teacher_percent", 25).Error)

	_, err := Calculate(context.Background(), s.db, testMonth)
	require.NoError(t, err)
	assert.Equal(t, 50.0, rowsByUser(t, s.db)[s.teacher.ID].PayrollEarned)
}

func TestPay(t *testing.T) {
	s := seed(t)
	ctx := context.Background()

	_, err := Calculate(ctx, s.db, testMonth)
	require.NoError(t, err)
	row := rowsByUser(t, s.db)[s.teacher.ID]

	paid, err := Pay(ctx, s.db, row.PayrollID, s.manager.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.PayrollPaid, paid.PayrollStatus)
	assert.NotNil(t, paid.PayrollPaidAt)

	var pp model.PayrollPaymentModel
	require.NoError(t, s.db.First(&pp, "payroll_payment_payroll_id = ?", row.PayrollID).Error)
	assert.Equal(t, row.PayrollNet, pp.PayrollPaymentPaidAmount)

	_, err = Pay(ctx, s.db, row.PayrollID, s.manager.ID)
	assert.ErrorIs(t, err, ErrAlreadyPaid)

	_, err = Pay(ctx, s.db, uuid.New(), s.manager.ID)
	assert.ErrorIs(t, err, ErrPayrollNotFound)
}
