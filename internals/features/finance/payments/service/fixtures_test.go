package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"educenter_backend/internals/constants"
	courseModel "educenter_backend/internals/features/academics/courses/model"
	groupModel "educenter_backend/internals/features/academics/groups/model"
	attendanceModel "educenter_backend/internals/features/attendance/model"
	model "educenter_backend/internals/features/finance/payments/model"
	userModel "educenter_backend/internals/features/users/user/model"
	database "educenter_backend/internals/databases"
)

type fixture struct {
	db      *gorm.DB
	course  courseModel.CourseModel
	group   groupModel.GroupModel
	student userModel.UserModel
}

func newFixture(t *testing.T, price float64) *fixture {
	t.Helper()
	db, err := database.OpenTestDB()
	require.NoError(t, err)

	teacher := userModel.UserModel{UserName: "teacher1", FullName: "Teacher One", Password: "x", Role: constants.RoleTeacher, IsActive: true}
	require.NoError(t, db.Create(&teacher).Error)

	course := courseModel.CourseModel{CourseTitle: "Math", CoursePrice: price, CourseTeacherID: &teacher.ID}
	require.NoError(t, db.Create(&course).Error)

	group := groupModel.GroupModel{GroupName: "Math A", GroupCourseID: &course.CourseID, GroupTeacherID: &teacher.ID}
	require.NoError(t, db.Create(&group).Error)

	f := &fixture{db: db, course: course, group: group}
	f.student = f.addStudent(t, "student1", constants.StudentStudying)
	return f
}

func (f *fixture) addStudent(t *testing.T, userName, status string) userModel.UserModel {
	t.Helper()
	st := status
	s := userModel.UserModel{
		UserName: userName,
		FullName: userName,
		Password: "x",
		Role:     constants.RoleStudent,
		Status:   &st,
		GroupID:  &f.group.GroupID,
		IsActive: true,
	}
	require.NoError(t, f.db.Create(&s).Error)
	require.NoError(t, f.db.Create(&groupModel.GroupStudentModel{
		GroupStudentGroupID:   f.group.GroupID,
		GroupStudentStudentID: s.ID,
	}).Error)
	return s
}

func (f *fixture) mark(t *testing.T, studentID uuid.UUID, day string, present bool, reason string) {
	t.Helper()
	d, err := time.Parse("2006-01-02", day)
	require.NoError(t, err)
	row := attendanceModel.AttendanceModel{
		AttendanceStudentID: studentID,
		AttendanceGroupID:   f.group.GroupID,
		AttendanceDate:      d.UTC(),
		AttendanceStatus:    constants.AttendanceAbsent,
	}
	if present {
		row.AttendanceStatus = constants.AttendancePresent
	}
	if !present && reason != "" {
		row.AttendanceReason = &reason
	}
	require.NoError(t, f.db.Create(&row).Error)
}

func (f *fixture) row(t *testing.T, studentID uuid.UUID, month string) model.PaymentModel {
	t.Helper()
	var p model.PaymentModel
	require.NoError(t, f.db.First(&p,
		"payment_student_id = ? AND payment_group_id = ? AND payment_month = ?",
		studentID, f.group.GroupID, month).Error)
	return p
}

func (f *fixture) balance(t *testing.T, studentID uuid.UUID) float64 {
	t.Helper()
	var s userModel.UserModel
	require.NoError(t, f.db.First(&s, "id = ?", studentID).Error)
	return s.Balance
}
