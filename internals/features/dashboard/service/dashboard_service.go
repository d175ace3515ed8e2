package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"educenter_backend/internals/constants"
	groupModel "educenter_backend/internals/features/academics/groups/model"
	attendanceModel "educenter_backend/internals/features/attendance/model"
	paymentModel "educenter_backend/internals/features/finance/payments/model"
	userModel "educenter_backend/internals/features/users/user/model"
	helper "educenter_backend/internals/helpers"
)

var ErrRoleNotSupported = errors.New("role not supported")

type StaffStats struct {
	Students map[string]int64 `json:"students"`
	Groups   map[string]int64 `json:"groups"`
	Payments map[string]any   `json:"payments"`
}

type TeacherStats struct {
	Groups        int   `json:"groups"`
	StudentsCount int64 `json:"students_count"`
	Graduated     int64 `json:"graduated"`
}

type StudentStats struct {
	Profile    map[string]any   `json:"profile"`
	Attendance map[string]int64 `json:"attendance"`
	Payments   map[string]any   `json:"payments"`
}

func sumAmount(q *gorm.DB) (float64, error) {
	var total float64
	err := q.Model(&paymentModel.PaymentModel{}).Select("COALESCE(SUM(payment_amount), 0)").Scan(&total).Error
	return helper.Round2(total), err
}

func sumReceipts(q *gorm.DB) (float64, error) {
	var total float64
	err := q.Model(&paymentModel.PaymentReceiptModel{}).Select("COALESCE(SUM(receipt_amount), 0)").Scan(&total).Error
	return helper.Round2(total), err
}

func staffStats(db *gorm.DB, now time.Time) (*StaffStats, error) {
	out := &StaffStats{
		Students: map[string]int64{},
		Groups:   map[string]int64{},
		Payments: map[string]any{},
	}

	var total int64
	if err := db.Model(&userModel.UserModel{}).Where("role = ?", constants.RoleStudent).Count(&total).Error; err != nil {
		return nil, err
	}
	out.Students["total"] = total
	for _, st := range constants.StudentStatuses {
		var n int64
		if err := db.Model(&userModel.UserModel{}).
			Where("role = ? AND status = ?", constants.RoleStudent, st).
			Count(&n).Error; err != nil {
			return nil, err
		}
		out.Students[st] = n
	}

	var groups int64
	if err := db.Model(&groupModel.GroupModel{}).Count(&groups).Error; err != nil {
		return nil, err
	}
	out.Groups["count"] = groups

	all, err := sumReceipts(db)
	if err != nil {
		return nil, err
	}
	today := helper.TruncateDay(now)
	todaySum, err := sumReceipts(db.Where("receipt_received_at >= ? AND receipt_received_at < ?", today, today.AddDate(0, 0, 1)))
	if err != nil {
		return nil, err
	}
	var debt float64
	if err := db.Model(&paymentModel.PaymentModel{}).
		Select("COALESCE(SUM(payment_debt_amount), 0)").
		Where("payment_month = ?", helper.MonthOf(now)).
		Scan(&debt).Error; err != nil {
		return nil, err
	}
	out.Payments["total"] = all
	out.Payments["today"] = todaySum
	out.Payments["current_month_debt"] = helper.Round2(debt)
	return out, nil
}

func teacherStats(db *gorm.DB, teacherID uuid.UUID) (*TeacherStats, error) {
	var groupIDs []uuid.UUID
	if err := db.Model(&groupModel.GroupModel{}).Where("group_teacher_id = ?", teacherID).Pluck("group_id", &groupIDs).Error; err != nil {
		return nil, err
	}
	out := &TeacherStats{Groups: len(groupIDs)}
	if len(groupIDs) == 0 {
		return out, nil
	}
	sub := db.Model(&groupModel.GroupStudentModel{}).
		Select("group_student_student_id").
		Where("group_student_group_id IN ?", groupIDs)
	if err := db.Model(&userModel.UserModel{}).Where("id IN (?)", sub).Count(&out.StudentsCount).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&userModel.UserModel{}).
		Where("id IN (?) AND status = ?", sub, constants.StudentGraduated).
		Count(&out.Graduated).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func studentStats(db *gorm.DB, studentID uuid.UUID) (*StudentStats, error) {
	var s userModel.UserModel
	if err := db.First(&s, "id = ? AND role = ?", studentID, constants.RoleStudent).Error; err != nil {
		return nil, err
	}

	var total, attended int64
	if err := db.Model(&attendanceModel.AttendanceModel{}).Where("attendance_student_id = ?", studentID).Count(&total).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&attendanceModel.AttendanceModel{}).
		Where("attendance_student_id = ? AND attendance_status = ?", studentID, constants.AttendancePresent).
		Count(&attended).Error; err != nil {
		return nil, err
	}

	paid, err := sumAmount(db.Where("payment_student_id = ?", studentID))
	if err != nil {
		return nil, err
	}

	return &StudentStats{
		Profile: map[string]any{
			"full_name": s.FullName,
			"phone":     s.Phone,
			"status":    s.Status,
		},
		Attendance: map[string]int64{
			"attended": attended,
			"missed":   total - attended,
			"total":    total,
		},
		Payments: map[string]any{
			"total_paid": paid,
			"balance":    s.Balance,
		},
	}, nil
}

// Stats: statistik dashboard sesuai role pemanggil.
func Stats(ctx context.Context, db *gorm.DB, userID uuid.UUID, role string, now time.Time) (any, error) {
	tx := db.WithContext(ctx)
	switch role {
	case constants.RoleAdmin, constants.RoleManager:
		return staffStats(tx, now)
	case constants.RoleTeacher:
		return teacherStats(tx, userID)
	case constants.RoleStudent:
		return studentStats(tx, userID)
	}
	return nil, ErrRoleNotSupported
}
