package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"educenter_backend/internals/constants"
	dto "educenter_backend/internals/features/attendance/dto"
	model "educenter_backend/internals/features/attendance/model"
	userModel "educenter_backend/internals/features/users/user/model"
	helper "educenter_backend/internals/helpers"
)

var (
	ErrAttendanceExists   = errors.New("attendance already exists for this date")
	ErrAttendanceNotFound = errors.New("attendance record not found")
)

// Counts: rekap absensi satu siswa dalam satu grup selama sebulan.
type Counts struct {
	Present int
	Absent  int // tanpa alasan / unexcused
	Excused int
	Total   int
}

// Chargeable: pertemuan yang ditagih (hadir + absen tanpa izin).
func (c Counts) Chargeable() int {
	return c.Present + c.Absent
}

/* ===================== CREATE (bulk) ===================== */

// CreateBulk mencatat absensi satu grup untuk satu tanggal.
// Gagal dengan ErrAttendanceExists kalau grup sudah punya absensi di tanggal tsb.
// student_id yang bukan siswa dilewati.
func CreateBulk(ctx context.Context, db *gorm.DB, groupID uuid.UUID, teacherID *uuid.UUID, date time.Time, records []dto.AttendanceRecord) ([]model.AttendanceModel, error) {
	day := helper.TruncateDay(date)
	var out []model.AttendanceModel

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&model.AttendanceModel{}).
			Where("attendance_group_id = ? AND attendance_date = ?", groupID, day).
			Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrAttendanceExists
		}

		ids := make([]uuid.UUID, 0, len(records))
		for _, r := range records {
			ids = append(ids, r.StudentID)
		}
		var valid []uuid.UUID
		if err := tx.Model(&userModel.UserModel{}).
			Where("id IN ? AND role = ?", ids, constants.RoleStudent).
			Pluck("id", &valid).Error; err != nil {
			return err
		}
		isStudent := make(map[uuid.UUID]bool, len(valid))
		for _, id := range valid {
			isStudent[id] = true
		}

		seen := map[uuid.UUID]bool{}
		for _, r := range records {
			if !isStudent[r.StudentID] || seen[r.StudentID] {
				continue
			}
			seen[r.StudentID] = true

			row := model.AttendanceModel{
				AttendanceStudentID: r.StudentID,
				AttendanceGroupID:   groupID,
				AttendanceTeacherID: teacherID,
				AttendanceDate:      day,
				AttendanceStatus:    constants.AttendanceAbsent,
			}
			if r.IsPresent {
				row.AttendanceStatus = constants.AttendancePresent
			} else {
				row.AttendanceReason = r.Reason
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
			out = append(out, row)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

/* ===================== REASON ===================== */

func UpdateReason(ctx context.Context, db *gorm.DB, studentID, groupID uuid.UUID, date time.Time, reason string) (*model.AttendanceModel, error) {
	var m model.AttendanceModel
	if err := db.WithContext(ctx).
		Where("attendance_student_id = ? AND attendance_group_id = ? AND attendance_date = ?",
			studentID, groupID, helper.TruncateDay(date)).
		First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAttendanceNotFound
		}
		return nil, err
	}
	if err := db.WithContext(ctx).Model(&m).Update("attendance_reason", reason).Error; err != nil {
		return nil, err
	}
	m.AttendanceReason = &reason
	return &m, nil
}

/* ===================== COUNTS ===================== */

func monthRows(ctx context.Context, db *gorm.DB, groupIDs []uuid.UUID, month string) ([]model.AttendanceModel, error) {
	var rows []model.AttendanceModel
	if len(groupIDs) == 0 {
		return rows, nil
	}
	start, end := helper.MonthRange(month)
	err := db.WithContext(ctx).
		Where("attendance_group_id IN ? AND attendance_date >= ? AND attendance_date < ?", groupIDs, start, end).
		Order("attendance_date ASC").
		Find(&rows).Error
	return rows, err
}

func tally(c *Counts, r model.AttendanceModel) {
	c.Total++
	switch {
	case r.AttendanceStatus == constants.AttendancePresent:
		c.Present++
	case r.IsExcused():
		c.Excused++
	default:
		c.Absent++
	}
}

// MonthCountsByStudent: rekap absensi per siswa untuk satu grup di bulan tsb.
func MonthCountsByStudent(ctx context.Context, db *gorm.DB, groupID uuid.UUID, month string) (map[uuid.UUID]Counts, error) {
	rows, err := monthRows(ctx, db, []uuid.UUID{groupID}, month)
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]Counts)
	for _, r := range rows {
		c := out[r.AttendanceStudentID]
		tally(&c, r)
		out[r.AttendanceStudentID] = c
	}
	return out, nil
}

// MonthCounts: rekap satu siswa di satu grup.
func MonthCounts(ctx context.Context, db *gorm.DB, studentID, groupID uuid.UUID, month string) (Counts, error) {
	all, err := MonthCountsByStudent(ctx, db, groupID, month)
	if err != nil {
		return Counts{}, err
	}
	return all[studentID], nil
}

// GroupsTotals: rekap gabungan beberapa grup (dipakai payroll teacher).
func GroupsTotals(ctx context.Context, db *gorm.DB, groupIDs []uuid.UUID, month string) (Counts, error) {
	rows, err := monthRows(ctx, db, groupIDs, month)
	if err != nil {
		return Counts{}, err
	}
	var c Counts
	for _, r := range rows {
		tally(&c, r)
	}
	return c, nil
}

// AttendanceRate: present/total*100, 100 kalau belum ada catatan.
func (c Counts) AttendanceRate() float64 {
	if c.Total == 0 {
		return 100
	}
	return helper.Round2(float64(c.Present) / float64(c.Total) * 100)
}

/* ===================== REPORT ===================== */

// BuildGroupReport menyusun grid absensi bulanan untuk roster grup.
func BuildGroupReport(ctx context.Context, db *gorm.DB, groupID uuid.UUID, month string, students []userModel.UserModel) (*dto.GroupReport, error) {
	rows, err := monthRows(ctx, db, []uuid.UUID{groupID}, month)
	if err != nil {
		return nil, err
	}

	daySet := map[string]struct{}{}
	byStudent := map[uuid.UUID]map[string]model.AttendanceModel{}
	for _, r := range rows {
		day := r.AttendanceDate.UTC().Format("2006-01-02")
		daySet[day] = struct{}{}
		if byStudent[r.AttendanceStudentID] == nil {
			byStudent[r.AttendanceStudentID] = map[string]model.AttendanceModel{}
		}
		byStudent[r.AttendanceStudentID][day] = r
	}
	days := make([]string, 0, len(daySet))
	for d := range daySet {
		days = append(days, d)
	}
	sort.Strings(days)

	report := &dto.GroupReport{
		GroupID: groupID,
		Month:   month,
		DayList: days,
		Rows:    make([]dto.ReportRow, 0, len(students)),
	}
	if len(days) == 0 {
		return report, nil
	}

	for _, s := range students {
		row := dto.ReportRow{StudentID: s.ID, FullName: s.FullName, Marks: make(map[string]string, len(days))}
		for _, d := range days {
			att, ok := byStudent[s.ID][d]
			switch {
			case !ok:
				row.Marks[d] = "-"
			case att.AttendanceStatus == constants.AttendancePresent:
				row.Marks[d] = constants.AttendancePresent
				row.Present++
			case att.IsExcused():
				row.Marks[d] = constants.ReasonExcused
				row.Excused++
			default:
				row.Marks[d] = constants.AttendanceAbsent
				row.Absent++
			}
		}
		report.Rows = append(report.Rows, row)
	}
	return report, nil
}
