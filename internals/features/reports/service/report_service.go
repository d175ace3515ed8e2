package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"educenter_backend/internals/constants"
	courseModel "educenter_backend/internals/features/academics/courses/model"
	groupModel "educenter_backend/internals/features/academics/groups/model"
	attendanceModel "educenter_backend/internals/features/attendance/model"
	paymentModel "educenter_backend/internals/features/finance/payments/model"
	userModel "educenter_backend/internals/features/users/user/model"
	helper "educenter_backend/internals/helpers"
)

var ErrInvalidPeriod = errors.New("period must be daily, weekly or monthly")

// PeriodStart: awal periode laporan (UTC, tengah malam).
func PeriodStart(period string, now time.Time) (time.Time, error) {
	today := helper.TruncateDay(now)
	switch period {
	case "", "daily":
		return today, nil
	case "weekly":
		return today.AddDate(0, 0, -7), nil
	case "monthly":
		return today.AddDate(0, 0, -30), nil
	}
	return time.Time{}, ErrInvalidPeriod
}

type StudentStats struct {
	Total          int64   `json:"total"`
	New            int64   `json:"new"`
	Leads          int64   `json:"leads"`
	Studying       int64   `json:"studying"`
	ConversionRate float64 `json:"conversion_rate"`
}

type GroupStats struct {
	ActiveGroups int64 `json:"active_groups"`
	NewStarted   int64 `json:"new_started"`
}

type PaymentStats struct {
	TotalAmount    float64 `json:"total_amount"`
	AveragePayment float64 `json:"average_payment"`
	DebtorCount    int     `json:"debtor_count"`
}

type AttendanceStats struct {
	AttendanceRate float64 `json:"attendance_rate"`
	TotalRecords   int64   `json:"total_records"`
}

type CourseStats struct {
	Active   int64 `json:"active"`
	Upcoming int64 `json:"upcoming"`
}

type Summary struct {
	Period     string          `json:"period"`
	From       string          `json:"from"`
	Students   StudentStats    `json:"students"`
	Groups     GroupStats      `json:"groups"`
	Payments   PaymentStats    `json:"payments"`
	Attendance AttendanceStats `json:"attendance"`
	Courses    CourseStats     `json:"courses"`
}

func countStudents(db *gorm.DB, where string, args ...any) (int64, error) {
	var n int64
	q := db.Model(&userModel.UserModel{}).Where("role = ?", constants.RoleStudent)
	if where != "" {
		q = q.Where(where, args...)
	}
	err := q.Count(&n).Error
	return n, err
}

// Debtors: siswa yang baris tagihan terbarunya (per grup) masih punya debt.
func Debtors(ctx context.Context, db *gorm.DB) (int, error) {
	type row struct {
		PaymentStudentID  string
		PaymentGroupID    string
		PaymentDebtAmount float64
	}
	var rows []row
	if err := db.WithContext(ctx).Model(&paymentModel.PaymentModel{}).
		Select("payment_student_id, payment_group_id, payment_debt_amount").
		Order("payment_month DESC").
		Scan(&rows).Error; err != nil {
		return 0, err
	}
	seen := map[string]bool{}
	debtors := map[string]bool{}
	for _, r := range rows {
		key := r.PaymentStudentID + "|" + r.PaymentGroupID
		if seen[key] {
			continue
		}
		seen[key] = true
		if r.PaymentDebtAmount > 0 {
			debtors[r.PaymentStudentID] = true
		}
	}
	return len(debtors), nil
}

// BuildSummary menyusun ringkasan untuk periode daily | weekly | monthly.
func BuildSummary(ctx context.Context, db *gorm.DB, period string, now time.Time) (*Summary, error) {
	start, err := PeriodStart(period, now)
	if err != nil {
		return nil, err
	}
	if period == "" {
		period = "daily"
	}
	tx := db.WithContext(ctx)
	out := &Summary{Period: period, From: start.Format("2006-01-02")}

	// siswa
	if out.Students.Total, err = countStudents(tx, ""); err != nil {
		return nil, err
	}
	if out.Students.New, err = countStudents(tx, "created_at >= ?", start); err != nil {
		return nil, err
	}
	if out.Students.Leads, err = countStudents(tx, "status = ?", constants.StudentInterested); err != nil {
		return nil, err
	}
	if out.Students.Studying, err = countStudents(tx, "status = ?", constants.StudentStudying); err != nil {
		return nil, err
	}
	if out.Students.Leads > 0 {
		out.Students.ConversionRate = helper.Round2(float64(out.Students.Studying) / float64(out.Students.Leads) * 100)
	}

	// grup
	if err := tx.Model(&groupModel.GroupModel{}).Count(&out.Groups.ActiveGroups).Error; err != nil {
		return nil, err
	}
	if err := tx.Model(&groupModel.GroupModel{}).Where("group_created_at >= ?", start).Count(&out.Groups.NewStarted).Error; err != nil {
		return nil, err
	}

	// uang yang diterima di periode ini (satu receipt per pembayaran)
	var agg struct {
		Total float64
		Cnt   int64
	}
	if err := tx.Model(&paymentModel.PaymentReceiptModel{}).
		Select("COALESCE(SUM(receipt_amount), 0) AS total, COUNT(*) AS cnt").
		Where("receipt_received_at >= ?", start).
		Scan(&agg).Error; err != nil {
		return nil, err
	}
	out.Payments.TotalAmount = helper.Round2(agg.Total)
	if agg.Cnt > 0 {
		out.Payments.AveragePayment = helper.Round2(agg.Total / float64(agg.Cnt))
	}
	if out.Payments.DebtorCount, err = Debtors(ctx, db); err != nil {
		return nil, err
	}

	// absensi
	var present int64
	if err := tx.Model(&attendanceModel.AttendanceModel{}).
		Where("attendance_date >= ?", start).
		Count(&out.Attendance.TotalRecords).Error; err != nil {
		return nil, err
	}
	if err := tx.Model(&attendanceModel.AttendanceModel{}).
		Where("attendance_date >= ? AND attendance_status = ?", start, constants.AttendancePresent).
		Count(&present).Error; err != nil {
		return nil, err
	}
	if out.Attendance.TotalRecords > 0 {
		out.Attendance.AttendanceRate = helper.Round2(float64(present) / float64(out.Attendance.TotalRecords) * 100)
	}

	// course
	today := helper.TruncateDay(now)
	if err := tx.Model(&courseModel.CourseModel{}).
		Where("course_start_date IS NULL OR course_start_date <= ?", today).
		Count(&out.Courses.Active).Error; err != nil {
		return nil, err
	}
	if err := tx.Model(&courseModel.CourseModel{}).
		Where("course_start_date > ?", today).
		Count(&out.Courses.Upcoming).Error; err != nil {
		return nil, err
	}

	return out, nil
}

type TrendPoint struct {
	Date  string  `json:"date"`
	Total float64 `json:"total"`
}

// Trend: uang masuk 7 hari terakhir per tanggal diterima.
func Trend(ctx context.Context, db *gorm.DB, now time.Time) ([]TrendPoint, error) {
	today := helper.TruncateDay(now)
	start := today.AddDate(0, 0, -6)

	var rows []paymentModel.PaymentReceiptModel
	if err := db.WithContext(ctx).
		Select("receipt_amount", "receipt_received_at").
		Where("receipt_received_at >= ?", start).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	byDay := make(map[string]float64, 7)
	for _, r := range rows {
		byDay[helper.TruncateDay(r.ReceiptReceivedAt).Format("2006-01-02")] += r.ReceiptAmount
	}

	out := make([]TrendPoint, 0, 7)
	for i := 0; i < 7; i++ {
		d := start.AddDate(0, 0, i).Format("2006-01-02")
		out = append(out, TrendPoint{Date: d, Total: helper.Round2(byDay[d])})
	}
	return out, nil
}

/* =========================================================
   EXCEL
========================================================= */

const reportSheet = "Report"

// SummaryRows: pasangan Metric / Value untuk export.
func SummaryRows(s *Summary) [][2]any {
	return [][2]any{
		{"Period", s.Period},
		{"From", s.From},
		{"Total Students", s.Students.Total},
		{"New Students", s.Students.New},
		{"Leads", s.Students.Leads},
		{"Studying", s.Students.Studying},
		{"Conversion %", s.Students.ConversionRate},
		{"Payments Total", s.Payments.TotalAmount},
		{"Avg Payment", s.Payments.AveragePayment},
		{"Debtors", s.Payments.DebtorCount},
		{"Attendance %", s.Attendance.AttendanceRate},
		{"Attendance Records", s.Attendance.TotalRecords},
		{"Groups", s.Groups.ActiveGroups},
		{"New Groups", s.Groups.NewStarted},
		{"Active Courses", s.Courses.Active},
		{"Upcoming Courses", s.Courses.Upcoming},
	}
}

// ExportExcel menulis ringkasan ke workbook xlsx (satu sheet Metric / Value).
func ExportExcel(s *Summary) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", reportSheet); err != nil {
		return nil, err
	}
	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"1976D2"}, Pattern: 1},
	})
	if err != nil {
		return nil, err
	}

	if err := f.SetSheetRow(reportSheet, "A1", &[]any{"Metric", "Value"}); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(reportSheet, "A1", "B1", header); err != nil {
		return nil, err
	}
	for i, r := range SummaryRows(s) {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(reportSheet, cell, &[]any{r[0], r[1]}); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
	}
	if err := f.SetColWidth(reportSheet, "A", "A", 24); err != nil {
		return nil, err
	}

	return f.WriteToBuffer()
}
