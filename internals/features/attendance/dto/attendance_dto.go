package dto

import (
	"time"

	"github.com/google/uuid"

	model "educenter_backend/internals/features/attendance/model"
)

type AttendanceRecord struct {
	StudentID uuid.UUID `json:"student_id" validate:"required"`
	IsPresent bool      `json:"is_present"`
	Reason    *string   `json:"reason,omitempty" validate:"omitempty,oneof=excused unexcused"`
}

// CreateAttendanceRequest: satu grup, satu tanggal (kosong = hari ini UTC)
type CreateAttendanceRequest struct {
	GroupID uuid.UUID          `json:"group_id" validate:"required"`
	Date    *string            `json:"date,omitempty"` // YYYY-MM-DD
	Records []AttendanceRecord `json:"records" validate:"required,min=1,dive"`
}

type UpdateReasonRequest struct {
	StudentID uuid.UUID `json:"student_id" validate:"required"`
	GroupID   uuid.UUID `json:"group_id" validate:"required"`
	Date      string    `json:"date" validate:"required"`
	Reason    string    `json:"reason" validate:"required,oneof=excused unexcused"`
}

type AttendanceResponse struct {
	AttendanceID        uuid.UUID  `json:"attendance_id"`
	AttendanceStudentID uuid.UUID  `json:"student_id"`
	AttendanceGroupID   uuid.UUID  `json:"group_id"`
	AttendanceTeacherID *uuid.UUID `json:"teacher_id,omitempty"`
	AttendanceDate      string     `json:"date"`
	AttendanceStatus    string     `json:"status"`
	AttendanceReason    *string    `json:"reason,omitempty"`
	AttendanceCreatedAt time.Time  `json:"created_at"`
}

func FromModel(m model.AttendanceModel) AttendanceResponse {
	return AttendanceResponse{
		AttendanceID:        m.AttendanceID,
		AttendanceStudentID: m.AttendanceStudentID,
		AttendanceGroupID:   m.AttendanceGroupID,
		AttendanceTeacherID: m.AttendanceTeacherID,
		AttendanceDate:      m.AttendanceDate.UTC().Format("2006-01-02"),
		AttendanceStatus:    m.AttendanceStatus,
		AttendanceReason:    m.AttendanceReason,
		AttendanceCreatedAt: m.AttendanceCreatedAt,
	}
}

func FromModels(rows []model.AttendanceModel) []AttendanceResponse {
	out := make([]AttendanceResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, FromModel(r))
	}
	return out
}

// ReportRow: satu siswa, tanda per tanggal (present | excused | absent | -)
type ReportRow struct {
	StudentID uuid.UUID         `json:"student_id"`
	FullName  string            `json:"full_name"`
	Marks     map[string]string `json:"marks"`
	Present   int               `json:"present"`
	Absent    int               `json:"absent"`
	Excused   int               `json:"excused"`
}

type GroupReport struct {
	GroupID uuid.UUID   `json:"group_id"`
	Month   string      `json:"month"`
	DayList []string    `json:"day_list"`
	Rows    []ReportRow `json:"rows"`
}
