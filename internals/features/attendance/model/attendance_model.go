package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AttendanceModel: satu baris per (student, group, tanggal)
type AttendanceModel struct {
	AttendanceID        uuid.UUID  `gorm:"column:attendance_id;type:uuid;primaryKey" json:"attendance_id"`
	AttendanceStudentID uuid.UUID  `gorm:"column:attendance_student_id;type:uuid;not null;uniqueIndex:uq_attendance_student_group_date;index" json:"attendance_student_id"`
	AttendanceGroupID   uuid.UUID  `gorm:"column:attendance_group_id;type:uuid;not null;uniqueIndex:uq_attendance_student_group_date;index" json:"attendance_group_id"`
	AttendanceTeacherID *uuid.UUID `gorm:"column:attendance_teacher_id;type:uuid" json:"attendance_teacher_id,omitempty"`

	// tengah malam UTC
	AttendanceDate time.Time `gorm:"column:attendance_date;not null;uniqueIndex:uq_attendance_student_group_date;index" json:"attendance_date"`

	AttendanceStatus string  `gorm:"column:attendance_status;type:varchar(10);not null" json:"attendance_status"` // present | absent
	AttendanceReason *string `gorm:"column:attendance_reason;type:varchar(10)" json:"attendance_reason,omitempty"` // excused | unexcused

	AttendanceCreatedAt time.Time `gorm:"column:attendance_created_at;autoCreateTime" json:"attendance_created_at"`
	AttendanceUpdatedAt time.Time `gorm:"column:attendance_updated_at;autoUpdateTime" json:"attendance_updated_at"`
}

func (AttendanceModel) TableName() string { return "attendance" }

func (m *AttendanceModel) BeforeCreate(tx *gorm.DB) error {
	if m.AttendanceID == uuid.Nil {
		m.AttendanceID = uuid.New()
	}
	return nil
}

// IsExcused: absen dengan alasan sah (tidak ditagih)
func (m *AttendanceModel) IsExcused() bool {
	return m.AttendanceReason != nil && *m.AttendanceReason == "excused"
}
