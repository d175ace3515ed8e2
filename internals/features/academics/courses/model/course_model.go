package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	userModel "educenter_backend/internals/features/users/user/model"
)

type CourseModel struct {
	CourseID          uuid.UUID  `gorm:"column:course_id;type:uuid;primaryKey" json:"course_id"`
	CourseTitle       string     `gorm:"column:course_title;size:150;not null" json:"course_title"`
	CourseSubject     *string    `gorm:"column:course_subject;size:100" json:"course_subject,omitempty"`
	CourseDescription *string    `gorm:"column:course_description;type:text" json:"course_description,omitempty"`
	CoursePrice       float64    `gorm:"column:course_price;type:numeric(12,2);not null;default:0" json:"course_price"` // per bulan
	CourseStartDate   *time.Time `gorm:"column:course_start_date" json:"course_start_date,omitempty"`

	CourseTeacherID *uuid.UUID `gorm:"column:course_teacher_id;type:uuid;index" json:"course_teacher_id,omitempty"`
	CourseCreatedBy *uuid.UUID `gorm:"column:course_created_by;type:uuid" json:"course_created_by,omitempty"`

	CourseCreatedAt time.Time `gorm:"column:course_created_at;autoCreateTime" json:"course_created_at"`
	CourseUpdatedAt time.Time `gorm:"column:course_updated_at;autoUpdateTime" json:"course_updated_at"`

	Teacher *userModel.UserModel `gorm:"foreignKey:CourseTeacherID;references:ID" json:"teacher,omitempty"`
}

func (CourseModel) TableName() string { return "courses" }

func (m *CourseModel) BeforeCreate(tx *gorm.DB) error {
	if m.CourseID == uuid.Nil {
		m.CourseID = uuid.New()
	}
	return nil
}

// StudentCourseModel: enrollment student ↔ course
type StudentCourseModel struct {
	StudentCourseID        uuid.UUID `gorm:"column:student_course_id;type:uuid;primaryKey" json:"student_course_id"`
	StudentCourseStudentID uuid.UUID `gorm:"column:student_course_student_id;type:uuid;not null;uniqueIndex:uq_student_course" json:"student_course_student_id"`
	StudentCourseCourseID  uuid.UUID `gorm:"column:student_course_course_id;type:uuid;not null;uniqueIndex:uq_student_course;index" json:"student_course_course_id"`
	StudentCourseCreatedAt time.Time `gorm:"column:student_course_created_at;autoCreateTime" json:"student_course_created_at"`
}

func (StudentCourseModel) TableName() string { return "student_courses" }

func (m *StudentCourseModel) BeforeCreate(tx *gorm.DB) error {
	if m.StudentCourseID == uuid.Nil {
		m.StudentCourseID = uuid.New()
	}
	return nil
}
