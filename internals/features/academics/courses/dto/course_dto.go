package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	model "educenter_backend/internals/features/academics/courses/model"
)

type CreateCourseRequest struct {
	CourseTitle       string     `json:"course_title" validate:"required,min=2,max=150"`
	CourseSubject     *string    `json:"course_subject,omitempty" validate:"omitempty,max=100"`
	CourseDescription *string    `json:"course_description,omitempty"`
	CoursePrice       float64    `json:"course_price" validate:"gte=0"`
	CourseStartDate   *string    `json:"course_start_date,omitempty"` // YYYY-MM-DD
	CourseTeacherID   *uuid.UUID `json:"course_teacher_id,omitempty"`
}

func (r *CreateCourseRequest) ToModel(createdBy uuid.UUID, start *time.Time) *model.CourseModel {
	return &model.CourseModel{
		CourseTitle:       strings.TrimSpace(r.CourseTitle),
		CourseSubject:     r.CourseSubject,
		CourseDescription: r.CourseDescription,
		CoursePrice:       r.CoursePrice,
		CourseStartDate:   start,
		CourseTeacherID:   r.CourseTeacherID,
		CourseCreatedBy:   &createdBy,
	}
}

type UpdateCourseRequest struct {
	CourseTitle       *string    `json:"course_title,omitempty" validate:"omitempty,min=2,max=150"`
	CourseSubject     *string    `json:"course_subject,omitempty" validate:"omitempty,max=100"`
	CourseDescription *string    `json:"course_description,omitempty"`
	CoursePrice       *float64   `json:"course_price,omitempty" validate:"omitempty,gte=0"`
	CourseStartDate   *string    `json:"course_start_date,omitempty"`
	CourseTeacherID   *uuid.UUID `json:"course_teacher_id,omitempty"`
}

func (r *UpdateCourseRequest) ToUpdates() map[string]any {
	up := map[string]any{}
	if r.CourseTitle != nil {
		up["course_title"] = strings.TrimSpace(*r.CourseTitle)
	}
	if r.CourseSubject != nil {
		up["course_subject"] = *r.CourseSubject
	}
	if r.CourseDescription != nil {
		up["course_description"] = *r.CourseDescription
	}
	if r.CoursePrice != nil {
		up["course_price"] = *r.CoursePrice
	}
	if r.CourseTeacherID != nil {
		up["course_teacher_id"] = *r.CourseTeacherID
	}
	return up
}

type CourseResponse struct {
	CourseID          uuid.UUID  `json:"course_id"`
	CourseTitle       string     `json:"course_title"`
	CourseSubject     *string    `json:"course_subject,omitempty"`
	CourseDescription *string    `json:"course_description,omitempty"`
	CoursePrice       float64    `json:"course_price"`
	CourseStartDate   *time.Time `json:"course_start_date,omitempty"`
	CourseTeacherID   *uuid.UUID `json:"course_teacher_id,omitempty"`
	TeacherName       *string    `json:"teacher_name,omitempty"`
	StudentsCount     int64      `json:"students_count"`
	CourseCreatedAt   time.Time  `json:"course_created_at"`
}

func FromModel(m model.CourseModel, studentsCount int64) CourseResponse {
	out := CourseResponse{
		CourseID:          m.CourseID,
		CourseTitle:       m.CourseTitle,
		CourseSubject:     m.CourseSubject,
		CourseDescription: m.CourseDescription,
		CoursePrice:       m.CoursePrice,
		CourseStartDate:   m.CourseStartDate,
		CourseTeacherID:   m.CourseTeacherID,
		StudentsCount:     studentsCount,
		CourseCreatedAt:   m.CourseCreatedAt,
	}
	if m.Teacher != nil {
		name := m.Teacher.FullName
		out.TeacherName = &name
	}
	return out
}
