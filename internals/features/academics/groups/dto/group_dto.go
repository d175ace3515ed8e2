package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	model "educenter_backend/internals/features/academics/groups/model"
	userDTO "educenter_backend/internals/features/users/user/dto"
	userModel "educenter_backend/internals/features/users/user/model"
)

type CreateGroupRequest struct {
	GroupName        string      `json:"group_name" validate:"required,min=1,max=120"`
	GroupDescription *string     `json:"group_description,omitempty"`
	GroupCourseID    *uuid.UUID  `json:"group_course_id,omitempty"`
	GroupTeacherID   *uuid.UUID  `json:"group_teacher_id,omitempty"`
	StudentIDs       []uuid.UUID `json:"student_ids,omitempty"`
}

func (r *CreateGroupRequest) ToModel() *model.GroupModel {
	return &model.GroupModel{
		GroupName:        strings.TrimSpace(r.GroupName),
		GroupDescription: r.GroupDescription,
		GroupCourseID:    r.GroupCourseID,
		GroupTeacherID:   r.GroupTeacherID,
	}
}

// StudentIDs nil = roster tidak disentuh; slice kosong = roster dikosongkan.
type UpdateGroupRequest struct {
	GroupName        *string      `json:"group_name,omitempty" validate:"omitempty,min=1,max=120"`
	GroupDescription *string      `json:"group_description,omitempty"`
	GroupCourseID    *uuid.UUID   `json:"group_course_id,omitempty"`
	GroupTeacherID   *uuid.UUID   `json:"group_teacher_id,omitempty"`
	StudentIDs       *[]uuid.UUID `json:"student_ids,omitempty"`
}

func (r *UpdateGroupRequest) ToUpdates() map[string]any {
	up := map[string]any{}
	if r.GroupName != nil {
		up["group_name"] = strings.TrimSpace(*r.GroupName)
	}
	if r.GroupDescription != nil {
		up["group_description"] = *r.GroupDescription
	}
	if r.GroupCourseID != nil {
		up["group_course_id"] = *r.GroupCourseID
	}
	if r.GroupTeacherID != nil {
		up["group_teacher_id"] = *r.GroupTeacherID
	}
	return up
}

type GroupResponse struct {
	GroupID          uuid.UUID              `json:"group_id"`
	GroupName        string                 `json:"group_name"`
	GroupDescription *string                `json:"group_description,omitempty"`
	GroupCourseID    *uuid.UUID             `json:"group_course_id,omitempty"`
	CourseTitle      *string                `json:"course_title,omitempty"`
	CoursePrice      *float64               `json:"course_price,omitempty"`
	GroupTeacherID   *uuid.UUID             `json:"group_teacher_id,omitempty"`
	TeacherName      *string                `json:"teacher_name,omitempty"`
	Students         []userDTO.UserResponse `json:"students"`
	StudentsCount    int                    `json:"students_count"`
	GroupCreatedAt   time.Time              `json:"group_created_at"`
}

func FromModel(m model.GroupModel, students []userModel.UserModel) GroupResponse {
	out := GroupResponse{
		GroupID:          m.GroupID,
		GroupName:        m.GroupName,
		GroupDescription: m.GroupDescription,
		GroupCourseID:    m.GroupCourseID,
		GroupTeacherID:   m.GroupTeacherID,
		Students:         userDTO.FromModels(students),
		StudentsCount:    len(students),
		GroupCreatedAt:   m.GroupCreatedAt,
	}
	if m.Course != nil {
		title, price := m.Course.CourseTitle, m.Course.CoursePrice
		out.CourseTitle = &title
		out.CoursePrice = &price
	}
	if m.Teacher != nil {
		name := m.Teacher.FullName
		out.TeacherName = &name
	}
	return out
}
