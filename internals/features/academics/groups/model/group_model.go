package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	courseModel "educenter_backend/internals/features/academics/courses/model"
	userModel "educenter_backend/internals/features/users/user/model"
)

type GroupModel struct {
	GroupID          uuid.UUID  `gorm:"column:group_id;type:uuid;primaryKey" json:"group_id"`
	GroupName        string     `gorm:"column:group_name;size:120;not null;uniqueIndex:uq_groups_name" json:"group_name"`
	GroupDescription *string    `gorm:"column:group_description;type:text" json:"group_description,omitempty"`
	GroupCourseID    *uuid.UUID `gorm:"column:group_course_id;type:uuid;index" json:"group_course_id,omitempty"`
	GroupTeacherID   *uuid.UUID `gorm:"column:group_teacher_id;type:uuid;index" json:"group_teacher_id,omitempty"`

	GroupCreatedAt time.Time `gorm:"column:group_created_at;autoCreateTime" json:"group_created_at"`
	GroupUpdatedAt time.Time `gorm:"column:group_updated_at;autoUpdateTime" json:"group_updated_at"`

	Course  *courseModel.CourseModel `gorm:"foreignKey:GroupCourseID;references:CourseID" json:"course,omitempty"`
	Teacher *userModel.UserModel     `gorm:"foreignKey:GroupTeacherID;references:ID" json:"teacher,omitempty"`
}

func (GroupModel) TableName() string { return "study_groups" }

func (m *GroupModel) BeforeCreate(tx *gorm.DB) error {
	if m.GroupID == uuid.Nil {
		m.GroupID = uuid.New()
	}
	return nil
}

// GroupStudentModel: roster grup (satu siswa bisa di beberapa grup)
type GroupStudentModel struct {
	GroupStudentID        uuid.UUID `gorm:"column:group_student_id;type:uuid;primaryKey" json:"group_student_id"`
	GroupStudentGroupID   uuid.UUID `gorm:"column:group_student_group_id;type:uuid;not null;uniqueIndex:uq_group_student;index" json:"group_student_group_id"`
	GroupStudentStudentID uuid.UUID `gorm:"column:group_student_student_id;type:uuid;not null;uniqueIndex:uq_group_student;index" json:"group_student_student_id"`
	GroupStudentCreatedAt time.Time `gorm:"column:group_student_created_at;autoCreateTime" json:"group_student_created_at"`
}

func (GroupStudentModel) TableName() string { return "group_students" }

func (m *GroupStudentModel) BeforeCreate(tx *gorm.DB) error {
	if m.GroupStudentID == uuid.Nil {
		m.GroupStudentID = uuid.New()
	}
	return nil
}
