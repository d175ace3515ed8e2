package dto

import (
	"strings"

	"github.com/google/uuid"

	"educenter_backend/internals/constants"
	userDTO "educenter_backend/internals/features/users/user/dto"
	uModel "educenter_backend/internals/features/users/user/model"
)

const DefaultStudentPassword = "1234"

type CreateStudentRequest struct {
	UserName string     `json:"user_name" validate:"required,min=3,max=50"`
	FullName string     `json:"full_name" validate:"required,min=2,max=100"`
	Password string     `json:"password,omitempty" validate:"omitempty,min=4,max=72"`
	Phone    *string    `json:"phone,omitempty" validate:"omitempty,max=30"`
	Address  *string    `json:"address,omitempty" validate:"omitempty,max=255"`
	Age      *int       `json:"age,omitempty" validate:"omitempty,gte=3,lte=120"`
	Status   string     `json:"status,omitempty" validate:"omitempty,oneof=interested studying left graduated"`
	CourseID *uuid.UUID `json:"course_id,omitempty"`
	GroupID  *uuid.UUID `json:"group_id,omitempty"`
}

func (r *CreateStudentRequest) Normalize() {
	r.UserName = strings.TrimSpace(r.UserName)
	r.FullName = strings.TrimSpace(r.FullName)
	r.Status = strings.ToLower(strings.TrimSpace(r.Status))
	if r.Status == "" {
		r.Status = constants.StudentStudying
	}
	if r.Password == "" {
		r.Password = DefaultStudentPassword
	}
}

// ToModel: password di-hash di controller, fee diisi dari harga course
func (r *CreateStudentRequest) ToModel() *uModel.UserModel {
	status := r.Status
	return &uModel.UserModel{
		UserName: r.UserName,
		FullName: r.FullName,
		Password: r.Password,
		Role:     constants.RoleStudent,
		Phone:    r.Phone,
		Address:  r.Address,
		Age:      r.Age,
		Status:   &status,
		IsActive: true,
	}
}

type UpdateStudentRequest struct {
	FullName *string    `json:"full_name,omitempty" validate:"omitempty,min=2,max=100"`
	Phone    *string    `json:"phone,omitempty" validate:"omitempty,max=30"`
	Address  *string    `json:"address,omitempty" validate:"omitempty,max=255"`
	Age      *int       `json:"age,omitempty" validate:"omitempty,gte=3,lte=120"`
	Status   *string    `json:"status,omitempty" validate:"omitempty,oneof=interested studying left graduated"`
	Password *string    `json:"password,omitempty" validate:"omitempty,min=4,max=72"`
	CourseID *uuid.UUID `json:"course_id,omitempty"`
}

func (r *UpdateStudentRequest) ToUpdates() map[string]any {
	up := map[string]any{}
	if r.FullName != nil {
		up["full_name"] = strings.TrimSpace(*r.FullName)
	}
	if r.Phone != nil {
		up["phone"] = strings.TrimSpace(*r.Phone)
	}
	if r.Address != nil {
		up["address"] = strings.TrimSpace(*r.Address)
	}
	if r.Age != nil {
		up["age"] = *r.Age
	}
	if r.Status != nil {
		up["status"] = strings.ToLower(strings.TrimSpace(*r.Status))
	}
	return up
}

type StudentResponse struct {
	userDTO.UserResponse
	CourseID *uuid.UUID `json:"course_id,omitempty"`
}
