package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	uModel "educenter_backend/internals/features/users/user/model"
)

/* =======================================================
   REQUEST DTOs
   ======================================================= */

// CreateUserRequest: staff/admin dibuat oleh admin atau manager
type CreateUserRequest struct {
	UserName       string   `json:"user_name" validate:"required,min=3,max=50"`
	FullName       string   `json:"full_name" validate:"required,min=2,max=100"`
	Password       string   `json:"password" validate:"required,min=4,max=72"`
	Role           string   `json:"role" validate:"required,oneof=admin teacher manager student"`
	Phone          *string  `json:"phone,omitempty" validate:"omitempty,max=30"`
	Subject        *string  `json:"subject,omitempty" validate:"omitempty,max=100"`
	TeacherPercent *float64 `json:"teacher_percent,omitempty" validate:"omitempty,gte=0,lte=100"`
}

func (r *CreateUserRequest) Normalize() {
	r.UserName = strings.TrimSpace(r.UserName)
	r.FullName = strings.TrimSpace(r.FullName)
	r.Role = strings.ToLower(strings.TrimSpace(r.Role))
}

// ToModel: password di-hash di controller
func (r *CreateUserRequest) ToModel() *uModel.UserModel {
	return &uModel.UserModel{
		UserName:       r.UserName,
		FullName:       r.FullName,
		Password:       r.Password,
		Role:           r.Role,
		Phone:          r.Phone,
		Subject:        r.Subject,
		TeacherPercent: r.TeacherPercent,
		IsActive:       true,
	}
}

// UpdateUserRequest: partial update oleh admin
type UpdateUserRequest struct {
	FullName       *string  `json:"full_name,omitempty" validate:"omitempty,min=2,max=100"`
	Phone          *string  `json:"phone,omitempty" validate:"omitempty,max=30"`
	Role           *string  `json:"role,omitempty" validate:"omitempty,oneof=admin teacher manager student"`
	TeacherPercent *float64 `json:"teacher_percent,omitempty" validate:"omitempty,gte=0,lte=100"`
	IsActive       *bool    `json:"is_active,omitempty"`
	Password       *string  `json:"password,omitempty" validate:"omitempty,min=4,max=72"`
}

// ToUpdates: map kolom untuk gorm Updates (bool false tetap ikut)
func (r *UpdateUserRequest) ToUpdates() map[string]any {
	up := map[string]any{}
	if r.FullName != nil {
		up["full_name"] = strings.TrimSpace(*r.FullName)
	}
	if r.Phone != nil {
		up["phone"] = strings.TrimSpace(*r.Phone)
	}
	if r.Role != nil {
		up["role"] = strings.ToLower(strings.TrimSpace(*r.Role))
	}
	if r.TeacherPercent != nil {
		up["teacher_percent"] = *r.TeacherPercent
	}
	if r.IsActive != nil {
		up["is_active"] = *r.IsActive
	}
	return up
}

/* =======================================================
   RESPONSE DTO
   ======================================================= */

type UserResponse struct {
	ID             uuid.UUID  `json:"id"`
	UserName       string     `json:"user_name"`
	FullName       string     `json:"full_name"`
	Role           string     `json:"role"`
	Phone          *string    `json:"phone,omitempty"`
	Address        *string    `json:"address,omitempty"`
	Age            *int       `json:"age,omitempty"`
	Subject        *string    `json:"subject,omitempty"`
	Status         *string    `json:"status,omitempty"`
	Fee            float64    `json:"fee"`
	GroupID        *uuid.UUID `json:"group_id,omitempty"`
	Balance        float64    `json:"balance"`
	TeacherPercent *float64   `json:"teacher_percent,omitempty"`
	IsActive       bool       `json:"is_active"`
	CreatedAt      time.Time  `json:"created_at"`
}

func FromModel(u uModel.UserModel) UserResponse {
	return UserResponse{
		ID:             u.ID,
		UserName:       u.UserName,
		FullName:       u.FullName,
		Role:           u.Role,
		Phone:          u.Phone,
		Address:        u.Address,
		Age:            u.Age,
		Subject:        u.Subject,
		Status:         u.Status,
		Fee:            u.Fee,
		GroupID:        u.GroupID,
		Balance:        u.Balance,
		TeacherPercent: u.TeacherPercent,
		IsActive:       u.IsActive,
		CreatedAt:      u.CreatedAt,
	}
}

func FromModels(rows []uModel.UserModel) []UserResponse {
	out := make([]UserResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, FromModel(r))
	}
	return out
}
