package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserModel merepresentasikan tabel users (admin, teacher, manager, student)
type UserModel struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserName string    `gorm:"size:50;not null;uniqueIndex:uq_users_user_name" json:"user_name"`
	FullName string    `gorm:"size:100;not null" json:"full_name"`
	Password string    `gorm:"not null" json:"-"`
	Role     string    `gorm:"type:varchar(20);not null;index" json:"role"`

	Phone   *string `gorm:"size:30" json:"phone,omitempty"`
	Address *string `gorm:"size:255" json:"address,omitempty"`
	Age     *int    `json:"age,omitempty"`
	Subject *string `gorm:"size:100" json:"subject,omitempty"`

	// khusus student
	Status  *string    `gorm:"type:varchar(20);index" json:"status,omitempty"`
	Fee     float64    `gorm:"type:numeric(12,2);not null;default:0" json:"fee"`
	GroupID *uuid.UUID `gorm:"type:uuid;index" json:"group_id,omitempty"`
	// kredit (kelebihan bayar) yang dibawa ke tagihan berikutnya, tidak pernah negatif
	Balance float64 `gorm:"type:numeric(12,2);not null;default:0" json:"balance"`

	// khusus teacher: override persentase gaji (nil = pakai salary_settings)
	TeacherPercent *float64 `gorm:"type:numeric(5,2)" json:"teacher_percent,omitempty"`

	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName memastikan nama tabel sesuai dengan skema database
func (UserModel) TableName() string {
	return "users"
}

func (u *UserModel) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

func (u *UserModel) StatusValue() string {
	if u.Status == nil {
		return ""
	}
	return *u.Status
}
