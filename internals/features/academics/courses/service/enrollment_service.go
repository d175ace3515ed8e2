package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	model "educenter_backend/internals/features/academics/courses/model"
)

var (
	ErrCourseNotFound  = errors.New("course not found")
	ErrAlreadyEnrolled = errors.New("already enrolled")
)

func FindCourse(ctx context.Context, db *gorm.DB, id uuid.UUID) (*model.CourseModel, error) {
	var m model.CourseModel
	if err := db.WithContext(ctx).First(&m, "course_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	return &m, nil
}

func IsEnrolled(ctx context.Context, db *gorm.DB, studentID, courseID uuid.UUID) (bool, error) {
	var n int64
	err := db.WithContext(ctx).Model(&model.StudentCourseModel{}).
		Where("student_course_student_id = ? AND student_course_course_id = ?", studentID, courseID).
		Count(&n).Error
	return n > 0, err
}

// Enroll idempotent (dipakai saat create student / create group).
func Enroll(ctx context.Context, db *gorm.DB, studentID, courseID uuid.UUID) error {
	row := model.StudentCourseModel{
		StudentCourseStudentID: studentID,
		StudentCourseCourseID:  courseID,
	}
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "student_course_student_id"}, {Name: "student_course_course_id"}},
			DoNothing: true,
		}).
		Create(&row).Error
}

// EnrollStrict: gagal dengan ErrAlreadyEnrolled jika sudah terdaftar (self-enroll).
func EnrollStrict(ctx context.Context, db *gorm.DB, studentID, courseID uuid.UUID) error {
	ok, err := IsEnrolled(ctx, db, studentID, courseID)
	if err != nil {
		return err
	}
	if ok {
		return ErrAlreadyEnrolled
	}
	return Enroll(ctx, db, studentID, courseID)
}

func Unenroll(ctx context.Context, db *gorm.DB, studentID, courseID uuid.UUID) error {
	return db.WithContext(ctx).
		Where("student_course_student_id = ? AND student_course_course_id = ?", studentID, courseID).
		Delete(&model.StudentCourseModel{}).Error
}

// CurrentCourseID: enrollment terakhir siswa (nil kalau belum ada).
func CurrentCourseID(ctx context.Context, db *gorm.DB, studentID uuid.UUID) (*uuid.UUID, error) {
	var rows []model.StudentCourseModel
	if err := db.WithContext(ctx).
		Where("student_course_student_id = ?", studentID).
		Order("student_course_created_at DESC").
		Limit(1).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	id := rows[0].StudentCourseCourseID
	return &id, nil
}
