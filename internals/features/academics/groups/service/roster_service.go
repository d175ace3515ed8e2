package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"educenter_backend/internals/constants"
	courseModel "educenter_backend/internals/features/academics/courses/model"
	courseService "educenter_backend/internals/features/academics/courses/service"
	model "educenter_backend/internals/features/academics/groups/model"
	userModel "educenter_backend/internals/features/users/user/model"
)

var ErrGroupNotFound = errors.New("group not found")

func FindGroup(ctx context.Context, db *gorm.DB, id uuid.UUID) (*model.GroupModel, error) {
	var g model.GroupModel
	if err := db.WithContext(ctx).Preload("Course").First(&g, "group_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}
	return &g, nil
}

// RosterStudentIDs: id siswa di roster grup.
func RosterStudentIDs(ctx context.Context, db *gorm.DB, groupID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := db.WithContext(ctx).Model(&model.GroupStudentModel{}).
		Where("group_student_group_id = ?", groupID).
		Pluck("group_student_student_id", &ids).Error
	return ids, err
}

// RosterStudents: siswa di roster grup, urut nama.
func RosterStudents(ctx context.Context, db *gorm.DB, groupID uuid.UUID) ([]userModel.UserModel, error) {
	var rows []userModel.UserModel
	err := db.WithContext(ctx).
		Joins("JOIN group_students gs ON gs.group_student_student_id = users.id").
		Where("gs.group_student_group_id = ?", groupID).
		Order("users.full_name ASC").
		Find(&rows).Error
	return rows, err
}

// onlyStudents menyaring id yang role-nya student; urutan input dipertahankan.
func onlyStudents(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]uuid.UUID, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var valid []uuid.UUID
	if err := tx.WithContext(ctx).Model(&userModel.UserModel{}).
		Where("id IN ? AND role = ?", ids, constants.RoleStudent).
		Pluck("id", &valid).Error; err != nil {
		return nil, err
	}
	isStudent := make(map[uuid.UUID]bool, len(valid))
	for _, id := range valid {
		isStudent[id] = true
	}
	out := make([]uuid.UUID, 0, len(valid))
	for _, id := range ids {
		if isStudent[id] {
			out = append(out, id)
			isStudent[id] = false
		}
	}
	return out, nil
}

// AddStudents memasukkan siswa ke roster, mengisi group_id aktif siswa,
// dan mendaftarkan siswa ke course grup (kalau ada). Id non-student dilewati.
func AddStudents(ctx context.Context, tx *gorm.DB, g *model.GroupModel, ids []uuid.UUID) error {
	studentIDs, err := onlyStudents(ctx, tx, ids)
	if err != nil {
		return err
	}
	for _, sid := range studentIDs {
		row := model.GroupStudentModel{
			GroupStudentGroupID:   g.GroupID,
			GroupStudentStudentID: sid,
		}
		if err := tx.WithContext(ctx).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "group_student_group_id"}, {Name: "group_student_student_id"}},
				DoNothing: true,
			}).
			Create(&row).Error; err != nil {
			return err
		}
		if g.GroupCourseID != nil {
			if err := courseService.Enroll(ctx, tx, sid, *g.GroupCourseID); err != nil {
				return err
			}
		}
	}
	if len(studentIDs) == 0 {
		return nil
	}
	return tx.WithContext(ctx).Model(&userModel.UserModel{}).
		Where("id IN ?", studentIDs).
		Update("group_id", g.GroupID).Error
}

// ReplaceRoster mengganti seluruh roster grup dengan studentIDs.
func ReplaceRoster(ctx context.Context, tx *gorm.DB, g *model.GroupModel, studentIDs []uuid.UUID) error {
	current, err := RosterStudentIDs(ctx, tx, g.GroupID)
	if err != nil {
		return err
	}
	keep := make(map[uuid.UUID]struct{}, len(studentIDs))
	for _, id := range studentIDs {
		keep[id] = struct{}{}
	}
	var removed []uuid.UUID
	for _, id := range current {
		if _, ok := keep[id]; !ok {
			removed = append(removed, id)
		}
	}
	if err := RemoveStudents(ctx, tx, g.GroupID, removed); err != nil {
		return err
	}
	return AddStudents(ctx, tx, g, studentIDs)
}

// RemoveStudents mengeluarkan siswa dari roster dan mengosongkan group_id
// mereka jika masih menunjuk ke grup ini.
func RemoveStudents(ctx context.Context, tx *gorm.DB, groupID uuid.UUID, studentIDs []uuid.UUID) error {
	if len(studentIDs) == 0 {
		return nil
	}
	if err := tx.WithContext(ctx).
		Where("group_student_group_id = ? AND group_student_student_id IN ?", groupID, studentIDs).
		Delete(&model.GroupStudentModel{}).Error; err != nil {
		return err
	}
	return tx.WithContext(ctx).Model(&userModel.UserModel{}).
		Where("id IN ? AND group_id = ?", studentIDs, groupID).
		Update("group_id", nil).Error
}

// CourseTeachers: teacher pengampu course (0 atau 1 orang).
func CourseTeachers(ctx context.Context, db *gorm.DB, courseID uuid.UUID) ([]userModel.UserModel, error) {
	c, err := courseService.FindCourse(ctx, db, courseID)
	if err != nil {
		return nil, err
	}
	rows := []userModel.UserModel{}
	if c.CourseTeacherID == nil {
		return rows, nil
	}
	err = db.WithContext(ctx).
		Where("id = ? AND role = ?", *c.CourseTeacherID, constants.RoleTeacher).
		Find(&rows).Error
	return rows, err
}

// CourseStudents: siswa yang terdaftar di course (student_courses), urut nama.
func CourseStudents(ctx context.Context, db *gorm.DB, courseID uuid.UUID) ([]userModel.UserModel, error) {
	if _, err := courseService.FindCourse(ctx, db, courseID); err != nil {
		return nil, err
	}
	var rows []userModel.UserModel
	err := db.WithContext(ctx).
		Where("users.role = ? AND users.id IN (?)", constants.RoleStudent,
			db.Model(&courseModel.StudentCourseModel{}).
				Select("student_course_student_id").
				Where("student_course_course_id = ?", courseID)).
		Order("users.full_name ASC").
		Find(&rows).Error
	return rows, err
}

// IsTeacherOfStudent: true kalau siswa ada di salah satu grup yang diajar teacher.
func IsTeacherOfStudent(ctx context.Context, db *gorm.DB, teacherID, studentID uuid.UUID) (bool, error) {
	var n int64
	err := db.WithContext(ctx).Model(&model.GroupStudentModel{}).
		Joins("JOIN study_groups g ON g.group_id = group_students.group_student_group_id").
		Where("g.group_teacher_id = ? AND group_students.group_student_student_id = ?", teacherID, studentID).
		Count(&n).Error
	return n > 0, err
}

// TeacherGroupIDs: id grup yang diajar teacher.
func TeacherGroupIDs(ctx context.Context, db *gorm.DB, teacherID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := db.WithContext(ctx).Model(&model.GroupModel{}).
		Where("group_teacher_id = ?", teacherID).
		Pluck("group_id", &ids).Error
	return ids, err
}
