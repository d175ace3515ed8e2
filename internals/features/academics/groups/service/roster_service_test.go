package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"educenter_backend/internals/constants"
	courseModel "educenter_backend/internals/features/academics/courses/model"
	model "educenter_backend/internals/features/academics/groups/model"
	userModel "educenter_backend/internals/features/users/user/model"
	database "educenter_backend/internals/databases"
)

func TestAddStudents_SkipsNonStudents(t *testing.T) {
	db, err := database.OpenTestDB()
	require.NoError(t, err)
	ctx := context.Background()

	teacher := userModel.UserModel{UserName: "t1", FullName: "Teacher", Password: "x", Role: constants.RoleTeacher, IsActive: true}
	alice := userModel.UserModel{UserName: "alice", FullName: "Alice", Password: "x", Role: constants.RoleStudent, IsActive: true}
	for _, u := range []*userModel.UserModel{&teacher, &alice} {
		require.NoError(t, db.Create(u).Error)
	}
	course := courseModel.CourseModel{CourseTitle: "Math", CoursePrice: 100}
	require.NoError(t, db.Create(&course).Error)
	g := model.GroupModel{GroupName: "Math A", GroupCourseID: &course.CourseID}
	require.NoError(t, db.Create(&g).Error)

	require.NoError(t, AddStudents(ctx, db, &g, []uuid.UUID{teacher.ID, alice.ID, uuid.New(), alice.ID}))

	ids, err := RosterStudentIDs(ctx, db, g.GroupID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{alice.ID}, ids)

	var tr userModel.UserModel
	require.NoError(t, db.First(&tr, "id = ?", teacher.ID).Error)
	assert.Nil(t, tr.GroupID)

	var enrolled int64
	require.NoError(t, db.Model(&courseModel.StudentCourseModel{}).
		Where("student_course_course_id = ?", course.CourseID).
		Count(&enrolled).Error)
	assert.Equal(t, int64(1), enrolled)

	students, err := CourseStudents(ctx, db, course.CourseID)
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, alice.ID, students[0].ID)

	// roster baru tanpa alice mengosongkan group_id-nya
	require.NoError(t, ReplaceRoster(ctx, db, &g, []uuid.UUID{teacher.ID}))
	ids, err = RosterStudentIDs(ctx, db, g.GroupID)
	require.NoError(t, err)
	assert.Empty(t, ids)
	var al userModel.UserModel
	require.NoError(t, db.First(&al, "id = ?", alice.ID).Error)
	assert.Nil(t, al.GroupID)
}
