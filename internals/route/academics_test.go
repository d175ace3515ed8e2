package routes

import (
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"educenter_backend/internals/constants"
	courseModel "educenter_backend/internals/features/academics/courses/model"
	groupModel "educenter_backend/internals/features/academics/groups/model"
	userModel "educenter_backend/internals/features/users/user/model"
)

func (e *testEnv) course(t *testing.T, title string, price float64, teacherID *uuid.UUID) courseModel.CourseModel {
	t.Helper()
	c := courseModel.CourseModel{CourseTitle: title, CoursePrice: price, CourseTeacherID: teacherID}
	require.NoError(t, e.db.Create(&c).Error)
	return c
}

func (e *testEnv) groupOf(t *testing.T, id uuid.UUID) *uuid.UUID {
	t.Helper()
	var u userModel.UserModel
	require.NoError(t, e.db.First(&u, "id = ?", id).Error)
	return u.GroupID
}

func (e *testEnv) enrolled(t *testing.T, studentID, courseID uuid.UUID) bool {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(&courseModel.StudentCourseModel{}).
		Where("student_course_student_id = ? AND student_course_course_id = ?", studentID, courseID).
		Count(&n).Error)
	return n > 0
}

func TestGroupRosterKeepsStudentGroupInSync(t *testing.T) {
	e := newEnv(t)
	manager := e.user(t, "manager", constants.RoleManager, "1234")
	teacher := e.user(t, "teacher", constants.RoleTeacher, "1234")
	s1 := e.user(t, "s1", constants.RoleStudent, "1234")
	s2 := e.user(t, "s2", constants.RoleStudent, "1234")
	course := e.course(t, "Math", 100, &teacher.ID)
	mTok := e.token(t, manager)

	code, body := e.do(t, http.MethodPost, "/api/groups", mTok, map[string]any{
		"group_name":       "Math A",
		"group_course_id":  course.CourseID,
		"group_teacher_id": teacher.ID,
		"student_ids":      []uuid.UUID{s1.ID, s1.ID},
	})
	require.Equal(t, http.StatusCreated, code)
	gid, err := uuid.Parse(body["data"].(map[string]any)["group_id"].(string))
	require.NoError(t, err)

	require.NotNil(t, e.groupOf(t, s1.ID))
	assert.Equal(t, gid, *e.groupOf(t, s1.ID))
	assert.True(t, e.enrolled(t, s1.ID, course.CourseID))

	// roster diganti: s1 keluar, s2 masuk
	code, _ = e.do(t, http.MethodPut, "/api/groups/"+gid.String(), mTok, map[string]any{
		"student_ids": []uuid.UUID{s2.ID},
	})
	require.Equal(t, http.StatusOK, code)
	assert.Nil(t, e.groupOf(t, s1.ID))
	require.NotNil(t, e.groupOf(t, s2.ID))
	assert.Equal(t, gid, *e.groupOf(t, s2.ID))

	code, _ = e.do(t, http.MethodPut, "/api/groups/"+gid.String(), mTok, map[string]any{
		"student_ids": []uuid.UUID{s2.ID, teacher.ID},
	})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = e.do(t, http.MethodDelete, "/api/groups/"+gid.String(), mTok, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Nil(t, e.groupOf(t, s2.ID))

	var n int64
	require.NoError(t, e.db.Model(&groupModel.GroupStudentModel{}).Where("group_student_group_id = ?", gid).Count(&n).Error)
	assert.Zero(t, n)
}

func TestGroupCandidatesByCourse(t *testing.T) {
	e := newEnv(t)
	manager := e.user(t, "manager", constants.RoleManager, "1234")
	teacher := e.user(t, "teacher", constants.RoleTeacher, "1234")
	s1 := e.user(t, "s1", constants.RoleStudent, "1234")
	e.user(t, "s2", constants.RoleStudent, "1234")
	course := e.course(t, "Math", 100, &teacher.ID)
	bare := e.course(t, "Art", 80, nil)
	require.NoError(t, e.db.Create(&courseModel.StudentCourseModel{
		StudentCourseStudentID: s1.ID,
		StudentCourseCourseID:  course.CourseID,
	}).Error)
	mTok, sTok := e.token(t, manager), e.token(t, s1)

	code, body := e.do(t, http.MethodGet, "/api/groups/teachers/"+course.CourseID.String(), mTok, nil)
	require.Equal(t, http.StatusOK, code)
	teachers := body["data"].([]any)
	require.Len(t, teachers, 1)
	assert.Equal(t, teacher.ID.String(), teachers[0].(map[string]any)["id"])

	code, body = e.do(t, http.MethodGet, "/api/groups/teachers/"+bare.CourseID.String(), mTok, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, body["data"])

	code, body = e.do(t, http.MethodGet, "/api/groups/students/"+course.CourseID.String(), mTok, nil)
	require.Equal(t, http.StatusOK, code)
	students := body["data"].([]any)
	require.Len(t, students, 1)
	assert.Equal(t, s1.ID.String(), students[0].(map[string]any)["id"])

	code, _ = e.do(t, http.MethodGet, "/api/groups/students/"+uuid.NewString(), mTok, nil)
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = e.do(t, http.MethodGet, "/api/groups/students/"+course.CourseID.String(), sTok, nil)
	assert.Equal(t, http.StatusForbidden, code)
}

func TestSelfEnrollTwiceIsRejected(t *testing.T) {
	e := newEnv(t)
	student := e.user(t, "student", constants.RoleStudent, "1234")
	course := e.course(t, "Math", 120, nil)
	sTok := e.token(t, student)

	code, _ := e.do(t, http.MethodPost, "/api/courses/"+course.CourseID.String()+"/enroll", sTok, nil)
	require.Equal(t, http.StatusCreated, code)

	var u userModel.UserModel
	require.NoError(t, e.db.First(&u, "id = ?", student.ID).Error)
	assert.Equal(t, 120.0, u.Fee)

	code, body := e.do(t, http.MethodPost, "/api/courses/"+course.CourseID.String()+"/enroll", sTok, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Already enrolled", body["message"])
}

func TestStudentCourseSwitch(t *testing.T) {
	e := newEnv(t)
	manager := e.user(t, "manager", constants.RoleManager, "1234")
	first := e.course(t, "Math", 100, nil)
	second := e.course(t, "Physics", 150, nil)
	mTok := e.token(t, manager)

	code, body := e.do(t, http.MethodPost, "/api/students", mTok, map[string]any{
		"user_name": "ali",
		"full_name": "Ali",
		"course_id": first.CourseID,
	})
	require.Equal(t, http.StatusCreated, code)
	data := body["data"].(map[string]any)
	assert.Equal(t, float64(100), data["fee"])
	assert.Equal(t, first.CourseID.String(), data["course_id"])
	sid := uuid.MustParse(data["id"].(string))

	code, body = e.do(t, http.MethodPut, "/api/students/"+sid.String(), mTok, map[string]any{
		"course_id": second.CourseID,
	})
	require.Equal(t, http.StatusOK, code)
	data = body["data"].(map[string]any)
	assert.Equal(t, float64(150), data["fee"])
	assert.Equal(t, second.CourseID.String(), data["course_id"])

	assert.False(t, e.enrolled(t, sid, first.CourseID))
	assert.True(t, e.enrolled(t, sid, second.CourseID))

	code, _ = e.do(t, http.MethodPut, "/api/students/"+sid.String(), mTok, map[string]any{
		"course_id": uuid.New(),
	})
	assert.Equal(t, http.StatusNotFound, code)
	assert.True(t, e.enrolled(t, sid, second.CourseID))
}

func TestDuplicateUsernameAndPasswordLength(t *testing.T) {
	e := newEnv(t)
	admin := e.user(t, "admin", constants.RoleAdmin, "1234")
	e.user(t, "ali", constants.RoleStudent, "1234")
	aTok := e.token(t, admin)

	code, body := e.do(t, http.MethodPost, "/api/users", aTok, map[string]any{
		"user_name": "ali",
		"full_name": "Ali Dua",
		"password":  "1234",
		"role":      constants.RoleTeacher,
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Username already exists", body["message"])

	code, _ = e.do(t, http.MethodPost, "/api/students", aTok, map[string]any{
		"user_name": "ali",
		"full_name": "Ali Dua",
	})
	assert.Equal(t, http.StatusBadRequest, code)

	// bcrypt hanya memakai 72 byte pertama
	long := strings.Repeat("a", 73)
	code, _ = e.do(t, http.MethodPost, "/api/users", aTok, map[string]any{
		"user_name": "budi",
		"full_name": "Budi",
		"password":  long,
		"role":      constants.RoleTeacher,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, code)

	code, _ = e.do(t, http.MethodPost, "/api/students", aTok, map[string]any{
		"user_name": "citra",
		"full_name": "Citra",
		"password":  long,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, code)

	var n int64
	require.NoError(t, e.db.Model(&userModel.UserModel{}).Where("user_name = ?", "ali").Count(&n).Error)
	assert.Equal(t, int64(1), n)
}
