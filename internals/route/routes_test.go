package routes

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"educenter_backend/internals/configs"
	"educenter_backend/internals/constants"
	database "educenter_backend/internals/databases"
	courseModel "educenter_backend/internals/features/academics/courses/model"
	groupModel "educenter_backend/internals/features/academics/groups/model"
	authService "educenter_backend/internals/features/users/auth/service"
	userModel "educenter_backend/internals/features/users/user/model"
	helper "educenter_backend/internals/helpers"
	"educenter_backend/internals/middlewares"
)

type testEnv struct {
	app *fiber.App
	db  *gorm.DB
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	configs.JWTSecret = "test-secret"
	configs.LoginRateLimit = 100

	db, err := database.OpenTestDB()
	require.NoError(t, err)

	app := fiber.New(fiber.Config{
		JSONEncoder:  sonic.Marshal,
		JSONDecoder:  sonic.Unmarshal,
		ErrorHandler: helper.ErrorHandler,
	})
	app.Use(middlewares.RequestContext(constants.RequestTimeout))
	SetupRoutes(app, db)
	return &testEnv{app: app, db: db}
}

func (e *testEnv) user(t *testing.T, userName, role, password string) userModel.UserModel {
	t.Helper()
	hashed, err := authService.HashPassword(password)
	require.NoError(t, err)
	u := userModel.UserModel{UserName: userName, FullName: userName, Password: hashed, Role: role, IsActive: true}
	if role == constants.RoleStudent {
		st := constants.StudentStudying
		u.Status = &st
	}
	require.NoError(t, e.db.Create(&u).Error)
	return u
}

func (e *testEnv) token(t *testing.T, u userModel.UserModel) string {
	t.Helper()
	tok, _, err := authService.IssueAccessToken(u)
	require.NoError(t, err)
	return tok
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := map[string]any{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &out)
	}
	return resp.StatusCode, out
}

func TestHealth(t *testing.T) {
	e := newEnv(t)
	code, body := e.do(t, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "OK", body["status"])
}

func TestAuthFlow(t *testing.T) {
	e := newEnv(t)
	e.user(t, "admin", constants.RoleAdmin, "secret123")

	code, _ := e.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "admin", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, code)

	code, body := e.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "admin", "password": "secret123"})
	require.Equal(t, http.StatusOK, code)
	data := body["data"].(map[string]any)
	tok := data["access_token"].(string)
	require.NotEmpty(t, tok)

	code, _ = e.do(t, http.MethodGet, "/api/auth/me", tok, nil)
	assert.Equal(t, http.StatusOK, code)

	code, _ = e.do(t, http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = e.do(t, http.MethodPost, "/api/auth/logout", tok, nil)
	assert.Equal(t, http.StatusOK, code)

	// token yang sudah logout ditolak
	code, body = e.do(t, http.MethodGet, "/api/auth/me", tok, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "UNAUTHORIZED", body["error_code"])
}

func TestInactiveUserIsRejected(t *testing.T) {
	e := newEnv(t)
	u := e.user(t, "teacher", constants.RoleTeacher, "pw1234")
	tok := e.token(t, u)
	require.NoError(t, e.db.Model(&u).Update("is_active", false).Error)

	code, _ := e.do(t, http.MethodGet, "/api/auth/me", tok, nil)
	assert.Equal(t, http.StatusForbidden, code)
}

func TestRoleGuards(t *testing.T) {
	e := newEnv(t)
	student := e.user(t, "student", constants.RoleStudent, "1234")
	teacher := e.user(t, "teacher", constants.RoleTeacher, "1234")
	manager := e.user(t, "manager", constants.RoleManager, "1234")

	stTok, tTok, mTok := e.token(t, student), e.token(t, teacher), e.token(t, manager)

	code, _ := e.do(t, http.MethodPost, "/api/courses", stTok, map[string]any{"course_title": "Math", "course_price": 100})
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = e.do(t, http.MethodGet, "/api/reports/summary", stTok, nil)
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = e.do(t, http.MethodGet, "/api/reports/summary", tTok, nil)
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = e.do(t, http.MethodGet, "/api/reports/summary?period=weekly", mTok, nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = e.do(t, http.MethodGet, "/api/reports/summary?period=yearly", mTok, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = e.do(t, http.MethodPost, "/api/payroll/calculate?month=2024-03", mTok, nil)
	assert.Equal(t, http.StatusForbidden, code)

	// validasi payload
	code, body := e.do(t, http.MethodPost, "/api/courses", mTok, map[string]any{"course_price": 100})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "VALIDATION_ERROR", body["error_code"])

	code, _ = e.do(t, http.MethodPost, "/api/courses", mTok, map[string]any{"course_title": "Math", "course_price": 100})
	assert.Equal(t, http.StatusCreated, code)
}

func TestBillingOverHTTP(t *testing.T) {
	e := newEnv(t)
	manager := e.user(t, "manager", constants.RoleManager, "1234")
	teacher := e.user(t, "teacher", constants.RoleTeacher, "1234")
	student := e.user(t, "student", constants.RoleStudent, "1234")
	other := e.user(t, "other", constants.RoleStudent, "1234")

	course := courseModel.CourseModel{CourseTitle: "Math", CoursePrice: 100, CourseTeacherID: &teacher.ID}
	require.NoError(t, e.db.Create(&course).Error)
	group := groupModel.GroupModel{GroupName: "Math A", GroupCourseID: &course.CourseID, GroupTeacherID: &teacher.ID}
	require.NoError(t, e.db.Create(&group).Error)
	require.NoError(t, e.db.Create(&groupModel.GroupStudentModel{GroupStudentGroupID: group.GroupID, GroupStudentStudentID: student.ID}).Error)
	require.NoError(t, e.db.Model(&student).Update("group_id", group.GroupID).Error)

	mTok, tTok, sTok, oTok := e.token(t, manager), e.token(t, teacher), e.token(t, student), e.token(t, other)

	att := map[string]any{
		"group_id": group.GroupID,
		"date":     "2024-03-05",
		"records":  []map[string]any{{"student_id": student.ID, "is_present": true}},
	}
	code, _ := e.do(t, http.MethodPost, "/api/attendance", tTok, att)
	require.Equal(t, http.StatusCreated, code)
	code, _ = e.do(t, http.MethodPost, "/api/attendance", tTok, att)
	assert.Equal(t, http.StatusBadRequest, code)

	code, body := e.do(t, http.MethodPost, "/api/payments/calculate-monthly", mTok, map[string]string{"month": "2024-03"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(1), body["data"].(map[string]any)["processed"])

	code, body = e.do(t, http.MethodGet, "/api/payments?month=2024-03", sTok, nil)
	require.Equal(t, http.StatusOK, code)
	rows := body["data"].([]any)
	require.Len(t, rows, 1)
	assert.Equal(t, float64(100), rows[0].(map[string]any)["debt_amount"])
	assert.Equal(t, "Math A", rows[0].(map[string]any)["group_name"])

	code, body = e.do(t, http.MethodGet, "/api/payments", oTok, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, body["data"])

	code, body = e.do(t, http.MethodPost, "/api/payments", mTok, map[string]any{
		"student_id": student.ID,
		"amount":     130,
		"month":      "2024-03",
	})
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "paid", body["data"].(map[string]any)["status"])

	code, body = e.do(t, http.MethodGet, "/api/payments/student/"+student.ID.String()+"/history", sTok, nil)
	require.Equal(t, http.StatusOK, code)
	hist := body["data"].(map[string]any)
	assert.Equal(t, float64(130), hist["total_paid"])
	assert.Equal(t, float64(0), hist["total_debt"])
	assert.Equal(t, float64(30), hist["balance"])

	code, _ = e.do(t, http.MethodGet, "/api/payments/student/"+student.ID.String()+"/history", oTok, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = e.do(t, http.MethodPost, "/api/payments", mTok, map[string]any{"student_id": other.ID, "amount": 50})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = e.do(t, http.MethodPost, "/api/payments/notification", "", map[string]string{"order_id": "x", "signature_key": "bad"})
	assert.Equal(t, http.StatusUnauthorized, code)

	code, body = e.do(t, http.MethodGet, "/api/dashboard/stats", sTok, nil)
	require.Equal(t, http.StatusOK, code)
	stats := body["data"].(map[string]any)
	assert.Equal(t, float64(1), stats["attendance"].(map[string]any)["attended"])

	code, body = e.do(t, http.MethodGet, "/api/dashboard/stats", tTok, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(1), body["data"].(map[string]any)["students_count"])

	code, body = e.do(t, http.MethodGet, "/api/dashboard/stats", mTok, nil)
	require.Equal(t, http.StatusOK, code)
	staff := body["data"].(map[string]any)
	assert.Equal(t, float64(2), staff["students"].(map[string]any)["total"])
	assert.Equal(t, float64(130), staff["payments"].(map[string]any)["total"])
	assert.Equal(t, float64(130), staff["payments"].(map[string]any)["today"])
}
