package controller

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"educenter_backend/internals/constants"
	dto "educenter_backend/internals/features/academics/courses/dto"
	model "educenter_backend/internals/features/academics/courses/model"
	service "educenter_backend/internals/features/academics/courses/service"
	userModel "educenter_backend/internals/features/users/user/model"
	helper "educenter_backend/internals/helpers"
)

type CourseController struct {
	DB *gorm.DB
}

func NewCourseController(db *gorm.DB) *CourseController {
	return &CourseController{DB: db}
}

func (h *CourseController) studentCounts(c *fiber.Ctx, ids []uuid.UUID) map[uuid.UUID]int64 {
	out := make(map[uuid.UUID]int64, len(ids))
	if len(ids) == 0 {
		return out
	}
	var rows []struct {
		CourseID uuid.UUID
		Total    int64
	}
	if err := h.DB.WithContext(c.UserContext()).
		Model(&model.StudentCourseModel{}).
		Select("student_course_course_id AS course_id, COUNT(*) AS total").
		Where("student_course_course_id IN ?", ids).
		Group("student_course_course_id").
		Scan(&rows).Error; err != nil {
		return out
	}
	for _, r := range rows {
		out[r.CourseID] = r.Total
	}
	return out
}

func (h *CourseController) respondList(c *fiber.Ctx, rows []model.CourseModel) error {
	ids := make([]uuid.UUID, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.CourseID)
	}
	counts := h.studentCounts(c, ids)
	out := make([]dto.CourseResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.FromModel(r, counts[r.CourseID]))
	}
	return helper.JsonList(c, "ok", out, nil)
}

// pastikan teacher_id benar-benar user ber-role teacher
func ensureTeacher(c *fiber.Ctx, db *gorm.DB, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	var n int64
	if err := db.WithContext(c.UserContext()).Model(&userModel.UserModel{}).
		Where("id = ? AND role = ?", *id, constants.RoleTeacher).
		Count(&n).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	if n == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "Teacher not found")
	}
	return nil
}

func parseStartDate(raw *string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	t, err := helper.ParseDate(*raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

/* ======================= CREATE ======================= */
// POST /api/courses (admin, manager)
func (h *CourseController) Create(c *fiber.Ctx) error {
	callerID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return err
	}

	var req dto.CreateCourseRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := helper.Validator().Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}
	if err := ensureTeacher(c, h.DB, req.CourseTeacherID); err != nil {
		return err
	}
	start, err := parseStartDate(req.CourseStartDate)
	if err != nil {
		return err
	}

	m := req.ToModel(callerID, start)
	if err := h.DB.WithContext(c.UserContext()).Create(m).Error; err != nil {
		return helper.MapPGError(err, "")
	}
	return helper.JsonCreated(c, "Course berhasil dibuat", dto.FromModel(*m, 0))
}

/* ======================== LIST ======================== */
// GET /api/courses?q=
func (h *CourseController) List(c *fiber.Ctx) error {
	q := h.DB.WithContext(c.UserContext()).Preload("Teacher")
	if kw := strings.ToLower(strings.TrimSpace(c.Query("q"))); kw != "" {
		q = q.Where("LOWER(course_title) LIKE ?", "%"+kw+"%")
	}
	var rows []model.CourseModel
	if err := q.Order("course_created_at DESC").Find(&rows).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return h.respondList(c, rows)
}

/* ======================== MY (teacher) ======================== */
// GET /api/courses/teacher/my, course yang diajar langsung atau lewat grup
func (h *CourseController) TeacherMy(c *fiber.Ctx) error {
	callerID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	db := h.DB.WithContext(c.UserContext())

	var rows []model.CourseModel
	if err := db.Preload("Teacher").
		Where("course_teacher_id = ? OR course_id IN (?)", callerID,
			db.Table("study_groups").Select("group_course_id").Where("group_teacher_id = ? AND group_course_id IS NOT NULL", callerID)).
		Order("course_title ASC").
		Find(&rows).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return h.respondList(c, rows)
}

/* ======================== GET ======================== */
// GET /api/courses/:id, student wajib terdaftar
func (h *CourseController) Get(c *fiber.Ctx) error {
	callerID, role, err := helper.GetCaller(c)
	if err != nil {
		return err
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	ctx := c.UserContext()
	var m model.CourseModel
	if err := h.DB.WithContext(ctx).Preload("Teacher").First(&m, "course_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Course not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	if role == constants.RoleStudent {
		ok, err := service.IsEnrolled(ctx, h.DB, callerID, id)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		if !ok {
			return fiber.NewError(fiber.StatusForbidden, "You are not enrolled in this course")
		}
	}

	counts := h.studentCounts(c, []uuid.UUID{id})
	return helper.JsonOK(c, "ok", dto.FromModel(m, counts[id]))
}

/* ======================= ENROLL ======================= */
// POST /api/courses/:id/enroll (student)
func (h *CourseController) Enroll(c *fiber.Ctx) error {
	callerID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	ctx := c.UserContext()
	course, err := service.FindCourse(ctx, h.DB, id)
	if err != nil {
		if errors.Is(err, service.ErrCourseNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Course not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	if err := service.EnrollStrict(ctx, h.DB, callerID, course.CourseID); err != nil {
		if errors.Is(err, service.ErrAlreadyEnrolled) {
			return fiber.NewError(fiber.StatusBadRequest, "Already enrolled")
		}
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	// fee siswa mengikuti harga course terakhir yang diambil
	if err := h.DB.WithContext(ctx).Model(&userModel.UserModel{}).
		Where("id = ?", callerID).
		Update("fee", course.CoursePrice).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return helper.JsonCreated(c, "Enrolled successfully", fiber.Map{
		"course_id":  course.CourseID,
		"student_id": callerID,
	})
}

/* ======================= UPDATE ======================= */
// PUT /api/courses/:id (admin, manager)
func (h *CourseController) Update(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateCourseRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := helper.Validator().Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}
	if err := ensureTeacher(c, h.DB, req.CourseTeacherID); err != nil {
		return err
	}

	ctx := c.UserContext()
	m, err := service.FindCourse(ctx, h.DB, id)
	if err != nil {
		if errors.Is(err, service.ErrCourseNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Course not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	updates := req.ToUpdates()
	start, err := parseStartDate(req.CourseStartDate)
	if err != nil {
		return err
	}
	if start != nil {
		updates["course_start_date"] = *start
	}
	if len(updates) > 0 {
		if err := h.DB.WithContext(ctx).Model(m).Omit(clause.Associations).Updates(updates).Error; err != nil {
			return helper.MapPGError(err, "")
		}
	}

	var fresh model.CourseModel
	if err := h.DB.WithContext(ctx).Preload("Teacher").First(&fresh, "course_id = ?", id).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	counts := h.studentCounts(c, []uuid.UUID{id})
	return helper.JsonUpdated(c, "Course berhasil diperbarui", dto.FromModel(fresh, counts[id]))
}

/* ======================= DELETE ======================= */
// DELETE /api/courses/:id (admin, manager), grup yang memakai course dilepas
func (h *CourseController) Delete(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	err = h.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&model.CourseModel{}, "course_id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fiber.NewError(fiber.StatusNotFound, "Course not found")
		}
		if err := tx.Delete(&model.StudentCourseModel{}, "student_course_course_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Exec("UPDATE study_groups SET group_course_id = NULL WHERE group_course_id = ?", id).Error
	})
	if err != nil {
		return helper.MapPGError(err, "")
	}
	return helper.JsonDeleted(c, "Course deleted", fiber.Map{"course_id": id})
}
