package controller

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"educenter_backend/internals/constants"
	courseService "educenter_backend/internals/features/academics/courses/service"
	dto "educenter_backend/internals/features/academics/groups/dto"
	model "educenter_backend/internals/features/academics/groups/model"
	service "educenter_backend/internals/features/academics/groups/service"
	userDTO "educenter_backend/internals/features/users/user/dto"
	userModel "educenter_backend/internals/features/users/user/model"
	helper "educenter_backend/internals/helpers"
)

type GroupController struct {
	DB *gorm.DB
}

func NewGroupController(db *gorm.DB) *GroupController {
	return &GroupController{DB: db}
}

// validasi referensi course / teacher / siswa sebelum disimpan
func validateRefs(c *fiber.Ctx, tx *gorm.DB, courseID, teacherID *uuid.UUID, studentIDs []uuid.UUID) error {
	ctx := c.UserContext()
	if courseID != nil {
		if _, err := courseService.FindCourse(ctx, tx, *courseID); err != nil {
			if errors.Is(err, courseService.ErrCourseNotFound) {
				return fiber.NewError(fiber.StatusBadRequest, "Course not found")
			}
			return err
		}
	}
	if teacherID != nil {
		var n int64
		if err := tx.WithContext(ctx).Model(&userModel.UserModel{}).
			Where("id = ? AND role = ?", *teacherID, constants.RoleTeacher).
			Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Teacher not found")
		}
	}
	if len(studentIDs) > 0 {
		uniq := dedupe(studentIDs)
		var n int64
		if err := tx.WithContext(ctx).Model(&userModel.UserModel{}).
			Where("id IN ? AND role = ?", uniq, constants.RoleStudent).
			Count(&n).Error; err != nil {
			return err
		}
		if int(n) != len(uniq) {
			return fiber.NewError(fiber.StatusBadRequest, "Some student_ids are not students")
		}
	}
	return nil
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func (h *GroupController) load(c *fiber.Ctx, id uuid.UUID) (*dto.GroupResponse, error) {
	ctx := c.UserContext()
	var g model.GroupModel
	if err := h.DB.WithContext(ctx).Preload("Course").Preload("Teacher").
		First(&g, "group_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "Group not found")
		}
		return nil, fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	students, err := service.RosterStudents(ctx, h.DB, g.GroupID)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	out := dto.FromModel(g, students)
	return &out, nil
}

/* ======================= CREATE ======================= */
// POST /api/groups (admin, manager)
func (h *GroupController) Create(c *fiber.Ctx) error {
	var req dto.CreateGroupRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := helper.Validator().Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	ctx := c.UserContext()
	m := req.ToModel()
	err := h.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := validateRefs(c, tx, req.GroupCourseID, req.GroupTeacherID, req.StudentIDs); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Create(m).Error; err != nil {
			return helper.MapPGError(err, "Group name already exists")
		}
		return service.AddStudents(ctx, tx, m, dedupe(req.StudentIDs))
	})
	if err != nil {
		return helper.MapPGError(err, "Group name already exists")
	}

	out, err := h.load(c, m.GroupID)
	if err != nil {
		return err
	}
	return helper.JsonCreated(c, "Group berhasil dibuat", out)
}

/* ======================== LIST ======================== */
// GET /api/groups?q=&course_id=
// teacher hanya melihat grup miliknya, student hanya grup yang diikuti
func (h *GroupController) List(c *fiber.Ctx) error {
	callerID, role, err := helper.GetCaller(c)
	if err != nil {
		return err
	}

	ctx := c.UserContext()
	q := h.DB.WithContext(ctx).Preload("Course").Preload("Teacher")
	switch role {
	case constants.RoleTeacher:
		q = q.Where("group_teacher_id = ?", callerID)
	case constants.RoleStudent:
		q = q.Where("group_id IN (?)",
			h.DB.Table("group_students").Select("group_student_group_id").Where("group_student_student_id = ?", callerID))
	}
	if cid := strings.TrimSpace(c.Query("course_id")); cid != "" {
		id, err := uuid.Parse(cid)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "course_id tidak valid")
		}
		q = q.Where("group_course_id = ?", id)
	}
	if kw := strings.ToLower(strings.TrimSpace(c.Query("q"))); kw != "" {
		q = q.Where("LOWER(group_name) LIKE ?", "%"+kw+"%")
	}

	var rows []model.GroupModel
	if err := q.Order("group_name ASC").Find(&rows).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	out := make([]dto.GroupResponse, 0, len(rows))
	for _, g := range rows {
		var students []userModel.UserModel
		// student tidak perlu melihat teman satu grup
		if role != constants.RoleStudent {
			if students, err = service.RosterStudents(ctx, h.DB, g.GroupID); err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, err.Error())
			}
		}
		out = append(out, dto.FromModel(g, students))
	}
	return helper.JsonList(c, "ok", out, nil)
}

/* ======================= UPDATE ======================= */
// PUT /api/groups/:id (admin, manager), student_ids mengganti seluruh roster
func (h *GroupController) Update(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateGroupRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := helper.Validator().Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	ctx := c.UserContext()
	err = h.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		g, err := service.FindGroup(ctx, tx, id)
		if err != nil {
			if errors.Is(err, service.ErrGroupNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "Group not found")
			}
			return err
		}

		var studentIDs []uuid.UUID
		if req.StudentIDs != nil {
			studentIDs = dedupe(*req.StudentIDs)
		}
		if err := validateRefs(c, tx, req.GroupCourseID, req.GroupTeacherID, studentIDs); err != nil {
			return err
		}

		if up := req.ToUpdates(); len(up) > 0 {
			if err := tx.Model(&model.GroupModel{}).Where("group_id = ?", id).Updates(up).Error; err != nil {
				return err
			}
			if req.GroupCourseID != nil {
				g.GroupCourseID = req.GroupCourseID
			}
		}

		if req.StudentIDs != nil {
			return service.ReplaceRoster(ctx, tx, g, studentIDs)
		}
		return nil
	})
	if err != nil {
		return helper.MapPGError(err, "Group name already exists")
	}

	out, err := h.load(c, id)
	if err != nil {
		return err
	}
	return helper.JsonUpdated(c, "Group berhasil diperbarui", out)
}

/* ======================= DELETE ======================= */
// DELETE /api/groups/:id (admin, manager)
func (h *GroupController) Delete(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	ctx := c.UserContext()
	err = h.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := service.FindGroup(ctx, tx, id); err != nil {
			if errors.Is(err, service.ErrGroupNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "Group not found")
			}
			return err
		}
		ids, err := service.RosterStudentIDs(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := service.RemoveStudents(ctx, tx, id, ids); err != nil {
			return err
		}
		return tx.Delete(&model.GroupModel{}, "group_id = ?", id).Error
	})
	if err != nil {
		return helper.MapPGError(err, "")
	}
	return helper.JsonDeleted(c, "Group deleted", fiber.Map{"group_id": id})
}

/* ======================= STUDENTS ======================= */
// GET /api/groups/:id/students (non-student)
func (h *GroupController) Students(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	ctx := c.UserContext()
	if _, err := service.FindGroup(ctx, h.DB, id); err != nil {
		if errors.Is(err, service.ErrGroupNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Group not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	rows, err := service.RosterStudents(ctx, h.DB, id)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return helper.JsonList(c, "ok", userDTO.FromModels(rows), nil)
}

/* ======================= BY COURSE ======================= */
// GET /api/groups/teachers/:course_id, kandidat teacher saat membuat grup
func (h *GroupController) CourseTeachers(c *fiber.Ctx) error {
	return h.byCourse(c, service.CourseTeachers)
}

// GET /api/groups/students/:course_id, siswa yang terdaftar di course
func (h *GroupController) CourseStudents(c *fiber.Ctx) error {
	return h.byCourse(c, service.CourseStudents)
}

func (h *GroupController) byCourse(c *fiber.Ctx, list func(context.Context, *gorm.DB, uuid.UUID) ([]userModel.UserModel, error)) error {
	id, err := helper.ParseUUIDParam(c, "course_id")
	if err != nil {
		return err
	}
	rows, err := list(c.UserContext(), h.DB, id)
	if err != nil {
		if errors.Is(err, courseService.ErrCourseNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Course not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return helper.JsonList(c, "ok", userDTO.FromModels(rows), nil)
}
