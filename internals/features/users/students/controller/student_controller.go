package controller

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"educenter_backend/internals/constants"
	courseService "educenter_backend/internals/features/academics/courses/service"
	groupService "educenter_backend/internals/features/academics/groups/service"
	authService "educenter_backend/internals/features/users/auth/service"
	dto "educenter_backend/internals/features/users/students/dto"
	userDTO "educenter_backend/internals/features/users/user/dto"
	model "educenter_backend/internals/features/users/user/model"
	helper "educenter_backend/internals/helpers"
)

type StudentController struct {
	DB *gorm.DB
}

func NewStudentController(db *gorm.DB) *StudentController {
	return &StudentController{DB: db}
}

func (h *StudentController) findStudent(c *fiber.Ctx, db *gorm.DB, id uuid.UUID) (*model.UserModel, error) {
	var m model.UserModel
	if err := db.WithContext(c.UserContext()).
		First(&m, "id = ? AND role = ?", id, constants.RoleStudent).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "Student not found")
		}
		return nil, fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return &m, nil
}

func (h *StudentController) toResponse(c *fiber.Ctx, m model.UserModel) dto.StudentResponse {
	courseID, _ := courseService.CurrentCourseID(c.UserContext(), h.DB, m.ID)
	return dto.StudentResponse{UserResponse: userDTO.FromModel(m), CourseID: courseID}
}

/* ======================= CREATE ======================= */
// POST /api/students (admin, manager)
func (h *StudentController) Create(c *fiber.Ctx) error {
	var req dto.CreateStudentRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Payload tidak valid")
	}
	req.Normalize()
	if err := helper.Validator().Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	ctx := c.UserContext()
	m := req.ToModel()

	err := h.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var exists int64
		if err := tx.Model(&model.UserModel{}).Where("user_name = ?", req.UserName).Count(&exists).Error; err != nil {
			return err
		}
		if exists > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Username already exists")
		}

		if req.CourseID != nil {
			course, err := courseService.FindCourse(ctx, tx, *req.CourseID)
			if err != nil {
				if errors.Is(err, courseService.ErrCourseNotFound) {
					return fiber.NewError(fiber.StatusNotFound, "Course not found")
				}
				return err
			}
			m.Fee = course.CoursePrice
		}

		hash, err := authService.HashPassword(req.Password)
		if err != nil {
			return err
		}
		m.Password = hash

		if err := tx.Create(m).Error; err != nil {
			return helper.MapPGError(err, "Username already exists")
		}

		if req.CourseID != nil {
			if err := courseService.Enroll(ctx, tx, m.ID, *req.CourseID); err != nil {
				return err
			}
		}
		if req.GroupID != nil {
			g, err := groupService.FindGroup(ctx, tx, *req.GroupID)
			if err != nil {
				if errors.Is(err, groupService.ErrGroupNotFound) {
					return fiber.NewError(fiber.StatusNotFound, "Group not found")
				}
				return err
			}
			if err := groupService.AddStudents(ctx, tx, g, []uuid.UUID{m.ID}); err != nil {
				return err
			}
			m.GroupID = &g.GroupID
		}
		return nil
	})
	if err != nil {
		return helper.MapPGError(err, "")
	}

	return helper.JsonCreated(c, "Student berhasil dibuat", h.toResponse(c, *m))
}

/* ======================== LIST ======================== */
// GET /api/students?status=&group_id=&q=&page=&per_page=
// teacher hanya melihat siswa di grup yang dia ajar
func (h *StudentController) List(c *fiber.Ctx) error {
	callerID, role, err := helper.GetCaller(c)
	if err != nil {
		return err
	}

	ctx := c.UserContext()
	q := h.DB.WithContext(ctx).Model(&model.UserModel{}).Where("users.role = ?", constants.RoleStudent)

	if role == constants.RoleTeacher {
		groupIDs, err := groupService.TeacherGroupIDs(ctx, h.DB, callerID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		if len(groupIDs) == 0 {
			return helper.JsonList(c, "ok", []dto.StudentResponse{}, nil)
		}
		q = q.Where("users.id IN (?)",
			h.DB.Table("group_students").Select("group_student_student_id").Where("group_student_group_id IN ?", groupIDs))
	}
	if s := strings.TrimSpace(c.Query("status")); s != "" {
		q = q.Where("users.status = ?", s)
	}
	if gid := strings.TrimSpace(c.Query("group_id")); gid != "" {
		id, err := uuid.Parse(gid)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "group_id tidak valid")
		}
		q = q.Where("users.id IN (?)",
			h.DB.Table("group_students").Select("group_student_student_id").Where("group_student_group_id = ?", id))
	}
	if kw := strings.ToLower(strings.TrimSpace(c.Query("q"))); kw != "" {
		like := "%" + kw + "%"
		q = q.Where("LOWER(users.full_name) LIKE ? OR LOWER(users.user_name) LIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	paging := helper.ResolvePaging(c, 50, 500)
	var rows []model.UserModel
	if err := q.Order("users.created_at DESC").Offset(paging.Offset).Limit(paging.Limit).Find(&rows).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	out := make([]dto.StudentResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, h.toResponse(c, r))
	}
	pg := helper.BuildPagination(total, paging, len(out))
	return helper.JsonList(c, "ok", out, &pg)
}

/* ======================== GET ======================== */
// GET /api/students/:id, student hanya boleh melihat dirinya sendiri
func (h *StudentController) Get(c *fiber.Ctx) error {
	callerID, role, err := helper.GetCaller(c)
	if err != nil {
		return err
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	if role == constants.RoleStudent && id != callerID {
		return fiber.NewError(fiber.StatusForbidden, "Not allowed")
	}

	m, err := h.findStudent(c, h.DB, id)
	if err != nil {
		return err
	}
	return helper.JsonOK(c, "ok", h.toResponse(c, *m))
}

/* ======================= UPDATE ======================= */
// PUT /api/students/:id (admin, manager, teacher)
func (h *StudentController) Update(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	var req dto.UpdateStudentRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := helper.Validator().Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	ctx := c.UserContext()
	var m *model.UserModel
	err = h.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if m, err = h.findStudent(c, tx, id); err != nil {
			return err
		}

		updates := req.ToUpdates()
		if req.Password != nil && *req.Password != "" {
			hash, err := authService.HashPassword(*req.Password)
			if err != nil {
				return err
			}
			updates["password"] = hash
		}

		// pindah course: enrollment lama dilepas, fee ikut harga course baru
		if req.CourseID != nil {
			course, err := courseService.FindCourse(ctx, tx, *req.CourseID)
			if err != nil {
				if errors.Is(err, courseService.ErrCourseNotFound) {
					return fiber.NewError(fiber.StatusNotFound, "Course not found")
				}
				return err
			}
			oldCourse, err := courseService.CurrentCourseID(ctx, tx, m.ID)
			if err != nil {
				return err
			}
			if oldCourse == nil || *oldCourse != course.CourseID {
				if oldCourse != nil {
					if err := courseService.Unenroll(ctx, tx, m.ID, *oldCourse); err != nil {
						return err
					}
				}
				if err := courseService.Enroll(ctx, tx, m.ID, course.CourseID); err != nil {
					return err
				}
			}
			updates["fee"] = course.CoursePrice
		}

		if len(updates) > 0 {
			if err := tx.Model(m).Updates(updates).Error; err != nil {
				return err
			}
		}
		return tx.First(m, "id = ?", id).Error
	})
	if err != nil {
		return helper.MapPGError(err, "")
	}
	return helper.JsonUpdated(c, "Student berhasil diperbarui", h.toResponse(c, *m))
}

/* ======================= DELETE ======================= */
// DELETE /api/students/:id (admin, manager)
// riwayat pembayaran & absensi tetap disimpan
func (h *StudentController) Delete(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	err = h.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		if _, err := h.findStudent(c, tx, id); err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM student_courses WHERE student_course_student_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM group_students WHERE group_student_student_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&model.UserModel{}, "id = ?", id).Error
	})
	if err != nil {
		return helper.MapPGError(err, "")
	}
	return helper.JsonDeleted(c, "Student deleted", fiber.Map{"id": id})
}
