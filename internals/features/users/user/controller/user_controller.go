package controller

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"educenter_backend/internals/constants"
	authService "educenter_backend/internals/features/users/auth/service"
	dto "educenter_backend/internals/features/users/user/dto"
	model "educenter_backend/internals/features/users/user/model"
	helper "educenter_backend/internals/helpers"
)

type UserController struct {
	DB *gorm.DB
}

func NewUserController(db *gorm.DB) *UserController {
	return &UserController{DB: db}
}

/* ======================== LIST ======================== */
// GET /api/users?role=&q=&page=&per_page=
// admin/manager: semua user, role lain: hanya dirinya sendiri
func (h *UserController) List(c *fiber.Ctx) error {
	callerID, role, err := helper.GetCaller(c)
	if err != nil {
		return err
	}

	q := h.DB.WithContext(c.UserContext()).Model(&model.UserModel{})
	if role != constants.RoleAdmin && role != constants.RoleManager {
		q = q.Where("id = ?", callerID)
	}
	if r := strings.TrimSpace(c.Query("role")); r != "" {
		q = q.Where("role = ?", r)
	}
	if kw := strings.ToLower(strings.TrimSpace(c.Query("q"))); kw != "" {
		like := "%" + kw + "%"
		q = q.Where("LOWER(full_name) LIKE ? OR LOWER(user_name) LIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	paging := helper.ResolvePaging(c, 50, 500)
	var rows []model.UserModel
	if err := q.Order("created_at DESC").
		Offset(paging.Offset).Limit(paging.Limit).
		Find(&rows).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	pg := helper.BuildPagination(total, paging, len(rows))
	return helper.JsonList(c, "ok", dto.FromModels(rows), &pg)
}

/* ======================= CREATE ======================= */
// POST /api/users (admin, manager)
func (h *UserController) Create(c *fiber.Ctx) error {
	var req dto.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Payload tidak valid")
	}
	req.Normalize()
	if err := helper.Validator().Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	db := h.DB.WithContext(c.UserContext())

	var exists int64
	if err := db.Model(&model.UserModel{}).Where("user_name = ?", req.UserName).Count(&exists).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	if exists > 0 {
		return fiber.NewError(fiber.StatusBadRequest, "Username already exists")
	}

	m := req.ToModel()
	hash, err := authService.HashPassword(req.Password)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Password hashing failed")
	}
	m.Password = hash
	if m.Role == constants.RoleStudent {
		st := constants.StudentStudying
		m.Status = &st
	}

	if err := db.Create(m).Error; err != nil {
		return helper.MapPGError(err, "Username already exists")
	}
	return helper.JsonCreated(c, "User berhasil dibuat", dto.FromModel(*m))
}

/* ======================= UPDATE ======================= */
// PUT /api/users/:id (admin)
func (h *UserController) Update(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	var req dto.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := helper.Validator().Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	db := h.DB.WithContext(c.UserContext())

	var m model.UserModel
	if err := db.First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "User not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	updates := req.ToUpdates()
	if req.Password != nil && *req.Password != "" {
		hash, err := authService.HashPassword(*req.Password)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Password hashing failed")
		}
		updates["password"] = hash
	}
	if len(updates) == 0 {
		return helper.JsonUpdated(c, "Tidak ada perubahan", dto.FromModel(m))
	}

	if err := db.Model(&m).Updates(updates).Error; err != nil {
		return helper.MapPGError(err, "")
	}
	if err := db.First(&m, "id = ?", id).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return helper.JsonUpdated(c, "User berhasil diperbarui", dto.FromModel(m))
}
