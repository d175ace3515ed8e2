package controller

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	service "educenter_backend/internals/features/dashboard/service"
	helper "educenter_backend/internals/helpers"
)

type DashboardController struct {
	DB *gorm.DB
}

func NewDashboardController(db *gorm.DB) *DashboardController {
	return &DashboardController{DB: db}
}

// GET /api/dashboard/stats
func (h *DashboardController) Stats(c *fiber.Ctx) error {
	userID, role, err := helper.GetCaller(c)
	if err != nil {
		return err
	}
	stats, err := service.Stats(c.UserContext(), h.DB, userID, role, time.Now())
	switch {
	case errors.Is(err, service.ErrRoleNotSupported):
		return fiber.NewError(fiber.StatusForbidden, "Role not supported")
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fiber.NewError(fiber.StatusNotFound, "Student not found")
	case err != nil:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return helper.JsonOK(c, "ok", stats)
}
