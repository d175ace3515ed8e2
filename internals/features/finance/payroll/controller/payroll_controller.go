package controller

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"educenter_backend/internals/constants"
	dto "educenter_backend/internals/features/finance/payroll/dto"
	model "educenter_backend/internals/features/finance/payroll/model"
	service "educenter_backend/internals/features/finance/payroll/service"
	helper "educenter_backend/internals/helpers"
)

type PayrollController struct {
	DB *gorm.DB
}

func NewPayrollController(db *gorm.DB) *PayrollController {
	return &PayrollController{DB: db}
}

/* ===================== SETTINGS ===================== */

// GET /api/payroll/salary/settings
func (h *PayrollController) GetSettings(c *fiber.Ctx) error {
	s, err := service.GetSettings(c.UserContext(), h.DB)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return helper.JsonOK(c, "ok", s)
}

// PUT /api/payroll/salary/settings (admin)
func (h *PayrollController) UpdateSettings(c *fiber.Ctx) error {
	var req dto.SalarySettingsRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := helper.Validator().Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}
	s, err := service.UpdateSettings(c.UserContext(), h.DB, req.TeacherPercent, req.ManagerActivePercent, req.ManagerNewPercent)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return helper.JsonUpdated(c, "updated", s)
}

/* ===================== CALCULATE ===================== */

// POST /api/payroll/calculate?month=YYYY-MM (admin)
func (h *PayrollController) Calculate(c *fiber.Ctx) error {
	month, err := helper.ParseMonth(c.Query("month"))
	if err != nil {
		return err
	}
	ctx, cancel := helper.BatchContext(c)
	defer cancel()

	res, err := service.Calculate(ctx, h.DB, month)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return helper.JsonOK(c, "Payroll calculated", res)
}

/* ======================= LIST ======================= */

// GET /api/payroll?month=, admin melihat semua, selain itu hanya miliknya
func (h *PayrollController) List(c *fiber.Ctx) error {
	callerID, role, err := helper.GetCaller(c)
	if err != nil {
		return err
	}

	q := h.DB.WithContext(c.UserContext()).Preload("User")
	if raw := strings.TrimSpace(c.Query("month")); raw != "" {
		month, err := helper.ParseMonth(raw)
		if err != nil {
			return err
		}
		q = q.Where("payroll_month = ?", month)
	}
	if role != constants.RoleAdmin {
		q = q.Where("payroll_user_id = ?", callerID)
	}

	var rows []model.PayrollModel
	if err := q.Order("payroll_month DESC, payroll_role ASC, payroll_created_at ASC").Find(&rows).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	out := make([]dto.PayrollResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.FromModel(r))
	}
	return helper.JsonList(c, "ok", out, nil)
}

/* ======================= PAY ======================= */

// POST /api/payroll/:id/pay (admin)
func (h *PayrollController) Pay(c *fiber.Ctx) error {
	callerID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	row, err := service.Pay(c.UserContext(), h.DB, id, callerID)
	switch {
	case errors.Is(err, service.ErrPayrollNotFound):
		return fiber.NewError(fiber.StatusNotFound, "Payroll not found")
	case errors.Is(err, service.ErrAlreadyPaid):
		return fiber.NewError(fiber.StatusBadRequest, "already paid")
	case err != nil:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return helper.JsonUpdated(c, "Paid", dto.FromModel(*row))
}
