package controller

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	service "educenter_backend/internals/features/reports/service"
	helper "educenter_backend/internals/helpers"
)

const xlsxMime = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ReportController struct {
	DB *gorm.DB
}

func NewReportController(db *gorm.DB) *ReportController {
	return &ReportController{DB: db}
}

func (h *ReportController) summary(c *fiber.Ctx) (*service.Summary, error) {
	period := strings.ToLower(strings.TrimSpace(c.Query("period", "daily")))
	s, err := service.BuildSummary(c.UserContext(), h.DB, period, time.Now())
	if errors.Is(err, service.ErrInvalidPeriod) {
		return nil, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return s, nil
}

// GET /api/reports/summary?period=daily|weekly|monthly
func (h *ReportController) Summary(c *fiber.Ctx) error {
	s, err := h.summary(c)
	if err != nil {
		return err
	}
	return helper.JsonOK(c, "ok", s)
}

// GET /api/reports/trend
func (h *ReportController) Trend(c *fiber.Ctx) error {
	points, err := service.Trend(c.UserContext(), h.DB, time.Now())
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return helper.JsonList(c, "ok", points, nil)
}

// GET /api/reports/export?period=&format=excel
func (h *ReportController) Export(c *fiber.Ctx) error {
	format := strings.ToLower(strings.TrimSpace(c.Query("format", "excel")))
	if format != "excel" {
		return fiber.NewError(fiber.StatusBadRequest, "Only format=excel is supported")
	}
	s, err := h.summary(c)
	if err != nil {
		return err
	}

	buf, err := service.ExportExcel(s)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Gagal membuat file excel: "+err.Error())
	}
	c.Set(fiber.HeaderContentType, xlsxMime)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=report_%s.xlsx", s.Period))
	return c.Send(buf.Bytes())
}
