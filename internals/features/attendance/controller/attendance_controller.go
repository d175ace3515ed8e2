package controller

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"educenter_backend/internals/constants"
	groupService "educenter_backend/internals/features/academics/groups/service"
	dto "educenter_backend/internals/features/attendance/dto"
	service "educenter_backend/internals/features/attendance/service"
	helper "educenter_backend/internals/helpers"
)

type AttendanceController struct {
	DB *gorm.DB
}

func NewAttendanceController(db *gorm.DB) *AttendanceController {
	return &AttendanceController{DB: db}
}

/* ======================= CREATE ======================= */
// POST /api/attendance (teacher, admin, manager)
// teacher hanya untuk grup yang dia ajar
func (h *AttendanceController) Create(c *fiber.Ctx) error {
	callerID, role, err := helper.GetCaller(c)
	if err != nil {
		return err
	}

	var req dto.CreateAttendanceRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := helper.Validator().Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	day := time.Now().UTC()
	if req.Date != nil && *req.Date != "" {
		if day, err = helper.ParseDate(*req.Date); err != nil {
			return err
		}
	}

	ctx := c.UserContext()
	g, err := groupService.FindGroup(ctx, h.DB, req.GroupID)
	if err != nil {
		if errors.Is(err, groupService.ErrGroupNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Group not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	if role == constants.RoleTeacher && (g.GroupTeacherID == nil || *g.GroupTeacherID != callerID) {
		return fiber.NewError(fiber.StatusForbidden, "You are not the teacher of this group")
	}

	rows, err := service.CreateBulk(ctx, h.DB, g.GroupID, &callerID, day, req.Records)
	if err != nil {
		if errors.Is(err, service.ErrAttendanceExists) {
			return fiber.NewError(fiber.StatusBadRequest, "Attendance for "+helper.TruncateDay(day).Format("2006-01-02")+" already exists")
		}
		return helper.MapPGError(err, "Attendance already exists")
	}
	return helper.JsonCreated(c, "Absensi berhasil dicatat", dto.FromModels(rows))
}

/* ======================= REASON ======================= */
// PATCH /api/attendance/reason (admin, manager)
func (h *AttendanceController) UpdateReason(c *fiber.Ctx) error {
	var req dto.UpdateReasonRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := helper.Validator().Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}
	day, err := helper.ParseDate(req.Date)
	if err != nil {
		return err
	}

	m, err := service.UpdateReason(c.UserContext(), h.DB, req.StudentID, req.GroupID, day, req.Reason)
	if err != nil {
		if errors.Is(err, service.ErrAttendanceNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Attendance record not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return helper.JsonUpdated(c, "Reason updated to "+req.Reason, dto.FromModel(*m))
}

/* ======================= REPORT ======================= */
// GET /api/attendance/report/:group_id?month=YYYY-MM
func (h *AttendanceController) Report(c *fiber.Ctx) error {
	groupID, err := helper.ParseUUIDParam(c, "group_id")
	if err != nil {
		return err
	}
	month, err := helper.ParseMonth(c.Query("month"))
	if err != nil {
		return err
	}

	ctx := c.UserContext()
	if _, err := groupService.FindGroup(ctx, h.DB, groupID); err != nil {
		if errors.Is(err, groupService.ErrGroupNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Group not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	students, err := groupService.RosterStudents(ctx, h.DB, groupID)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	report, err := service.BuildGroupReport(ctx, h.DB, groupID, month, students)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	if len(report.DayList) == 0 {
		return helper.JsonOK(c, "No lessons this month", report)
	}
	return helper.JsonOK(c, "ok", report)
}
