package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"educenter_backend/internals/constants"
	"educenter_backend/internals/features/attendance/controller"
	authMiddleware "educenter_backend/internals/middlewares/auth"
)

func AttendanceRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := controller.NewAttendanceController(db)

	att := r.Group("/attendance")
	att.Post("/",
		authMiddleware.OnlyRolesSlice(constants.RoleErrorStaff("mencatat absensi"), constants.StaffRoles),
		ctrl.Create,
	)
	att.Patch("/reason",
		authMiddleware.OnlyRolesSlice(constants.RoleErrorManager("mengubah alasan absen"), constants.AdminAndManager),
		ctrl.UpdateReason,
	)
	att.Get("/report/:group_id",
		authMiddleware.OnlyRolesSlice(constants.RoleErrorStaff("laporan absensi"), constants.StaffRoles),
		ctrl.Report,
	)
}
