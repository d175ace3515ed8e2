package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"educenter_backend/internals/constants"
	"educenter_backend/internals/features/reports/controller"
	authMiddleware "educenter_backend/internals/middlewares/auth"
)

func ReportRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := controller.NewReportController(db)

	reports := r.Group("/reports",
		authMiddleware.OnlyRolesSlice(constants.RoleErrorManager("laporan"), constants.AdminAndManager),
	)
	reports.Get("/summary", ctrl.Summary)
	reports.Get("/trend", ctrl.Trend)
	reports.Get("/export", ctrl.Export)
}
