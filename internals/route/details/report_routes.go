package details

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	dashboardRoute "educenter_backend/internals/features/dashboard/route"
	reportRoute "educenter_backend/internals/features/reports/route"
)

func ReportRoutes(r fiber.Router, db *gorm.DB) {
	reportRoute.ReportRoutes(r, db)
	dashboardRoute.DashboardRoutes(r, db)
}
