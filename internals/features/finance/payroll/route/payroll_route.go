package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"educenter_backend/internals/constants"
	"educenter_backend/internals/features/finance/payroll/controller"
	authMiddleware "educenter_backend/internals/middlewares/auth"
)

func PayrollRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := controller.NewPayrollController(db)

	onlyAdmin := authMiddleware.OnlyRolesSlice(constants.RoleErrorAdmin("payroll"), constants.AdminOnly)
	onlyStaff := authMiddleware.OnlyRolesSlice(constants.RoleErrorStaff("payroll"), constants.StaffRoles)

	payroll := r.Group("/payroll")
	payroll.Get("/salary/settings", onlyStaff, ctrl.GetSettings)
	payroll.Put("/salary/settings", onlyAdmin, ctrl.UpdateSettings)
	payroll.Post("/calculate", onlyAdmin, ctrl.Calculate)
	payroll.Get("/", onlyStaff, ctrl.List)
	payroll.Post("/:id/pay", onlyAdmin, ctrl.Pay)
}
