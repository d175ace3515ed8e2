package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"educenter_backend/internals/constants"
	"educenter_backend/internals/features/finance/payments/controller"
	authMiddleware "educenter_backend/internals/middlewares/auth"
)

// PaymentPublicRoutes: webhook gateway, tanpa token (diverifikasi signature).
func PaymentPublicRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := controller.NewPaymentController(db)
	r.Post("/payments/notification", ctrl.Notification)
}

func PaymentRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := controller.NewPaymentController(db)

	onlyManagers := authMiddleware.OnlyRolesSlice(constants.RoleErrorManager("kelola tagihan"), constants.AdminAndManager)

	payments := r.Group("/payments")
	payments.Get("/", ctrl.List)
	payments.Post("/",
		authMiddleware.OnlyRolesSlice(constants.RoleErrorStaff("mencatat pembayaran"), constants.StaffRoles),
		ctrl.Create,
	)
	payments.Post("/calculate-monthly", onlyManagers, ctrl.CalculateMonthly)
	payments.Put("/mark-paid/:id", onlyManagers, ctrl.MarkPaid)
	payments.Get("/student/:id/history", ctrl.History)
	payments.Post("/:id/checkout", ctrl.Checkout)
}
