package details

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	paymentRoute "educenter_backend/internals/features/finance/payments/route"
	payrollRoute "educenter_backend/internals/features/finance/payroll/route"
)

// FinancePublicRoutes: webhook gateway (tanpa JWT, diverifikasi lewat signature)
func FinancePublicRoutes(r fiber.Router, db *gorm.DB) {
	paymentRoute.PaymentPublicRoutes(r, db)
}

func FinanceRoutes(r fiber.Router, db *gorm.DB) {
	paymentRoute.PaymentRoutes(r, db)
	payrollRoute.PayrollRoutes(r, db)
}
