package routes

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	authMiddleware "educenter_backend/internals/middlewares/auth"
	routeDetails "educenter_backend/internals/route/details"
)

var startTime = time.Now()

// SetupRoutes memasang semua route di bawah /api.
// Route publik harus didaftarkan sebelum AuthMiddleware.
func SetupRoutes(app *fiber.App, db *gorm.DB) {
	api := app.Group("/api")

	// ===================== PUBLIC =====================
	log.Println("[INFO] Setting up public routes...")
	BaseRoutes(api, db)
	routeDetails.AuthPublicRoutes(api, db)
	routeDetails.FinancePublicRoutes(api, db)

	// ===================== PROTECTED =====================
	api.Use(authMiddleware.AuthMiddleware(db))

	log.Println("[INFO] Setting up protected routes...")
	routeDetails.AuthProtectedRoutes(api, db)
	routeDetails.UserRoutes(api, db)
	routeDetails.AcademicRoutes(api, db)
	routeDetails.FinanceRoutes(api, db)
	routeDetails.ReportRoutes(api, db)
}
