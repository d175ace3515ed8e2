// file: internals/features/users/auth/route/auth_route.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	controller "educenter_backend/internals/features/users/auth/controller"
	rateLimiter "educenter_backend/internals/middlewares"
)

// AuthPublicRoutes: /api/auth/login (tanpa token)
func AuthPublicRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := controller.NewAuthController(db)

	auth := r.Group("/auth")
	auth.Post("/login", rateLimiter.LoginRateLimiter(), ctrl.Login)
}

// AuthProtectedRoutes: /api/auth/me & /api/auth/logout (butuh token)
func AuthProtectedRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := controller.NewAuthController(db)

	auth := r.Group("/auth")
	auth.Get("/me", ctrl.Me)
	auth.Post("/logout", ctrl.Logout)
}
