package details

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	authRoute "educenter_backend/internals/features/users/auth/route"
)

func AuthPublicRoutes(r fiber.Router, db *gorm.DB) {
	authRoute.AuthPublicRoutes(r, db)
}

func AuthProtectedRoutes(r fiber.Router, db *gorm.DB) {
	authRoute.AuthProtectedRoutes(r, db)
}
