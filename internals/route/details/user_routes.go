package details

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	studentRoute "educenter_backend/internals/features/users/students/route"
	userRoute "educenter_backend/internals/features/users/user/route"
)

// UserRoutes: /users (staff) & /students
func UserRoutes(r fiber.Router, db *gorm.DB) {
	userRoute.UserRoutes(r, db)
	studentRoute.StudentRoutes(r, db)
}
