package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"educenter_backend/internals/constants"
	"educenter_backend/internals/features/users/students/controller"
	authMiddleware "educenter_backend/internals/middlewares/auth"
)

func StudentRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := controller.NewStudentController(db)

	onlyManagers := authMiddleware.OnlyRolesSlice(constants.RoleErrorManager("kelola siswa"), constants.AdminAndManager)
	onlyStaff := authMiddleware.OnlyRolesSlice(constants.RoleErrorStaff("data siswa"), constants.StaffRoles)

	students := r.Group("/students")
	students.Get("/", onlyStaff, ctrl.List)
	students.Post("/", onlyManagers, ctrl.Create)
	students.Get("/:id", ctrl.Get)
	students.Put("/:id", onlyStaff, ctrl.Update)
	students.Delete("/:id", onlyManagers, ctrl.Delete)
}
