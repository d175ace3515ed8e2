package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"educenter_backend/internals/constants"
	"educenter_backend/internals/features/academics/groups/controller"
	authMiddleware "educenter_backend/internals/middlewares/auth"
)

func GroupRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := controller.NewGroupController(db)

	onlyManagers := authMiddleware.OnlyRolesSlice(constants.RoleErrorManager("kelola grup"), constants.AdminAndManager)

	onlyStaff := authMiddleware.OnlyRolesSlice(constants.RoleErrorStaff("roster grup"), constants.StaffRoles)

	groups := r.Group("/groups")
	groups.Get("/", ctrl.List)
	groups.Get("/teachers/:course_id", onlyStaff, ctrl.CourseTeachers)
	groups.Get("/students/:course_id", onlyStaff, ctrl.CourseStudents)
	groups.Post("/", onlyManagers, ctrl.Create)
	groups.Put("/:id", onlyManagers, ctrl.Update)
	groups.Delete("/:id", onlyManagers, ctrl.Delete)
	groups.Get("/:id/students", onlyStaff, ctrl.Students)
}
