package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"educenter_backend/internals/constants"
	"educenter_backend/internals/features/academics/courses/controller"
	authMiddleware "educenter_backend/internals/middlewares/auth"
)

func CourseRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := controller.NewCourseController(db)

	onlyManagers := authMiddleware.OnlyRolesSlice(constants.RoleErrorManager("kelola course"), constants.AdminAndManager)

	courses := r.Group("/courses")
	courses.Get("/", ctrl.List)
	courses.Post("/", onlyManagers, ctrl.Create)
	// sebelum /:id supaya tidak tertangkap sebagai id
	courses.Get("/teacher/my",
		authMiddleware.OnlyRolesSlice(constants.RoleErrorTeacher("course saya"), constants.TeacherOnly),
		ctrl.TeacherMy,
	)
	courses.Get("/:id", ctrl.Get)
	courses.Put("/:id", onlyManagers, ctrl.Update)
	courses.Delete("/:id", onlyManagers, ctrl.Delete)
	courses.Post("/:id/enroll",
		authMiddleware.OnlyRolesSlice(constants.RoleErrorStudent("enroll course"), constants.StudentOnly),
		ctrl.Enroll,
	)
}
