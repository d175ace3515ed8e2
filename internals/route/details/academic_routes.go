package details

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	courseRoute "educenter_backend/internals/features/academics/courses/route"
	groupRoute "educenter_backend/internals/features/academics/groups/route"
	attendanceRoute "educenter_backend/internals/features/attendance/route"
)

func AcademicRoutes(r fiber.Router, db *gorm.DB) {
	courseRoute.CourseRoutes(r, db)
	groupRoute.GroupRoutes(r, db)
	attendanceRoute.AttendanceRoutes(r, db)
}
