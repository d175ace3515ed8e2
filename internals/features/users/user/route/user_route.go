package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"educenter_backend/internals/constants"
	"educenter_backend/internals/features/users/user/controller"
	authMiddleware "educenter_backend/internals/middlewares/auth"
)

func UserRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := controller.NewUserController(db)

	users := r.Group("/users")
	users.Get("/", ctrl.List)
	users.Post("/",
		authMiddleware.OnlyRolesSlice(constants.RoleErrorManager("tambah user"), constants.AdminAndManager),
		ctrl.Create,
	)
	users.Put("/:id",
		authMiddleware.OnlyRolesSlice(constants.RoleErrorAdmin("ubah user"), constants.AdminOnly),
		ctrl.Update,
	)
}
