package controller

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	authRepo "educenter_backend/internals/features/users/auth/repository"
	"educenter_backend/internals/features/users/auth/service"
	userDTO "educenter_backend/internals/features/users/user/dto"
	helper "educenter_backend/internals/helpers"
)

type AuthController struct {
	DB *gorm.DB
}

func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{DB: db}
}

type LoginRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

// POST /api/auth/login
func (ac *AuthController) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid input format")
	}
	req.Username = strings.TrimSpace(req.Username)
	if err := helper.Validator().Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	token, user, err := service.Login(c.UserContext(), ac.DB, req.Username, req.Password)
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		return fiber.NewError(fiber.StatusUnauthorized, "Invalid username or password")
	case errors.Is(err, service.ErrUserInactive):
		return fiber.NewError(fiber.StatusForbidden, "Akun Anda telah dinonaktifkan. Hubungi admin.")
	case err != nil:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return helper.JsonOK(c, "Login berhasil", fiber.Map{
		"access_token": token,
		"token_type":   "bearer",
		"user":         userDTO.FromModel(*user),
	})
}

// GET /api/auth/me
func (ac *AuthController) Me(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	user, err := authRepo.FindUserByID(c.UserContext(), ac.DB, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "User not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return helper.JsonOK(c, "ok", userDTO.FromModel(*user))
}

// POST /api/auth/logout
func (ac *AuthController) Logout(c *fiber.Ctx) error {
	if err := service.Logout(c.UserContext(), ac.DB, helper.GetRawAccessToken(c)); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Gagal logout")
	}
	c.ClearCookie("access_token")
	return helper.JsonOK(c, "Logout successful", nil)
}
