package controller

import (
	"errors"
	"log"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	authModel "fcehub_backend/internals/features/users/auth/model"
	"fcehub_backend/internals/features/users/auth/service"
	helper "fcehub_backend/internals/helpers"
)

type AuthController struct {
	Svc       *service.AuthService
	Validator *validator.Validate
}

func NewAuthController(svc *service.AuthService) *AuthController {
	return &AuthController{Svc: svc, Validator: helper.NewValidator()}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type googleLoginRequest struct {
	IDToken string `json:"id_token" validate:"required"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

// POST /api/auth/login
func (ac *AuthController) Login(c *fiber.Ctx) error {
	var in loginRequest
	if err := c.BodyParser(&in); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid input format")
	}
	in.Email = strings.TrimSpace(in.Email)
	if err := ac.Validator.Struct(in); err != nil {
		return helper.JsonValidationError(c, helper.FieldErrors(err))
	}

	res, err := ac.Svc.Login(c.UserContext(), in.Email, in.Password)
	if err != nil {
		return authError(c, err)
	}
	return helper.JsonOK(c, "Login successful", res)
}

// POST /api/auth/google
func (ac *AuthController) LoginGoogle(c *fiber.Ctx) error {
	var in googleLoginRequest
	if err := c.BodyParser(&in); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := ac.Validator.Struct(in); err != nil {
		return helper.JsonValidationError(c, helper.FieldErrors(err))
	}
	res, err := ac.Svc.LoginGoogle(c.UserContext(), in.IDToken)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return helper.JsonError(c, fiber.StatusUnauthorized, "Google account is not registered as staff")
		}
		return authError(c, err)
	}
	return helper.JsonOK(c, "Login successful", res)
}

// POST /api/auth/logout
func (ac *AuthController) Logout(c *fiber.Ctx) error {
	raw := helper.GetRawAccessToken(c)
	if raw == "" {
		return helper.JsonOK(c, "Logout successful", nil)
	}
	if err := ac.Svc.Logout(c.UserContext(), raw); err != nil {
		log.Printf("[AUTH] ⚠️ blacklist on logout failed: %v", err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "Logout failed")
	}
	return helper.JsonOK(c, "Logout successful", nil)
}

// GET /api/auth/me
func (ac *AuthController) Me(c *fiber.Ctx) error {
	staff, ok := c.Locals("staff").(*authModel.StaffUserModel)
	if !ok || staff == nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	return helper.JsonOK(c, "ok", staff)
}

// POST /api/auth/change-password
func (ac *AuthController) ChangePassword(c *fiber.Ctx) error {
	id, err := helper.GetStaffID(c)
	if err != nil {
		return err
	}
	var in changePasswordRequest
	if err := c.BodyParser(&in); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid input format")
	}
	if err := ac.Validator.Struct(in); err != nil {
		return helper.JsonValidationError(c, helper.FieldErrors(err))
	}
	if err := ac.Svc.ChangePassword(c.UserContext(), id, in.CurrentPassword, in.NewPassword); err != nil {
		return authError(c, err)
	}
	return helper.JsonUpdated(c, "Password changed successfully", nil)
}

func authError(c *fiber.Ctx, err error) error {
	var in *service.InputError
	switch {
	case errors.As(err, &in):
		return helper.JsonError(c, fiber.StatusBadRequest, in.Msg)
	case errors.Is(err, service.ErrInvalidCredentials):
		return helper.JsonError(c, fiber.StatusUnauthorized, "Email or password is incorrect")
	case errors.Is(err, service.ErrGoogleDisabled):
		return helper.JsonError(c, fiber.StatusNotImplemented, "Google sign-in is not enabled")
	case errors.Is(err, service.ErrInactive):
		return helper.JsonError(c, fiber.StatusForbidden, "Your account has been disabled. Contact an administrator.")
	}
	log.Printf("[AUTH] ❌ %v", err)
	return helper.JsonError(c, fiber.StatusInternalServerError, "Internal server error")
}
