package controller

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"fcehub_backend/internals/features/applications/lifecycle"
	"fcehub_backend/internals/features/applications/repository"
	"fcehub_backend/internals/features/applications/service"
	helper "fcehub_backend/internals/helpers"
)

// RespondError maps domain errors onto the JSON error envelope.
func RespondError(c *fiber.Ctx, err error) error {
	var te *lifecycle.TransitionError
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return helper.JsonError(c, fe.Code, fe.Message)
	case errors.As(err, &te):
		return helper.JsonError(c, fiber.StatusUnprocessableEntity, te.Error())
	case errors.Is(err, lifecycle.ErrInvalidTransition):
		return helper.JsonError(c, fiber.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, lifecycle.ErrNotFound):
		return helper.JsonError(c, fiber.StatusNotFound, "Application not found")
	case errors.Is(err, repository.ErrEducationNotFound):
		return helper.JsonError(c, fiber.StatusNotFound, "Education not found")
	case errors.Is(err, lifecycle.ErrUnauthorized):
		return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, lifecycle.ErrConflict):
		return helper.JsonError(c, fiber.StatusConflict, "Application was modified by someone else, reload and try again")
	case errors.Is(err, lifecycle.ErrMalformedEvent):
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrUnsupportedDocument):
		return helper.JsonError(c, fiber.StatusUnsupportedMediaType, err.Error())
	case errors.Is(err, service.ErrInvalidDocumentKind):
		return helper.JsonValidationError(c, map[string][]string{"kind": {err.Error()}})
	}
	if status, msg := helper.MapPGError(err); status != fiber.StatusInternalServerError {
		return helper.JsonError(c, status, msg)
	}
	log.Printf("[ERROR] %s %s: %v", c.Method(), c.Path(), err)
	return helper.JsonError(c, fiber.StatusInternalServerError, "Internal server error")
}
