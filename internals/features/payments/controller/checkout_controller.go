package controller

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	appController "fcehub_backend/internals/features/applications/controller"
	"fcehub_backend/internals/features/payments/service"
	helper "fcehub_backend/internals/helpers"
)

type CheckoutController struct {
	Svc *service.CheckoutService
}

func NewCheckoutController(svc *service.CheckoutService) *CheckoutController {
	return &CheckoutController{Svc: svc}
}

// POST /api/public/applications/:id/checkout
func (ctl *CheckoutController) Start(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	co, err := ctl.Svc.Start(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, service.ErrGateway) {
			return helper.JsonError(c, fiber.StatusBadGateway, "Payment provider is unavailable, please try again")
		}
		return appController.RespondError(c, err)
	}
	return helper.JsonCreated(c, "Checkout started", co)
}
