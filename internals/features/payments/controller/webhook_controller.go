package controller

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	appController "fcehub_backend/internals/features/applications/controller"
	"fcehub_backend/internals/features/applications/lifecycle"
	appModel "fcehub_backend/internals/features/applications/model"
	"fcehub_backend/internals/features/payments/service"
	helper "fcehub_backend/internals/helpers"
)

type WebhookController struct {
	Svc       *service.WebhookService
	Verifiers map[appModel.PaymentMethod]lifecycle.WebhookVerifier
}

func NewWebhookController(svc *service.WebhookService, verifiers map[appModel.PaymentMethod]lifecycle.WebhookVerifier) *WebhookController {
	return &WebhookController{Svc: svc, Verifiers: verifiers}
}

// POST /api/webhooks/stripe
func (ctl *WebhookController) Stripe(c *fiber.Ctx) error {
	return ctl.handle(c, appModel.PaymentMethodStripe, c.Get("Stripe-Signature"))
}

// POST /api/webhooks/midtrans (signature travels in the body)
func (ctl *WebhookController) Midtrans(c *fiber.Ctx) error {
	return ctl.handle(c, appModel.PaymentMethodMidtrans, "")
}

func (ctl *WebhookController) handle(c *fiber.Ctx, provider appModel.PaymentMethod, signature string) error {
	v, ok := ctl.Verifiers[provider]
	if !ok || v == nil {
		return helper.JsonError(c, fiber.StatusServiceUnavailable, string(provider)+" is not configured")
	}
	// fasthttp reuses the body buffer after the handler returns
	payload := append([]byte(nil), c.Body()...)

	res, err := ctl.Svc.Process(c.UserContext(), v, payload, signature)
	switch {
	case err == nil:
	case errors.Is(err, lifecycle.ErrUnauthorized):
		log.Printf("[WEBHOOK] ⚠️ %s rejected from %s: %v", provider, c.IP(), err)
		return helper.JsonError(c, fiber.StatusUnauthorized, "Invalid signature")
	case errors.Is(err, lifecycle.ErrMalformedEvent):
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	default:
		// non-2xx so the provider redelivers
		log.Printf("[WEBHOOK] ❌ %s: %v", provider, err)
		return appController.RespondError(c, err)
	}

	log.Printf("[WEBHOOK] %s event=%s application=%s outcome=%s %s",
		provider, res.Event.EventID, res.Event.ApplicationID, res.Outcome, res.Reason)
	return helper.JsonOK(c, string(res.Outcome), fiber.Map{
		"event_id": res.Event.EventID,
		"outcome":  res.Outcome,
		"reason":   res.Reason,
	})
}
