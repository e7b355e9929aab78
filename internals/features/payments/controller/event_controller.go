package controller

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"fcehub_backend/internals/features/payments/model"
	"fcehub_backend/internals/features/payments/repository"
	helper "fcehub_backend/internals/helpers"
)

type EventController struct {
	Repo *repository.GatewayEventRepository
}

func NewEventController(repo *repository.GatewayEventRepository) *EventController {
	return &EventController{Repo: repo}
}

// GET /api/a/payment-events?application_id=&provider=&status=
func (ctl *EventController) List(c *fiber.Ctx) error {
	p := helper.ParseFiber(c, "received_at", "desc", helper.AdminOpts)
	f := repository.EventFilter{
		Provider: strings.ToLower(strings.TrimSpace(c.Query("provider"))),
		Status:   model.GatewayEventStatus(strings.ToLower(strings.TrimSpace(c.Query("status")))),
		Offset:   p.Offset(),
		Limit:    p.Limit(),
	}
	if raw := strings.TrimSpace(c.Query("application_id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return helper.JsonValidationError(c, map[string][]string{"application_id": {"must be a valid UUID"}})
		}
		f.ApplicationID = &id
	}
	switch f.Status {
	case "", model.GatewayEventReceived, model.GatewayEventProcessed, model.GatewayEventFailed, model.GatewayEventIgnored:
	default:
		return helper.JsonValidationError(c, map[string][]string{"status": {"must be one of received, processed, failed, ignored"}})
	}

	rows, total, err := ctl.Repo.List(c.UserContext(), f)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to load payment events")
	}
	return helper.JsonList(c, "ok", rows, helper.BuildMeta(total, p))
}
