package controller

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"fcehub_backend/internals/features/applications/lifecycle"
	helper "fcehub_backend/internals/helpers"
)

// AutomationController is called by an external scheduler with a shared token.
type AutomationController struct {
	Manager *lifecycle.Manager
	Now     func() time.Time
}

func NewAutomationController(m *lifecycle.Manager) *AutomationController {
	return &AutomationController{Manager: m, Now: func() time.Time { return time.Now().UTC() }}
}

// POST /api/automation/expire-payments
func (ctl *AutomationController) ExpirePayments(c *fiber.Ctx) error {
	ids, err := ctl.Manager.ExpireStalePendingPayments(c.UserContext(), ctl.Now())
	if err != nil {
		log.Printf("[SWEEP] ❌ expire-payments: %v", err)
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	if len(ids) == 0 {
		return c.JSON(fiber.Map{
			"success": true,
			"message": "no stale pending payments found",
			"count":   0,
			"ids":     []uuid.UUID{},
		})
	}
	log.Printf("[SWEEP] expired %d pending payment(s)", len(ids))
	return c.JSON(fiber.Map{
		"success": true,
		"message": "expired stale pending payments",
		"count":   len(ids),
		"ids":     ids,
	})
}
