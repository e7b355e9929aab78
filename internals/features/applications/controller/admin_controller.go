package controller

import (
	"bytes"
	"fmt"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"fcehub_backend/internals/features/applications/dto"
	"fcehub_backend/internals/features/applications/lifecycle"
	"fcehub_backend/internals/features/applications/model"
	"fcehub_backend/internals/features/applications/service"
	helper "fcehub_backend/internals/helpers"
	"fcehub_backend/internals/helpers/dbtime"
)

// AdminController serves /api/a/applications for signed-in staff.
type AdminController struct {
	Manager   *lifecycle.Manager
	Admin     *service.AdminService
	Validator *validator.Validate
}

func NewAdminController(m *lifecycle.Manager, admin *service.AdminService) *AdminController {
	return &AdminController{Manager: m, Admin: admin, Validator: helper.NewValidator()}
}

func staffTag(c *fiber.Ctx) string {
	if s, ok := c.Locals("user_id").(string); ok && s != "" {
		return s
	}
	return "-"
}

/* =========================================================
   READS
========================================================= */

// GET /api/a/applications
func (ctl *AdminController) List(c *fiber.Ctx) error {
	f, p, errs := dto.ParseListQuery(c, helper.AdminOpts)
	if len(errs) > 0 {
		return helper.JsonValidationError(c, errs)
	}
	rows, total, err := ctl.Admin.List(c.UserContext(), f)
	if err != nil {
		return RespondError(c, err)
	}
	return helper.JsonList(c, "ok", dto.FromModels(rows), helper.BuildMeta(total, p))
}

// GET /api/a/applications/:id
func (ctl *AdminController) Detail(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	app, err := ctl.Admin.Detail(c.UserContext(), id)
	if err != nil {
		return RespondError(c, err)
	}
	return helper.JsonOK(c, "ok", dto.FromModel(*app))
}

// GET /api/a/applications/export
func (ctl *AdminController) Export(c *fiber.Ctx) error {
	f, _, errs := dto.ParseListQuery(c, helper.ExportOpts)
	if len(errs) > 0 {
		return helper.JsonValidationError(c, errs)
	}
	var buf bytes.Buffer
	n, err := ctl.Admin.ExportCSV(c.UserContext(), &buf, f)
	if err != nil {
		return RespondError(c, err)
	}

	name := fmt.Sprintf("applications-%s.csv", time.Now().In(dbtime.BusinessLocation()).Format("20060102"))
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+name+`"`)
	log.Printf("[ADMIN] staff=%s exported %d application(s)", staffTag(c), n)
	return c.Send(buf.Bytes())
}

/* =========================================================
   LIFECYCLE MUTATIONS
========================================================= */

func (ctl *AdminController) updated(c *fiber.Ctx, app *model.ApplicationModel, err error, what string) error {
	if err != nil {
		return RespondError(c, err)
	}
	log.Printf("[ADMIN] staff=%s application=%s %s", staffTag(c), app.ApplicationID, what)
	return helper.JsonUpdated(c, "Application updated", dto.FromModel(*app))
}

// PATCH /api/a/applications/:id/status
func (ctl *AdminController) ChangeStatus(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.ChangeStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := ctl.Validator.Struct(req); err != nil {
		return helper.JsonValidationError(c, helper.FieldErrors(err))
	}
	app, err := ctl.Manager.ChangeStatus(c.UserContext(), id, model.ApplicationStatus(req.Status))
	return ctl.updated(c, app, err, "status="+req.Status)
}

// PATCH /api/a/applications/:id/payment-status
func (ctl *AdminController) ChangePaymentStatus(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.ChangePaymentStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := ctl.Validator.Struct(req); err != nil {
		return helper.JsonValidationError(c, helper.FieldErrors(err))
	}
	app, err := ctl.Manager.ChangePaymentStatus(c.UserContext(), id,
		model.PaymentStatus(req.PaymentStatus), model.PaymentMethod(req.Method))
	return ctl.updated(c, app, err, "payment_status="+req.PaymentStatus)
}

// PATCH /api/a/applications/:id/paid-at
func (ctl *AdminController) ChangePaidAt(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.ChangePaidAtRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "paid_at must be an RFC3339 timestamp or null")
	}
	if !req.PaidAt.Present {
		return helper.JsonValidationError(c, map[string][]string{"paid_at": {"field is required"}})
	}
	app, err := ctl.Manager.ChangePaidAt(c.UserContext(), id, req.PaidAt.Value)
	return ctl.updated(c, app, err, "paid_at changed")
}

// PATCH /api/a/applications/:id/due-amount
func (ctl *AdminController) ChangeDueAmount(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.ChangeDueAmountRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "due_amount must be a number or null")
	}
	if !req.DueAmount.Present {
		return helper.JsonValidationError(c, map[string][]string{"due_amount": {"field is required"}})
	}
	app, err := ctl.Manager.ChangeDueAmount(c.UserContext(), id, req.DueAmount.Value)
	return ctl.updated(c, app, err, "due_amount changed")
}

// PATCH /api/a/applications/:id/office
func (ctl *AdminController) ChangeOffice(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.ChangeOfficeRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	office, present := req.Parsed()
	if !present {
		return helper.JsonValidationError(c, map[string][]string{"office": {"field is required"}})
	}
	if office != nil && !office.Valid() {
		return helper.JsonValidationError(c, map[string][]string{"office": {"must be one of miami, orlando, tampa, online"}})
	}
	app, err := ctl.Manager.ChangeOffice(c.UserContext(), id, office)
	return ctl.updated(c, app, err, "office changed")
}

/* =========================================================
   EDUCATION AI / NOTIFY
========================================================= */

// PATCH /api/a/applications/:id/educations/:education_id
func (ctl *AdminController) UpdateEducationAI(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	eduID, err := helper.ParseUUIDParam(c, "education_id")
	if err != nil {
		return err
	}
	var req dto.UpdateEducationAIRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	updates, errs := req.ToUpdates()
	if len(errs) > 0 {
		return helper.JsonValidationError(c, errs)
	}
	edu, err := ctl.Admin.UpdateEducationAI(c.UserContext(), id, eduID, updates)
	if err != nil {
		return RespondError(c, err)
	}
	return helper.JsonUpdated(c, "Education updated", dto.FromEducation(*edu))
}

// POST /api/a/applications/:id/notify
func (ctl *AdminController) Notify(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	app, err := ctl.Admin.NotifyStatus(c.UserContext(), id)
	if err != nil {
		return RespondError(c, err)
	}
	return helper.JsonOK(c, "Status email queued", fiber.Map{
		"application_id":     app.ApplicationID,
		"application_status": app.ApplicationStatus,
		"email":              app.ApplicationEmail,
	})
}
