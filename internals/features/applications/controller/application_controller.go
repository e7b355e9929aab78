package controller

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"fcehub_backend/internals/configs"
	"fcehub_backend/internals/features/applications/dto"
	"fcehub_backend/internals/features/applications/model"
	"fcehub_backend/internals/features/applications/service"
	helper "fcehub_backend/internals/helpers"
	helperOSS "fcehub_backend/internals/helpers/oss"
)

const defaultDocumentMaxBytes = 10 << 20

// ApplicationController serves the customer form under /api/public.
type ApplicationController struct {
	Apps      *service.ApplicationService
	Docs      *service.DocumentService
	Validator *validator.Validate
	MaxUpload int64
}

func NewApplicationController(apps *service.ApplicationService, docs *service.DocumentService) *ApplicationController {
	return &ApplicationController{
		Apps:      apps,
		Docs:      docs,
		Validator: helper.NewValidator(),
		MaxUpload: int64(configs.GetEnvInt("DOCUMENT_MAX_BYTES", defaultDocumentMaxBytes)),
	}
}

// POST /api/public/applications
func (ctl *ApplicationController) Create(c *fiber.Ctx) error {
	var req dto.CreateApplicationRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	req.Normalize()
	if err := ctl.Validator.Struct(req); err != nil {
		return helper.JsonValidationError(c, helper.FieldErrors(err))
	}

	app, err := ctl.Apps.Create(c.UserContext(), req.ToModel())
	if err != nil {
		return RespondError(c, err)
	}
	return helper.JsonCreated(c, "Application created", dto.FromModel(*app))
}

// GET /api/public/applications/:id
func (ctl *ApplicationController) Get(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	app, err := ctl.Apps.Get(c.UserContext(), id)
	if err != nil {
		return RespondError(c, err)
	}
	return helper.JsonOK(c, "ok", dto.FromModel(*app))
}

// PATCH /api/public/applications/:id
func (ctl *ApplicationController) Autosave(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.AutosaveApplicationRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	updates, errs := req.ToUpdates(ctl.Validator)
	if len(errs) > 0 {
		return helper.JsonValidationError(c, errs)
	}

	app, err := ctl.Apps.Autosave(c.UserContext(), id, req.Version, updates)
	if err != nil {
		return RespondError(c, err)
	}
	return helper.JsonUpdated(c, "Draft saved", dto.FromModel(*app))
}

// POST /api/public/applications/:id/documents (multipart: kind, file)
func (ctl *ApplicationController) UploadDocument(c *fiber.Ctx) error {
	if ctl.Docs == nil {
		return helper.JsonError(c, fiber.StatusServiceUnavailable, "Document storage is not configured")
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	fh, err := helperOSS.GetFormFile(c)
	if err != nil {
		return err
	}
	if fh == nil {
		return helper.JsonValidationError(c, map[string][]string{"file": {"field is required"}})
	}
	kind := model.DocumentKind(strings.ToLower(strings.TrimSpace(c.FormValue("kind"))))
	if kind == "" {
		kind = model.DocumentOther
	}
	data, err := helperOSS.ReadFormFile(fh, ctl.MaxUpload)
	if err != nil {
		return err
	}

	doc, err := ctl.Docs.Upload(c.UserContext(), id, kind, fh.Filename, data)
	if err != nil {
		return RespondError(c, err)
	}
	return helper.JsonCreated(c, "Document uploaded", dto.FromDocument(*doc))
}

// POST /api/public/applications/:id/submit
func (ctl *ApplicationController) Submit(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.SubmitApplicationRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
		}
	}
	if err := ctl.Validator.Struct(req); err != nil {
		return helper.JsonValidationError(c, helper.FieldErrors(err))
	}
	if errs := req.CheckYears(); len(errs) > 0 {
		return helper.JsonValidationError(c, errs)
	}

	app, err := ctl.Apps.Submit(c.UserContext(), id, req.ToModels())
	if err != nil {
		return RespondError(c, err)
	}
	return helper.JsonOK(c, "Application submitted", dto.FromModel(*app))
}
