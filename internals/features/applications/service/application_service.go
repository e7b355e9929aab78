package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"fcehub_backend/internals/features/applications/lifecycle"
	"fcehub_backend/internals/features/applications/model"
	"fcehub_backend/internals/features/applications/repository"
)

// ApplicationService is the customer flow: draft create, autosave, submit.
// Status and payment changes go through the lifecycle Manager.
type ApplicationService struct {
	repo     *repository.ApplicationRepository
	manager  *lifecycle.Manager
	notifier lifecycle.Notifier
}

func NewApplicationService(repo *repository.ApplicationRepository, manager *lifecycle.Manager, notifier lifecycle.Notifier) *ApplicationService {
	return &ApplicationService{repo: repo, manager: manager, notifier: notifier}
}

func storeErr(op string, err error) error {
	if errors.Is(err, lifecycle.ErrNotFound) {
		return err
	}
	return fmt.Errorf("%s: %w: %w", op, lifecycle.ErrPersistence, err)
}

// Create inserts a new draft. Lifecycle columns always start at draft/pending
// whatever the caller put on app.
func (s *ApplicationService) Create(ctx context.Context, app model.ApplicationModel) (*model.ApplicationModel, error) {
	app.ApplicationID = uuid.Nil
	app.ApplicationStatus = model.ApplicationStatusDraft
	app.ApplicationPaymentStatus = model.PaymentStatusPending
	app.ApplicationVersion = 0
	app.ApplicationSubmittedAt = nil
	app.ApplicationPaidAt = nil
	app.ApplicationDueAmount = nil
	app.ApplicationPaymentMethod = nil
	app.ApplicationPaymentReference = nil
	app.ApplicationOffice = nil

	if err := s.repo.Create(ctx, &app); err != nil {
		return nil, storeErr("create application", err)
	}
	log.Printf("[APPLICATION] draft created id=%s", app.ApplicationID)
	return &app, nil
}

// Get returns the application with its educations and documents.
func (s *ApplicationService) Get(ctx context.Context, id uuid.UUID) (*model.ApplicationModel, error) {
	app, err := s.repo.GetDetail(ctx, id)
	if err != nil {
		return nil, storeErr("load application", err)
	}
	return app, nil
}

// Autosave patches applicant columns while the application is a draft.
// expectedVersion, when given, must match the stored version.
func (s *ApplicationService) Autosave(ctx context.Context, id uuid.UUID, expectedVersion *int64, updates map[string]any) (*model.ApplicationModel, error) {
	app, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, storeErr("load application", err)
	}
	if err := lifecycle.CanEditDraft(app).Error(); err != nil {
		return nil, err
	}

	version := app.ApplicationVersion
	if expectedVersion != nil {
		if *expectedVersion != version {
			return nil, storeErr("autosave application", lifecycle.ErrConflict)
		}
		version = *expectedVersion
	}

	updated, err := s.repo.UpdateDraft(ctx, id, version, updates)
	if err != nil {
		return nil, storeErr("autosave application", err)
	}
	return updated, nil
}

// Submit moves the draft to submitted with its educations and confirms by email.
func (s *ApplicationService) Submit(ctx context.Context, id uuid.UUID, educations []model.EducationModel) (*model.ApplicationModel, error) {
	updated, err := s.manager.Submit(ctx, id, educations)
	if err != nil {
		return nil, err
	}
	if s.notifier != nil {
		s.notifier.Notify(ctx, lifecycle.TemplateApplicationSubmitted, *updated)
	}
	return updated, nil
}
