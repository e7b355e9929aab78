package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/google/uuid"

	"fcehub_backend/internals/features/applications/lifecycle"
	"fcehub_backend/internals/features/applications/model"
	"fcehub_backend/internals/features/applications/repository"
	"fcehub_backend/internals/helpers/dbtime"
)

// AdminService backs the staff dashboard reads and the few staff writes that
// are not lifecycle transitions.
type AdminService struct {
	repo     *repository.ApplicationRepository
	manager  *lifecycle.Manager
	notifier lifecycle.Notifier
}

func NewAdminService(repo *repository.ApplicationRepository, manager *lifecycle.Manager, notifier lifecycle.Notifier) *AdminService {
	return &AdminService{repo: repo, manager: manager, notifier: notifier}
}

func (s *AdminService) List(ctx context.Context, f lifecycle.ListFilter) ([]model.ApplicationModel, int64, error) {
	total, err := s.repo.Count(ctx, f)
	if err != nil {
		return nil, 0, storeErr("count applications", err)
	}
	if total == 0 {
		return []model.ApplicationModel{}, 0, nil
	}
	rows, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, 0, storeErr("list applications", err)
	}
	return rows, total, nil
}

func (s *AdminService) Detail(ctx context.Context, id uuid.UUID) (*model.ApplicationModel, error) {
	app, err := s.repo.GetDetail(ctx, id)
	if err != nil {
		return nil, storeErr("load application", err)
	}
	return app, nil
}

// UpdateEducationAI stores staff edits to the AI-assist columns.
func (s *AdminService) UpdateEducationAI(ctx context.Context, appID, educationID uuid.UUID, updates map[string]any) (*model.EducationModel, error) {
	edu, err := s.repo.UpdateEducationAI(ctx, appID, educationID, updates)
	if err != nil {
		if errors.Is(err, repository.ErrEducationNotFound) {
			return nil, err
		}
		return nil, storeErr("update education", err)
	}
	return edu, nil
}

// NotifyStatus emails the customer the template for the current status.
// Drafts have nothing to announce.
func (s *AdminService) NotifyStatus(ctx context.Context, id uuid.UUID) (*model.ApplicationModel, error) {
	app, err := s.manager.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if app.ApplicationStatus == model.ApplicationStatusDraft {
		return nil, &lifecycle.TransitionError{
			Field:  "application_status",
			Reason: "application is still a draft, there is no status to announce",
		}
	}
	if strings.TrimSpace(app.ApplicationEmail) == "" {
		return nil, &lifecycle.TransitionError{
			Field:  "application_email",
			Reason: "application has no email address",
		}
	}
	s.notifier.Notify(ctx, lifecycle.TemplateStatusUpdate, *app)
	log.Printf("[ADMIN] status email queued application=%s status=%s", id, app.ApplicationStatus)
	return app, nil
}

var exportHeader = []string{
	"application_id", "status", "payment_status", "first_name", "last_name", "email", "phone",
	"service_type", "evaluation_type", "purpose", "office", "due_amount",
	"payment_method", "payment_reference", "payment_note",
	"submitted_at", "paid_at", "created_at",
}

const exportTimeLayout = "2006-01-02 15:04"

// ExportCSV writes every application matching f. Timestamps are rendered in
// the business timezone.
func (s *AdminService) ExportCSV(ctx context.Context, w io.Writer, f lifecycle.ListFilter) (int, error) {
	f.Offset, f.Limit = 0, 0
	rows, err := s.repo.List(ctx, f)
	if err != nil {
		return 0, storeErr("export applications", err)
	}

	loc := dbtime.BusinessLocation()
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return 0, err
	}
	for i := range rows {
		a := &rows[i]
		created := a.ApplicationCreatedAt
		rec := []string{
			a.ApplicationID.String(),
			string(a.ApplicationStatus),
			string(a.ApplicationPaymentStatus),
			a.ApplicationFirstName,
			a.ApplicationLastName,
			a.ApplicationEmail,
			str(a.ApplicationPhone),
			enum(a.ApplicationServiceType),
			enum(a.ApplicationEvaluationType),
			enum(a.ApplicationPurpose),
			enum(a.ApplicationOffice),
			"",
			enum(a.ApplicationPaymentMethod),
			str(a.ApplicationPaymentReference),
			a.PaymentNote(),
			dbtime.Format(a.ApplicationSubmittedAt, loc, exportTimeLayout),
			dbtime.Format(a.ApplicationPaidAt, loc, exportTimeLayout),
			dbtime.Format(&created, loc, exportTimeLayout),
		}
		if a.ApplicationDueAmount != nil {
			rec[11] = a.ApplicationDueAmount.StringFixed(2)
		}
		if err := cw.Write(rec); err != nil {
			return i, err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return len(rows), fmt.Errorf("write csv: %w", err)
	}
	return len(rows), nil
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func enum[T ~string](p *T) string {
	if p == nil {
		return ""
	}
	return string(*p)
}
