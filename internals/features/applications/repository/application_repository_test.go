package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"fcehub_backend/internals/features/applications/lifecycle"
	"fcehub_backend/internals/features/applications/model"
	"fcehub_backend/internals/features/applications/repository/repotest"
)

func newTestRepo(t *testing.T) *ApplicationRepository {
	t.Helper()
	return NewApplicationRepository(repotest.Open(t))
}

func seed(t *testing.T, r *ApplicationRepository, a model.ApplicationModel) model.ApplicationModel {
	t.Helper()
	if err := r.Create(context.Background(), &a); err != nil {
		t.Fatalf("create: %v", err)
	}
	return a
}

func submitted(first, last, email string, at time.Time, pay model.PaymentStatus) model.ApplicationModel {
	return model.ApplicationModel{
		ApplicationStatus:        model.ApplicationStatusSubmitted,
		ApplicationPaymentStatus: pay,
		ApplicationSubmittedAt:   &at,
		ApplicationFirstName:     first,
		ApplicationLastName:      last,
		ApplicationEmail:         email,
	}
}

func TestCreateFillsDefaults(t *testing.T) {
	r := newTestRepo(t)
	a := seed(t, r, model.ApplicationModel{ApplicationFirstName: "Lea", ApplicationEmail: "lea@example.com"})

	got, err := r.Get(context.Background(), a.ApplicationID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ApplicationStatus != model.ApplicationStatusDraft || got.ApplicationPaymentStatus != model.PaymentStatusPending {
		t.Fatalf("defaults: %s/%s", got.ApplicationStatus, got.ApplicationPaymentStatus)
	}
	if got.ApplicationVersion != 1 {
		t.Fatalf("version = %d", got.ApplicationVersion)
	}

	if _, err := r.Get(context.Background(), uuid.New()); !errors.Is(err, lifecycle.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateFieldsVersionCheck(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	a := seed(t, r, submitted("Ana", "Souza", "ana@example.com", time.Now().UTC(), model.PaymentStatusPending))

	amt := decimal.RequireFromString("123.46")
	got, err := r.UpdateFields(ctx, a.ApplicationID, 1, lifecycle.Fields{DueAmount: lifecycle.SetTo(amt)})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.ApplicationVersion != 2 {
		t.Fatalf("version = %d, want 2", got.ApplicationVersion)
	}
	if got.ApplicationDueAmount == nil || !got.ApplicationDueAmount.Equal(amt) {
		t.Fatalf("due amount = %v", got.ApplicationDueAmount)
	}

	// stale version
	_, err = r.UpdateFields(ctx, a.ApplicationID, 1, lifecycle.Fields{Office: lifecycle.SetTo(model.OfficeMiami)})
	if !errors.Is(err, lifecycle.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if after, _ := r.Get(ctx, a.ApplicationID); after.ApplicationOffice != nil {
		t.Fatal("conflicting write was applied")
	}

	_, err = r.UpdateFields(ctx, uuid.New(), 1, lifecycle.Fields{Office: lifecycle.SetTo(model.OfficeMiami)})
	if !errors.Is(err, lifecycle.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateFieldsClearsAndMirrors(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	paidAt := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	a := submitted("Ana", "Souza", "ana@example.com", time.Now().UTC(), model.PaymentStatusPending)
	a.ApplicationPaidAt = &paidAt
	a = seed(t, r, a)

	if err := r.DB.Create(&model.ExternalOrderModel{
		ExternalOrderApplicationID: a.ApplicationID,
		ExternalOrderSource:        "partner",
		ExternalOrderStatus:        model.ApplicationStatusSubmitted,
	}).Error; err != nil {
		t.Fatalf("seed order: %v", err)
	}

	got, err := r.UpdateFields(ctx, a.ApplicationID, a.ApplicationVersion, lifecycle.Fields{
		Status: lifecycle.SetTo(model.ApplicationStatusCancelled),
		PaidAt: lifecycle.Clear[time.Time](),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.ApplicationPaidAt != nil {
		t.Fatalf("paid_at not cleared: %v", got.ApplicationPaidAt)
	}

	var o model.ExternalOrderModel
	if err := r.DB.First(&o, "external_order_application_id = ?", a.ApplicationID).Error; err != nil {
		t.Fatalf("load order: %v", err)
	}
	if o.ExternalOrderStatus != model.ApplicationStatusCancelled {
		t.Fatalf("external order status = %s", o.ExternalOrderStatus)
	}
}

func TestSubmitInsertsEducations(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	a := seed(t, r, model.ApplicationModel{ApplicationFirstName: "Lea", ApplicationEmail: "lea@example.com"})

	at := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	edu := []model.EducationModel{
		{EducationInstitution: "UNAM", EducationCountry: "Mexico", EducationDegree: "Licenciatura"},
		{EducationInstitution: "ITESM", EducationCountry: "Mexico", EducationDegree: "Maestria"},
	}
	got, err := r.Submit(ctx, a.ApplicationID, 1, at, edu)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if got.ApplicationStatus != model.ApplicationStatusSubmitted || got.ApplicationSubmittedAt == nil || !got.ApplicationSubmittedAt.Equal(at) {
		t.Fatalf("after submit: %s %v", got.ApplicationStatus, got.ApplicationSubmittedAt)
	}
	if len(got.Educations) != 2 {
		t.Fatalf("educations = %d", len(got.Educations))
	}

	if _, err := r.Submit(ctx, a.ApplicationID, got.ApplicationVersion, at, nil); !errors.Is(err, lifecycle.ErrConflict) {
		t.Fatalf("second submit: expected ErrConflict, got %v", err)
	}
}

func TestListFiltersAndCount(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	old := seed(t, r, submitted("Ana", "Souza", "ana@example.com", now.Add(-50*time.Hour), model.PaymentStatusPending))
	seed(t, r, submitted("Bruno", "Lima", "bruno@example.com", now.Add(-10*time.Hour), model.PaymentStatusPending))
	seed(t, r, submitted("Carla", "Diaz", "carla@example.com", now.Add(-60*time.Hour), model.PaymentStatusPaid))
	seed(t, r, model.ApplicationModel{ApplicationFirstName: "Dora", ApplicationEmail: "dora@example.com"})

	cutoff := now.Add(-48 * time.Hour)
	got, err := r.List(ctx, lifecycle.ListFilter{
		Statuses:        []model.ApplicationStatus{model.ApplicationStatusSubmitted},
		PaymentStatuses: []model.PaymentStatus{model.PaymentStatusPending},
		SubmittedBefore: &cutoff,
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].ApplicationID != old.ApplicationID {
		t.Fatalf("stale filter returned %d rows", len(got))
	}

	got, err = r.List(ctx, lifecycle.ListFilter{Query: "  LIMA "})
	if err != nil || len(got) != 1 || got[0].ApplicationFirstName != "Bruno" {
		t.Fatalf("search: %d rows, err %v", len(got), err)
	}

	got, err = r.List(ctx, lifecycle.ListFilter{SortBy: "last_name", Limit: 2, Offset: 1})
	if err != nil {
		t.Fatalf("paged list: %v", err)
	}
	// last names sorted: "", Diaz, Lima, Souza
	if len(got) != 2 || got[0].ApplicationLastName != "Diaz" || got[1].ApplicationLastName != "Lima" {
		t.Fatalf("paged list = %+v", got)
	}

	n, err := r.Count(ctx, lifecycle.ListFilter{Statuses: []model.ApplicationStatus{model.ApplicationStatusSubmitted}})
	if err != nil || n != 3 {
		t.Fatalf("count = %d, err %v", n, err)
	}
}

func TestExpirePending(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	now := time.Now().UTC()

	a := seed(t, r, submitted("Ana", "Souza", "ana@example.com", now.Add(-50*time.Hour), model.PaymentStatusPending))
	b := seed(t, r, submitted("Bruno", "Lima", "bruno@example.com", now.Add(-50*time.Hour), model.PaymentStatusPaid))

	ids, err := r.ExpirePending(ctx, []uuid.UUID{a.ApplicationID, b.ApplicationID})
	if err != nil {
		t.Fatalf("expire: %v", err)
	}
	if len(ids) != 1 || ids[0] != a.ApplicationID {
		t.Fatalf("expired ids = %v", ids)
	}
	got, _ := r.Get(ctx, a.ApplicationID)
	if got.ApplicationPaymentStatus != model.PaymentStatusExpired || got.ApplicationVersion != 2 {
		t.Fatalf("after expire: %s v%d", got.ApplicationPaymentStatus, got.ApplicationVersion)
	}

	ids, err = r.ExpirePending(ctx, []uuid.UUID{a.ApplicationID, b.ApplicationID})
	if err != nil || len(ids) != 0 {
		t.Fatalf("second expire: %v, err %v", ids, err)
	}
}

func TestUpdateDraftOnlyWhileDraft(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	d := seed(t, r, model.ApplicationModel{ApplicationFirstName: "Lea", ApplicationEmail: "lea@example.com"})

	got, err := r.UpdateDraft(ctx, d.ApplicationID, 1, map[string]any{"application_last_name": "Moreau"})
	if err != nil {
		t.Fatalf("autosave: %v", err)
	}
	if got.ApplicationLastName != "Moreau" || got.ApplicationVersion != 2 {
		t.Fatalf("after autosave: %q v%d", got.ApplicationLastName, got.ApplicationVersion)
	}

	s := seed(t, r, submitted("Ana", "Souza", "ana@example.com", time.Now().UTC(), model.PaymentStatusPending))
	if _, err := r.UpdateDraft(ctx, s.ApplicationID, 1, map[string]any{"application_last_name": "X"}); !errors.Is(err, lifecycle.ErrConflict) {
		t.Fatalf("submitted autosave: expected ErrConflict, got %v", err)
	}
}

func TestUpdateEducationAI(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	a := seed(t, r, model.ApplicationModel{ApplicationFirstName: "Lea", ApplicationEmail: "lea@example.com"})
	sub, err := r.Submit(ctx, a.ApplicationID, 1, time.Now().UTC(), []model.EducationModel{
		{EducationInstitution: "UBA", EducationCountry: "Argentina", EducationDegree: "Licenciatura"},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	eduID := sub.Educations[0].EducationID

	edu, err := r.UpdateEducationAI(ctx, a.ApplicationID, eduID, map[string]any{
		"education_ai_equivalency": "Bachelor's degree",
		"education_ai_confidence":  0.82,
		"education_ai_raw":         datatypes.JSON(`{"model":"v2"}`),
	})
	if err != nil {
		t.Fatalf("update ai: %v", err)
	}
	if edu.EducationAIEquivalency == nil || *edu.EducationAIEquivalency != "Bachelor's degree" {
		t.Fatalf("equivalency = %v", edu.EducationAIEquivalency)
	}
	if edu.EducationAIConfidence == nil || *edu.EducationAIConfidence != 0.82 {
		t.Fatalf("confidence = %v", edu.EducationAIConfidence)
	}

	if _, err := r.UpdateEducationAI(ctx, uuid.New(), eduID, map[string]any{"education_ai_confidence": 0.1}); !errors.Is(err, ErrEducationNotFound) {
		t.Fatalf("wrong parent: expected ErrEducationNotFound, got %v", err)
	}
}
