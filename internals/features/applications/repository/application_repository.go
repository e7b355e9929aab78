package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fcehub_backend/internals/features/applications/lifecycle"
	"fcehub_backend/internals/features/applications/model"
)

var ErrEducationNotFound = errors.New("education not found")

// SortColumns whitelists the keys accepted by ListFilter.SortBy.
var SortColumns = map[string]string{
	"created_at":   "application_created_at",
	"updated_at":   "application_updated_at",
	"submitted_at": "application_submitted_at",
	"paid_at":      "application_paid_at",
	"due_amount":   "application_due_amount",
	"last_name":    "application_last_name",
	"status":       "application_status",
}

const DefaultSort = "created_at"

// ApplicationRepository is the GORM implementation of lifecycle.Store plus the
// non-lifecycle reads and writes the controllers need.
type ApplicationRepository struct {
	DB *gorm.DB
}

var _ lifecycle.Store = (*ApplicationRepository)(nil)

func NewApplicationRepository(db *gorm.DB) *ApplicationRepository {
	return &ApplicationRepository{DB: db}
}

func notFoundOr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return lifecycle.ErrNotFound
	}
	return err
}

/* ====================== READ ====================== */

func (r *ApplicationRepository) Get(ctx context.Context, id uuid.UUID) (*model.ApplicationModel, error) {
	var app model.ApplicationModel
	if err := r.DB.WithContext(ctx).
		Where("application_id = ?", id).
		First(&app).Error; err != nil {
		return nil, notFoundOr(err)
	}
	return &app, nil
}

// GetDetail loads the application with educations and documents.
func (r *ApplicationRepository) GetDetail(ctx context.Context, id uuid.UUID) (*model.ApplicationModel, error) {
	var app model.ApplicationModel
	if err := r.DB.WithContext(ctx).
		Preload("Educations", func(db *gorm.DB) *gorm.DB {
			return db.Order("education_created_at ASC, education_id ASC")
		}).
		Preload("Documents", func(db *gorm.DB) *gorm.DB {
			return db.Order("document_created_at ASC")
		}).
		Where("application_id = ?", id).
		First(&app).Error; err != nil {
		return nil, notFoundOr(err)
	}
	return &app, nil
}

func applyFilter(q *gorm.DB, f lifecycle.ListFilter) *gorm.DB {
	if len(f.Statuses) > 0 {
		q = q.Where("application_status IN ?", f.Statuses)
	}
	if len(f.PaymentStatuses) > 0 {
		q = q.Where("application_payment_status IN ?", f.PaymentStatuses)
	}
	if len(f.Offices) > 0 {
		q = q.Where("application_office IN ?", f.Offices)
	}
	if f.SubmittedBefore != nil {
		q = q.Where("application_submitted_at < ?", f.SubmittedBefore.UTC())
	}
	if f.SubmittedAfter != nil {
		q = q.Where("application_submitted_at >= ?", f.SubmittedAfter.UTC())
	}
	if s := strings.ToLower(strings.TrimSpace(f.Query)); s != "" {
		like := "%" + s + "%"
		q = q.Where(
			"LOWER(application_first_name || ' ' || application_last_name) LIKE ? OR LOWER(application_email) LIKE ?",
			like, like,
		)
	}
	return q
}

func orderClause(f lifecycle.ListFilter) string {
	col, ok := SortColumns[f.SortBy]
	if !ok {
		col = SortColumns[DefaultSort]
	}
	dir := "ASC"
	if f.SortDesc {
		dir = "DESC"
	}
	return col + " " + dir + ", application_id ASC"
}

func (r *ApplicationRepository) List(ctx context.Context, f lifecycle.ListFilter) ([]model.ApplicationModel, error) {
	q := applyFilter(r.DB.WithContext(ctx).Model(&model.ApplicationModel{}), f).Order(orderClause(f))
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var out []model.ApplicationModel
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ApplicationRepository) Count(ctx context.Context, f lifecycle.ListFilter) (int64, error) {
	var total int64
	err := applyFilter(r.DB.WithContext(ctx).Model(&model.ApplicationModel{}), f).Count(&total).Error
	return total, err
}

/* ====================== LIFECYCLE WRITES ====================== */

// missOrConflict explains an UPDATE that matched no row.
func missOrConflict(tx *gorm.DB, id uuid.UUID) error {
	var n int64
	if err := tx.Model(&model.ApplicationModel{}).Where("application_id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return lifecycle.ErrNotFound
	}
	return lifecycle.ErrConflict
}

func columns(f lifecycle.Fields) map[string]any {
	m := map[string]any{}
	if f.Status.Set && f.Status.Value != nil {
		m["application_status"] = *f.Status.Value
	}
	if f.PaymentStatus.Set && f.PaymentStatus.Value != nil {
		m["application_payment_status"] = *f.PaymentStatus.Value
	}
	if f.PaymentMethod.Set {
		m["application_payment_method"] = deref(f.PaymentMethod.Value)
	}
	if f.PaymentReference.Set {
		m["application_payment_reference"] = deref(f.PaymentReference.Value)
	}
	if f.PaidAt.Set {
		m["application_paid_at"] = derefTime(f.PaidAt.Value)
	}
	if f.DueAmount.Set {
		m["application_due_amount"] = deref(f.DueAmount.Value)
	}
	if f.Office.Set {
		m["application_office"] = deref(f.Office.Value)
	}
	return m
}

func deref[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

func derefTime(p *time.Time) any {
	if p == nil {
		return nil
	}
	return p.UTC()
}

// UpdateFields applies f when the stored version still equals version.
// A status change is mirrored into external_orders in the same transaction.
func (r *ApplicationRepository) UpdateFields(ctx context.Context, id uuid.UUID, version int64, f lifecycle.Fields) (*model.ApplicationModel, error) {
	updates := columns(f)
	updates["application_version"] = gorm.Expr("application_version + 1")
	updates["application_updated_at"] = time.Now().UTC()

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.ApplicationModel{}).
			Where("application_id = ? AND application_version = ?", id, version).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return missOrConflict(tx, id)
		}

		if f.Status.Set && f.Status.Value != nil {
			if err := tx.Model(&model.ExternalOrderModel{}).
				Where("external_order_application_id = ?", id).
				Updates(map[string]any{
					"external_order_status":     *f.Status.Value,
					"external_order_updated_at": time.Now().UTC(),
				}).Error; err != nil {
				return fmt.Errorf("mirror external order: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

// Submit moves a draft to submitted and inserts educations atomically.
func (r *ApplicationRepository) Submit(ctx context.Context, id uuid.UUID, version int64, submittedAt time.Time, educations []model.EducationModel) (*model.ApplicationModel, error) {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.ApplicationModel{}).
			Where("application_id = ? AND application_version = ?", id, version).
			Where("application_status = ? AND application_submitted_at IS NULL", model.ApplicationStatusDraft).
			Updates(map[string]any{
				"application_status":       model.ApplicationStatusSubmitted,
				"application_submitted_at": submittedAt.UTC(),
				"application_version":      gorm.Expr("application_version + 1"),
				"application_updated_at":   time.Now().UTC(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return missOrConflict(tx, id)
		}

		if len(educations) == 0 {
			return nil
		}
		for i := range educations {
			educations[i].EducationApplicationID = id
		}
		return tx.Create(&educations).Error
	})
	if err != nil {
		return nil, err
	}
	return r.GetDetail(ctx, id)
}

// ExpirePending locks the still-pending rows among ids (skipping rows another
// sweep holds) and flips them to expired.
func (r *ApplicationRepository) ExpirePending(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var flipped []uuid.UUID
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var locked []uuid.UUID
		if err := tx.Model(&model.ApplicationModel{}).
			Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where("application_id IN ? AND application_payment_status = ?", ids, model.PaymentStatusPending).
			Pluck("application_id", &locked).Error; err != nil {
			return err
		}
		if len(locked) == 0 {
			return nil
		}

		if err := tx.Model(&model.ApplicationModel{}).
			Where("application_id IN ? AND application_payment_status = ?", locked, model.PaymentStatusPending).
			Updates(map[string]any{
				"application_payment_status": model.PaymentStatusExpired,
				"application_version":        gorm.Expr("application_version + 1"),
				"application_updated_at":     time.Now().UTC(),
			}).Error; err != nil {
			return err
		}
		flipped = locked
		return nil
	})
	if err != nil {
		return nil, err
	}
	return flipped, nil
}

/* ====================== CUSTOMER WRITES ====================== */

func (r *ApplicationRepository) Create(ctx context.Context, app *model.ApplicationModel) error {
	return r.DB.WithContext(ctx).Create(app).Error
}

// UpdateDraft applies an autosave patch. The row must still be a draft at version.
func (r *ApplicationRepository) UpdateDraft(ctx context.Context, id uuid.UUID, version int64, updates map[string]any) (*model.ApplicationModel, error) {
	if len(updates) == 0 {
		return r.Get(ctx, id)
	}
	updates["application_version"] = gorm.Expr("application_version + 1")
	updates["application_updated_at"] = time.Now().UTC()

	db := r.DB.WithContext(ctx)
	res := db.Model(&model.ApplicationModel{}).
		Where("application_id = ? AND application_version = ? AND application_status = ?", id, version, model.ApplicationStatusDraft).
		Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, missOrConflict(db, id)
	}
	return r.Get(ctx, id)
}

func (r *ApplicationRepository) AddDocument(ctx context.Context, doc *model.ApplicationDocumentModel) error {
	return r.DB.WithContext(ctx).Create(doc).Error
}

/* ====================== STAFF WRITES ====================== */

// UpdateEducationAI edits the AI-assist columns of one education row.
func (r *ApplicationRepository) UpdateEducationAI(ctx context.Context, appID, educationID uuid.UUID, updates map[string]any) (*model.EducationModel, error) {
	db := r.DB.WithContext(ctx)
	if len(updates) > 0 {
		updates["education_updated_at"] = time.Now().UTC()
		res := db.Model(&model.EducationModel{}).
			Where("education_id = ? AND education_application_id = ?", educationID, appID).
			Updates(updates)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, ErrEducationNotFound
		}
	}

	var edu model.EducationModel
	if err := db.Where("education_id = ? AND education_application_id = ?", educationID, appID).
		First(&edu).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEducationNotFound
		}
		return nil, err
	}
	return &edu, nil
}
