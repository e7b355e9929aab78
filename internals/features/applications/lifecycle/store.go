package lifecycle

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fcehub_backend/internals/features/applications/model"
)

// Field is a tri-state patch: unset (Set=false), cleared (Set, Value=nil) or set.
type Field[T any] struct {
	Set   bool
	Value *T
}

func SetTo[T any](v T) Field[T]   { return Field[T]{Set: true, Value: &v} }
func SetPtr[T any](v *T) Field[T] { return Field[T]{Set: true, Value: v} }
func Clear[T any]() Field[T]      { return Field[T]{Set: true} }
func (f Field[T]) IsNull() bool   { return f.Set && f.Value == nil }

// Fields lists the lifecycle columns a single update may touch.
type Fields struct {
	Status           Field[model.ApplicationStatus]
	PaymentStatus    Field[model.PaymentStatus]
	PaymentMethod    Field[model.PaymentMethod]
	PaymentReference Field[string]
	PaidAt           Field[time.Time]
	DueAmount        Field[decimal.Decimal]
	Office           Field[model.Office]
}

func (f Fields) Empty() bool {
	return !f.Status.Set && !f.PaymentStatus.Set && !f.PaymentMethod.Set &&
		!f.PaymentReference.Set && !f.PaidAt.Set && !f.DueAmount.Set && !f.Office.Set
}

// Apply writes the patch onto an in-memory record.
func (f Fields) Apply(a *model.ApplicationModel) {
	if f.Status.Set && f.Status.Value != nil {
		a.ApplicationStatus = *f.Status.Value
	}
	if f.PaymentStatus.Set && f.PaymentStatus.Value != nil {
		a.ApplicationPaymentStatus = *f.PaymentStatus.Value
	}
	if f.PaymentMethod.Set {
		a.ApplicationPaymentMethod = f.PaymentMethod.Value
	}
	if f.PaymentReference.Set {
		a.ApplicationPaymentReference = f.PaymentReference.Value
	}
	if f.PaidAt.Set {
		a.ApplicationPaidAt = f.PaidAt.Value
	}
	if f.DueAmount.Set {
		a.ApplicationDueAmount = f.DueAmount.Value
	}
	if f.Office.Set {
		a.ApplicationOffice = f.Office.Value
	}
}

// ListFilter selects applications. Zero values mean "no constraint";
// Limit 0 returns every match.
type ListFilter struct {
	Statuses        []model.ApplicationStatus
	PaymentStatuses []model.PaymentStatus
	Offices         []model.Office
	SubmittedBefore *time.Time
	SubmittedAfter  *time.Time
	Query           string

	SortBy   string
	SortDesc bool
	Offset   int
	Limit    int
}

// Store is the persistence port. Implementations must:
//   - return ErrNotFound for unknown (or soft-deleted) IDs,
//   - apply UpdateFields only when the stored version equals version, bump the
//     version, and otherwise return ErrConflict without writing,
//   - mirror a status change into external_orders inside the same write.
type Store interface {
	Get(ctx context.Context, id uuid.UUID) (*model.ApplicationModel, error)
	List(ctx context.Context, f ListFilter) ([]model.ApplicationModel, error)
	UpdateFields(ctx context.Context, id uuid.UUID, version int64, f Fields) (*model.ApplicationModel, error)

	// Submit moves a draft to submitted and inserts its educations atomically.
	Submit(ctx context.Context, id uuid.UUID, version int64, submittedAt time.Time, educations []model.EducationModel) (*model.ApplicationModel, error)

	// ExpirePending flips payment_status pending -> expired for the given IDs
	// and returns the IDs it actually changed.
	ExpirePending(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error)
}

// Notifier sends customer emails. Implementations must not block the caller.
type Notifier interface {
	Notify(ctx context.Context, template string, app model.ApplicationModel)
}

const (
	TemplateDueAmountChanged     = "due_amount_changed"
	TemplateApplicationSubmitted = "application_submitted"
	TemplateStatusUpdate         = "status_update"
)
