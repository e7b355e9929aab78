// Package lifecycle owns the status and payment_status of an application:
// which transitions are legal, what must hold before each one, and which
// fields and side effects each one produces.
//
// Every operation reads the record, runs its guard, and issues at most one
// conditional write (row version checked by the Store). A failed guard never
// reaches the Store.
package lifecycle

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fcehub_backend/internals/features/applications/model"
)

type Manager struct {
	store    Store
	notifier Notifier
	now      func() time.Time

	// webhookAttempts bounds re-read/re-apply when a webhook loses a version race.
	webhookAttempts int
}

type Option func(*Manager)

// WithClock replaces time.Now (tests, replays).
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func WithWebhookAttempts(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.webhookAttempts = n
		}
	}
}

func NewManager(store Store, notifier Notifier, opts ...Option) *Manager {
	m := &Manager{
		store:           store,
		notifier:        notifier,
		now:             func() time.Time { return time.Now().UTC() },
		webhookAttempts: 3,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Get loads one application.
func (m *Manager) Get(ctx context.Context, id uuid.UUID) (*model.ApplicationModel, error) {
	app, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, persistenceErr("load application", err)
	}
	return app, nil
}

func (m *Manager) update(ctx context.Context, app *model.ApplicationModel, f Fields) (*model.ApplicationModel, error) {
	updated, err := m.store.UpdateFields(ctx, app.ApplicationID, app.ApplicationVersion, f)
	if err != nil {
		return nil, persistenceErr("update application", err)
	}
	return updated, nil
}

/* =========================================================
   Status
========================================================= */

// ChangeStatus applies a staff status change. Only status is written (and its
// external_orders mirror); no notification is sent.
func (m *Manager) ChangeStatus(ctx context.Context, id uuid.UUID, to model.ApplicationStatus) (*model.ApplicationModel, error) {
	app, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := CanChangeStatus(app, to).Error(); err != nil {
		return nil, err
	}

	updated, err := m.update(ctx, app, Fields{Status: SetTo(to)})
	if err != nil {
		return nil, err
	}
	log.Printf("[LIFECYCLE] application=%s status %s -> %s", id, app.ApplicationStatus, to)
	return updated, nil
}

// Submit is the customer submit flow: draft -> submitted, submitted_at stamped
// once, educations inserted in the same write.
func (m *Manager) Submit(ctx context.Context, id uuid.UUID, educations []model.EducationModel) (*model.ApplicationModel, error) {
	app, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := CanSubmit(app).Error(); err != nil {
		return nil, err
	}

	updated, err := m.store.Submit(ctx, id, app.ApplicationVersion, m.now(), educations)
	if err != nil {
		return nil, persistenceErr("submit application", err)
	}
	log.Printf("[LIFECYCLE] application=%s submitted with %d education(s)", id, len(educations))
	return updated, nil
}

/* =========================================================
   Payment
========================================================= */

// ChangePaymentStatus is the staff path. Marking paid requires a manual method
// (zelle/paypal) and an open payment; an existing paid_at is preserved. Other
// targets are written as-is.
func (m *Manager) ChangePaymentStatus(ctx context.Context, id uuid.UUID, to model.PaymentStatus, method model.PaymentMethod) (*model.ApplicationModel, error) {
	if !to.Valid() {
		return nil, &TransitionError{Field: "payment_status", To: string(to), Reason: "unknown payment status"}
	}
	if to == model.PaymentStatusPaid && !method.IsManual() {
		return nil, &TransitionError{Field: "payment_status", To: string(to),
			Reason: "manual payments must be marked as zelle or paypal"}
	}

	app, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	var f Fields
	if to == model.PaymentStatusPaid {
		if err := CanMarkPaid(app).Error(); err != nil {
			return nil, err
		}
		f.PaymentStatus = SetTo(to)
		f.PaymentMethod = SetTo(method)
		f.PaymentReference = Clear[string]()
		if app.ApplicationPaidAt == nil {
			f.PaidAt = SetTo(m.now())
		}
	} else {
		if app.ApplicationPaymentStatus == to {
			return app, nil
		}
		f.PaymentStatus = SetTo(to)
	}

	updated, err := m.update(ctx, app, f)
	if err != nil {
		return nil, err
	}
	log.Printf("[LIFECYCLE] application=%s payment_status %s -> %s (method=%s)",
		id, app.ApplicationPaymentStatus, to, method)
	return updated, nil
}

// ChangePaidAt sets or clears paid_at while the payment is still open.
func (m *Manager) ChangePaidAt(ctx context.Context, id uuid.UUID, paidAt *time.Time) (*model.ApplicationModel, error) {
	app, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := CanEditPaymentDetails(app).Error(); err != nil {
		return nil, err
	}
	if paidAt != nil {
		t := paidAt.UTC()
		paidAt = &t
	}
	return m.update(ctx, app, Fields{PaidAt: SetPtr(paidAt)})
}

/* =========================================================
   Submitted-only fields
========================================================= */

// ChangeDueAmount sets the amount owed (nil clears it) and notifies the
// customer. The amount is normalised with NormalizeDueAmount.
func (m *Manager) ChangeDueAmount(ctx context.Context, id uuid.UUID, amount *decimal.Decimal) (*model.ApplicationModel, error) {
	app, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := CanEditSubmittedFields(app, "due_amount").Error(); err != nil {
		return nil, err
	}

	f := Fields{DueAmount: Clear[decimal.Decimal]()}
	if amount != nil {
		f.DueAmount = SetTo(NormalizeDueAmount(*amount))
	}

	updated, err := m.update(ctx, app, f)
	if err != nil {
		return nil, err
	}
	if m.notifier != nil {
		m.notifier.Notify(context.WithoutCancel(ctx), TemplateDueAmountChanged, *updated)
	}
	return updated, nil
}

// ChangeOffice assigns (or clears) the handling office.
func (m *Manager) ChangeOffice(ctx context.Context, id uuid.UUID, office *model.Office) (*model.ApplicationModel, error) {
	if office != nil && !office.Valid() {
		return nil, &TransitionError{Field: "office", To: string(*office), Reason: "unknown office"}
	}
	app, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := CanEditSubmittedFields(app, "office").Error(); err != nil {
		return nil, err
	}
	return m.update(ctx, app, Fields{Office: SetPtr(office)})
}

// IsConflict reports whether err came from a lost optimistic-concurrency race.
func IsConflict(err error) bool { return errors.Is(err, ErrConflict) }
