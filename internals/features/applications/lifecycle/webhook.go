package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"fcehub_backend/internals/features/applications/model"
)

type EventKind string

const (
	EventCheckoutCompleted EventKind = "checkout_completed"
	EventCheckoutExpired   EventKind = "checkout_expired"
	EventOther             EventKind = "other"
)

// PaymentEvent is a verified provider callback reduced to what the lifecycle needs.
type PaymentEvent struct {
	Kind          EventKind
	Provider      model.PaymentMethod
	EventType     string // provider's own name, e.g. checkout.session.completed
	EventID       string
	ApplicationID uuid.UUID // uuid.Nil when the provider sent no usable reference
	Reference     string    // provider transaction id
}

// WebhookVerifier authenticates a raw callback and decodes it.
// Authentication failures must not be reported as ErrMalformedEvent.
type WebhookVerifier interface {
	Provider() model.PaymentMethod
	VerifyAndParse(payload []byte, signature string) (*PaymentEvent, error)
}

type WebhookOutcome string

const (
	OutcomeApplied            WebhookOutcome = "applied"
	OutcomeNoop               WebhookOutcome = "noop"
	OutcomeIgnored            WebhookOutcome = "ignored"
	OutcomeUnknownApplication WebhookOutcome = "unknown_application"
)

type WebhookResult struct {
	Event       PaymentEvent
	Outcome     WebhookOutcome
	Reason      string
	Application *model.ApplicationModel
}

// HandlePaymentWebhook verifies the signature before anything is read. On
// verification failure it returns ErrUnauthorized (or ErrMalformedEvent) and a
// nil result; afterwards the result is non-nil even when err is set, so the
// caller can log the event it failed to apply.
func (m *Manager) HandlePaymentWebhook(ctx context.Context, v WebhookVerifier, payload []byte, signature string) (*WebhookResult, error) {
	ev, err := v.VerifyAndParse(payload, signature)
	if err != nil {
		if errors.Is(err, ErrMalformedEvent) || errors.Is(err, ErrUnauthorized) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}
	return m.ApplyPaymentEvent(ctx, *ev)
}

// ApplyPaymentEvent applies an already-verified event. A lost version race is
// retried with a fresh read up to the configured number of attempts.
func (m *Manager) ApplyPaymentEvent(ctx context.Context, ev PaymentEvent) (*WebhookResult, error) {
	res := &WebhookResult{Event: ev}

	if ev.Kind != EventCheckoutCompleted && ev.Kind != EventCheckoutExpired {
		res.Outcome, res.Reason = OutcomeIgnored, fmt.Sprintf("event %s is not handled", ev.EventType)
		return res, nil
	}
	if ev.ApplicationID == uuid.Nil {
		res.Outcome, res.Reason = OutcomeIgnored, "event carries no application reference"
		return res, nil
	}

	var lastErr error
	for attempt := 1; attempt <= m.webhookAttempts; attempt++ {
		app, err := m.store.Get(ctx, ev.ApplicationID)
		if errors.Is(err, ErrNotFound) {
			log.Printf("[WEBHOOK] %s event %s for unknown application %s", ev.Provider, ev.EventType, ev.ApplicationID)
			res.Outcome, res.Reason = OutcomeUnknownApplication, "application not found"
			return res, nil
		}
		if err != nil {
			return res, persistenceErr("load application", err)
		}
		res.Application = app

		f, outcome, reason := planPaymentEvent(app, ev, m.now())
		if outcome != OutcomeApplied {
			res.Outcome, res.Reason = outcome, reason
			if reason != "" {
				log.Printf("[WEBHOOK] application=%s %s: %s", app.ApplicationID, ev.EventType, reason)
			}
			return res, nil
		}

		updated, err := m.store.UpdateFields(ctx, app.ApplicationID, app.ApplicationVersion, f)
		if err == nil {
			res.Outcome, res.Application = OutcomeApplied, updated
			log.Printf("[WEBHOOK] ✅ application=%s %s applied (payment_status=%s status=%s)",
				app.ApplicationID, ev.EventType, updated.ApplicationPaymentStatus, updated.ApplicationStatus)
			return res, nil
		}
		lastErr = err
		if !errors.Is(err, ErrConflict) {
			break
		}
		log.Printf("[WEBHOOK] application=%s version conflict, retry %d/%d", app.ApplicationID, attempt, m.webhookAttempts)
	}
	return res, persistenceErr("apply payment event", lastErr)
}

// planPaymentEvent decides the write for one event against the current record.
func planPaymentEvent(app *model.ApplicationModel, ev PaymentEvent, now time.Time) (Fields, WebhookOutcome, string) {
	var f Fields
	pay := app.ApplicationPaymentStatus

	switch ev.Kind {
	case EventCheckoutCompleted:
		if pay == model.PaymentStatusPaid {
			if app.ApplicationPaymentReference != nil && *app.ApplicationPaymentReference == ev.Reference {
				return f, OutcomeNoop, ""
			}
			return f, OutcomeNoop, "already paid under a different reference"
		}
		if !pay.IsOpen() {
			return f, OutcomeIgnored, fmt.Sprintf("payment status is %s, completed checkout not applied", pay)
		}

		f.PaymentStatus = SetTo(model.PaymentStatusPaid)
		f.PaymentMethod = SetTo(ev.Provider)
		if ev.Reference != "" {
			f.PaymentReference = SetTo(ev.Reference)
		} else {
			f.PaymentReference = Clear[string]()
		}
		f.PaidAt = SetTo(now)
		// Terminal and draft records keep their status; only the payment is recorded.
		if app.ApplicationStatus == model.ApplicationStatusSubmitted {
			f.Status = SetTo(model.ApplicationStatusProcessing)
		}
		return f, OutcomeApplied, ""

	case EventCheckoutExpired:
		// Only a pending checkout can lapse; settled or already-expired payments are left alone.
		if pay != model.PaymentStatusPending {
			return f, OutcomeNoop, fmt.Sprintf("payment status is %s, expiry not applied", pay)
		}
		f.PaymentStatus = SetTo(model.PaymentStatusExpired)
		return f, OutcomeApplied, ""
	}
	return f, OutcomeIgnored, ""
}
