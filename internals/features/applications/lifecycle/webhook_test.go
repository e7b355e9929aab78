package lifecycle_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"fcehub_backend/internals/features/applications/lifecycle"
	"fcehub_backend/internals/features/applications/model"
)

// fakeVerifier accepts signature "good" and returns ev.
type fakeVerifier struct {
	ev    lifecycle.PaymentEvent
	err   error
	calls int
}

func (f *fakeVerifier) Provider() model.PaymentMethod { return model.PaymentMethodStripe }

func (f *fakeVerifier) VerifyAndParse(_ []byte, signature string) (*lifecycle.PaymentEvent, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if signature != "good" {
		return nil, errors.New("signature mismatch")
	}
	ev := f.ev
	return &ev, nil
}

func completed(id uuid.UUID, ref string) lifecycle.PaymentEvent {
	return lifecycle.PaymentEvent{
		Kind:          lifecycle.EventCheckoutCompleted,
		Provider:      model.PaymentMethodStripe,
		EventType:     "checkout.session.completed",
		EventID:       "evt_1",
		ApplicationID: id,
		Reference:     ref,
	}
}

func TestWebhookInvalidSignatureChangesNothing(t *testing.T) {
	a := app(model.ApplicationStatusSubmitted, model.PaymentStatusPending)
	m, store, _ := newManager(t, a)
	v := &fakeVerifier{ev: completed(a.ApplicationID, "pi_123")}

	res, err := m.HandlePaymentWebhook(context.Background(), v, []byte(`{}`), "forged")
	if !errors.Is(err, lifecycle.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if res != nil {
		t.Fatalf("expected nil result, got %+v", res)
	}
	if store.Writes != 0 {
		t.Fatal("invalid signature wrote")
	}
	got := store.Snapshot(a.ApplicationID)
	if got.ApplicationPaymentStatus != model.PaymentStatusPending || got.ApplicationStatus != model.ApplicationStatusSubmitted {
		t.Fatalf("record changed: %s/%s", got.ApplicationStatus, got.ApplicationPaymentStatus)
	}
}

func TestWebhookMalformedEventPassesThrough(t *testing.T) {
	m, _, _ := newManager(t)
	v := &fakeVerifier{err: lifecycle.ErrMalformedEvent}

	_, err := m.HandlePaymentWebhook(context.Background(), v, []byte(`nope`), "good")
	if !errors.Is(err, lifecycle.ErrMalformedEvent) || errors.Is(err, lifecycle.ErrUnauthorized) {
		t.Fatalf("expected ErrMalformedEvent only, got %v", err)
	}
}

func TestSubmitThenPayThenComplete(t *testing.T) {
	a := app(model.ApplicationStatusDraft, model.PaymentStatusPending)
	m, store, _ := newManager(t, a)
	ctx := context.Background()

	// Scenario A
	sub, err := m.Submit(ctx, a.ApplicationID, nil)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if sub.ApplicationSubmittedAt == nil {
		t.Fatal("submitted_at not set")
	}
	if _, err := m.ChangeStatus(ctx, a.ApplicationID, model.ApplicationStatusProcessing); !errors.Is(err, lifecycle.ErrInvalidTransition) {
		t.Fatalf("processing before payment: expected ErrInvalidTransition, got %v", err)
	}

	// Scenario B
	v := &fakeVerifier{ev: completed(a.ApplicationID, "pi_123")}
	res, err := m.HandlePaymentWebhook(ctx, v, []byte(`{}`), "good")
	if err != nil {
		t.Fatalf("webhook: %v", err)
	}
	if res.Outcome != lifecycle.OutcomeApplied {
		t.Fatalf("outcome = %s (%s)", res.Outcome, res.Reason)
	}
	got := store.Snapshot(a.ApplicationID)
	if got.ApplicationStatus != model.ApplicationStatusProcessing || got.ApplicationPaymentStatus != model.PaymentStatusPaid {
		t.Fatalf("after webhook: %s/%s", got.ApplicationStatus, got.ApplicationPaymentStatus)
	}
	if got.ApplicationPaidAt == nil || !got.ApplicationPaidAt.Equal(fixedNow) {
		t.Fatalf("paid_at = %v", got.ApplicationPaidAt)
	}
	if got.ApplicationPaymentReference == nil || *got.ApplicationPaymentReference != "pi_123" {
		t.Fatalf("reference = %v", got.ApplicationPaymentReference)
	}
	if got.ApplicationPaymentMethod == nil || *got.ApplicationPaymentMethod != model.PaymentMethodStripe {
		t.Fatalf("method = %v", got.ApplicationPaymentMethod)
	}

	if _, err := m.ChangeStatus(ctx, a.ApplicationID, model.ApplicationStatusCompleted); err != nil {
		t.Fatalf("complete after payment: %v", err)
	}
}

func TestWebhookCompletedIsIdempotent(t *testing.T) {
	a := app(model.ApplicationStatusSubmitted, model.PaymentStatusPending)
	m, store, _ := newManager(t, a)
	v := &fakeVerifier{ev: completed(a.ApplicationID, "pi_9")}

	if _, err := m.HandlePaymentWebhook(context.Background(), v, nil, "good"); err != nil {
		t.Fatalf("first delivery: %v", err)
	}
	writes := store.Writes
	before := store.Snapshot(a.ApplicationID)

	res, err := m.HandlePaymentWebhook(context.Background(), v, nil, "good")
	if err != nil {
		t.Fatalf("redelivery: %v", err)
	}
	if res.Outcome != lifecycle.OutcomeNoop {
		t.Fatalf("outcome = %s", res.Outcome)
	}
	if store.Writes != writes {
		t.Fatal("redelivery wrote")
	}
	if store.Snapshot(a.ApplicationID).ApplicationVersion != before.ApplicationVersion {
		t.Fatal("version moved on redelivery")
	}
}

func TestWebhookCompletedOnCancelledRecordsPaymentOnly(t *testing.T) {
	a := app(model.ApplicationStatusCancelled, model.PaymentStatusExpired)
	m, store, _ := newManager(t, a)

	res, err := m.ApplyPaymentEvent(context.Background(), completed(a.ApplicationID, "pi_late"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Outcome != lifecycle.OutcomeApplied {
		t.Fatalf("outcome = %s", res.Outcome)
	}
	got := store.Snapshot(a.ApplicationID)
	if got.ApplicationStatus != model.ApplicationStatusCancelled {
		t.Fatalf("terminal status changed to %s", got.ApplicationStatus)
	}
	if got.ApplicationPaymentStatus != model.PaymentStatusPaid {
		t.Fatalf("payment status = %s", got.ApplicationPaymentStatus)
	}
}

func TestWebhookCompletedIgnoredWhenRefunded(t *testing.T) {
	a := app(model.ApplicationStatusProcessing, model.PaymentStatusRefunded)
	m, store, _ := newManager(t, a)

	res, err := m.ApplyPaymentEvent(context.Background(), completed(a.ApplicationID, "pi_x"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Outcome != lifecycle.OutcomeIgnored || store.Writes != 0 {
		t.Fatalf("outcome = %s writes = %d", res.Outcome, store.Writes)
	}
}

func TestWebhookExpired(t *testing.T) {
	pending := app(model.ApplicationStatusSubmitted, model.PaymentStatusPending)
	paid := app(model.ApplicationStatusProcessing, model.PaymentStatusPaid)
	m, store, _ := newManager(t, pending, paid)

	ev := lifecycle.PaymentEvent{Kind: lifecycle.EventCheckoutExpired, Provider: model.PaymentMethodStripe, ApplicationID: pending.ApplicationID}
	if _, err := m.ApplyPaymentEvent(context.Background(), ev); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s := store.Snapshot(pending.ApplicationID); s.ApplicationPaymentStatus != model.PaymentStatusExpired || s.ApplicationStatus != model.ApplicationStatusSubmitted {
		t.Fatalf("after expire: %s/%s", s.ApplicationStatus, s.ApplicationPaymentStatus)
	}

	ev.ApplicationID = paid.ApplicationID
	res, err := m.ApplyPaymentEvent(context.Background(), ev)
	if err != nil || res.Outcome != lifecycle.OutcomeNoop {
		t.Fatalf("expire on paid: outcome %v err %v", res.Outcome, err)
	}
	if store.Snapshot(paid.ApplicationID).ApplicationPaymentStatus != model.PaymentStatusPaid {
		t.Fatal("paid record expired")
	}
}

func TestWebhookUnknownAndUnhandled(t *testing.T) {
	m, store, _ := newManager(t)

	res, err := m.ApplyPaymentEvent(context.Background(), completed(uuid.New(), "pi_1"))
	if err != nil || res.Outcome != lifecycle.OutcomeUnknownApplication {
		t.Fatalf("unknown application: outcome %v err %v", res.Outcome, err)
	}

	res, err = m.ApplyPaymentEvent(context.Background(), lifecycle.PaymentEvent{Kind: lifecycle.EventOther, EventType: "charge.refunded"})
	if err != nil || res.Outcome != lifecycle.OutcomeIgnored {
		t.Fatalf("unhandled event: outcome %v err %v", res.Outcome, err)
	}

	res, err = m.ApplyPaymentEvent(context.Background(), completed(uuid.Nil, "pi_1"))
	if err != nil || res.Outcome != lifecycle.OutcomeIgnored {
		t.Fatalf("missing reference: outcome %v err %v", res.Outcome, err)
	}
	if store.Writes != 0 {
		t.Fatal("ignored events wrote")
	}
}

func TestWebhookRetriesOnConflict(t *testing.T) {
	a := app(model.ApplicationStatusSubmitted, model.PaymentStatusPending)
	m, store, _ := newManager(t, a)
	store.ConflictsBeforeWrite = 2

	res, err := m.ApplyPaymentEvent(context.Background(), completed(a.ApplicationID, "pi_r"))
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if res.Outcome != lifecycle.OutcomeApplied {
		t.Fatalf("outcome = %s", res.Outcome)
	}

	b := store.Put(app(model.ApplicationStatusSubmitted, model.PaymentStatusPending))
	store.ConflictsBeforeWrite = 3
	res, err = m.ApplyPaymentEvent(context.Background(), completed(b.ApplicationID, "pi_s"))
	if !lifecycle.IsConflict(err) || !errors.Is(err, lifecycle.ErrPersistence) {
		t.Fatalf("expected conflict after 3 attempts, got %v", err)
	}
	if res == nil || res.Event.ApplicationID != b.ApplicationID {
		t.Fatal("result should carry the event on failure")
	}
}

func TestWebhookCompletedStampsPaidAt(t *testing.T) {
	a := app(model.ApplicationStatusSubmitted, model.PaymentStatusPending)
	earlier := fixedNow.Add(-2 * time.Hour)
	a.ApplicationPaidAt = &earlier
	m, store, _ := newManager(t, a)

	if _, err := m.ApplyPaymentEvent(context.Background(), completed(a.ApplicationID, "pi_p")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := store.Snapshot(a.ApplicationID).ApplicationPaidAt
	if got == nil || !got.Equal(fixedNow) {
		t.Fatalf("paid_at = %v, want %v", got, fixedNow)
	}
}

func TestWebhookExpiredLeavesSettledPayments(t *testing.T) {
	for _, pay := range []model.PaymentStatus{
		model.PaymentStatusPaid,
		model.PaymentStatusFailed,
		model.PaymentStatusRefunded,
		model.PaymentStatusExpired,
	} {
		a := app(model.ApplicationStatusProcessing, pay)
		m, store, _ := newManager(t, a)
		ev := lifecycle.PaymentEvent{Kind: lifecycle.EventCheckoutExpired, Provider: model.PaymentMethodStripe, ApplicationID: a.ApplicationID}

		res, err := m.ApplyPaymentEvent(context.Background(), ev)
		if err != nil || res.Outcome != lifecycle.OutcomeNoop {
			t.Fatalf("%s: outcome %v err %v", pay, res.Outcome, err)
		}
		if res.Reason == "" {
			t.Fatalf("%s: noop without a reason", pay)
		}
		if got := store.Snapshot(a.ApplicationID).ApplicationPaymentStatus; got != pay {
			t.Fatalf("%s: payment status changed to %s", pay, got)
		}
	}
}
