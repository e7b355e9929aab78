package lifecycle_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"fcehub_backend/internals/features/applications/lifecycle"
	"fcehub_backend/internals/features/applications/model"
)

func submittedAgo(status model.ApplicationStatus, pay model.PaymentStatus, ago time.Duration) model.ApplicationModel {
	a := app(status, pay)
	at := fixedNow.Add(-ago)
	a.ApplicationSubmittedAt = &at
	return a
}

func TestExpireStalePendingPayments(t *testing.T) {
	stale := submittedAgo(model.ApplicationStatusSubmitted, model.PaymentStatusPending, 49*time.Hour)
	staleCancelled := submittedAgo(model.ApplicationStatusCancelled, model.PaymentStatusPending, 72*time.Hour)
	fresh := submittedAgo(model.ApplicationStatusSubmitted, model.PaymentStatusPending, 47*time.Hour)
	boundary := submittedAgo(model.ApplicationStatusSubmitted, model.PaymentStatusPending, 48*time.Hour)
	processing := submittedAgo(model.ApplicationStatusProcessing, model.PaymentStatusPending, 96*time.Hour)
	paid := submittedAgo(model.ApplicationStatusSubmitted, model.PaymentStatusPaid, 96*time.Hour)
	draft := app(model.ApplicationStatusDraft, model.PaymentStatusPending)

	m, store, _ := newManager(t, stale, staleCancelled, fresh, boundary, processing, paid, draft)

	ids, err := m.ExpireStalePendingPayments(context.Background(), fixedNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []uuid.UUID{stale.ApplicationID, staleCancelled.ApplicationID}
	if !sameIDs(ids, want) {
		t.Fatalf("expired %v, want %v", ids, want)
	}

	// Scenario C
	s := store.Snapshot(stale.ApplicationID)
	if s.ApplicationPaymentStatus != model.PaymentStatusExpired || s.ApplicationStatus != model.ApplicationStatusSubmitted {
		t.Fatalf("stale record: %s/%s", s.ApplicationStatus, s.ApplicationPaymentStatus)
	}
	for _, untouched := range []model.ApplicationModel{fresh, boundary, processing, paid, draft} {
		if got := store.Snapshot(untouched.ApplicationID).ApplicationPaymentStatus; got != untouched.ApplicationPaymentStatus {
			t.Fatalf("record %s changed to %s", untouched.ApplicationID, got)
		}
	}

	again, err := m.ExpireStalePendingPayments(context.Background(), fixedNow)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if len(again) != 0 {
		t.Fatalf("second run expired %d more", len(again))
	}
}

func TestExpireStalePendingPaymentsConcurrent(t *testing.T) {
	var apps []model.ApplicationModel
	for i := 0; i < 20; i++ {
		apps = append(apps, submittedAgo(model.ApplicationStatusSubmitted, model.PaymentStatusPending, 50*time.Hour))
	}
	m, _, _ := newManager(t, apps...)

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		total int
	)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids, err := m.ExpireStalePendingPayments(context.Background(), fixedNow)
			if err != nil {
				t.Errorf("sweep: %v", err)
				return
			}
			mu.Lock()
			total += len(ids)
			mu.Unlock()
		}()
	}
	wg.Wait()

	if total != len(apps) {
		t.Fatalf("flipped %d in total, want %d", total, len(apps))
	}
}

func TestExpireStalePendingPaymentsStoreError(t *testing.T) {
	a := submittedAgo(model.ApplicationStatusSubmitted, model.PaymentStatusPending, 50*time.Hour)
	m, store, _ := newManager(t, a)
	store.FailNext = errors.New("deadlock detected")

	if _, err := m.ExpireStalePendingPayments(context.Background(), fixedNow); !errors.Is(err, lifecycle.ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
}

func sameIDs(got, want []uuid.UUID) bool {
	if len(got) != len(want) {
		return false
	}
	a := append([]uuid.UUID(nil), got...)
	b := append([]uuid.UUID(nil), want...)
	sort.Slice(a, func(i, j int) bool { return a[i].String() < a[j].String() })
	sort.Slice(b, func(i, j int) bool { return b[i].String() < b[j].String() })
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
