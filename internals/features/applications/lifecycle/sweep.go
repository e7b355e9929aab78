package lifecycle

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"fcehub_backend/internals/features/applications/model"
)

// PaymentDeadline is how long a submitted application may wait for payment.
const PaymentDeadline = 48 * time.Hour

// ExpireStalePendingPayments flips pending payments older than PaymentDeadline
// (by submitted_at) to expired, for submitted or cancelled applications.
// Status is not touched. Returns the IDs this call actually changed, so a
// second run right after the first returns none.
func (m *Manager) ExpireStalePendingPayments(ctx context.Context, now time.Time) ([]uuid.UUID, error) {
	cutoff := now.Add(-PaymentDeadline)

	candidates, err := m.store.List(ctx, ListFilter{
		Statuses:        []model.ApplicationStatus{model.ApplicationStatusSubmitted, model.ApplicationStatusCancelled},
		PaymentStatuses: []model.PaymentStatus{model.PaymentStatusPending},
		SubmittedBefore: &cutoff,
	})
	if err != nil {
		return nil, persistenceErr("list stale payments", err)
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	ids := make([]uuid.UUID, 0, len(candidates))
	for _, a := range candidates {
		ids = append(ids, a.ApplicationID)
	}

	flipped, err := m.store.ExpirePending(ctx, ids)
	if err != nil {
		return nil, persistenceErr("expire stale payments", err)
	}
	log.Printf("[SWEEP] expired %d of %d stale pending payment(s) (cutoff %s)",
		len(flipped), len(candidates), cutoff.Format(time.RFC3339))
	return flipped, nil
}
