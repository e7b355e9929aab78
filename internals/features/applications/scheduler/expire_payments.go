package scheduler

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"fcehub_backend/internals/features/applications/lifecycle"
)

const sweepTimeout = time.Minute

// RegisterExpireSweep runs the stale pending payment sweep on spec. An empty
// spec registers nothing and returns (0, nil). Overlapping runs are skipped.
func RegisterExpireSweep(c *cron.Cron, m *lifecycle.Manager, spec string) (cron.EntryID, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		log.Println("[SWEEP] in-process sweep disabled")
		return 0, nil
	}
	job := cron.NewChain(cron.SkipIfStillRunning(cron.DefaultLogger)).Then(cron.FuncJob(func() {
		ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
		defer cancel()
		_, _ = RunSweep(ctx, m)
	}))
	id, err := c.AddJob(spec, job)
	if err != nil {
		return 0, err
	}
	log.Printf("[SWEEP] scheduled %q", spec)
	return id, nil
}

// RunSweep expires stale pending payments once and logs the outcome.
func RunSweep(ctx context.Context, m *lifecycle.Manager) ([]uuid.UUID, error) {
	ids, err := m.ExpireStalePendingPayments(ctx, time.Now().UTC())
	if err != nil {
		log.Printf("[SWEEP ERROR] %v", err)
		return nil, err
	}
	if len(ids) > 0 {
		log.Printf("[SWEEP] expired %d pending payment(s): %v", len(ids), ids)
	}
	return ids, nil
}
