package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"fcehub_backend/internals/configs"
	"fcehub_backend/internals/features/users/auth/service"
)

// RegisterBlacklistCleanup purges expired token_blacklist rows on
// TOKEN_BLACKLIST_CLEANUP_CRON (default daily).
func RegisterBlacklistCleanup(c *cron.Cron, svc *service.AuthService) (cron.EntryID, error) {
	spec := configs.GetEnv("TOKEN_BLACKLIST_CLEANUP_CRON", "@daily")
	return c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		log.Println("[CLEANUP] purging token_blacklist...")
		n, err := svc.PurgeBlacklist(ctx)
		if err != nil {
			log.Printf("[CLEANUP ERROR] %v", err)
			return
		}
		log.Printf("[CLEANUP] %d expired tokens removed", n)
	})
}
