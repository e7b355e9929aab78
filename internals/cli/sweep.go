package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	database "fcehub_backend/internals/databases"
	appScheduler "fcehub_backend/internals/features/applications/scheduler"
	routes "fcehub_backend/internals/route"
)

var sweepTimeout time.Duration

var sweepCmd = &cobra.Command{
	Use:   "expire-payments",
	Short: "Expire stale pending payments once and exit",
	Long: `Runs the same sweep as POST /api/automation/expire-payments. Useful from
an external scheduler when EXPIRE_SWEEP_CRON is empty.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		defer closeDB()
		if err := openDB(false); err != nil {
			return err
		}
		svc := routes.NewServices(database.DB)
		defer svc.Mailer.Wait()

		ctx, cancel := context.WithTimeout(cmd.Context(), sweepTimeout)
		defer cancel()
		ids, err := appScheduler.RunSweep(ctx, svc.Manager)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "expired %d pending payment(s)\n", len(ids))
		for _, id := range ids {
			fmt.Fprintln(cmd.OutOrStdout(), id)
		}
		return nil
	},
}

func init() {
	sweepCmd.Flags().DurationVar(&sweepTimeout, "timeout", time.Minute, "give up after this long")
}
