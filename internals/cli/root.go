package cli

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"fcehub_backend/internals/configs"
	database "fcehub_backend/internals/databases"
)

var rootCmd = &cobra.Command{
	Use:   "fcehub",
	Short: "Credential evaluation backend",
	Long: `fcehub serves the application form, the staff back office and the
payment gateway webhooks. Without a subcommand it runs the HTTP server.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		configs.LoadEnv()
	},
	RunE:          runServe,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute(version string) error {
	// bare `fcehub` serves, so it takes serve's flags too
	rootCmd.Flags().AddFlagSet(serveCmd.Flags())
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(sweepCmd)

	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

// openDB connects, tunes the pool and optionally migrates.
func openDB(migrate bool) error {
	database.ConnectDB()
	database.TunePool()
	if !migrate {
		return nil
	}
	if err := database.AutoMigrate(database.DB); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	log.Println("✅ schema up to date")
	return nil
}

func closeDB() {
	if database.DB == nil {
		return
	}
	if sqlDB, err := database.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
