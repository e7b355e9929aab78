package cli

import (
	"github.com/spf13/cobra"

	"fcehub_backend/internals/configs"
	database "fcehub_backend/internals/databases"
	"fcehub_backend/internals/seeds"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the first admin and optional staff list",
	Long: `Seeds the admin account from SEED_ADMIN_EMAIL / SEED_ADMIN_PASSWORD and,
when SEED_STAFF_FILE points at a JSON file, the staff accounts it lists.
Existing accounts are left untouched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		defer closeDB()
		if err := openDB(configs.GetEnvBool("DB_AUTO_MIGRATE", true)); err != nil {
			return err
		}
		seeds.RunAllSeeds(database.DB)
		return nil
	},
}
