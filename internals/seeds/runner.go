package seeds

import (
	"gorm.io/gorm"

	"fcehub_backend/internals/configs"
	"fcehub_backend/internals/seeds/staff"
)

// RunAllSeeds is invoked by `go run . seed`.
func RunAllSeeds(db *gorm.DB) {
	staff.SeedAdminFromEnv(db)

	if path := configs.GetEnv("SEED_STAFF_FILE"); path != "" {
		staff.SeedStaffFromJSON(db, path)
	}
}
