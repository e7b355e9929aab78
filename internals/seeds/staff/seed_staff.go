package staff

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"os"
	"strings"

	"gorm.io/gorm"

	"fcehub_backend/internals/configs"
	authModel "fcehub_backend/internals/features/users/auth/model"
	authRepo "fcehub_backend/internals/features/users/auth/repository"
	"fcehub_backend/internals/features/users/auth/service"
)

type StaffSeed struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// SeedAdminFromEnv creates the first administrator from SEED_ADMIN_EMAIL /
// SEED_ADMIN_PASSWORD / SEED_ADMIN_NAME. Existing emails are left untouched.
func SeedAdminFromEnv(db *gorm.DB) {
	email := configs.GetEnv("SEED_ADMIN_EMAIL")
	password := configs.GetEnv("SEED_ADMIN_PASSWORD")
	if email == "" || password == "" {
		log.Println("ℹ️ SEED_ADMIN_EMAIL / SEED_ADMIN_PASSWORD not set, admin seed skipped.")
		return
	}
	seedOne(db, StaffSeed{
		Name:     configs.GetEnv("SEED_ADMIN_NAME", "Administrator"),
		Email:    email,
		Password: password,
		Role:     string(authModel.StaffRoleAdmin),
	})
}

// SeedStaffFromJSON inserts every account in filePath that does not exist yet.
func SeedStaffFromJSON(db *gorm.DB, filePath string) {
	log.Println("📥 Reading staff file:", filePath)

	file, err := os.ReadFile(filePath)
	if err != nil {
		log.Fatalf("❌ Cannot read JSON file: %v", err)
	}
	var inputs []StaffSeed
	if err := json.Unmarshal(file, &inputs); err != nil {
		log.Fatalf("❌ Cannot decode JSON: %v", err)
	}
	for _, in := range inputs {
		seedOne(db, in)
	}
}

func seedOne(db *gorm.DB, in StaffSeed) {
	ctx := context.Background()
	email := strings.ToLower(strings.TrimSpace(in.Email))

	if _, err := authRepo.FindStaffByEmail(ctx, db, email); err == nil {
		log.Printf("ℹ️ Staff '%s' already exists, skipped.", email)
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("❌ Lookup '%s': %v", email, err)
		return
	}

	role := authModel.StaffRole(strings.ToLower(strings.TrimSpace(in.Role)))
	if !role.Valid() {
		role = authModel.StaffRoleStaff
	}
	hash, err := service.HashPassword(in.Password)
	if err != nil {
		log.Printf("❌ Hash password for '%s': %v", email, err)
		return
	}

	s := authModel.StaffUserModel{
		StaffUserEmail:    email,
		StaffUserName:     strings.TrimSpace(in.Name),
		StaffUserPassword: hash,
		StaffUserRole:     role,
		StaffUserIsActive: true,
	}
	if err := authRepo.CreateStaff(ctx, db, &s); err != nil {
		log.Printf("❌ Insert staff '%s': %v", email, err)
		return
	}
	log.Printf("✅ Staff '%s' (%s) created", email, role)
}
