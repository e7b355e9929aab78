package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	authModel "fcehub_backend/internals/features/users/auth/model"
)

/* ====================== STAFF ====================== */

func FindStaffByEmail(ctx context.Context, db *gorm.DB, email string) (*authModel.StaffUserModel, error) {
	var s authModel.StaffUserModel
	if err := db.WithContext(ctx).
		Where("staff_user_email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func FindStaffByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*authModel.StaffUserModel, error) {
	var s authModel.StaffUserModel
	if err := db.WithContext(ctx).First(&s, "staff_user_id = ?", id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func CreateStaff(ctx context.Context, db *gorm.DB, s *authModel.StaffUserModel) error {
	return db.WithContext(ctx).Create(s).Error
}

func UpdateStaffPassword(ctx context.Context, db *gorm.DB, id uuid.UUID, hash string) error {
	return db.WithContext(ctx).Model(&authModel.StaffUserModel{}).
		Where("staff_user_id = ?", id).
		Update("staff_user_password", hash).Error
}

func TouchLastLogin(ctx context.Context, db *gorm.DB, id uuid.UUID, at time.Time) error {
	return db.WithContext(ctx).Model(&authModel.StaffUserModel{}).
		Where("staff_user_id = ?", id).
		UpdateColumn("staff_user_last_login", at.UTC()).Error
}
