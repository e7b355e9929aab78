package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	authHelper "fcehub_backend/internals/features/users/auth/helper"
	authRepo "fcehub_backend/internals/features/users/auth/repository"
)

func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	return string(b), err
}

func CheckPasswordHash(hash, pw string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw))
}

// ========================== CHANGE PASSWORD ==========================
func (s *AuthService) ChangePassword(ctx context.Context, staffID uuid.UUID, current, next string) error {
	if err := authHelper.ValidateNewPassword(next); err != nil {
		return &InputError{Msg: err.Error()}
	}
	staff, err := authRepo.FindStaffByID(ctx, s.DB, staffID)
	if err != nil {
		return ErrInvalidCredentials
	}
	if err := CheckPasswordHash(staff.StaffUserPassword, current); err != nil {
		return errors.Join(ErrInvalidCredentials, errors.New("current password incorrect"))
	}
	hash, err := HashPassword(next)
	if err != nil {
		return err
	}
	return authRepo.UpdateStaffPassword(ctx, s.DB, staffID, hash)
}
