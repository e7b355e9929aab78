package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	authModel "fcehub_backend/internals/features/users/auth/model"
	authRepo "fcehub_backend/internals/features/users/auth/repository"
	helperAuth "fcehub_backend/internals/helpers/auth"
)

// Authenticate resolves a bearer token to an active staff account.
func (s *AuthService) Authenticate(ctx context.Context, raw string) (*authModel.StaffUserModel, *helperAuth.StaffClaims, error) {
	claims, id, err := helperAuth.ParseStaffToken(s.Secret, raw)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}
	revoked, err := helperAuth.IsBlacklisted(ctx, s.DB, raw, s.Secret, s.Now())
	if err != nil {
		return nil, nil, err
	}
	if revoked {
		return nil, nil, ErrTokenRevoked
	}
	staff, err := authRepo.FindStaffByID(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}
	if !staff.StaffUserIsActive {
		return nil, nil, ErrInactive
	}
	return staff, claims, nil
}

// Logout blacklists the token until its own expiry (plus a minute of skew).
func (s *AuthService) Logout(ctx context.Context, raw string) error {
	until := s.Now().Add(2 * time.Minute)
	if claims, _, err := helperAuth.ParseStaffToken(s.Secret, raw); err == nil && claims.ExpiresAt != nil {
		until = claims.ExpiresAt.Time.Add(time.Minute)
	}
	return helperAuth.Add(ctx, s.DB, raw, s.Secret, until)
}

// PurgeBlacklist drops entries whose tokens have expired.
func (s *AuthService) PurgeBlacklist(ctx context.Context) (int64, error) {
	return helperAuth.PurgeExpired(ctx, s.DB, s.Now())
}
