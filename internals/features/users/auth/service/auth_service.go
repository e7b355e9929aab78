package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"fcehub_backend/internals/configs"
	authHelper "fcehub_backend/internals/features/users/auth/helper"
	authModel "fcehub_backend/internals/features/users/auth/model"
	authRepo "fcehub_backend/internals/features/users/auth/repository"
	helperAuth "fcehub_backend/internals/helpers/auth"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInactive           = errors.New("account is disabled")
	ErrTokenRevoked       = errors.New("session has been logged out")
)

// InputError is a request the caller can fix (maps to 400/422).
type InputError struct{ Msg string }

func (e *InputError) Error() string { return e.Msg }

type AuthService struct {
	DB     *gorm.DB
	Secret string
	TTL    time.Duration
	Now    func() time.Time
	Google IDTokenVerifier // nil when Google sign-in is off
}

func NewAuthService(db *gorm.DB) *AuthService {
	return &AuthService{
		DB:     db,
		Secret: configs.JWTSecret,
		TTL:    configs.JWTTTL,
		Now:    func() time.Time { return time.Now().UTC() },
		Google: NewGoogleVerifier(configs.GoogleClientID),
	}
}

type LoginResult struct {
	AccessToken string                    `json:"access_token"`
	TokenType   string                    `json:"token_type"`
	ExpiresAt   time.Time                 `json:"expires_at"`
	Staff       *authModel.StaffUserModel `json:"staff"`
}

/* ==========================
   LOGIN (email + password)
========================== */

func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := authHelper.ValidateLoginInput(email, password); err != nil {
		return nil, &InputError{Msg: err.Error()}
	}

	staff, err := authRepo.FindStaffByEmail(ctx, s.DB, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			_ = CheckPasswordHash(dummyHash(), password)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := CheckPasswordHash(staff.StaffUserPassword, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !staff.StaffUserIsActive {
		return nil, ErrInactive
	}
	return s.issue(ctx, staff)
}

func (s *AuthService) issue(ctx context.Context, staff *authModel.StaffUserModel) (*LoginResult, error) {
	now := s.Now()
	token, exp, err := helperAuth.IssueStaffToken(s.Secret, staff.StaffUserID, staff.StaffUserEmail, string(staff.StaffUserRole), s.TTL, now)
	if err != nil {
		return nil, err
	}
	if err := authRepo.TouchLastLogin(ctx, s.DB, staff.StaffUserID, now); err != nil {
		log.Printf("[AUTH] ⚠️ last_login update failed for %s: %v", staff.StaffUserEmail, err)
	}
	log.Printf("[AUTH] ✅ login %s role=%s", staff.StaffUserEmail, staff.StaffUserRole)
	return &LoginResult{AccessToken: token, TokenType: "Bearer", ExpiresAt: exp, Staff: staff}, nil
}

// unknown emails still pay for one bcrypt comparison
var dummyHash = sync.OnceValue(func() string {
	h, _ := HashPassword("RandomDummyPassword123!")
	return h
})
