package service

import (
	"context"
	"errors"
	"strings"

	googleAuthIDTokenVerifier "github.com/futurenda/google-auth-id-token-verifier"
	"gorm.io/gorm"

	authRepo "fcehub_backend/internals/features/users/auth/repository"
)

var ErrGoogleDisabled = errors.New("google sign-in is not enabled")

// IDTokenVerifier checks a Google ID token and returns its verified email.
type IDTokenVerifier interface {
	VerifiedEmail(idToken string) (string, error)
}

type googleVerifier struct {
	audience []string
}

// NewGoogleVerifier returns nil when clientID is empty.
func NewGoogleVerifier(clientID string) IDTokenVerifier {
	if strings.TrimSpace(clientID) == "" {
		return nil
	}
	return &googleVerifier{audience: []string{strings.TrimSpace(clientID)}}
}

func (g *googleVerifier) VerifiedEmail(idToken string) (string, error) {
	v := googleAuthIDTokenVerifier.Verifier{}
	if err := v.VerifyIDToken(idToken, g.audience); err != nil {
		return "", err
	}
	claims, err := googleAuthIDTokenVerifier.Decode(idToken)
	if err != nil {
		return "", err
	}
	if !claims.EmailVerified || claims.Email == "" {
		return "", errors.New("google account email is not verified")
	}
	return claims.Email, nil
}

/* ==========================
   LOGIN (Google ID token)
========================== */

// LoginGoogle signs in an existing staff account. Accounts are never
// created from a Google identity.
func (s *AuthService) LoginGoogle(ctx context.Context, idToken string) (*LoginResult, error) {
	if s.Google == nil {
		return nil, ErrGoogleDisabled
	}
	if strings.TrimSpace(idToken) == "" {
		return nil, &InputError{Msg: "id_token is required"}
	}
	email, err := s.Google.VerifiedEmail(idToken)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	staff, err := authRepo.FindStaffByEmail(ctx, s.DB, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !staff.StaffUserIsActive {
		return nil, ErrInactive
	}
	return s.issue(ctx, staff)
}
