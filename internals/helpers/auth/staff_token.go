package helper

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// StaffClaims is the access token payload for dashboard users.
type StaffClaims struct {
	Typ   string `json:"typ"`
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// IssueStaffToken signs an HS256 access token valid for ttl from now.
func IssueStaffToken(secret string, staffID uuid.UUID, email, role string, ttl time.Duration, now time.Time) (string, time.Time, error) {
	if secret == "" {
		return "", time.Time{}, errors.New("JWT secret is empty")
	}
	exp := now.Add(ttl).UTC()
	claims := StaffClaims{
		Typ:   "access",
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   staffID.String(),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now.UTC()),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return raw, exp, nil
}

// ParseStaffToken verifies signature, algorithm and expiry.
func ParseStaffToken(secret, raw string) (*StaffClaims, uuid.UUID, error) {
	if secret == "" {
		return nil, uuid.Nil, errors.New("JWT secret is empty")
	}
	claims := &StaffClaims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, uuid.Nil, err
	}
	if !tok.Valid || claims.Typ != "access" {
		return nil, uuid.Nil, errors.New("not an access token")
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("invalid subject: %w", err)
	}
	return claims, id, nil
}
