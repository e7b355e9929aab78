package auth

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	authModel "fcehub_backend/internals/features/users/auth/model"
	helper "fcehub_backend/internals/helpers"
	helperAuth "fcehub_backend/internals/helpers/auth"
)

/* ======== Extractors ======== */

// extractBearerToken reads "Authorization: Bearer <tok>", falling back to the
// access_token cookie. Tolerates repeated spaces, any case and stray quotes.
func extractBearerToken(c *fiber.Ctx) (string, error) {
	auth := strings.TrimSpace(c.Get("Authorization"))
	if auth == "" {
		if cookieTok := c.Cookies("access_token"); cookieTok != "" {
			auth = "Bearer " + cookieTok
		}
	}
	if auth == "" {
		return "", fmt.Errorf("unauthorized - no token provided")
	}

	fields := strings.Fields(auth)
	if len(fields) < 2 || !strings.EqualFold(fields[0], "Bearer") {
		return "", fmt.Errorf("unauthorized - invalid token format")
	}
	tok := strings.Trim(strings.TrimSpace(fields[1]), "\"'")
	if tok == "" {
		return "", fmt.Errorf("unauthorized - empty token")
	}
	return tok, nil
}

/* ======== Store claims to Locals ======== */

func storeStaffToLocals(c *fiber.Ctx, raw string, staff *authModel.StaffUserModel, claims *helperAuth.StaffClaims) {
	c.Locals("user_id", staff.StaffUserID.String())
	c.Locals("userRole", string(staff.StaffUserRole))
	c.Locals("email", claims.Email)
	c.Locals("staff", staff)
	helper.SetRawAccessToken(c, raw)
}
