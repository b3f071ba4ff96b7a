// internals/middlewares/auth/claim_utils.go
package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	userModel "schoolhub_backend/internals/features/users/user/model"
	helperAuth "schoolhub_backend/internals/helpers/auth"
)

var (
	errNoToken      = errors.New("no token provided")
	errTokenFormat  = errors.New("invalid token format")
	errUserInactive = errors.New("user inactive")
)

// extractBearerToken reads the Authorization header, falling back to the
// access_token cookie.
func extractBearerToken(c *fiber.Ctx) (string, error) {
	auth := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if auth == "" {
		if cookieTok := strings.TrimSpace(c.Cookies("access_token")); cookieTok != "" {
			auth = "Bearer " + cookieTok
		}
	}
	if auth == "" {
		return "", errNoToken
	}

	fields := strings.Fields(auth)
	if len(fields) < 2 || !strings.EqualFold(fields[0], "Bearer") {
		return "", errTokenFormat
	}
	tok := strings.Trim(strings.TrimSpace(fields[1]), "\"'")
	if tok == "" {
		return "", errTokenFormat
	}
	return tok, nil
}

// loadActiveUser reads the user row; role and school come from here
// rather than the token, so joins made after login are visible at once.
func loadActiveUser(db *gorm.DB, userID uuid.UUID) (*userModel.UserModel, error) {
	var u userModel.UserModel
	if err := db.Select("id", "email", "role", "status", "school_id").
		Where("id = ?", userID).
		First(&u).Error; err != nil {
		return nil, err
	}
	if !u.IsActive() {
		return &u, errUserInactive
	}
	return &u, nil
}

func storeUserToLocals(c *fiber.Ctx, u *userModel.UserModel) {
	c.Locals(helperAuth.LocUserID, u.ID.String())
	c.Locals(helperAuth.LocRole, strings.ToLower(u.Role))
	c.Locals(helperAuth.LocEmail, u.Email)
	if u.HasSchool() {
		c.Locals(helperAuth.LocSchoolID, u.SchoolID.String())
	}
}
