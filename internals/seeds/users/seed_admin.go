package users

import (
	"context"
	"log"
	"strings"

	"gorm.io/gorm"

	"schoolhub_backend/internals/constants"
	authHelper "schoolhub_backend/internals/features/users/auth/helper"
	"schoolhub_backend/internals/features/users/user/model"
	"schoolhub_backend/internals/helpers/dbtime"
)

// SeedPlatformAdmin creates an active admin with no school, which the
// /api/o routes treat as a platform admin. An existing email is left alone.
func SeedPlatformAdmin(ctx context.Context, db *gorm.DB, email, password string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return false, nil
	}

	var n int64
	if err := db.WithContext(ctx).Model(&model.UserModel{}).Where("email = ?", email).Count(&n).Error; err != nil {
		return false, err
	}
	if n > 0 {
		log.Printf("[SEED] user %s exists, skipped", email)
		return false, nil
	}

	hash, err := authHelper.HashPassword(password)
	if err != nil {
		return false, err
	}
	now := dbtime.Now()
	u := &model.UserModel{
		Role:       constants.RoleAdmin,
		Status:     model.UserStatusActive,
		FirstName:  "Platform",
		LastName:   "Admin",
		Email:      email,
		Password:   hash,
		VerifiedAt: &now,
	}
	if err := db.WithContext(ctx).Create(u).Error; err != nil {
		return false, err
	}
	log.Printf("[SEED] platform admin %s id=%s", email, u.ID)
	return true, nil
}
