package service

import (
	"context"

	"github.com/google/uuid"

	"schoolhub_backend/internals/features/users/auth/dto"
	authHelper "schoolhub_backend/internals/features/users/auth/helper"
	authRepo "schoolhub_backend/internals/features/users/auth/repository"
	helper "schoolhub_backend/internals/helpers"
)

// ChangePassword requires the current password; Google-only accounts
// never know theirs and must keep using Google sign-in.
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, req dto.ChangePasswordRequest) error {
	db := s.DB.WithContext(ctx)
	user, err := authRepo.FindUserByID(db, userID)
	if err != nil {
		if helper.IsNotFound(err) {
			return helper.ErrNotFound("User not found")
		}
		return helper.ErrStorage("find user", err)
	}
	if !authHelper.CheckPassword(user.Password, req.OldPassword) {
		return helper.ErrUnauthorized("Current password incorrect")
	}

	hash, err := authHelper.HashPassword(req.NewPassword)
	if err != nil {
		return helper.ErrValidation(err.Error())
	}
	if err := authRepo.UpdateUserPassword(db, userID, hash); err != nil {
		return helper.ErrStorage("update password", err)
	}
	return nil
}
