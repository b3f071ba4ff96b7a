// internals/features/users/auth/repository/auth_repository.go
package repository

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	authModel "schoolhub_backend/internals/features/users/auth/model"
	userModel "schoolhub_backend/internals/features/users/user/model"
)

/* ====================== USER ====================== */

func FindUserByID(db *gorm.DB, userID uuid.UUID) (*userModel.UserModel, error) {
	var user userModel.UserModel
	if err := db.Where("id = ?", userID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func FindUserByEmail(db *gorm.DB, email string) (*userModel.UserModel, error) {
	var user userModel.UserModel
	if err := db.Where("email = ?", userModel.NormalizeEmail(email)).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func FindUserByGoogleID(db *gorm.DB, googleID string) (*userModel.UserModel, error) {
	var user userModel.UserModel
	if err := db.Where("google_id = ?", googleID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func EmailTaken(db *gorm.DB, email string) (bool, error) {
	var n int64
	err := db.Model(&userModel.UserModel{}).
		Where("email = ?", userModel.NormalizeEmail(email)).
		Count(&n).Error
	return n > 0, err
}

func CreateUser(db *gorm.DB, user *userModel.UserModel) error {
	return db.Create(user).Error
}

func UpdateUserPassword(db *gorm.DB, userID uuid.UUID, hash string) error {
	return db.Model(&userModel.UserModel{}).Where("id = ?", userID).Update("password_hash", hash).Error
}

func LinkGoogleID(db *gorm.DB, userID uuid.UUID, googleID string) error {
	return db.Model(&userModel.UserModel{}).Where("id = ?", userID).Update("google_id", googleID).Error
}

/* ====================== BLACKLIST TOKEN ====================== */

// BlacklistToken is idempotent: logging out twice keeps one row.
func BlacklistToken(db *gorm.DB, tokenHash string, expiresAt time.Time) error {
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&authModel.TokenBlacklistModel{
		TokenHash: tokenHash,
		ExpiredAt: expiresAt.UTC(),
	}).Error
}

func IsBlacklisted(db *gorm.DB, tokenHash string) (bool, error) {
	var n int64
	err := db.Model(&authModel.TokenBlacklistModel{}).
		Where("token_hash = ?", tokenHash).
		Count(&n).Error
	return n > 0, err
}

func CleanupExpiredBlacklist(db *gorm.DB, now time.Time) (int64, error) {
	res := db.Where("expired_at <= ?", now.UTC()).Delete(&authModel.TokenBlacklistModel{})
	return res.RowsAffected, res.Error
}
