package model

import "time"

// TokenBlacklistModel holds logged-out access tokens until they expire.
// Only the HMAC of the token is stored.
type TokenBlacklistModel struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TokenHash string    `gorm:"type:varchar(64);not null;uniqueIndex:uq_token_blacklist_hash" json:"-"`
	ExpiredAt time.Time `gorm:"not null;index" json:"expired_at"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (TokenBlacklistModel) TableName() string {
	return "token_blacklist"
}
