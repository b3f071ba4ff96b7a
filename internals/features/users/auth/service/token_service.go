// internals/features/users/auth/service/token_service.go
package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"schoolhub_backend/internals/configs"
	userModel "schoolhub_backend/internals/features/users/user/model"
)

// ExpirySkew tolerates small clock drift between issuer and verifier.
const ExpirySkew = 30 * time.Second

var (
	ErrTokenInvalid = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// AccessClaims is the decoded payload of an access token.
type AccessClaims struct {
	UserID    uuid.UUID
	Email     string
	Role      string
	SchoolID  *uuid.UUID
	ExpiresAt time.Time
}

// TokenTTL reads JWT_TTL_HOURS (default 24).
func TokenTTL() time.Duration {
	h := configs.GetEnvInt("JWT_TTL_HOURS", 24)
	if h <= 0 {
		h = 24
	}
	return time.Duration(h) * time.Hour
}

func buildAccessClaims(u *userModel.UserModel, now, exp time.Time) jwt.MapClaims {
	schoolID := ""
	if u.HasSchool() {
		schoolID = u.SchoolID.String()
	}
	return jwt.MapClaims{
		"id":        u.ID.String(),
		"user_id":   u.ID.String(),
		"email":     u.Email,
		"role":      u.Role,
		"school_id": schoolID,
		"iat":       now.Unix(),
		"exp":       exp.Unix(),
	}
}

// IssueAccessToken signs an HS256 token for u.
func IssueAccessToken(u *userModel.UserModel, secret string, now time.Time, ttl time.Duration) (string, time.Time, error) {
	if strings.TrimSpace(secret) == "" {
		return "", time.Time{}, errors.New("JWT secret not configured")
	}
	exp := now.Add(ttl).UTC()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, buildAccessClaims(u, now, exp)).SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return tok, exp, nil
}

// ParseAccessToken verifies the signature, then checks exp with ExpirySkew.
func ParseAccessToken(raw, secret string, now time.Time) (*AccessClaims, error) {
	claims := jwt.MapClaims{}
	parser := jwt.Parser{SkipClaimsValidation: true, ValidMethods: []string{jwt.SigningMethodHS256.Alg()}}
	if _, err := parser.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	exp, err := claimUnix(claims["exp"])
	if err != nil {
		return nil, ErrTokenInvalid
	}
	expAt := time.Unix(exp, 0).UTC()
	if now.After(expAt.Add(ExpirySkew)) {
		return nil, ErrTokenExpired
	}

	idStr, _ := claims["id"].(string)
	if idStr == "" {
		idStr, _ = claims["user_id"].(string)
	}
	uid, err := uuid.Parse(strings.TrimSpace(idStr))
	if err != nil {
		return nil, ErrTokenInvalid
	}

	out := &AccessClaims{UserID: uid, ExpiresAt: expAt}
	out.Email, _ = claims["email"].(string)
	out.Role, _ = claims["role"].(string)
	if s, _ := claims["school_id"].(string); s != "" {
		if sid, err := uuid.Parse(s); err == nil {
			out.SchoolID = &sid
		}
	}
	return out, nil
}

func claimUnix(v any) (int64, error) {
	switch t := v.(type) {
	case float64:
		return int64(t), nil
	case int64:
		return t, nil
	case int:
		return int64(t), nil
	default:
		return 0, fmt.Errorf("invalid exp type %T", v)
	}
}
