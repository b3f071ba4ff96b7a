package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	googleAuthIDTokenVerifier "github.com/futurenda/google-auth-id-token-verifier"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"schoolhub_backend/internals/configs"
	"schoolhub_backend/internals/constants"
	schoolDTO "schoolhub_backend/internals/features/schools/schools/dto"
	schoolModel "schoolhub_backend/internals/features/schools/schools/model"
	"schoolhub_backend/internals/features/users/auth/dto"
	authHelper "schoolhub_backend/internals/features/users/auth/helper"
	authRepo "schoolhub_backend/internals/features/users/auth/repository"
	userDTO "schoolhub_backend/internals/features/users/user/dto"
	userModel "schoolhub_backend/internals/features/users/user/model"
	helper "schoolhub_backend/internals/helpers"
	"schoolhub_backend/internals/helpers/dbtime"
)

/* ==========================
   Google identity
========================== */

type GoogleIdentity struct {
	Subject string
	Email   string
	Name    string
}

// GoogleVerifier checks a Google ID token against the configured client.
type GoogleVerifier interface {
	Verify(idToken string) (*GoogleIdentity, error)
}

type googleTokenVerifier struct{ clientID string }

func (g googleTokenVerifier) Verify(idToken string) (*GoogleIdentity, error) {
	if g.clientID == "" {
		return nil, errors.New("google login not configured")
	}
	v := googleAuthIDTokenVerifier.Verifier{}
	if err := v.VerifyIDToken(idToken, []string{g.clientID}); err != nil {
		return nil, err
	}
	claimSet, err := googleAuthIDTokenVerifier.Decode(idToken)
	if err != nil {
		return nil, err
	}
	return &GoogleIdentity{Subject: claimSet.Sub, Email: claimSet.Email, Name: claimSet.Name}, nil
}

/* ==========================
   Service
========================== */

type AuthService struct {
	DB     *gorm.DB
	Secret string
	TTL    time.Duration
	Google GoogleVerifier
}

func NewAuthService(db *gorm.DB) *AuthService {
	return &AuthService{
		DB:     db,
		Secret: configs.JWTSecret,
		TTL:    TokenTTL(),
		Google: googleTokenVerifier{clientID: configs.GoogleClientID},
	}
}

func (s *AuthService) issue(u *userModel.UserModel) (*dto.TokenResponse, error) {
	tok, exp, err := IssueAccessToken(u, s.Secret, dbtime.Now(), s.TTL)
	if err != nil {
		return nil, helper.ErrStorage("issue token", err)
	}
	return &dto.TokenResponse{
		AccessToken: tok,
		TokenType:   "Bearer",
		ExpiresAt:   exp,
		User:        userDTO.FromModel(u),
	}, nil
}

// Register creates an active self-service account with role "user".
func (s *AuthService) Register(ctx context.Context, req dto.RegisterRequest) (*userModel.UserModel, error) {
	hash, err := authHelper.HashPassword(req.Password)
	if err != nil {
		if errors.Is(err, authHelper.ErrPasswordTooShort) {
			return nil, helper.ErrValidation(err.Error())
		}
		return nil, helper.ErrStorage("hash password", err)
	}

	u := &userModel.UserModel{
		Email:     req.Email,
		Password:  hash,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Role:      constants.RoleUser,
	}
	u.Activate(dbtime.Now())

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		taken, err := authRepo.EmailTaken(tx, u.Email)
		if err != nil {
			return helper.ErrStorage("check email", err)
		}
		if taken {
			return helper.ErrConflict("Email already registered")
		}
		if err := authRepo.CreateUser(tx, u); err != nil {
			if helper.IsUniqueViolation(err) {
				return helper.ErrConflict("Email or phone already registered")
			}
			return helper.ErrStorage("create user", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[INFO] user registered id=%s", u.ID)
	return u, nil
}

func ensureCanLogin(u *userModel.UserModel) error {
	if !u.IsActive() {
		return helper.ErrForbidden("Account is not active")
	}
	return nil
}

func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest) (*dto.TokenResponse, error) {
	u, err := authRepo.FindUserByEmail(s.DB.WithContext(ctx), req.Email)
	if err != nil {
		if helper.IsNotFound(err) {
			return nil, helper.ErrUnauthorized("Invalid email or password")
		}
		return nil, helper.ErrStorage("find user", err)
	}
	if !authHelper.CheckPassword(u.Password, req.Password) {
		return nil, helper.ErrUnauthorized("Invalid email or password")
	}
	if err := ensureCanLogin(u); err != nil {
		return nil, err
	}
	return s.issue(u)
}

// LoginGoogle signs in by Google ID token. Unknown identities are matched
// by email first, then created as active "user" accounts.
func (s *AuthService) LoginGoogle(ctx context.Context, idToken string) (*dto.TokenResponse, error) {
	id, err := s.Google.Verify(strings.TrimSpace(idToken))
	if err != nil {
		log.Printf("[WARN] google token rejected: %v", err)
		return nil, helper.ErrUnauthorized("Invalid Google ID token")
	}
	if id.Subject == "" || id.Email == "" {
		return nil, helper.ErrUnauthorized("Invalid Google ID token")
	}

	var user *userModel.UserModel
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		u, err := authRepo.FindUserByGoogleID(tx, id.Subject)
		if err == nil {
			user = u
			return nil
		}
		if !helper.IsNotFound(err) {
			return helper.ErrStorage("find google user", err)
		}

		u, err = authRepo.FindUserByEmail(tx, id.Email)
		switch {
		case err == nil:
			if err := authRepo.LinkGoogleID(tx, u.ID, id.Subject); err != nil {
				return helper.ErrStorage("link google id", err)
			}
			sub := id.Subject
			u.GoogleID = &sub
			user = u
			return nil
		case !helper.IsNotFound(err):
			return helper.ErrStorage("find user by email", err)
		}

		hash, err := authHelper.HashPassword(authHelper.TemporaryPassword(24))
		if err != nil {
			return helper.ErrStorage("hash password", err)
		}
		first, last := splitName(id.Name, id.Email)
		sub := id.Subject
		nu := &userModel.UserModel{
			Email:     id.Email,
			Password:  hash,
			FirstName: first,
			LastName:  last,
			GoogleID:  &sub,
			Role:      constants.RoleUser,
		}
		nu.Activate(dbtime.Now())
		if err := authRepo.CreateUser(tx, nu); err != nil {
			if helper.IsUniqueViolation(err) {
				return helper.ErrConflict("Email already registered")
			}
			return helper.ErrStorage("create google user", err)
		}
		user = nu
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := ensureCanLogin(user); err != nil {
		return nil, err
	}
	return s.issue(user)
}

func splitName(name, email string) (string, string) {
	parts := strings.Fields(name)
	switch len(parts) {
	case 0:
		local := email
		if i := strings.Index(email, "@"); i > 0 {
			local = email[:i]
		}
		return local, ""
	case 1:
		return parts[0], ""
	default:
		return parts[0], strings.Join(parts[1:], " ")
	}
}

// Logout blacklists raw until its own expiry.
func (s *AuthService) Logout(ctx context.Context, raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return helper.ErrUnauthorized("Authentication required")
	}
	claims, err := ParseAccessToken(raw, s.Secret, dbtime.Now())
	if err != nil {
		return helper.ErrUnauthorized("Invalid token")
	}
	if err := authRepo.BlacklistToken(s.DB.WithContext(ctx), authHelper.HashToken(raw, s.Secret), claims.ExpiresAt); err != nil {
		return helper.ErrStorage("blacklist token", err)
	}
	log.Printf("[INFO] token blacklisted user=%s", claims.UserID)
	return nil
}

// IsRevoked reports whether raw was logged out.
func (s *AuthService) IsRevoked(ctx context.Context, raw string) (bool, error) {
	return authRepo.IsBlacklisted(s.DB.WithContext(ctx), authHelper.HashToken(raw, s.Secret))
}

type MeResponse struct {
	User   *userDTO.UserResponse  `json:"user"`
	School *schoolDTO.SchoolBrief `json:"school,omitempty"`
}

func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*MeResponse, error) {
	db := s.DB.WithContext(ctx)
	u, err := authRepo.FindUserByID(db, userID)
	if err != nil {
		if helper.IsNotFound(err) {
			return nil, helper.ErrNotFound("User not found")
		}
		return nil, helper.ErrStorage("find user", err)
	}
	out := &MeResponse{User: userDTO.FromModel(u)}
	if u.HasSchool() {
		var sc schoolModel.SchoolModel
		if err := db.Where("school_id = ?", *u.SchoolID).First(&sc).Error; err == nil {
			b := schoolDTO.ToSchoolBrief(&sc)
			out.School = &b
		} else if !helper.IsNotFound(err) {
			return nil, helper.ErrStorage("find school", err)
		}
	}
	return out, nil
}
