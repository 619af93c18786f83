package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Govind-619/MenuSphere/models"
	"github.com/Govind-619/MenuSphere/utils"
	"gorm.io/gorm"
)

// AuthService registers and logs in restaurant owners
type AuthService struct {
	db        *gorm.DB
	jwtSecret string
	tokenTTL  time.Duration
	now       func() time.Time
}

// NewAuthService creates an AuthService
func NewAuthService(db *gorm.DB, jwtSecret string, tokenTTL time.Duration) *AuthService {
	return &AuthService{db: db, jwtSecret: jwtSecret, tokenTTL: tokenTTL, now: time.Now}
}

// RegisterInput is a local sign-up request
type RegisterInput struct {
	Username        string `json:"username" binding:"omitempty,min=3,max=30"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
	FullName        string `json:"full_name" binding:"max=100"`
}

// Validate checks the sign-up fields
func (in RegisterInput) Validate() error {
	var errs utils.FieldValidationErrors
	if in.Username != "" {
		if ok, msg := utils.ValidateUsername(in.Username); !ok {
			errs.Add("username", msg)
		}
	}
	if ok, msg := utils.ValidateEmail(in.Email); !ok {
		errs.Add("email", msg)
	}
	if ok, msg := utils.ValidatePassword(in.Password); !ok {
		errs.Add("password", msg)
	}
	if in.Password != in.ConfirmPassword {
		errs.Add("confirm_password", "must match password")
	}
	return errs.Err()
}

// LoginInput is a local login request
type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResult is returned after a successful sign-up or login
type AuthResult struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// GoogleProfile is the subset of the Google userinfo response used for login
type GoogleProfile struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
}

func (s *AuthService) issue(user *models.User) (*AuthResult, error) {
	token, err := utils.GenerateToken(user, s.jwtSecret, s.tokenTTL)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: *user}, nil
}

// Register creates a restaurant owner account
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	hash, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Email:    strings.ToLower(strings.TrimSpace(input.Email)),
		Password: hash,
		FullName: strings.TrimSpace(input.FullName),
		Role:     models.RoleRestaurantOwner,
	}
	if input.Username != "" {
		username := strings.TrimSpace(input.Username)
		user.Username = &username
	}

	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if utils.IsDuplicateKeyError(err) {
			return nil, ErrAccountExists
		}
		return nil, err
	}
	utils.LogInfo("User registered: %d (%s)", user.ID, user.Email)
	return s.issue(&user)
}

// Login checks the credentials and returns a fresh token
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(input.Email))).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if user.Password == "" || !utils.CheckPassword(input.Password, user.Password) {
		return nil, ErrInvalidCredentials
	}
	if user.IsBlocked {
		return nil, ErrUserBlocked
	}
	s.touchLogin(ctx, &user)
	return s.issue(&user)
}

// LoginWithGoogle finds or creates the user behind a Google profile. The
// second return value is true when the account was created.
func (s *AuthService) LoginWithGoogle(ctx context.Context, profile GoogleProfile) (*AuthResult, bool, error) {
	if profile.ID == "" || profile.Email == "" {
		return nil, false, utils.BadRequestError("Google profile is incomplete", nil)
	}
	email := strings.ToLower(profile.Email)

	var user models.User
	created := false
	err := s.db.WithContext(ctx).Where("google_id = ? OR email = ?", profile.ID, email).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		googleID := profile.ID
		user = models.User{
			Email:    email,
			FullName: profile.Name,
			Role:     models.RoleRestaurantOwner,
			GoogleID: &googleID,
		}
		if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
			return nil, false, err
		}
		created = true
		utils.LogInfo("User registered via Google: %d (%s)", user.ID, user.Email)
	case err != nil:
		return nil, false, err
	default:
		if user.IsBlocked {
			return nil, false, ErrUserBlocked
		}
		// matched by email only
		if (user.GoogleID == nil || *user.GoogleID != profile.ID) && !profile.VerifiedEmail {
			utils.LogError("Unverified Google email %s refused for user %d", email, user.ID)
			return nil, false, ErrGoogleEmailUnverified
		}
		if user.GoogleID == nil {
			googleID := profile.ID
			if err := s.db.WithContext(ctx).Model(&user).Update("google_id", googleID).Error; err != nil {
				return nil, false, err
			}
		}
	}

	s.touchLogin(ctx, &user)
	result, err := s.issue(&user)
	return result, created, err
}

func (s *AuthService) touchLogin(ctx context.Context, user *models.User) {
	now := s.now()
	if err := s.db.WithContext(ctx).Model(user).UpdateColumn("last_login_at", now).Error; err != nil {
		utils.LogError("Failed to record login for user %d: %v", user.ID, err)
		return
	}
	user.LastLoginAt = &now
}
