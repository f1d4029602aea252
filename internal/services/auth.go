package services

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"gorm.io/gorm"

	"meridianwealth/internal/config"
	"meridianwealth/internal/domain"
	"meridianwealth/internal/metrics"
	"meridianwealth/internal/util"

	apperrors "meridianwealth/pkg/errors"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// AuthService implements authentication and user administration
type AuthService struct {
	db           *gorm.DB
	emailService *EmailService
	otpService   *OTPService
}

// NewAuthService creates a new auth service
func NewAuthService(db *gorm.DB, emailService *EmailService, otpService *OTPService) *AuthService {
	return &AuthService{db: db, emailService: emailService, otpService: otpService}
}

// LoginResult is the successful authentication response
type LoginResult struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	User        *domain.User `json:"user"`
}

// Login authenticates a user by email and password and returns a JWT
func (s *AuthService) Login(email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	password = strings.TrimSpace(password)

	log.Printf("[AUTH] Login attempt for: %s", email)

	var user domain.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("[AUTH] Login failed: account '%s' not found", email)
			metrics.RecordAuthAttempt(false)
			return nil, apperrors.Unauthorized("incorrect email or password")
		}
		log.Printf("[AUTH] Login failed: database error for '%s': %v", email, err)
		metrics.RecordAuthAttempt(false)
		return nil, apperrors.Internal("failed to look up account", err)
	}

	if !util.CheckPasswordHash(password, user.HashedPassword) {
		log.Printf("[AUTH] Login failed: invalid password for '%s'", email)
		metrics.RecordAuthAttempt(false)
		return nil, apperrors.Unauthorized("incorrect email or password")
	}

	return s.issueToken(&user)
}

// LoginWithOTP authenticates a user by a previously sent OTP code. Email
// identifiers match existing accounts only; a first-time phone login creates
// the account as an empty onboarding client.
func (s *AuthService) LoginWithOTP(identifier, code string) (*LoginResult, error) {
	isEmail := strings.Contains(identifier, "@")
	identifier = util.NormalizeIdentifier(identifier)
	log.Printf("[AUTH] OTP login attempt for: %s", identifier)

	if err := s.otpService.Verify(identifier, code); err != nil {
		metrics.RecordAuthAttempt(false)
		return nil, err
	}
	util.ClearOTPSession(identifier)

	if isEmail {
		var user domain.User
		if err := s.db.Where("email = ?", identifier).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				log.Printf("[AUTH] OTP login failed: no account for email %s", identifier)
				metrics.RecordAuthAttempt(false)
				return nil, apperrors.Unauthorized("no account for this email")
			}
			metrics.RecordAuthAttempt(false)
			return nil, apperrors.Internal("failed to look up account", err)
		}
		return s.issueToken(&user)
	}

	phone := identifier
	var user domain.User
	err := s.db.Where("phone = ?", phone).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// First sign-in: create the account. The placeholder email keeps the
		// unique index satisfied until the profile step fills in a real one.
		randomPassword := make([]byte, 32)
		_, _ = rand.Read(randomPassword)
		hashed, hashErr := util.HashPassword(hex.EncodeToString(randomPassword))
		if hashErr != nil {
			return nil, apperrors.Internal("failed to create account", hashErr)
		}
		user = domain.User{
			Name:           "",
			Email:          phone + "@phone.meridianwealth.local",
			Phone:          &phone,
			HashedPassword: hashed,
			IsActive:       true,
		}
		if err := s.db.Create(&user).Error; err != nil {
			log.Printf("[AUTH] OTP login failed: could not create account for %s: %v", phone, err)
			return nil, apperrors.Internal("failed to create account", err)
		}
		log.Printf("[AUTH] Created account id=%d for phone %s", user.ID, phone)
	} else if err != nil {
		log.Printf("[AUTH] OTP login failed: database error for %s: %v", phone, err)
		metrics.RecordAuthAttempt(false)
		return nil, apperrors.Internal("failed to look up account", err)
	}

	return s.issueToken(&user)
}

func (s *AuthService) issueToken(user *domain.User) (*LoginResult, error) {
	if !user.IsActive {
		log.Printf("[AUTH] Login failed: account '%s' is inactive", user.Email)
		metrics.RecordAuthAttempt(false)
		return nil, apperrors.Unauthorized("user account is inactive")
	}

	now := time.Now()
	user.LastLogin = &now
	s.db.Save(user)

	token, err := util.GenerateToken(user)
	if err != nil {
		log.Printf("[AUTH] Login failed: token generation error for '%s': %v", user.Email, err)
		return nil, apperrors.Internal("failed to generate token", err)
	}

	log.Printf("[AUTH] Login successful for '%s' (id=%d, admin=%v)", user.Email, user.ID, user.IsAdmin)
	metrics.RecordAuthAttempt(true)

	return &LoginResult{
		AccessToken: token,
		TokenType:   "bearer",
		User:        user,
	}, nil
}

// RequestPasswordReset issues a single-use reset token and emails it. For an
// unknown email it silently succeeds so the endpoint cannot be used to probe
// which addresses have accounts.
func (s *AuthService) RequestPasswordReset(email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	log.Printf("[AUTH] Password reset requested for: %s", email)

	var user domain.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("[AUTH] Password reset: no account for '%s'", email)
			return nil
		}
		return apperrors.Internal("failed to look up account", err)
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return apperrors.Internal("failed to generate reset token", err)
	}
	token := hex.EncodeToString(raw)

	cfg := config.Get()
	reset := domain.PasswordResetToken{
		UserID:    user.ID,
		Token:     token,
		ExpiresAt: time.Now().Add(time.Duration(cfg.Auth.ResetExpiryMinutes) * time.Minute),
	}
	if err := s.db.Create(&reset).Error; err != nil {
		return apperrors.Internal("failed to store reset token", err)
	}

	resetURL := fmt.Sprintf("%s/reset-password?token=%s", strings.TrimRight(cfg.App.PublicURL, "/"), token)

	// Email delivery must not block the response.
	go func() {
		if err := s.emailService.SendPasswordReset(user.Email, resetURL); err != nil {
			log.Printf("[AUTH] Warning: failed to send reset email to %s: %v", user.Email, err)
		}
	}()

	return nil
}

// ConfirmPasswordReset consumes a reset token and stores the new password
func (s *AuthService) ConfirmPasswordReset(token, newPassword string) error {
	newPassword = strings.TrimSpace(newPassword)
	if len(newPassword) < 8 {
		return apperrors.Validation("password must be at least 8 characters")
	}

	var reset domain.PasswordResetToken
	if err := s.db.Where("token = ? AND used = ?", token, false).First(&reset).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.BadRequest("invalid or already used reset token")
		}
		return apperrors.Internal("failed to look up reset token", err)
	}
	if time.Now().After(reset.ExpiresAt) {
		return apperrors.BadRequest("reset token has expired")
	}

	var user domain.User
	if err := s.db.First(&user, reset.UserID).Error; err != nil {
		return apperrors.Internal("failed to look up account", err)
	}

	hashed, err := util.HashPassword(newPassword)
	if err != nil {
		return apperrors.Internal("failed to hash password", err)
	}
	user.HashedPassword = hashed

	if err := s.db.Save(&user).Error; err != nil {
		return apperrors.Internal("failed to update password", err)
	}
	reset.Used = true
	s.db.Save(&reset)

	log.Printf("[AUTH] Password reset completed for user id=%d", user.ID)
	return nil
}

// CreateUserInput carries the admin create-user request
type CreateUserInput struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Phone    *string `json:"phone"`
	Password string  `json:"password"`
	IsAdmin  bool    `json:"is_admin"`
	IsActive *bool   `json:"is_active"`
}

// CreateUser creates a new user (admin only)
func (s *AuthService) CreateUser(in CreateUserInput) (*domain.User, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	password := strings.TrimSpace(in.Password)

	log.Printf("[AUTH] CreateUser request: email=%s", email)

	if !emailRegex.MatchString(email) {
		return nil, apperrors.Validation("invalid email address")
	}
	if len(password) < 8 {
		return nil, apperrors.Validation("password must be at least 8 characters")
	}

	var existing domain.User
	if err := s.db.Where("email = ?", email).First(&existing).Error; err == nil {
		log.Printf("[AUTH] CreateUser failed: email '%s' already exists", email)
		return nil, apperrors.BadRequest("email already registered")
	}

	hashed, err := util.HashPassword(password)
	if err != nil {
		log.Printf("[AUTH] CreateUser failed: password hashing error: %v", err)
		return nil, apperrors.Internal("failed to hash password", err)
	}

	user := domain.User{
		Name:           name,
		Email:          email,
		HashedPassword: hashed,
		IsAdmin:        in.IsAdmin,
		IsActive:       true,
	}
	if in.IsActive != nil {
		user.IsActive = *in.IsActive
	}
	if in.Phone != nil && strings.TrimSpace(*in.Phone) != "" {
		phone := util.NormalizeIdentifier(*in.Phone)
		user.Phone = &phone
	}

	if err := s.db.Create(&user).Error; err != nil {
		log.Printf("[AUTH] CreateUser failed: database error: %v", err)
		return nil, apperrors.Internal("failed to create user", err)
	}

	log.Printf("[AUTH] CreateUser successful: email=%s, id=%d", email, user.ID)
	return &user, nil
}

// ListUsers returns users ordered by creation time (admin only)
func (s *AuthService) ListUsers(skip, limit int) ([]domain.User, error) {
	log.Printf("[AUTH] ListUsers request: skip=%d, limit=%d", skip, limit)

	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if skip < 0 {
		skip = 0
	}

	var users []domain.User
	if err := s.db.Order("created_at DESC").Offset(skip).Limit(limit).Find(&users).Error; err != nil {
		log.Printf("[AUTH] ListUsers failed: database error: %v", err)
		return nil, apperrors.Internal("failed to list users", err)
	}

	log.Printf("[AUTH] ListUsers successful: returned %d users", len(users))
	return users, nil
}

// GetUser returns a user by ID (admin only)
func (s *AuthService) GetUser(id uint) (*domain.User, error) {
	var user domain.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("user not found")
		}
		return nil, apperrors.Internal("failed to get user", err)
	}
	return &user, nil
}

// UpdateUserInput carries the admin update-user request; nil fields are
// left untouched
type UpdateUserInput struct {
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	IsAdmin *bool   `json:"is_admin"`
}

// UpdateUser updates profile fields on a user (admin only)
func (s *AuthService) UpdateUser(id uint, in UpdateUserInput) (*domain.User, error) {
	log.Printf("[AUTH] UpdateUser request: id=%d", id)

	user, err := s.GetUser(id)
	if err != nil {
		return nil, err
	}

	if in.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*in.Email))
		if !emailRegex.MatchString(email) {
			return nil, apperrors.Validation("invalid email address")
		}
		var existing domain.User
		if err := s.db.Where("email = ? AND id != ?", email, id).First(&existing).Error; err == nil {
			return nil, apperrors.BadRequest("email already taken")
		}
		user.Email = email
	}
	if in.Name != nil {
		user.Name = strings.TrimSpace(*in.Name)
	}
	if in.Phone != nil {
		phone := util.NormalizeIdentifier(*in.Phone)
		user.Phone = &phone
	}
	if in.IsAdmin != nil {
		user.IsAdmin = *in.IsAdmin
	}

	if err := s.db.Save(user).Error; err != nil {
		log.Printf("[AUTH] UpdateUser failed: database error: %v", err)
		return nil, apperrors.Internal("failed to update user", err)
	}

	log.Printf("[AUTH] UpdateUser successful: id=%d", user.ID)
	return user, nil
}

// SetUserActive activates or deactivates an account (admin only). Admins
// cannot deactivate themselves.
func (s *AuthService) SetUserActive(actor *domain.User, id uint, active bool) (*domain.User, error) {
	log.Printf("[AUTH] SetUserActive request: id=%d active=%v by=%d", id, active, actor.ID)

	if !active && actor.ID == id {
		return nil, apperrors.BadRequest("cannot deactivate your own account")
	}

	user, err := s.GetUser(id)
	if err != nil {
		return nil, err
	}

	user.IsActive = active
	if err := s.db.Save(user).Error; err != nil {
		log.Printf("[AUTH] SetUserActive failed: database error: %v", err)
		return nil, apperrors.Internal("failed to update user", err)
	}

	log.Printf("[AUTH] SetUserActive successful: id=%d active=%v", user.ID, user.IsActive)
	return user, nil
}
