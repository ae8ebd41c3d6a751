package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/notehub/notehub-go/internal/crypto"
	"github.com/notehub/notehub-go/internal/mailer"
	"github.com/notehub/notehub-go/internal/model"
	"github.com/notehub/notehub-go/internal/repository"
)

var (
	ErrEmailInvalid       = errors.New("a valid email is required")
	ErrPasswordTooShort   = errors.New("password must be at least 6 characters")
	ErrFirstNameRequired  = errors.New("first name is required")
	ErrLastNameRequired   = errors.New("last name is required")
	ErrEmailTaken         = errors.New("user already exists with this email")
	ErrUserNotFound       = errors.New("user not found")
	ErrAlreadyVerified    = errors.New("user is already verified")
	ErrNoPendingOTP       = errors.New("no OTP found, please request a new one")
	ErrOTPExpired         = errors.New("OTP has expired, please request a new one")
	ErrInvalidOTP         = errors.New("invalid OTP")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotVerified        = errors.New("please verify your email first")
	ErrOTPDeliveryFailed  = errors.New("failed to send OTP email")
)

const (
	minPasswordLength = 6
	otpTTL            = 10 * time.Minute
)

// UserStore is the persistence surface the auth service needs.
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByGoogleID(ctx context.Context, googleID string) (*model.User, error)
	SetVerified(ctx context.Context, id int64) error
	SetOTP(ctx context.Context, id int64, otp string, expiresAt time.Time) error
	LinkGoogle(ctx context.Context, id int64, googleID, picture string) error
}

// AuthService handles signup, verification and login business logic.
type AuthService struct {
	users     UserStore
	mailer    mailer.Mailer
	jwtSecret string
	jwtExpiry time.Duration

	// now is swappable so OTP expiry behavior is testable.
	now func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(users UserStore, m mailer.Mailer, secret string, expiry time.Duration) *AuthService {
	return &AuthService{
		users:     users,
		mailer:    m,
		jwtSecret: secret,
		jwtExpiry: expiry,
		now:       time.Now,
	}
}

// Signup registers a new, unverified user and emails them a verification
// code. A failed email send is logged and swallowed; the account exists
// either way and the caller can ask for a resend.
func (s *AuthService) Signup(ctx context.Context, req model.SignupRequest) (model.SignupResponse, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return model.SignupResponse{}, err
	}
	if len(req.Password) < minPasswordLength {
		return model.SignupResponse{}, ErrPasswordTooShort
	}
	firstName := strings.TrimSpace(req.FirstName)
	if firstName == "" {
		return model.SignupResponse{}, ErrFirstNameRequired
	}
	lastName := strings.TrimSpace(req.LastName)
	if lastName == "" {
		return model.SignupResponse{}, ErrLastNameRequired
	}

	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		return model.SignupResponse{}, err
	}

	otp, err := crypto.GenerateOTP()
	if err != nil {
		return model.SignupResponse{}, err
	}
	otpExpiresAt := s.now().Add(otpTTL)

	user := &model.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    firstName,
		LastName:     lastName,
		IsVerified:   false,
		OTP:          otp,
		OTPExpiresAt: &otpExpiresAt,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return model.SignupResponse{}, ErrEmailTaken
		}
		return model.SignupResponse{}, err
	}

	if err := s.mailer.SendOTP(ctx, email, otp); err != nil {
		slog.Warn("failed to send OTP email, continuing with signup", "email", email, "error", err)
	}

	return model.SignupResponse{
		Message: "User created successfully. Please check your email for verification code.",
		UserID:  user.ID,
	}, nil
}

// VerifyOTP checks a pending verification code and, on success, marks the
// user verified and logs them in.
func (s *AuthService) VerifyOTP(ctx context.Context, req model.VerifyOTPRequest) (model.AuthResponse, error) {
	user, err := s.getByEmail(ctx, req.Email)
	if err != nil {
		return model.AuthResponse{}, err
	}

	if user.IsVerified {
		return model.AuthResponse{}, ErrAlreadyVerified
	}
	if user.OTP == "" || user.OTPExpiresAt == nil {
		return model.AuthResponse{}, ErrNoPendingOTP
	}
	if s.now().After(*user.OTPExpiresAt) {
		return model.AuthResponse{}, ErrOTPExpired
	}
	if user.OTP != req.OTP {
		return model.AuthResponse{}, ErrInvalidOTP
	}

	if err := s.users.SetVerified(ctx, user.ID); err != nil {
		return model.AuthResponse{}, err
	}
	user.IsVerified = true
	user.OTP = ""
	user.OTPExpiresAt = nil

	token, err := crypto.GenerateToken(user.ID, user.Email, s.jwtSecret, s.jwtExpiry)
	if err != nil {
		return model.AuthResponse{}, err
	}

	return model.AuthResponse{
		Message: "Email verified successfully",
		Token:   token,
		User:    user.ToResponse(),
	}, nil
}

// Login authenticates a user by email and password. An unknown email, a
// passwordless account and a wrong password all fail the same way, so the
// response carries no account-enumeration signal.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (model.AuthResponse, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.AuthResponse{}, ErrInvalidCredentials
		}
		return model.AuthResponse{}, err
	}

	if !user.IsVerified {
		return model.AuthResponse{}, ErrNotVerified
	}

	if !crypto.VerifyPassword(req.Password, user.PasswordHash) {
		return model.AuthResponse{}, ErrInvalidCredentials
	}

	token, err := crypto.GenerateToken(user.ID, user.Email, s.jwtSecret, s.jwtExpiry)
	if err != nil {
		return model.AuthResponse{}, err
	}

	return model.AuthResponse{
		Message: "Login successful",
		Token:   token,
		User:    user.ToResponse(),
	}, nil
}

// ResendOTP regenerates the verification code for an unverified user.
// Unlike signup, a failed email send is surfaced: the caller asked for this
// exact delivery and nothing else happened.
func (s *AuthService) ResendOTP(ctx context.Context, req model.ResendOTPRequest) error {
	user, err := s.getByEmail(ctx, req.Email)
	if err != nil {
		return err
	}

	if user.IsVerified {
		return ErrAlreadyVerified
	}

	otp, err := crypto.GenerateOTP()
	if err != nil {
		return err
	}

	if err := s.users.SetOTP(ctx, user.ID, otp, s.now().Add(otpTTL)); err != nil {
		return err
	}

	if err := s.mailer.SendOTP(ctx, user.Email, otp); err != nil {
		return fmt.Errorf("%w: %v", ErrOTPDeliveryFailed, err)
	}

	return nil
}

// OAuthLogin resolves a Google profile to a local account: by provider id
// first, then by email (linking the Google identity onto the existing
// account), else by creating a fresh pre-verified user with no password.
func (s *AuthService) OAuthLogin(ctx context.Context, profile GoogleProfile) (model.AuthResponse, error) {
	user, err := s.users.GetByGoogleID(ctx, profile.ID)
	switch {
	case err == nil:
		return s.issueOAuthResponse(user)
	case !errors.Is(err, repository.ErrUserNotFound):
		return model.AuthResponse{}, err
	}

	email := strings.ToLower(strings.TrimSpace(profile.Email))

	user, err = s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if err := s.users.LinkGoogle(ctx, user.ID, profile.ID, profile.Picture); err != nil {
			return model.AuthResponse{}, err
		}
		user.GoogleID = profile.ID
		user.IsVerified = true
		if user.ProfilePicture == "" {
			user.ProfilePicture = profile.Picture
		}
		return s.issueOAuthResponse(user)
	case !errors.Is(err, repository.ErrUserNotFound):
		return model.AuthResponse{}, err
	}

	user = &model.User{
		Email:          email,
		FirstName:      profile.FirstName,
		LastName:       profile.LastName,
		IsVerified:     true,
		GoogleID:       profile.ID,
		ProfilePicture: profile.Picture,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return model.AuthResponse{}, err
	}

	return s.issueOAuthResponse(user)
}

// GetProfile returns the sanitized record for a user id.
func (s *AuthService) GetProfile(ctx context.Context, userID int64) (model.UserResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.UserResponse{}, ErrUserNotFound
		}
		return model.UserResponse{}, err
	}

	return user.ToResponse(), nil
}

func (s *AuthService) issueOAuthResponse(user *model.User) (model.AuthResponse, error) {
	token, err := crypto.GenerateToken(user.ID, user.Email, s.jwtSecret, s.jwtExpiry)
	if err != nil {
		return model.AuthResponse{}, err
	}
	return model.AuthResponse{
		Message: "Login successful",
		Token:   token,
		User:    user.ToResponse(),
	}, nil
}

func (s *AuthService) getByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", ErrEmailInvalid
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "", ErrEmailInvalid
	}
	return email, nil
}
