package model

import "time"

// User represents a user in the database. PasswordHash is empty for accounts
// created through Google sign-in; GoogleID is empty for password accounts.
type User struct {
	ID             int64
	Email          string
	PasswordHash   string
	FirstName      string
	LastName       string
	IsVerified     bool
	OTP            string
	OTPExpiresAt   *time.Time
	GoogleID       string
	ProfilePicture string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ToResponse converts a User to its API representation. The password hash
// and any pending OTP never leave this process; the response type has no
// fields for them.
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:             u.ID,
		Email:          u.Email,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		IsVerified:     u.IsVerified,
		ProfilePicture: u.ProfilePicture,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

// UserResponse represents user data safe for API responses.
type UserResponse struct {
	ID             int64     `json:"id"`
	Email          string    `json:"email"`
	FirstName      string    `json:"firstName"`
	LastName       string    `json:"lastName"`
	IsVerified     bool      `json:"isVerified"`
	ProfilePicture string    `json:"profilePicture,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// SignupRequest represents a user registration request.
type SignupRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// SignupResponse acknowledges a registration and tells the caller to check
// their inbox for the verification code.
type SignupResponse struct {
	Message string `json:"message"`
	UserID  int64  `json:"userId"`
}

// VerifyOTPRequest represents an email verification request.
type VerifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ResendOTPRequest represents a request for a fresh verification code.
type ResendOTPRequest struct {
	Email string `json:"email"`
}

// AuthResponse represents an authentication response with a JWT token and
// the sanitized user.
type AuthResponse struct {
	Message string       `json:"message"`
	Token   string       `json:"token"`
	User    UserResponse `json:"user"`
}
