package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/notehub/notehub-go/internal/model"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

// stringOrNil maps empty strings to SQL NULL the way the schema stores them.
func stringOrNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func userRows(u *model.User) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id", "email", "password_hash", "first_name", "last_name", "is_verified",
		"otp", "otp_expires_at", "google_id", "profile_picture", "created_at", "updated_at",
	})
	var otpExpires any
	if u.OTPExpiresAt != nil {
		otpExpires = *u.OTPExpiresAt
	}
	rows.AddRow(u.ID, u.Email, stringOrNil(u.PasswordHash), u.FirstName, u.LastName, u.IsVerified,
		stringOrNil(u.OTP), otpExpires, stringOrNil(u.GoogleID),
		stringOrNil(u.ProfilePicture), u.CreatedAt, u.UpdatedAt)
	return rows
}

func TestUserCreateSetsID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO users`)).
		WithArgs("test@example.com", "$2a$12$hash", "Test", "User", false,
			"123456", sqlmock.AnyArg(), nil, nil).
		WillReturnResult(sqlmock.NewResult(7, 1))

	expires := time.Now().Add(10 * time.Minute)
	user := &model.User{
		Email:        "test@example.com",
		PasswordHash: "$2a$12$hash",
		FirstName:    "Test",
		LastName:     "User",
		OTP:          "123456",
		OTPExpiresAt: &expires,
	}

	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("Create() unexpected error: %v", err)
	}
	if user.ID != 7 {
		t.Errorf("Create() ID = %d, want 7", user.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestUserCreateDuplicateEmail(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO users`)).
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry 'test@example.com' for key 'users.email'"))

	err := repo.Create(context.Background(), &model.User{Email: "test@example.com"})
	if !errors.Is(err, ErrDuplicateEmail) {
		t.Errorf("Create() error = %v, want ErrDuplicateEmail", err)
	}
}

func TestUserGetByEmailNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT ` + userColumns + ` FROM users WHERE email = ?`)).
		WithArgs("missing@example.com").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByEmail(context.Background(), "missing@example.com")
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("GetByEmail() error = %v, want ErrUserNotFound", err)
	}
}

func TestUserGetByIDScansNullableFields(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	stored := &model.User{
		ID:        3,
		Email:     "oauth@example.com",
		FirstName: "OAuth",
		LastName:  "Only",
		IsVerified: true,
		GoogleID:   "google-sub-123",
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT ` + userColumns + ` FROM users WHERE id = ?`)).
		WithArgs(int64(3)).
		WillReturnRows(userRows(stored))

	user, err := repo.GetByID(context.Background(), 3)
	if err != nil {
		t.Fatalf("GetByID() unexpected error: %v", err)
	}
	if user.PasswordHash != "" {
		t.Errorf("GetByID() PasswordHash = %q, want empty for OAuth-only account", user.PasswordHash)
	}
	if user.OTPExpiresAt != nil {
		t.Errorf("GetByID() OTPExpiresAt = %v, want nil", user.OTPExpiresAt)
	}
	if user.GoogleID != "google-sub-123" {
		t.Errorf("GetByID() GoogleID = %q, want %q", user.GoogleID, "google-sub-123")
	}
}

func TestUserSetVerifiedClearsOTP(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET is_verified = TRUE, otp = NULL, otp_expires_at = NULL WHERE id = ?`)).
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.SetVerified(context.Background(), 5); err != nil {
		t.Fatalf("SetVerified() unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestUserSetOTPMissingUser(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET otp = ?, otp_expires_at = ? WHERE id = ?`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SetOTP(context.Background(), 99, "654321", time.Now().Add(10*time.Minute))
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("SetOTP() error = %v, want ErrUserNotFound", err)
	}
}

func TestUserLinkGoogle(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET google_id = ?, is_verified = TRUE, profile_picture = COALESCE(profile_picture, NULLIF(?, '')) WHERE id = ?`)).
		WithArgs("google-sub-123", "https://example.com/pic.png", int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.LinkGoogle(context.Background(), 5, "google-sub-123", "https://example.com/pic.png"); err != nil {
		t.Fatalf("LinkGoogle() unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
