package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/notehub/notehub-go/internal/model"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already exists")
)

const userColumns = `id, email, password_hash, first_name, last_name, is_verified, otp, otp_expires_at, google_id, profile_picture, created_at, updated_at`

// UserRepository handles user persistence operations.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user and sets the generated ID on the user struct.
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	query := `INSERT INTO users (email, password_hash, first_name, last_name, is_verified, otp, otp_expires_at, google_id, profile_picture) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query,
		user.Email,
		nullString(user.PasswordHash),
		user.FirstName,
		user.LastName,
		user.IsVerified,
		nullString(user.OTP),
		nullTime(user.OTPExpiresAt),
		nullString(user.GoogleID),
		nullString(user.ProfilePicture),
	)
	if err != nil {
		if isDuplicateEntryError(err) {
			return ErrDuplicateEmail
		}
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}

	user.ID = id
	return nil
}

// GetByEmail retrieves a user by their email address.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = ?`
	return r.getOne(ctx, query, email)
}

// GetByID retrieves a user by their ID.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	return r.getOne(ctx, query, id)
}

// GetByGoogleID retrieves a user by their linked Google account id.
func (r *UserRepository) GetByGoogleID(ctx context.Context, googleID string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE google_id = ?`
	return r.getOne(ctx, query, googleID)
}

// SetVerified marks a user as verified and clears any pending OTP. Both
// fields change in one statement so a verified user can never retain a code.
func (r *UserRepository) SetVerified(ctx context.Context, id int64) error {
	query := `UPDATE users SET is_verified = TRUE, otp = NULL, otp_expires_at = NULL WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

// SetOTP stores a fresh verification code and its expiry on a user.
func (r *UserRepository) SetOTP(ctx context.Context, id int64, otp string, expiresAt time.Time) error {
	query := `UPDATE users SET otp = ?, otp_expires_at = ? WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, otp, expiresAt, id)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

// LinkGoogle attaches a Google identity to an existing account and forces it
// verified; control of the mailbox was proven by the provider. The profile
// picture is only filled in when the account has none.
func (r *UserRepository) LinkGoogle(ctx context.Context, id int64, googleID, picture string) error {
	query := `UPDATE users SET google_id = ?, is_verified = TRUE, profile_picture = COALESCE(profile_picture, NULLIF(?, '')) WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, googleID, picture, id)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg any) (*model.User, error) {
	var (
		user         model.User
		passwordHash sql.NullString
		otp          sql.NullString
		otpExpiresAt sql.NullTime
		googleID     sql.NullString
		picture      sql.NullString
	)

	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID, &user.Email, &passwordHash, &user.FirstName, &user.LastName,
		&user.IsVerified, &otp, &otpExpiresAt, &googleID, &picture,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	user.PasswordHash = passwordHash.String
	user.OTP = otp.String
	if otpExpiresAt.Valid {
		t := otpExpiresAt.Time
		user.OTPExpiresAt = &t
	}
	user.GoogleID = googleID.String
	user.ProfilePicture = picture.String

	return &user, nil
}

func requireAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// isDuplicateEntryError checks if a MySQL error is a duplicate entry error (code 1062).
func isDuplicateEntryError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "Duplicate entry")
}
