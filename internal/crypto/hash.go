package crypto

import (
	"golang.org/x/crypto/bcrypt"
)

// bcryptCost matches the work factor used when the user table was first
// populated; changing it only affects newly hashed passwords.
const bcryptCost = 12

// HashPassword hashes a password with bcrypt.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether the password matches the bcrypt hash.
// A malformed or empty hash simply fails to match.
func VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
