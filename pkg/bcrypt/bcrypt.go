package bcrypt

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	DefaultCost = 10

	// bcrypt ignores input past this many bytes.
	MaxPasswordBytes = 72
)

var (
	ErrPasswordTooLong = errors.New("password is longer than 72 bytes")
	ErrMismatch        = bcrypt.ErrMismatchedHashAndPassword
)

// HashPassword hashes a plain text password.
func HashPassword(password string) (string, error) {
	if len(password) > MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashedBytes), nil
}

// ComparePassword checks a plain text password against its hash. A wrong
// password matches ErrMismatch; a malformed hash returns a different error.
func ComparePassword(hashedPassword, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	if err != nil {
		return fmt.Errorf("password comparison failed: %w", err)
	}
	return nil
}
