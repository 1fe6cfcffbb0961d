package auth

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength matches the validate tag on RegisterRequest
const MinPasswordLength = 6

// bcrypt only looks at the first 72 bytes
const maxPasswordBytes = 72

var ErrWeakPassword = fmt.Errorf("password must be at least %d characters and at most %d bytes", MinPasswordLength, maxPasswordBytes)

// bcryptCost is a var so tests can lower it
var bcryptCost = 12

// HashPassword hashes a shop owner's password, refusing ones bcrypt would truncate
func HashPassword(password string) (string, error) {
	if utf8.RuneCountInString(password) < MinPasswordLength || len(password) > maxPasswordBytes {
		return "", ErrWeakPassword
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// VerifyPassword reports ErrInvalidCredentials for any mismatch or unreadable hash
func VerifyPassword(hashedPassword, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return ErrInvalidCredentials
	default:
		return fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}
}
