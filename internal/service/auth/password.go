package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is the work factor used when hashing passwords.
const BcryptCost = 10

// PasswordVerifier checks a plaintext password against a stored hash.
type PasswordVerifier interface {
	Compare(ctx context.Context, hashedPassword, password string) error
}

// PasswordHasher hashes plaintext passwords for storage.
type PasswordHasher interface {
	PasswordVerifier
	Hash(ctx context.Context, password string) (string, error)
}

// bcryptHasher implements PasswordHasher with bcrypt.
type bcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a PasswordHasher using bcrypt at the given
// cost. A non-positive cost falls back to BcryptCost.
func NewBcryptHasher(cost int) PasswordHasher {
	if cost <= 0 {
		cost = BcryptCost
	}
	return &bcryptHasher{cost: cost}
}

var _ PasswordHasher = (*bcryptHasher)(nil)

// Hash implements PasswordHasher.Hash.
func (h *bcryptHasher) Hash(ctx context.Context, password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Compare implements PasswordVerifier.Compare. A mismatch is reported
// as ErrInvalidCredentials so callers never leak which part of the
// credential pair was wrong.
func (h *bcryptHasher) Compare(ctx context.Context, hashedPassword, password string) error {
	if password == "" {
		return ErrEmptyPassword
	}

	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrInvalidCredentials
		}
		return fmt.Errorf("failed to compare password: %w", err)
	}
	return nil
}
