// Package auth provides authentication primitives: JWT issuing and
// verification, and password hashing.
package auth

import "errors"

var (
	// ErrInvalidToken indicates the token is malformed, has a bad
	// signature, or carries claims of the wrong shape.
	ErrInvalidToken = errors.New("invalid token")

	// ErrExpiredToken indicates the token's expiry has passed.
	ErrExpiredToken = errors.New("token expired")

	// ErrWrongTokenType indicates a token of one kind was presented
	// where another was required (e.g. a session token on the
	// invitation redemption endpoint).
	ErrWrongTokenType = errors.New("wrong token type")

	// ErrInvalidCredentials indicates an email/password pair that does
	// not match a stored account.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrOAuthOnlyAccount indicates a password login attempt against an
	// account created through an OAuth provider.
	ErrOAuthOnlyAccount = errors.New("account has no password; use the original sign-in provider")

	// ErrEmptyPassword indicates an empty password was supplied for
	// hashing or comparison.
	ErrEmptyPassword = errors.New("password cannot be empty")
)
