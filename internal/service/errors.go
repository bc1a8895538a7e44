// Package service implements the application's use cases on top of the
// store interfaces.
package service

import "errors"

var (
	// ErrInvalidInvitation covers every way an invitation claim can fail
	// redemption for reasons the recipient cannot distinguish: bad
	// signature, expired, token/email/organization mismatch, or already
	// redeemed.
	ErrInvalidInvitation = errors.New("invitation is invalid or expired")

	// ErrInviterNotAdmin indicates the inviter no longer holds admin
	// rights in the organization, so the invitation is void.
	ErrInviterNotAdmin = errors.New("inviter no longer administers the organization")

	// ErrUnregisteredEmail indicates no registered account matches the
	// invited email; the recipient must register first.
	ErrUnregisteredEmail = errors.New("no registered user with the invited email")

	// ErrAlreadyMember indicates the user already belongs to the
	// organization.
	ErrAlreadyMember = errors.New("user is already a member of the organization")

	// ErrProviderMismatch indicates an OAuth sign-in whose email belongs
	// to an account created through a different provider or with a
	// password. Accounts are never linked implicitly.
	ErrProviderMismatch = errors.New("email is registered under a different sign-in method")

	// ErrSetupChoice indicates an unknown account setup choice.
	ErrSetupChoice = errors.New("setup choice must be \"organization\" or \"personal\"")

	// ErrUnknownProvider indicates an OAuth provider name the server is
	// not configured for.
	ErrUnknownProvider = errors.New("unknown OAuth provider")
)
