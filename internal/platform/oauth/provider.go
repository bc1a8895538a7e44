// Package oauth exchanges OAuth authorization codes for verified user
// identities with Google and GitHub.
package oauth

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// Provider exchange errors.
var (
	// ErrExchangeFailed indicates the code-for-token exchange was
	// rejected by the provider.
	ErrExchangeFailed = errors.New("authorization code exchange failed")

	// ErrNoVerifiedEmail indicates the provider returned an identity
	// without a verified email address.
	ErrNoVerifiedEmail = errors.New("no verified email on provider account")
)

// Identity is the provider-verified identity the application trusts
// in place of a password.
type Identity struct {
	// ProviderID is the provider's stable account identifier.
	ProviderID string
	// Email is verified by the provider.
	Email string
	// Name is a display name hint; may be empty.
	Name string
}

// Provider exchanges an OAuth authorization code for a verified
// identity. Implementations must bound the exchange with the context
// deadline.
type Provider interface {
	// Name is the provider's wire name ("google" or "github").
	Name() string

	// Exchange trades an authorization code for the account identity.
	Exchange(ctx context.Context, code string) (*Identity, error)
}

// defaultHTTPTimeout bounds provider HTTP calls when the caller's
// context carries no deadline.
const defaultHTTPTimeout = 10 * time.Second

// newHTTPClient returns the bounded client providers share.
func newHTTPClient() *http.Client {
	return &http.Client{Timeout: defaultHTTPTimeout}
}
