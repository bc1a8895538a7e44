package mocks

import (
	"context"

	"github.com/taskhub/taskhub-api/internal/platform/oauth"
)

// OAuthProvider is a scripted oauth.Provider: each known code maps to
// an identity, anything else fails the exchange.
type OAuthProvider struct {
	ProviderName string
	Identities   map[string]*oauth.Identity
	ExchangeErr  error
}

// NewOAuthProvider creates a scripted provider with the given name.
func NewOAuthProvider(name string) *OAuthProvider {
	return &OAuthProvider{
		ProviderName: name,
		Identities:   make(map[string]*oauth.Identity),
	}
}

var _ oauth.Provider = (*OAuthProvider)(nil)

func (p *OAuthProvider) Name() string { return p.ProviderName }

func (p *OAuthProvider) Exchange(ctx context.Context, code string) (*oauth.Identity, error) {
	if p.ExchangeErr != nil {
		return nil, p.ExchangeErr
	}
	identity, ok := p.Identities[code]
	if !ok {
		return nil, oauth.ErrExchangeFailed
	}
	copied := *identity
	return &copied, nil
}
