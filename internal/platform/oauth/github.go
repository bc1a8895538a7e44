package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// GitHub endpoint defaults. Overridable for tests.
const (
	githubTokenURL  = "https://github.com/login/oauth/access_token"
	githubUserURL   = "https://api.github.com/user"
	githubEmailsURL = "https://api.github.com/user/emails"
)

// GitHubConfig holds the GitHub OAuth application credentials.
type GitHubConfig struct {
	ClientID     string
	ClientSecret string
}

// GitHubProvider implements Provider for GitHub OAuth.
type GitHubProvider struct {
	cfg       GitHubConfig
	client    *http.Client
	tokenURL  string
	userURL   string
	emailsURL string
}

// NewGitHubProvider creates a GitHub OAuth provider.
func NewGitHubProvider(cfg GitHubConfig) *GitHubProvider {
	return &GitHubProvider{
		cfg:       cfg,
		client:    newHTTPClient(),
		tokenURL:  githubTokenURL,
		userURL:   githubUserURL,
		emailsURL: githubEmailsURL,
	}
}

var _ Provider = (*GitHubProvider)(nil)

// Name implements Provider.Name.
func (p *GitHubProvider) Name() string { return "github" }

// Exchange implements Provider.Exchange. GitHub profiles may hide the
// email, so /user/emails is consulted when the profile carries none;
// only the primary verified address is accepted.
func (p *GitHubProvider) Exchange(ctx context.Context, code string) (*Identity, error) {
	form := url.Values{
		"code":          {code},
		"client_id":     {p.cfg.ClientID},
		"client_secret": {p.cfg.ClientSecret},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token request failed: %w", err)
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: token endpoint returned %d", ErrExchangeFailed, resp.StatusCode)
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
		Error       string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}
	if tokenResp.Error != "" || tokenResp.AccessToken == "" {
		return nil, fmt.Errorf("%w: %s", ErrExchangeFailed, tokenResp.Error)
	}

	return p.fetchIdentity(ctx, tokenResp.AccessToken)
}

func (p *GitHubProvider) fetchIdentity(ctx context.Context, accessToken string) (*Identity, error) {
	var profile struct {
		ID    int64  `json:"id"`
		Login string `json:"login"`
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := p.getJSON(ctx, p.userURL, accessToken, &profile); err != nil {
		return nil, err
	}

	email := profile.Email
	if email == "" {
		primary, err := p.primaryVerifiedEmail(ctx, accessToken)
		if err != nil {
			return nil, err
		}
		email = primary
	}

	name := profile.Name
	if name == "" {
		name = profile.Login
	}

	return &Identity{
		ProviderID: strconv.FormatInt(profile.ID, 10),
		Email:      email,
		Name:       name,
	}, nil
}

func (p *GitHubProvider) primaryVerifiedEmail(ctx context.Context, accessToken string) (string, error) {
	var emails []struct {
		Email    string `json:"email"`
		Primary  bool   `json:"primary"`
		Verified bool   `json:"verified"`
	}
	if err := p.getJSON(ctx, p.emailsURL, accessToken, &emails); err != nil {
		return "", err
	}

	for _, e := range emails {
		if e.Primary && e.Verified {
			return e.Email, nil
		}
	}
	return "", ErrNoVerifiedEmail
}

func (p *GitHubProvider) getJSON(ctx context.Context, endpoint, accessToken string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s returned %d", ErrExchangeFailed, endpoint, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
