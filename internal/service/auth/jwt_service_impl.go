package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/taskhub/taskhub-api/internal/domain"
)

// Token type discriminators carried in the claims. A session token
// presented to the invitation endpoint (or vice versa) is rejected with
// ErrWrongTokenType.
const (
	tokenTypeSession    = "session"
	tokenTypeInvitation = "invitation"
)

// SessionTokenTTL is how long a session token stays valid.
const SessionTokenTTL = 7 * 24 * time.Hour

// clockSkew is the tolerated drift when verifying time-based claims.
const clockSkew = 30 * time.Second

// sessionClaims is the JWT shape of a session token.
type sessionClaims struct {
	jwt.RegisteredClaims
	Email     string `json:"email"`
	Role      string `json:"role"`
	TokenType string `json:"token_type"`
}

// invitationClaims is the JWT shape of an invitation token. The
// invitation secret rides along so redemption can match the claim
// against the stored invitation row.
type invitationClaims struct {
	jwt.RegisteredClaims
	Email          string `json:"email"`
	OrganizationID string `json:"organization_id"`
	Token          string `json:"invitation_token"`
	Role           string `json:"role"`
	TokenType      string `json:"token_type"`
}

// hmacJWTService implements JWTService with HMAC-SHA256 signing.
type hmacJWTService struct {
	secret []byte
	// timeFunc returns the current time; injectable for tests.
	timeFunc func() time.Time
}

// NewJWTService creates a JWTService signing with HMAC-SHA256 over the
// given secret.
func NewJWTService(secret []byte) (JWTService, error) {
	if len(secret) == 0 {
		return nil, errors.New("JWT secret cannot be empty")
	}
	return &hmacJWTService{
		secret:   secret,
		timeFunc: time.Now,
	}, nil
}

var _ JWTService = (*hmacJWTService)(nil)

// GenerateSession implements JWTService.GenerateSession.
func (s *hmacJWTService) GenerateSession(ctx context.Context, user *domain.User) (string, error) {
	now := s.timeFunc()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(SessionTokenTTL)),
		},
		Email:     user.Email,
		Role:      string(user.Role),
		TokenType: tokenTypeSession,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// ValidateSession implements JWTService.ValidateSession.
func (s *hmacJWTService) ValidateSession(ctx context.Context, tokenString string) (*SessionClaims, error) {
	claims := &sessionClaims{}
	if err := s.parse(tokenString, claims); err != nil {
		return nil, err
	}
	if claims.TokenType != tokenTypeSession {
		return nil, ErrWrongTokenType
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid subject", ErrInvalidToken)
	}

	return &SessionClaims{
		UserID: userID,
		Email:  claims.Email,
		Role:   domain.UserRole(claims.Role),
	}, nil
}

// GenerateInvitation implements JWTService.GenerateInvitation. The
// token's expiry mirrors the invitation row's.
func (s *hmacJWTService) GenerateInvitation(ctx context.Context, inv *domain.Invitation, role domain.OrgRole) (string, error) {
	now := s.timeFunc()
	claims := invitationClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(inv.ExpiresAt),
		},
		Email:          inv.Email,
		OrganizationID: inv.OrganizationID.String(),
		Token:          inv.Token,
		Role:           string(role),
		TokenType:      tokenTypeInvitation,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign invitation token: %w", err)
	}
	return signed, nil
}

// ValidateInvitation implements JWTService.ValidateInvitation.
func (s *hmacJWTService) ValidateInvitation(ctx context.Context, tokenString string) (*InvitationClaims, error) {
	claims := &invitationClaims{}
	if err := s.parse(tokenString, claims); err != nil {
		return nil, err
	}
	if claims.TokenType != tokenTypeInvitation {
		return nil, ErrWrongTokenType
	}

	orgID, err := uuid.Parse(claims.OrganizationID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid organization ID", ErrInvalidToken)
	}
	if claims.Token == "" {
		return nil, fmt.Errorf("%w: missing invitation token", ErrInvalidToken)
	}

	return &InvitationClaims{
		Email:          claims.Email,
		OrganizationID: orgID,
		Token:          claims.Token,
		Role:           domain.OrgRole(claims.Role),
	}, nil
}

// parse verifies the signature and time claims, decoding into claims.
// Only HMAC-SHA256 is accepted as the signing method.
func (s *hmacJWTService) parse(tokenString string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithTimeFunc(s.timeFunc),
		jwt.WithLeeway(clockSkew),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrExpiredToken
		}
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return ErrInvalidToken
	}
	return nil
}
