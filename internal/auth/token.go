package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"tour-booking/internal/models"

	"github.com/go-jose/go-jose/v3"
	"github.com/go-jose/go-jose/v3/jwt"
	"github.com/google/uuid"
)

const (
	// TokenTTL is how long an issued token stays valid.
	TokenTTL = time.Hour
	// MinSecretLength is the smallest accepted HS256 signing secret, in bytes.
	MinSecretLength = 32
	// DefaultIssuer is the iss claim used when no issuer is configured.
	DefaultIssuer = "tour-booking"
)

var (
	// ErrInvalidToken is returned for malformed, forged or expired tokens.
	ErrInvalidToken = errors.New("invalid token")
	// ErrMissingSecret is returned when the signing secret is absent or too short.
	ErrMissingSecret = fmt.Errorf("signing secret must be at least %d bytes", MinSecretLength)
)

// Claims is the verified content of a token.
type Claims struct {
	SubjectID string
	Role      models.Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type roleClaim struct {
	Role models.Role `json:"role"`
}

// TokenService issues and verifies HS256-signed identity tokens.
type TokenService struct {
	secret []byte
	issuer string
	now    func() time.Time
	signer jose.Signer
}

// TokenOption configures a TokenService.
type TokenOption func(*TokenService)

// WithIssuer sets the iss claim written and expected by the service.
func WithIssuer(issuer string) TokenOption {
	return func(s *TokenService) {
		if issuer != "" {
			s.issuer = issuer
		}
	}
}

// WithClock replaces the time source.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) { s.now = now }
}

// NewTokenService creates a TokenService signing with secret.
func NewTokenService(secret string, opts ...TokenOption) (*TokenService, error) {
	if len(secret) < MinSecretLength {
		return nil, ErrMissingSecret
	}

	s := &TokenService{
		secret: []byte(secret),
		issuer: DefaultIssuer,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	signer, err := jose.NewSigner(
		jose.SigningKey{Algorithm: jose.HS256, Key: s.secret},
		(&jose.SignerOptions{}).WithType("JWT"),
	)
	if err != nil {
		return nil, fmt.Errorf("create signer: %w", err)
	}
	s.signer = signer
	return s, nil
}

// Issue signs a token for subjectID that expires TokenTTL from now.
func (s *TokenService) Issue(subjectID string, role models.Role) (string, error) {
	now := s.now()
	std := jwt.Claims{
		ID:       uuid.NewString(),
		Issuer:   s.issuer,
		Subject:  subjectID,
		IssuedAt: jwt.NewNumericDate(now),
		Expiry:   jwt.NewNumericDate(now.Add(TokenTTL)),
	}

	token, err := jwt.Signed(s.signer).Claims(std).Claims(roleClaim{Role: role}).CompactSerialize()
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// Verify checks the signature, issuer and lifetime of token.
// A token is expired from the instant its expiry is reached.
func (s *TokenService) Verify(token string) (*Claims, error) {
	parsed, err := jwt.ParseSigned(strings.TrimSpace(token))
	if err != nil {
		return nil, ErrInvalidToken
	}
	if len(parsed.Headers) != 1 || parsed.Headers[0].Algorithm != string(jose.HS256) {
		return nil, ErrInvalidToken
	}

	var std jwt.Claims
	var custom roleClaim
	if err := parsed.Claims(s.secret, &std, &custom); err != nil {
		return nil, ErrInvalidToken
	}

	now := s.now()
	if std.Expiry == nil || !now.Before(std.Expiry.Time()) {
		return nil, ErrInvalidToken
	}
	if err := std.ValidateWithLeeway(jwt.Expected{Issuer: s.issuer, Time: now}, 0); err != nil {
		return nil, ErrInvalidToken
	}
	if std.Subject == "" {
		return nil, ErrInvalidToken
	}

	claims := &Claims{
		SubjectID: std.Subject,
		Role:      custom.Role,
		ExpiresAt: std.Expiry.Time(),
	}
	if std.IssuedAt != nil {
		claims.IssuedAt = std.IssuedAt.Time()
	}
	return claims, nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", false
	}
	return token, true
}
