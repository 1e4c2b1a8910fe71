package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"tour-booking/internal/apperr"
	"tour-booking/internal/auth"
	"tour-booking/internal/models"
	"tour-booking/internal/storage"
)

// bcrypt ignores input past this length.
const maxPasswordBytes = 72

// RegisterInput is the payload of a registration.
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token string           `json:"token"`
	User  *models.Identity `json:"user"`
}

// AuthService registers accounts, issues tokens and resolves bearer tokens to identities.
type AuthService struct {
	users  UserStore
	tokens *auth.TokenService
	logger *slog.Logger
	rec    Recorder
	now    func() time.Time
}

// NewAuthService creates an AuthService.
func NewAuthService(users UserStore, tokens *auth.TokenService, logger *slog.Logger, rec Recorder) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		logger: resolveLogger(logger),
		rec:    resolveRecorder(rec),
		now:    time.Now,
	}
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a user account. The requested role is clamped to user or admin.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	name := strings.TrimSpace(in.Name)
	email := NormalizeEmail(in.Email)
	if name == "" || email == "" || in.Password == "" {
		return nil, apperr.Validation("Please provide name, email, and password")
	}
	if len(in.Password) > maxPasswordBytes {
		return nil, apperr.Validation("Password must be at most 72 bytes")
	}

	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return nil, apperr.Validation("User with this email already exists")
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.Internal(err)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	u := &models.User{
		ID:           models.NewID(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         models.ClampRole(in.Role),
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		if errors.Is(err, storage.ErrDuplicateEmail) {
			return nil, apperr.Validation("User with this email already exists")
		}
		return nil, apperr.Internal(err)
	}

	s.logger.Info("user registered", "event", "user_registered", "user_id", u.ID, "role", u.Role)
	return u, nil
}

// Login checks credentials and issues a token.
// Unknown email and wrong password fail identically.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperr.Validation("Please provide email and password")
	}

	u, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.rec.LoginAttempt(false)
			return nil, apperr.Validation("Invalid email or password")
		}
		return nil, apperr.Internal(err)
	}
	if !auth.CheckPassword(password, u.PasswordHash) {
		s.rec.LoginAttempt(false)
		return nil, apperr.Validation("Invalid email or password")
	}

	token, err := s.tokens.Issue(u.ID, u.Role)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	s.rec.LoginAttempt(true)
	s.logger.Debug("user logged in", "event", "user_logged_in", "user_id", u.ID)
	return &LoginResult{Token: token, User: models.IdentityOf(u)}, nil
}

// Authenticate is the auth gate. It resolves an Authorization header value to
// the identity currently stored for the token's subject.
func (s *AuthService) Authenticate(ctx context.Context, header string) (*models.Identity, error) {
	raw, ok := auth.BearerToken(header)
	if !ok {
		s.rec.AuthRejected("missing_token")
		return nil, apperr.Unauthenticated("No token provided")
	}

	claims, err := s.tokens.Verify(raw)
	if err != nil {
		s.rec.AuthRejected("invalid_token")
		return nil, apperr.Unauthenticated("Token is invalid or expired")
	}

	// The store, not the token, is authoritative for the role.
	u, err := s.users.GetUserByID(ctx, claims.SubjectID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.rec.AuthRejected("unknown_subject")
			return nil, apperr.Unauthenticated("User no longer exists")
		}
		return nil, apperr.Internal(err)
	}
	return models.IdentityOf(u), nil
}

// EnsureAdmin creates an admin account for email unless one is already registered.
func (s *AuthService) EnsureAdmin(ctx context.Context, name, email, password string) (bool, error) {
	if name == "" {
		name = "Administrator"
	}

	_, err := s.users.GetUserByEmail(ctx, NormalizeEmail(email))
	switch {
	case err == nil:
		return false, nil
	case !errors.Is(err, storage.ErrNotFound):
		return false, apperr.Internal(err)
	}

	if _, err := s.Register(ctx, RegisterInput{
		Name:     name,
		Email:    email,
		Password: password,
		Role:     string(models.RoleAdmin),
	}); err != nil {
		return false, err
	}
	return true, nil
}
