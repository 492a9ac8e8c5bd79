package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Grimm02938/COCMarket/internal/core/domain"
	"github.com/Grimm02938/COCMarket/internal/core/port"
	appLogger "github.com/Grimm02938/COCMarket/internal/infra/logger"
	"github.com/Grimm02938/COCMarket/internal/infra/security"
	"github.com/Grimm02938/COCMarket/internal/repository"
)

const defaultSessionTTL = 30 * 24 * time.Hour

var (
	// ErrEmailTaken indicates an account already exists for the email.
	ErrEmailTaken = errors.New("email already registered")
	// ErrUsernameTaken indicates the username is already in use.
	ErrUsernameTaken = errors.New("username already taken")
	// ErrInvalidCredentials covers every password login failure so callers
	// cannot probe which emails are registered.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrTokenMissing indicates no session token accompanied the request.
	ErrTokenMissing = errors.New("authentication token missing")
	// ErrTokenInvalid indicates the session token is unknown, revoked or expired.
	ErrTokenInvalid = errors.New("invalid or expired session")
	// ErrAccountNotFound indicates the requested user does not exist.
	ErrAccountNotFound = errors.New("account not found")
	// ErrProviderEmailMissing indicates the social identity carried no email.
	ErrProviderEmailMissing = errors.New("identity provider returned no email")
	// ErrInvalidLocation indicates the location is not a known region.
	ErrInvalidLocation = errors.New("invalid location")
)

// AuthService implements registration, login and session lifecycle.
type AuthService struct {
	users      port.UserRepository
	sessions   port.SessionRepository
	events     port.EventPublisher
	verifier   port.IdentityVerifier
	logger     *zap.Logger
	sessionTTL time.Duration
	now        func() time.Time
}

// AuthOption customizes the auth service.
type AuthOption func(*AuthService)

// WithSessionTTL overrides the default session lifetime.
func WithSessionTTL(ttl time.Duration) AuthOption {
	return func(s *AuthService) {
		if ttl > 0 {
			s.sessionTTL = ttl
		}
	}
}

// WithClock injects a custom clock (primarily for testing).
func WithClock(now func() time.Time) AuthOption {
	return func(s *AuthService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewAuthService constructs the auth service.
func NewAuthService(users port.UserRepository, sessions port.SessionRepository, events port.EventPublisher, verifier port.IdentityVerifier, logger *zap.Logger, opts ...AuthOption) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &AuthService{
		users:      users,
		sessions:   sessions,
		events:     events,
		verifier:   verifier,
		logger:     logger,
		sessionTTL: defaultSessionTTL,
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// AuthResult bundles the authenticated user with their session grant.
type AuthResult struct {
	User      domain.User
	Token     string
	ExpiresAt time.Time
}

// Register creates a password account and opens its first session. An empty
// location defaults to the French region.
func (s *AuthService) Register(ctx context.Context, username, email, password, location string) (AuthResult, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	if username == "" {
		return AuthResult{}, fmt.Errorf("username is required")
	}
	if email == "" {
		return AuthResult{}, fmt.Errorf("email is required")
	}
	if password == "" {
		return AuthResult{}, fmt.Errorf("password is required")
	}

	region := domain.RegionFR
	if trimmed := strings.ToLower(strings.TrimSpace(location)); trimmed != "" {
		region = domain.Region(trimmed)
		if !region.Valid() {
			return AuthResult{}, ErrInvalidLocation
		}
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return AuthResult{}, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return AuthResult{}, fmt.Errorf("lookup email: %w", err)
	}

	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return AuthResult{}, ErrUsernameTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return AuthResult{}, fmt.Errorf("lookup username: %w", err)
	}

	// Weak passwords are accepted but noted; enforcement is a client concern.
	if score := security.PasswordStrength(password, username, email); score < 2 {
		s.logger.Debug("weak password accepted at registration",
			zap.Int("strength_score", score),
		)
	}

	passwordHash, err := security.HashPassword(password)
	if err != nil {
		return AuthResult{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	user := domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Location:     region,
		MemberSince:  now,
		Badges:       []string{},
		AuthProvider: domain.AuthProviderEmail,
	}

	if err := s.users.Create(ctx, user); err != nil {
		// The pre-checks race with concurrent registrations; the unique
		// indexes are the source of truth. Re-check to name the loser.
		if errors.Is(err, repository.ErrConflict) {
			if _, lookupErr := s.users.GetByUsername(ctx, username); lookupErr == nil {
				return AuthResult{}, ErrUsernameTaken
			}
			return AuthResult{}, ErrEmailTaken
		}
		return AuthResult{}, fmt.Errorf("create user: %w", err)
	}

	session, token, err := s.openSession(ctx, user.ID)
	if err != nil {
		return AuthResult{}, err
	}

	s.publishRegistered(ctx, user)

	s.logger.Info("account registered",
		zap.String("user_id", user.ID),
		zap.String("email", appLogger.MaskEmail(user.Email)),
	)

	return AuthResult{User: user.Redacted(), Token: token, ExpiresAt: session.ExpiresAt}, nil
}

// Login verifies a password credential and rotates the user's session.
func (s *AuthService) Login(ctx context.Context, email, password string) (AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return AuthResult{}, ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, fmt.Errorf("lookup email: %w", err)
	}

	// Social accounts carry no password; they cannot log in this way.
	if !user.HasPassword() || !security.VerifyPassword(password, user.PasswordHash) {
		return AuthResult{}, ErrInvalidCredentials
	}

	session, token, err := s.openSession(ctx, user.ID)
	if err != nil {
		return AuthResult{}, err
	}

	return AuthResult{User: user.Redacted(), Token: token, ExpiresAt: session.ExpiresAt}, nil
}

// SocialLogin exchanges a provider identity token for a marketplace session,
// provisioning the account on first sight.
func (s *AuthService) SocialLogin(ctx context.Context, providerToken string) (AuthResult, error) {
	if s.verifier == nil {
		return AuthResult{}, fmt.Errorf("identity verifier not configured")
	}

	identity, err := s.verifier.Verify(ctx, providerToken)
	if err != nil {
		return AuthResult{}, err
	}

	email := strings.ToLower(strings.TrimSpace(identity.Email))
	if email == "" {
		return AuthResult{}, ErrProviderEmailMissing
	}

	user, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrNotFound):
		user, err = s.provisionSocialAccount(ctx, email, identity)
		if err != nil {
			return AuthResult{}, err
		}
	default:
		return AuthResult{}, fmt.Errorf("lookup email: %w", err)
	}

	session, token, err := s.openSession(ctx, user.ID)
	if err != nil {
		return AuthResult{}, err
	}

	return AuthResult{User: user.Redacted(), Token: token, ExpiresAt: session.ExpiresAt}, nil
}

func (s *AuthService) provisionSocialAccount(ctx context.Context, email string, identity port.ProviderIdentity) (*domain.User, error) {
	username, err := s.availableUsername(ctx, email, identity.DisplayName)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	user := domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		Location:     domain.RegionFR,
		MemberSince:  now,
		Badges:       []string{},
		DisplayName:  strings.TrimSpace(identity.DisplayName),
		AuthProvider: identity.Provider,
		IsVerified:   true,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			// Lost a race with a concurrent first login for the same email.
			existing, lookupErr := s.users.GetByEmail(ctx, email)
			if lookupErr == nil {
				return existing, nil
			}
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.publishRegistered(ctx, user)

	s.logger.Info("social account provisioned",
		zap.String("user_id", user.ID),
		zap.String("provider", identity.Provider),
		zap.String("email", appLogger.MaskEmail(user.Email)),
	)

	return &user, nil
}

// availableUsername derives a handle from the display name or the email local
// part, then appends a numeric suffix until it is free.
func (s *AuthService) availableUsername(ctx context.Context, email, displayName string) (string, error) {
	base := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(displayName), " ", ""))
	if base == "" {
		local, _, _ := strings.Cut(email, "@")
		base = strings.ToLower(local)
	}
	if base == "" {
		base = "user"
	}

	candidate := base
	for suffix := 1; ; suffix++ {
		_, err := s.users.GetByUsername(ctx, candidate)
		if errors.Is(err, repository.ErrNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", fmt.Errorf("lookup username: %w", err)
		}
		candidate = fmt.Sprintf("%s%d", base, suffix)
	}
}

// Authenticate resolves a bearer token to its user. The token may carry an
// optional "Bearer " prefix.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	token = stripBearer(token)
	if token == "" {
		return nil, ErrTokenMissing
	}

	session, err := s.sessions.GetActiveByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTokenInvalid
		}
		return nil, fmt.Errorf("lookup session: %w", err)
	}

	if !session.Usable(s.now().UTC()) {
		// Expired sessions are retired lazily, on first use past expiry.
		if session.IsActive {
			if err := s.sessions.Deactivate(ctx, session.ID); err != nil {
				s.logger.Warn("retire expired session failed", zap.String("session_id", session.ID), zap.Error(err))
			}
		}
		return nil, ErrTokenInvalid
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		// A live session pointing at a deleted account.
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	return user, nil
}

// Logout deactivates the session holding the token. A token with no active
// session, including one already logged out, is reported as invalid.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	token = stripBearer(token)
	if token == "" {
		return ErrTokenMissing
	}

	session, err := s.sessions.GetActiveByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTokenInvalid
		}
		return fmt.Errorf("lookup session: %w", err)
	}

	revoked, err := s.sessions.DeactivateByToken(ctx, token)
	if err != nil {
		return fmt.Errorf("deactivate session: %w", err)
	}
	if !revoked {
		return ErrTokenInvalid
	}

	if s.events != nil {
		event := domain.SessionRevokedEvent{
			UserID:          session.UserID,
			SessionsRevoked: 1,
			Reason:          "user_logout",
			RevokedAt:       s.now().UTC(),
		}
		if err := s.events.PublishSessionRevoked(ctx, event); err != nil {
			s.logger.Warn("publish session revoked failed", zap.Error(err))
		}
	}

	return nil
}

// stripBearer trims the token and removes an optional "Bearer " prefix, so
// callers may pass either the raw token or the full Authorization value.
func stripBearer(token string) string {
	token = strings.TrimSpace(token)
	if rest, ok := strings.CutPrefix(token, "Bearer "); ok {
		return strings.TrimSpace(rest)
	}
	return token
}

// openSession rotates the user's sessions: every prior active session is
// deactivated before the fresh one is inserted.
func (s *AuthService) openSession(ctx context.Context, userID string) (domain.Session, string, error) {
	if _, err := s.sessions.DeactivateAllForUser(ctx, userID); err != nil {
		return domain.Session{}, "", fmt.Errorf("deactivate sessions: %w", err)
	}

	token, err := security.GenerateSecureToken(security.SessionTokenBytes)
	if err != nil {
		return domain.Session{}, "", fmt.Errorf("generate session token: %w", err)
	}

	now := s.now().UTC()
	session := domain.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		Token:     token,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL).Truncate(time.Second),
		IsActive:  true,
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return domain.Session{}, "", fmt.Errorf("create session: %w", err)
	}

	s.logger.Debug("session opened",
		zap.String("user_id", userID),
		zap.String("token_hash", security.HashToken(token)),
		zap.Time("expires_at", session.ExpiresAt),
	)

	return session, token, nil
}

func (s *AuthService) publishRegistered(ctx context.Context, user domain.User) {
	if s.events == nil {
		return
	}

	event := domain.UserRegisteredEvent{
		UserID:       user.ID,
		Username:     user.Username,
		Email:        user.Email,
		AuthProvider: user.AuthProvider,
		RegisteredAt: user.MemberSince,
	}
	if err := s.events.PublishUserRegistered(ctx, event); err != nil {
		s.logger.Warn("publish user registered failed", zap.Error(err))
	}
}
