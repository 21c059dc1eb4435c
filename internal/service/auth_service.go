package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/vikram-2101/Advance-Task-Manager-App/internal/apperr"
	"github.com/vikram-2101/Advance-Task-Manager-App/internal/auth"
	dom "github.com/vikram-2101/Advance-Task-Manager-App/internal/domain"
	"github.com/vikram-2101/Advance-Task-Manager-App/internal/repo"
	"github.com/vikram-2101/Advance-Task-Manager-App/internal/utils"
)

// RefreshTokens tracks the currently valid refresh token per user so a
// rotated-out token cannot be replayed.
type RefreshTokens interface {
	Save(ctx context.Context, userID, token string) error
	Valid(ctx context.Context, userID, token string) (bool, error)
	Revoke(ctx context.Context, userID string) error
}

// TokenPair is an access token and its companion refresh token.
type TokenPair struct {
	Access  string
	Refresh string
}

// AuthService handles registration, login with account lockout, token
// refresh and profile lookup.
type AuthService struct {
	users   repo.UserRepo
	audit   repo.AuditRepo
	tokens  *auth.TokenService
	refresh RefreshTokens
	log     *logrus.Entry

	bcryptCost  int
	maxAttempts int
	lockFor     time.Duration
	now         func() time.Time
}

// NewAuthService returns a new AuthService.
func NewAuthService(users repo.UserRepo, audit repo.AuditRepo, tokens *auth.TokenService,
	refresh RefreshTokens, log *logrus.Entry, bcryptCost, maxAttempts int, lockFor time.Duration) *AuthService {
	return &AuthService{
		users:       users,
		audit:       audit,
		tokens:      tokens,
		refresh:     refresh,
		log:         log,
		bcryptCost:  bcryptCost,
		maxAttempts: maxAttempts,
		lockFor:     lockFor,
		now:         time.Now,
	}
}

// Register creates a user with a bcrypt-hashed password and issues the
// first token pair. Duplicate emails fail with 409.
func (s *AuthService) Register(ctx context.Context, email, name, password string) (dom.User, TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return dom.User{}, TokenPair{}, err
	}
	u, err := s.users.Create(ctx, dom.User{
		ID:           dom.NewID(),
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: string(hash),
		Role:         dom.RoleUser,
		IsActive:     true,
	})
	if err != nil {
		if utils.IsPGUniqueViolation(err) {
			return dom.User{}, TokenPair{}, apperr.Conflict("User with this email already exists")
		}
		return dom.User{}, TokenPair{}, err
	}

	if err := s.audit.Append(ctx, dom.AuditEntry{
		ID:         dom.NewID(),
		Action:     dom.ActionCreate,
		EntityType: dom.EntityUser,
		EntityID:   u.ID,
		UserID:     u.ID,
		Metadata:   map[string]any{"email": email},
	}); err != nil {
		return dom.User{}, TokenPair{}, err
	}

	pair, err := s.issuePair(ctx, u)
	if err != nil {
		return dom.User{}, TokenPair{}, err
	}
	s.log.WithFields(logrus.Fields{"user_id": u.ID, "email": email}).Info("user registered")
	return u, pair, nil
}

// Login validates credentials. Failed attempts count toward the lockout
// threshold; while locked even the correct password is rejected with 423.
func (s *AuthService) Login(ctx context.Context, email, password string) (dom.User, TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.User{}, TokenPair{}, apperr.Unauthorized("Invalid email or password")
		}
		return dom.User{}, TokenPair{}, err
	}
	if !u.IsActive {
		return dom.User{}, TokenPair{}, apperr.Unauthorized("Invalid email or password")
	}
	if u.IsLocked(s.now()) {
		s.log.WithField("user_id", u.ID).Warn("login attempt on locked account")
		return dom.User{}, TokenPair{}, apperr.Locked(
			"Account is locked due to too many failed login attempts. Please try again later.")
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		if err := s.recordFailedLogin(ctx, u); err != nil {
			return dom.User{}, TokenPair{}, err
		}
		return dom.User{}, TokenPair{}, apperr.Unauthorized("Invalid email or password")
	}

	// Any successful login clears the counter and the lock.
	if u.LoginAttempts > 0 || u.LockUntil != nil {
		if err := s.users.SetLoginState(ctx, u.ID, 0, nil); err != nil {
			return dom.User{}, TokenPair{}, err
		}
		u.LoginAttempts = 0
		u.LockUntil = nil
	}

	if err := s.audit.Append(ctx, dom.AuditEntry{
		ID:         dom.NewID(),
		Action:     dom.ActionLogin,
		EntityType: dom.EntityUser,
		EntityID:   u.ID,
		UserID:     u.ID,
	}); err != nil {
		return dom.User{}, TokenPair{}, err
	}

	pair, err := s.issuePair(ctx, u)
	if err != nil {
		return dom.User{}, TokenPair{}, err
	}
	s.log.WithFields(logrus.Fields{"user_id": u.ID, "email": email}).Info("user logged in")
	return u, pair, nil
}

// Refresh validates and rotates the refresh token, reloading the user. A
// stale (already rotated) token, or a missing or inactive user, fails with 401.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	claims, err := s.tokens.Verify(refreshToken, auth.KindRefresh)
	if err != nil {
		return TokenPair{}, apperr.Unauthorized("Invalid or expired refresh token").WithCause(err)
	}
	ok, err := s.refresh.Valid(ctx, claims.UserID, refreshToken)
	if err != nil {
		return TokenPair{}, err
	}
	if !ok {
		return TokenPair{}, apperr.Unauthorized("Invalid or expired refresh token")
	}

	u, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return TokenPair{}, apperr.Unauthorized("User not found or inactive")
		}
		return TokenPair{}, err
	}
	if !u.IsActive {
		return TokenPair{}, apperr.Unauthorized("User not found or inactive")
	}
	return s.issuePair(ctx, u)
}

// Profile returns the user for a verified access token.
func (s *AuthService) Profile(ctx context.Context, userID string) (dom.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.User{}, apperr.NotFound("User not found")
		}
		return dom.User{}, err
	}
	return u, nil
}

// recordFailedLogin bumps the counter; hitting the threshold sets the lock
// and resets the counter.
func (s *AuthService) recordFailedLogin(ctx context.Context, u dom.User) error {
	attempts := u.LoginAttempts + 1
	var lockUntil *time.Time
	if attempts >= s.maxAttempts {
		t := s.now().Add(s.lockFor)
		lockUntil = &t
		attempts = 0
	}
	if err := s.users.SetLoginState(ctx, u.ID, attempts, lockUntil); err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{"user_id": u.ID, "attempts": u.LoginAttempts + 1}).Warn("failed login attempt")
	return s.audit.Append(ctx, dom.AuditEntry{
		ID:         dom.NewID(),
		Action:     dom.ActionLoginFailure,
		EntityType: dom.EntityUser,
		EntityID:   u.ID,
		UserID:     u.ID,
	})
}

// issuePair mints both tokens and records the refresh token as the single
// valid one for the user (rotation).
func (s *AuthService) issuePair(ctx context.Context, u dom.User) (TokenPair, error) {
	access, err := s.tokens.IssueAccessToken(u.ID, u.Role)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.tokens.IssueRefreshToken(u.ID)
	if err != nil {
		return TokenPair{}, err
	}
	if err := s.refresh.Save(ctx, u.ID, refresh); err != nil {
		return TokenPair{}, err
	}
	return TokenPair{Access: access, Refresh: refresh}, nil
}
