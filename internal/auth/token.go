package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/vikram-2101/Advance-Task-Manager-App/internal/apperr"
	"github.com/vikram-2101/Advance-Task-Manager-App/internal/domain"
)

// Kind selects which signing secret a token is issued and verified with.
type Kind int

const (
	KindAccess Kind = iota
	KindRefresh
)

// Claims is the decoded payload of a verified token.
type Claims struct {
	UserID string
	Role   domain.Role
}

type jwtClaims struct {
	UserID string `json:"userId"`
	Role   string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies access and refresh JWTs. The two kinds
// use distinct secrets, so a refresh token can never pass as an access token.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

// NewTokenService returns a TokenService with the given secrets and expiries.
func NewTokenService(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *TokenService {
	return &TokenService{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}
}

// RefreshTTL returns the refresh token lifetime.
func (s *TokenService) RefreshTTL() time.Duration { return s.refreshTTL }

// IssueAccessToken signs a short-lived token carrying userId and role.
func (s *TokenService) IssueAccessToken(userID string, role domain.Role) (string, error) {
	return s.sign(s.accessSecret, s.accessTTL, jwtClaims{UserID: userID, Role: string(role)})
}

// IssueRefreshToken signs a long-lived token carrying only userId.
func (s *TokenService) IssueRefreshToken(userID string) (string, error) {
	return s.sign(s.refreshSecret, s.refreshTTL, jwtClaims{UserID: userID})
}

func (s *TokenService) sign(secret []byte, ttl time.Duration, claims jwtClaims) (string, error) {
	now := s.now()
	// A fresh jti makes every token unique even within one second, so
	// rotation can tell the new refresh token from the one it replaces.
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ID:        domain.NewID(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// Verify decodes token with the secret for kind. Expired tokens fail with
// ExpiredToken, everything else malformed with InvalidToken.
func (s *TokenService) Verify(token string, kind Kind) (Claims, error) {
	secret := s.accessSecret
	if kind == KindRefresh {
		secret = s.refreshSecret
	}
	var claims jwtClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, apperr.ExpiredToken().WithCause(err)
		}
		return Claims{}, apperr.InvalidToken().WithCause(err)
	}
	if claims.UserID == "" {
		return Claims{}, apperr.InvalidToken()
	}
	return Claims{UserID: claims.UserID, Role: domain.Role(claims.Role)}, nil
}
