package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/redis/go-redis/v9"
)

const refreshKeyPrefix = "refresh:"

// RefreshStore tracks the single currently valid refresh token per user in
// Redis, so a rotated-out token cannot be replayed. Only a SHA-256 of the
// token is stored.
type RefreshStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRefreshStore returns a RefreshStore whose entries expire with the
// refresh token lifetime.
func NewRefreshStore(rdb *redis.Client, ttl time.Duration) *RefreshStore {
	return &RefreshStore{rdb: rdb, ttl: ttl}
}

// Save records token as the valid refresh token for userID, replacing any
// previous one.
func (s *RefreshStore) Save(ctx context.Context, userID, token string) error {
	return s.rdb.Set(ctx, refreshKeyPrefix+userID, hashToken(token), s.ttl).Err()
}

// Valid reports whether token is the current refresh token for userID.
func (s *RefreshStore) Valid(ctx context.Context, userID, token string) (bool, error) {
	stored, err := s.rdb.Get(ctx, refreshKeyPrefix+userID).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return stored == hashToken(token), nil
}

// Revoke drops the current refresh token for userID.
func (s *RefreshStore) Revoke(ctx context.Context, userID string) error {
	return s.rdb.Del(ctx, refreshKeyPrefix+userID).Err()
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
