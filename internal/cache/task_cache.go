package cache

import (
	"context"
	"encoding/json"
	"time"

	dom "github.com/vikram-2101/Advance-Task-Manager-App/internal/domain"

	"github.com/redis/go-redis/v9"
)

const keyListPrefix = "task:list:"

// CachedList is one page of a task listing plus its pre-pagination total.
type CachedList struct {
	Tasks []dom.Task `json:"tasks"`
	Total int        `json:"total"`
}

// TaskCache caches task list pages in Redis, keyed per user and query
// fingerprint so every filter combination gets its own entry.
type TaskCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewTaskCache returns a new TaskCache.
func NewTaskCache(rdb *redis.Client, ttl time.Duration) *TaskCache {
	return &TaskCache{rdb: rdb, ttl: ttl}
}

func listKey(userID, fingerprint string) string {
	return keyListPrefix + userID + ":" + fingerprint
}

// GetList returns the cached page or nil on miss.
func (c *TaskCache) GetList(ctx context.Context, userID, fingerprint string) (*CachedList, error) {
	b, err := c.rdb.Get(ctx, listKey(userID, fingerprint)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var out CachedList
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SetList stores the page in cache.
func (c *TaskCache) SetList(ctx context.Context, userID, fingerprint string, list CachedList) error {
	b, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, listKey(userID, fingerprint), b, c.ttl).Err()
}

// Invalidate removes every cached page for the given users (cache
// invalidation on write: a mutation touches the owner and everyone the
// task is shared with).
func (c *TaskCache) Invalidate(ctx context.Context, userIDs ...string) error {
	for _, userID := range userIDs {
		iter := c.rdb.Scan(ctx, 0, keyListPrefix+userID+":*", 100).Iterator()
		for iter.Next(ctx) {
			if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
				return err
			}
		}
		if err := iter.Err(); err != nil {
			return err
		}
	}
	return nil
}
