package data

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/target/tasker/internal/core"
	"github.com/target/tasker/internal/domain/model"
)

const defaultResultTTL = time.Hour

// ResultCache implements the core.ResultCache interface using Redis.
// It holds a derived, TTL-bounded copy of completed task views; entries
// expire autonomously and the cache is never the only copy of truth.
type ResultCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

var _ core.ResultCache = (*ResultCache)(nil)

// NewResultCache creates a new ResultCache with the given Redis client and TTL.
func NewResultCache(client redis.UniversalClient, ttl time.Duration) *ResultCache {
	if ttl <= 0 {
		ttl = defaultResultTTL
	}
	return &ResultCache{client: client, ttl: ttl}
}

func cacheKey(id uuid.UUID) string {
	return "response:" + id.String()
}

// GetView retrieves a cached terminal view. A miss returns (nil, nil).
// Entries whose status is not completed are ignored: only completed views
// are ever written, so anything else is a poisoned entry that must not mask
// live store state.
func (c *ResultCache) GetView(ctx context.Context, id uuid.UUID) (*model.TaskView, error) {
	data, err := c.client.Get(ctx, cacheKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var view model.TaskView
	if err := json.Unmarshal(data, &view); err != nil {
		return nil, fmt.Errorf("unmarshal cached view: %w", err)
	}
	if view.Status != model.TaskStatusCompleted {
		return nil, nil
	}
	return &view, nil
}

// SetView stores a completed task view with the configured TTL.
// Non-terminal views are rejected; their content still changes and caching
// them would require invalidation logic the engine deliberately avoids.
func (c *ResultCache) SetView(ctx context.Context, view *model.TaskView) error {
	if view == nil {
		return errors.New("view cannot be nil")
	}
	if view.Status != model.TaskStatusCompleted {
		return fmt.Errorf("refusing to cache non-completed view (status %s)", view.Status)
	}

	data, err := json.Marshal(view)
	if err != nil {
		return fmt.Errorf("marshal view: %w", err)
	}
	if err := c.client.Set(ctx, cacheKey(view.TaskUUID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Health checks the health of the Redis connection.
func (c *ResultCache) Health(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
