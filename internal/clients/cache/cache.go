// Package cache provides the Redis-backed display-state cache. The
// resolver is cheap but the facts load behind it is not; dashboards poll
// client state aggressively, so resolved states are cached briefly and
// invalidated whenever a reconciliation pass touches the client.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "clients:state:"

// CachedState is the serialized resolution stored per client.
type CachedState struct {
	State   string `json:"state"`
	Rule    string `json:"rule,omitempty"`
	Derived bool   `json:"derived"`
}

type StateCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func New(rdb *redis.Client, ttl time.Duration) *StateCache {
	return &StateCache{rdb: rdb, ttl: ttl}
}

func key(clientID int64) string {
	return keyPrefix + strconv.FormatInt(clientID, 10)
}

// Get returns the cached state, or (nil, nil) on a miss.
func (c *StateCache) Get(ctx context.Context, clientID int64) (*CachedState, error) {
	if c == nil || c.rdb == nil {
		return nil, nil
	}
	raw, err := c.rdb.Get(ctx, key(clientID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var state CachedState
	if err := json.Unmarshal(raw, &state); err != nil {
		// A corrupt entry behaves like a miss.
		return nil, nil
	}
	return &state, nil
}

// Set stores the resolved state with the configured TTL.
func (c *StateCache) Set(ctx context.Context, clientID int64, state CachedState) error {
	if c == nil || c.rdb == nil {
		return nil
	}
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key(clientID), raw, c.ttl).Err()
}

// Invalidate drops the cached state for a client.
func (c *StateCache) Invalidate(ctx context.Context, clientID int64) error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Del(ctx, key(clientID)).Err()
}
