package modelcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/iwvelando/heatpump-forecast/pkg/constants"
	"github.com/iwvelando/heatpump-forecast/pkg/evolution"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps entries as JSON strings without expiry, so a stale
// entry stays available as a fallback.
type RedisStore struct {
	client redis.Cmdable
	prefix string
}

// NewRedisStore wraps a redis client.
func NewRedisStore(client redis.Cmdable, prefix string) *RedisStore {
	if prefix == "" {
		prefix = constants.DefaultCacheKeyPrefix
	}
	return &RedisStore{client: client, prefix: prefix}
}

// Key returns the redis key of an energy type.
func (s *RedisStore) Key(energy evolution.EnergyType) string {
	return s.prefix + string(energy)
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, energy evolution.EnergyType) (Entry, bool, error) {
	raw, err := s.client.Get(ctx, s.Key(energy)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("failed to read cached model for %s: %w", energy, err)
	}

	var entry Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return Entry{}, false, fmt.Errorf("failed to decode cached model for %s: %w", energy, err)
	}
	return entry, true, nil
}

// Set implements Store.
func (s *RedisStore) Set(ctx context.Context, energy evolution.EnergyType, entry Entry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.Key(energy), raw, 0).Err(); err != nil {
		return fmt.Errorf("failed to cache model for %s: %w", energy, err)
	}
	return nil
}
