// Package modelcache stores fitted energy evolution models and refreshes
// them from price histories when they grow stale.
package modelcache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/iwvelando/heatpump-forecast/internal/config"
	"github.com/iwvelando/heatpump-forecast/pkg/constants"
	"github.com/iwvelando/heatpump-forecast/pkg/evolution"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Entry is a fitted model and the time it was fitted.
type Entry struct {
	Model    evolution.Model `json:"model"`
	FittedAt time.Time       `json:"fittedAt"`
}

// Store persists entries keyed by energy type.
type Store interface {
	// Get returns false when no entry exists.
	Get(ctx context.Context, energy evolution.EnergyType) (Entry, bool, error)
	Set(ctx context.Context, energy evolution.EnergyType, entry Entry) error
}

// MemoryStore keeps entries for the lifetime of the process.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[evolution.EnergyType]Entry
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[evolution.EnergyType]Entry)}
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, energy evolution.EnergyType) (Entry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[energy]
	return entry, ok, nil
}

// Set implements Store.
func (s *MemoryStore) Set(_ context.Context, energy evolution.EnergyType, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[energy] = entry
	return nil
}

// NopStore never holds anything, so every request refits.
type NopStore struct{}

// Get implements Store.
func (NopStore) Get(context.Context, evolution.EnergyType) (Entry, bool, error) {
	return Entry{}, false, nil
}

// Set implements Store.
func (NopStore) Set(context.Context, evolution.EnergyType, Entry) error { return nil }

// OpenStore builds the store selected by the configuration. The returned
// function releases its connections.
func OpenStore(ctx context.Context, logger *zap.Logger, cfg config.CacheConfig) (Store, func() error, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	noop := func() error { return nil }

	switch cfg.Backend {
	case "", constants.CacheBackendMemory:
		return NewMemoryStore(), noop, nil
	case constants.CacheBackendNone:
		return NopStore{}, noop, nil
	case constants.CacheBackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		logger.Debug(fmt.Sprintf("using redis model cache at %s", cfg.RedisAddr),
			zap.String("op", "modelcache.OpenStore"),
		)
		return NewRedisStore(client, cfg.KeyPrefix), client.Close, nil
	case constants.CacheBackendPostgres:
		store, err := OpenSQLStore(ctx, cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		logger.Debug("using postgres model cache",
			zap.String("op", "modelcache.OpenStore"),
		)
		return store, store.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown model cache backend %q", cfg.Backend)
	}
}
