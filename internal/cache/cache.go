package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ppiankov/estudio/internal/model"
)

// keyPrefix versions every cache key; bump it when the report schema changes
const keyPrefix = "estudio:v1:"

// Cache stores serialized analyses keyed by match id. Implementations are
// safe for concurrent use. A zero ttl means the backend default.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

// Key returns the cache key of the analysis of a match
func Key(matchID string) string {
	return keyPrefix + "analysis:" + matchID
}

// GetJSON decodes a cached value into v. It reports false on a miss or
// when the cached bytes no longer decode.
func GetJSON(ctx context.Context, c Cache, key string, v any) bool {
	data, ok := c.Get(ctx, key)
	if !ok {
		return false
	}
	return json.Unmarshal(data, v) == nil
}

// SetJSON encodes v and stores it under key
func SetJSON(ctx context.Context, c Cache, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode cache value: %w", err)
	}
	return c.Set(ctx, key, data, ttl)
}

// New builds the cache selected by cfg.Backend. It returns nil when the
// cache is disabled.
func New(cfg model.CacheConfig) (Cache, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	switch strings.ToLower(cfg.Backend) {
	case "memory":
		return NewMemoryCache(cfg.TTL, 10*time.Minute), nil
	case "disk":
		return NewDiskCache(ExpandHome(cfg.Dir), cfg.TTL), nil
	case "", "layered":
		return NewLayeredCache(cfg.TTL, ExpandHome(cfg.Dir), cfg.TTL), nil
	case "sqlite":
		return NewSQLiteCache(ExpandHome(cfg.SQLitePath), cfg.TTL)
	case "redis":
		return NewRedisCache(cfg.RedisAddr, cfg.RedisDB, cfg.TTL), nil
	default:
		return nil, fmt.Errorf("unknown cache backend: %s (supported: memory, disk, layered, sqlite, redis)", cfg.Backend)
	}
}

// ExpandHome replaces a leading "~/" with the user's home directory
func ExpandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
