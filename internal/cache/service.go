// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/qolzam/telar/apps/social/internal/pkg/log"
	"github.com/qolzam/telar/apps/social/internal/platform/config"
)

// GenericCacheService stores JSON encoded values and small sets under a
// common key prefix. A nil or disabled service answers ErrCacheDisabled.
type GenericCacheService struct {
	cache  Cache
	config *CacheConfig
	stats  serviceStats
}

// serviceStats tracks cache service statistics with atomic operations for thread safety
type serviceStats struct {
	hits   int64
	misses int64
	errors int64
}

// NewGenericCacheService creates a new generic cache service
func NewGenericCacheService(cache Cache, config *CacheConfig) *GenericCacheService {
	if config == nil {
		config = DefaultCacheConfig()
	}
	return &GenericCacheService{
		cache:  cache,
		config: config,
	}
}

// NewFromConfig builds the service for the process configuration. A disabled
// configuration yields a service that never touches Redis.
func NewFromConfig(ctx context.Context, cfg config.CacheConfig) (*GenericCacheService, error) {
	serviceConfig := &CacheConfig{
		Enabled: cfg.Enabled,
		TTL:     cfg.TrendsTTL,
		Prefix:  cfg.Prefix,
	}
	if !cfg.Enabled {
		return NewGenericCacheService(nil, serviceConfig), nil
	}

	backend, err := NewRedisCache(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	log.Info("Cache connected to redis at %s", cfg.Redis.Address)
	return NewGenericCacheService(backend, serviceConfig), nil
}

// IsEnabled returns whether caching is enabled
func (gcs *GenericCacheService) IsEnabled() bool {
	return gcs != nil && gcs.config.Enabled && gcs.cache != nil
}

// GetCached retrieves and unmarshals cached data into target.
func (gcs *GenericCacheService) GetCached(ctx context.Context, key string, target interface{}) error {
	if !gcs.IsEnabled() {
		return ErrCacheDisabled
	}

	fullKey := gcs.buildKey(key)
	data, err := gcs.cache.Get(ctx, fullKey)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			atomic.AddInt64(&gcs.stats.misses, 1)
		} else {
			atomic.AddInt64(&gcs.stats.errors, 1)
			log.ErrorWithContext(ctx, "Cache get error for key %s: %v", fullKey, err)
		}
		return err
	}

	if err := json.Unmarshal(data, target); err != nil {
		atomic.AddInt64(&gcs.stats.errors, 1)
		log.ErrorWithContext(ctx, "Cache data unmarshal error for key %s: %v", fullKey, err)
		return fmt.Errorf("%w: %v", ErrDeserializationFailed, err)
	}

	atomic.AddInt64(&gcs.stats.hits, 1)
	return nil
}

// CacheData marshals and stores data in cache with TTL
func (gcs *GenericCacheService) CacheData(ctx context.Context, key string, data interface{}, ttl ...time.Duration) error {
	if !gcs.IsEnabled() {
		return ErrCacheDisabled
	}

	cacheTTL := gcs.config.TTL
	if len(ttl) > 0 && ttl[0] > 0 {
		cacheTTL = ttl[0]
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		atomic.AddInt64(&gcs.stats.errors, 1)
		return fmt.Errorf("%w: %v", ErrSerializationFailed, err)
	}

	fullKey := gcs.buildKey(key)
	if err := gcs.cache.Set(ctx, fullKey, jsonData, cacheTTL); err != nil {
		atomic.AddInt64(&gcs.stats.errors, 1)
		log.ErrorWithContext(ctx, "Cache set error for key %s: %v", fullKey, err)
		return err
	}
	return nil
}

// InvalidateKey removes a specific key from cache
func (gcs *GenericCacheService) InvalidateKey(ctx context.Context, key string) error {
	if !gcs.IsEnabled() {
		return ErrCacheDisabled
	}
	fullKey := gcs.buildKey(key)
	if err := gcs.cache.Delete(ctx, fullKey); err != nil {
		atomic.AddInt64(&gcs.stats.errors, 1)
		log.ErrorWithContext(ctx, "Cache key invalidation error for key %s: %v", fullKey, err)
		return err
	}
	return nil
}

// SetAdd adds a member to a set stored at key.
func (gcs *GenericCacheService) SetAdd(ctx context.Context, key string, member string) error {
	if !gcs.IsEnabled() {
		return ErrCacheDisabled
	}
	fullKey := gcs.buildKey(key)
	if err := gcs.cache.SetAdd(ctx, fullKey, member); err != nil {
		atomic.AddInt64(&gcs.stats.errors, 1)
		log.ErrorWithContext(ctx, "Cache set add error for key %s: %v", fullKey, err)
		return err
	}
	return nil
}

// SetIsMember checks if a member is part of the set at key.
func (gcs *GenericCacheService) SetIsMember(ctx context.Context, key string, member string) (bool, error) {
	if !gcs.IsEnabled() {
		return false, ErrCacheDisabled
	}
	fullKey := gcs.buildKey(key)
	isMember, err := gcs.cache.SetIsMember(ctx, fullKey, member)
	if err != nil {
		atomic.AddInt64(&gcs.stats.errors, 1)
		log.ErrorWithContext(ctx, "Cache set isMember error for key %s: %v", fullKey, err)
		return false, err
	}
	return isMember, nil
}

// GenerateHashKey creates a deterministic hash-based cache key from parameters
func (gcs *GenericCacheService) GenerateHashKey(prefix string, params map[string]interface{}) string {
	h := sha256.New()
	h.Write([]byte(prefix + ":"))

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		var valueStr string
		switch val := params[k].(type) {
		case string:
			valueStr = val
		case nil:
			valueStr = "nil"
		default:
			if jsonVal, err := json.Marshal(val); err == nil {
				valueStr = string(jsonVal)
			} else {
				valueStr = fmt.Sprintf("%v", val)
			}
		}
		h.Write([]byte(fmt.Sprintf("%s=%s;", k, valueStr)))
	}

	hash := hex.EncodeToString(h.Sum(nil))[:16]
	return fmt.Sprintf("%s:%s", prefix, hash)
}

// GetStats returns cache service statistics
func (gcs *GenericCacheService) GetStats() CacheStats {
	hits := atomic.LoadInt64(&gcs.stats.hits)
	misses := atomic.LoadInt64(&gcs.stats.misses)
	hitRatio := 0.0
	if total := hits + misses; total > 0 {
		hitRatio = float64(hits) / float64(total)
	}
	return CacheStats{
		Hits:     hits,
		Misses:   misses,
		Errors:   atomic.LoadInt64(&gcs.stats.errors),
		HitRatio: hitRatio,
	}
}

// Close closes the cache service
func (gcs *GenericCacheService) Close() error {
	if gcs != nil && gcs.cache != nil {
		return gcs.cache.Close()
	}
	return nil
}

// buildKey constructs the full cache key with prefix
func (gcs *GenericCacheService) buildKey(key string) string {
	if gcs.config.Prefix == "" {
		return key
	}
	prefix := gcs.config.Prefix
	if !strings.HasSuffix(prefix, ":") {
		prefix += ":"
	}
	return prefix + key
}
