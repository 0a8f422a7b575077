// Package cache is a Redis-backed cache of search responses keyed by the
// canonical query shape, with singleflight collapsing of concurrent
// identical queries and hit/miss counters feeding the health surface.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/niveshhub/fundsearch/internal/engine"
	"github.com/niveshhub/fundsearch/pkg/config"
	pkgredis "github.com/niveshhub/fundsearch/pkg/redis"
)

const keyPrefix = "fundsearch:"

type QueryCache struct {
	client *pkgredis.Client
	cfg    config.RedisConfig
	group  singleflight.Group
	logger *slog.Logger
	hits   atomic.Int64
	misses atomic.Int64
}

func New(client *pkgredis.Client, cfg config.RedisConfig) *QueryCache {
	return &QueryCache{
		client: client,
		cfg:    cfg,
		logger: slog.Default().With("component", "query-cache"),
	}
}

func (c *QueryCache) Get(ctx context.Context, q engine.Query) (*engine.Response, bool) {
	key := c.buildKey(q)
	data, err := c.client.Get(ctx, key)
	if err != nil {
		if !pkgredis.IsNilError(err) {
			c.logger.Error("cache get failed", "key", key, "error", err)
		}
		c.misses.Add(1)
		return nil, false
	}
	var resp engine.Response
	if err := json.Unmarshal([]byte(data), &resp); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return &resp, true
}

func (c *QueryCache) Set(ctx context.Context, q engine.Query, resp *engine.Response) {
	key := c.buildKey(q)
	data, err := json.Marshal(resp)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, key, data, c.cfg.CacheTTL); err != nil {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

// GetOrCompute returns the cached response for q, or computes, stores, and
// returns it. Concurrent callers with the same key share one computation.
func (c *QueryCache) GetOrCompute(
	ctx context.Context,
	q engine.Query,
	computeFn func() (*engine.Response, error),
) (*engine.Response, bool, error) {
	if resp, ok := c.Get(ctx, q); ok {
		return resp, true, nil
	}
	key := c.buildKey(q)
	val, err, _ := c.group.Do(key, func() (interface{}, error) {
		if resp, ok := c.Get(ctx, q); ok {
			return resp, nil
		}
		resp, err := computeFn()
		if err != nil {
			return nil, err
		}
		c.Set(ctx, q, resp)
		return resp, nil
	})
	if err != nil {
		return nil, false, err
	}
	return val.(*engine.Response), false, nil
}

// Invalidate drops every cached response. Called after a catalog rebuild.
func (c *QueryCache) Invalidate(ctx context.Context) error {
	deleted, err := c.client.FlushByPattern(ctx, keyPrefix+"*")
	if err != nil {
		return fmt.Errorf("invalidating query cache: %w", err)
	}
	c.logger.Info("query cache invalidated", "keys_deleted", deleted)
	return nil
}

func (c *QueryCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// HitRatio returns hits/(hits+misses), zero before any traffic.
func (c *QueryCache) HitRatio() float64 {
	hits, misses := c.Stats()
	total := hits + misses
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}

// buildKey hashes the canonical JSON encoding of the query. Struct field
// order is fixed, so equal queries produce equal keys.
func (c *QueryCache) buildKey(q engine.Query) string {
	raw, err := json.Marshal(q)
	if err != nil {
		return keyPrefix + "invalid"
	}
	hash := sha256.Sum256(raw)
	return fmt.Sprintf("%s%x", keyPrefix, hash[:16])
}
