// Package cache keeps audit table results in Redis for a short TTL.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/auditkit/revision-service/internal/audit"
)

const keyPrefix = "audit:table"

// TableCache stores query results by table function and arguments. A nil
// client or non-positive TTL disables the cache.
type TableCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewTableCache builds a cache on top of client.
func NewTableCache(client *redis.Client, ttl time.Duration) *TableCache {
	return &TableCache{client: client, ttl: ttl}
}

// Enabled reports whether lookups reach Redis.
func (c *TableCache) Enabled() bool {
	return c != nil && c.client != nil && c.ttl > 0
}

// Key builds the cache key for one query.
func Key(q audit.QuerySpec) string {
	args, _ := json.Marshal(q.Args)
	return fmt.Sprintf("%s:%s:%s", keyPrefix, q.Fn, args)
}

// Get returns the cached result. The bool is false on a miss.
func (c *TableCache) Get(ctx context.Context, q audit.QuerySpec) (audit.Result, bool, error) {
	if !c.Enabled() {
		return audit.Result{}, false, nil
	}
	raw, err := c.client.Get(ctx, Key(q)).Bytes()
	if errors.Is(err, redis.Nil) {
		return audit.Result{}, false, nil
	}
	if err != nil {
		return audit.Result{}, false, fmt.Errorf("get cached table: %w", err)
	}

	var result audit.Result
	if err := json.Unmarshal(raw, &result); err != nil {
		return audit.Result{}, false, fmt.Errorf("decode cached table: %w", err)
	}
	return result, true, nil
}

// Set stores result for the configured TTL.
func (c *TableCache) Set(ctx context.Context, q audit.QuerySpec, result audit.Result) error {
	if !c.Enabled() {
		return nil
	}
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode table: %w", err)
	}
	if err := c.client.Set(ctx, Key(q), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache table: %w", err)
	}
	return nil
}

// Invalidate drops every cached result of the table function fn.
func (c *TableCache) Invalidate(ctx context.Context, fn string) error {
	if !c.Enabled() {
		return nil
	}
	pattern := fmt.Sprintf("%s:%s:*", keyPrefix, escapeGlob(fn))
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan cached tables: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

func escapeGlob(s string) string {
	r := strings.NewReplacer(`*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)
	return r.Replace(s)
}
