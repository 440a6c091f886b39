// Package cache stores serialized render results under (namespace, hash) keys with a time-to-live.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"portfolio-graphs/internal/domain"
	"portfolio-graphs/internal/observability"
	"portfolio-graphs/internal/storage"
)

// ComputeFunc produces the serialized value of a cache miss.
type ComputeFunc func(ctx context.Context) ([]byte, error)

// Options configures a Cache.
type Options struct {
	Store  storage.GraphCacheStore
	Now    func() time.Time
	Logger *slog.Logger
}

// Cache coalesces concurrent misses of the same key into one computation and persists
// results through a GraphCacheStore. Entries are replaced wholesale, never patched.
type Cache struct {
	store storage.GraphCacheStore
	now   func() time.Time
	log   *slog.Logger
	group singleflight.Group
}

// New creates a Cache.
func New(opts Options) *Cache {
	c := &Cache{store: opts.Store, now: opts.Now, log: opts.Logger}
	if c.now == nil {
		c.now = time.Now
	}
	if c.log == nil {
		c.log = slog.Default()
	}
	return c
}

// GetOrCompute returns the stored value of (namespace, hash) while it is fresh, i.e. while
// now < created_at + ttl. Otherwise it runs compute once for all concurrent callers of the
// key and stores the result. A ttl of 0 disables caching: compute always runs and nothing
// is stored. Errors from compute are returned and never stored. hit reports whether the
// value came from the store.
func (c *Cache) GetOrCompute(ctx context.Context, namespace, hash string, ttl time.Duration, compute ComputeFunc) (data []byte, hit bool, err error) {
	if ttl <= 0 {
		observability.RecordCacheLookup(namespace, "bypass")
		data, err := compute(ctx)
		observability.RecordCacheCompute(namespace, err)
		return data, false, err
	}

	if data, ok := c.lookup(ctx, namespace, hash, ttl); ok {
		observability.RecordCacheLookup(namespace, "hit")
		return data, true, nil
	}
	observability.RecordCacheLookup(namespace, "miss")

	type result struct {
		data []byte
		hit  bool
	}
	v, err, shared := c.group.Do(flightKey(namespace, hash), func() (interface{}, error) {
		// waiters share this computation; the caller that started it leaving must not cancel it
		fctx := context.WithoutCancel(ctx)
		// a previous flight may have stored the value between our lookup and now
		if data, ok := c.lookup(fctx, namespace, hash, ttl); ok {
			return result{data: data, hit: true}, nil
		}
		data, err := c.computeAndStore(fctx, namespace, hash, compute)
		if err != nil {
			return nil, err
		}
		return result{data: data}, nil
	})
	if shared {
		observability.RecordCacheShared(namespace)
	}
	if err != nil {
		return nil, false, err
	}
	r := v.(result)
	return r.data, r.hit, nil
}

// Refresh recomputes (namespace, hash) without reading the store and stores the result
// unless ttl is 0.
func (c *Cache) Refresh(ctx context.Context, namespace, hash string, ttl time.Duration, compute ComputeFunc) ([]byte, error) {
	if ttl <= 0 {
		data, err := compute(ctx)
		observability.RecordCacheCompute(namespace, err)
		return data, err
	}

	observability.RecordCacheLookup(namespace, "refresh")
	// refreshes coalesce only with each other; a GetOrCompute flight may serve the stored value
	v, err, _ := c.group.Do("refresh\x00"+flightKey(namespace, hash), func() (interface{}, error) {
		return c.computeAndStore(context.WithoutCancel(ctx), namespace, hash, compute)
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// Purge deletes entries older than maxAge and returns how many were removed.
func (c *Cache) Purge(ctx context.Context, maxAge time.Duration) (int64, error) {
	now := c.now()
	n, err := c.store.DeleteOlderThan(ctx, now.Add(-maxAge))
	if err != nil {
		observability.RecordCacheStoreError("purge")
		return 0, fmt.Errorf("purge cache: %w", err)
	}
	observability.RecordCachePurge(n, now.Unix())
	c.log.Info("purged cache", "removed", n, "max_age", maxAge)
	return n, nil
}

func (c *Cache) lookup(ctx context.Context, namespace, hash string, ttl time.Duration) ([]byte, bool) {
	e, err := c.store.Get(ctx, namespace, hash)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			observability.RecordCacheStoreError("get")
			c.log.Warn("cache read failed", "namespace", namespace, "hash", hash, "error", err)
		}
		return nil, false
	}
	if !c.now().Before(e.CreatedAt.Add(ttl)) {
		return nil, false
	}
	return e.Data, true
}

func (c *Cache) computeAndStore(ctx context.Context, namespace, hash string, compute ComputeFunc) ([]byte, error) {
	data, err := compute(ctx)
	observability.RecordCacheCompute(namespace, err)
	if err != nil {
		return nil, err
	}

	entry := &domain.CacheEntry{Namespace: namespace, Hash: hash, Data: data, CreatedAt: c.now()}
	if err := c.store.Put(ctx, entry); err != nil {
		// the fresh value is still served; the next request recomputes
		observability.RecordCacheStoreError("put")
		c.log.Warn("cache write failed", "namespace", namespace, "hash", hash, "error", err)
		return data, nil
	}
	observability.RecordCacheStored(namespace, len(data))
	return data, nil
}

func flightKey(namespace, hash string) string {
	return namespace + "\x00" + hash
}
